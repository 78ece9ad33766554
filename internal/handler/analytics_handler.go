package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"imgify/internal/auth"
	"imgify/internal/service"
)

// AnalyticsHandler принимает события от клиента: результаты удаления
// фона, заходы на страницы и уходы с них
type AnalyticsHandler struct {
	imageService     *service.ImageService
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(imageService *service.ImageService, analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		imageService:     imageService,
		analyticsService: analyticsService,
	}
}

type backgroundRemovalRequest struct {
	Filename       string  `json:"filename"`
	OriginalFormat string  `json:"original_format"`
	OriginalSize   int64   `json:"original_size"`
	ProcessedSize  int64   `json:"processed_size"`
	ProcessingTime float64 `json:"processing_time"`
	Success        bool    `json:"success"`
	ErrorMessage   *string `json:"error_message,omitempty"`
}

// TrackBackgroundRemoval обрабатывает POST /api/analytics/background-removal.
// Само удаление фона выполняется в браузере, сервер только ведет учет.
func (h *AnalyticsHandler) TrackBackgroundRemoval(w http.ResponseWriter, r *http.Request) {
	userID, authenticated := auth.UserFromRequest(r)

	var req backgroundRemovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Filename == "" || req.OriginalSize <= 0 {
		http.Error(w, "Filename and original size are required", http.StatusBadRequest)
		return
	}

	format := req.OriginalFormat
	if format == "" {
		format = formatFromFilename(req.Filename)
	}

	var ownerID *string
	if authenticated {
		ownerID = &userID
	}

	image, err := h.imageService.TrackClientSide(r.Context(), &service.ClientSideResult{
		UserID:           ownerID,
		IPAddress:        clientIP(r),
		OriginalFilename: req.Filename,
		OriginalFormat:   format,
		OriginalSize:     req.OriginalSize,
		ProcessedSize:    req.ProcessedSize,
		ProcessingTime:   req.ProcessingTime,
		Success:          req.Success,
		ErrorMessage:     req.ErrorMessage,
	})
	if err != nil {
		log.Printf("[Analytics] Не удалось сохранить учет удаления фона: %v", err)
		http.Error(w, "Failed to track result", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      image.ID,
	})
}

type pageViewRequest struct {
	SessionID string  `json:"session_id"`
	PagePath  string  `json:"page_path"`
	Referrer  *string `json:"referrer,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`
}

// TrackPageView обрабатывает POST /api/analytics/page-view
func (h *AnalyticsHandler) TrackPageView(w http.ResponseWriter, r *http.Request) {
	userID, authenticated := auth.UserFromRequest(r)

	var req pageViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.SessionID == "" || req.PagePath == "" {
		http.Error(w, "Session ID and page path are required", http.StatusBadRequest)
		return
	}

	userAgent := req.UserAgent
	if userAgent == nil {
		if ua := r.UserAgent(); ua != "" {
			userAgent = &ua
		}
	}

	var ownerID *string
	if authenticated {
		ownerID = &userID
	}

	view, err := h.analyticsService.TrackPageView(r.Context(), &service.PageViewData{
		UserID:    ownerID,
		SessionID: req.SessionID,
		IPAddress: clientIP(r),
		PagePath:  req.PagePath,
		Referrer:  req.Referrer,
		UserAgent: userAgent,
		EntryTime: time.Now(),
	})
	if err != nil {
		log.Printf("[Analytics] Не удалось сохранить просмотр страницы: %v", err)
		http.Error(w, "Failed to track page view", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      view.ID,
	})
}

type pageExitRequest struct {
	SessionID string `json:"session_id"`
	PagePath  string `json:"page_path"`
	Duration  *int   `json:"duration,omitempty"`
}

// TrackPageExit обрабатывает POST /api/analytics/page-exit.
// Отсутствие открытого просмотра не считается ошибкой: клиент мог
// отправить выход после очистки журнала.
func (h *AnalyticsHandler) TrackPageExit(w http.ResponseWriter, r *http.Request) {
	var req pageExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.SessionID == "" || req.PagePath == "" {
		http.Error(w, "Session ID and page path are required", http.StatusBadRequest)
		return
	}

	found, err := h.analyticsService.TrackPageExit(r.Context(), req.SessionID, req.PagePath, time.Now(), req.Duration)
	if err != nil {
		log.Printf("[Analytics] Не удалось сохранить выход со страницы: %v", err)
		http.Error(w, "Failed to track page exit", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"found":   found,
	})
}

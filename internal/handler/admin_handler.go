package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"imgify/internal/auth"
	"imgify/internal/repository"
	"imgify/internal/service"
)

// AdminHandler отдает статистику, журнал действий и обращения.
// Все методы доступны только администраторам.
type AdminHandler struct {
	imageRepo        *repository.ImageRepository
	analyticsService *service.AnalyticsService
	contactRepo      *repository.ContactRepository
}

func NewAdminHandler(
	imageRepo *repository.ImageRepository,
	analyticsService *service.AnalyticsService,
	contactRepo *repository.ContactRepository,
) *AdminHandler {
	return &AdminHandler{
		imageRepo:        imageRepo,
		analyticsService: analyticsService,
		contactRepo:      contactRepo,
	}
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !auth.IsAdmin(r) {
		http.Error(w, "Admin access required", http.StatusForbidden)
		return false
	}
	return true
}

// Analytics обрабатывает GET /api/admin/analytics
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	period := r.URL.Query().Get("period")
	since := service.PeriodStart(period, time.Now())

	stats, err := h.imageRepo.Stats(r.Context(), since)
	if err != nil {
		log.Printf("[Admin] Ошибка получения статистики: %v", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	visitors, err := h.imageRepo.CountDistinctVisitors(r.Context(), since)
	if err != nil {
		log.Printf("[Admin] Ошибка подсчета посетителей: %v", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}
	stats.DailyVisitors = visitors

	breakdown, err := h.imageRepo.DailyBreakdown(r.Context(), since)
	if err != nil {
		log.Printf("[Admin] Ошибка получения разбивки по дням: %v", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period":          periodOrDefault(period),
		"stats":           stats,
		"daily_breakdown": breakdown,
	})
}

// Traffic обрабатывает GET /api/admin/traffic
func (h *AdminHandler) Traffic(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	period := r.URL.Query().Get("period")

	summary, err := h.analyticsService.TrafficSummary(r.Context(), period)
	if err != nil {
		log.Printf("[Admin] Ошибка получения сводки посещаемости: %v", err)
		http.Error(w, "Failed to get traffic summary", http.StatusInternalServerError)
		return
	}

	trends, err := h.analyticsService.Trends(r.Context(), queryInt(r, "days", 7))
	if err != nil {
		log.Printf("[Admin] Ошибка получения динамики просмотров: %v", err)
		http.Error(w, "Failed to get traffic summary", http.StatusInternalServerError)
		return
	}

	referrers, err := h.analyticsService.TopReferrers(r.Context(), period, queryInt(r, "limit", 10))
	if err != nil {
		log.Printf("[Admin] Ошибка получения источников переходов: %v", err)
		http.Error(w, "Failed to get traffic summary", http.StatusInternalServerError)
		return
	}

	bounceRate, err := h.analyticsService.BounceRate(r.Context(), period)
	if err != nil {
		log.Printf("[Admin] Ошибка расчета показателя отказов: %v", err)
		http.Error(w, "Failed to get traffic summary", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period":      periodOrDefault(period),
		"summary":     summary,
		"trends":      trends,
		"referrers":   referrers,
		"bounce_rate": bounceRate,
	})
}

// Logs обрабатывает GET /api/admin/logs
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	logs, err := h.analyticsService.RecentLogs(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		log.Printf("[Admin] Ошибка чтения журнала: %v", err)
		http.Error(w, "Failed to get logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs": logs,
	})
}

// Contacts обрабатывает GET /api/admin/contacts
func (h *AdminHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	perPage := queryInt(r, "per_page", 50)
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	submissions, err := h.contactRepo.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		log.Printf("[Admin] Ошибка чтения обращений: %v", err)
		http.Error(w, "Failed to get contacts", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": submissions,
		"page":     page,
		"per_page": perPage,
	})
}

// ReviewContact обрабатывает PATCH /api/admin/contacts/{id}/review
func (h *AdminHandler) ReviewContact(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid contact ID", http.StatusBadRequest)
		return
	}

	if err := h.contactRepo.MarkReviewed(r.Context(), id); err != nil {
		log.Printf("[Admin] Не удалось отметить обращение %d: %v", id, err)
		http.Error(w, "Contact submission not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func periodOrDefault(period string) string {
	switch period {
	case "week", "month", "year":
		return period
	default:
		return "today"
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

package handler

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"imgify/internal/auth"
	"imgify/internal/config"
	"imgify/internal/domain"
	"imgify/internal/service"
)

// OptimizeHandler принимает пакет изображений и отдает сжатые версии
type OptimizeHandler struct {
	optimizationService *service.OptimizationService
	imageService        *service.ImageService
	rateLimitService    *service.RateLimitService
	locationService     *service.LocationService
	fileCfg             config.FileConfig
}

func NewOptimizeHandler(
	optimizationService *service.OptimizationService,
	imageService *service.ImageService,
	rateLimitService *service.RateLimitService,
	locationService *service.LocationService,
	fileCfg config.FileConfig,
) *OptimizeHandler {
	return &OptimizeHandler{
		optimizationService: optimizationService,
		imageService:        imageService,
		rateLimitService:    rateLimitService,
		locationService:     locationService,
		fileCfg:             fileCfg,
	}
}

type processedFileResult struct {
	ID               int64   `json:"id,omitempty"`
	Filename         string  `json:"filename"`
	OriginalSize     int64   `json:"original_size,omitempty"`
	ProcessedSize    int64   `json:"processed_size,omitempty"`
	CompressionRatio float64 `json:"compression_ratio"`
	UsedOriginal     bool    `json:"used_original,omitempty"`
	DownloadURL      string  `json:"download_url,omitempty"`
	Error            string  `json:"error,omitempty"`
}

type batchResponse struct {
	Success bool                  `json:"success"`
	Results []processedFileResult `json:"results"`
	Limits  domain.LimitsInfo     `json:"limits"`
}

// Optimize обрабатывает POST /api/optimize. Лимиты проверяются до
// обработки, счетчик фиксируется после нее.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	userID, authenticated := auth.UserFromRequest(r)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		http.Error(w, "No images provided", http.StatusBadRequest)
		return
	}

	quality := h.fileCfg.OptimizeQuality
	if q := r.FormValue("quality"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 60 || parsed > 100 {
			http.Error(w, "Quality must be between 60 and 100", http.StatusBadRequest)
			return
		}
		quality = parsed
	}

	ip := clientIP(r)

	policy := h.rateLimitService.ResolvePolicy(authenticated)

	decision, err := h.rateLimitService.CheckLimit(r.Context(), ip, policy, len(files))
	if err != nil {
		log.Printf("[Optimize] Ошибка проверки лимитов для %s: %v", ip, err)
		http.Error(w, "Failed to check limits", http.StatusInternalServerError)
		return
	}

	if !decision.Allowed {
		writeJSON(w, http.StatusTooManyRequests, rejectedResponse{
			Error:  decision.Message,
			Limits: decision.Limits,
		})
		return
	}

	country := h.locationService.CountryFromIP(r.Context(), ip)

	var ownerID *string
	if authenticated {
		ownerID = &userID
	}

	results := make([]processedFileResult, 0, len(files))
	processedCount := 0

	for _, header := range files {
		result := h.processOne(r, header, quality, ip, country, ownerID)
		if result.Error == "" {
			processedCount++
		}
		results = append(results, result)
	}

	// Счетчик растет на весь принятый пакет, включая файлы с ошибками:
	// место под них было зарезервировано проверкой
	if err := h.rateLimitService.IncrementCount(r.Context(), ip, policy, len(files)); err != nil {
		log.Printf("[Optimize] Не удалось зафиксировать потребление для %s: %v", ip, err)
	}

	limits, err := h.rateLimitService.GetRemainingLimit(r.Context(), ip, policy)
	if err != nil {
		log.Printf("[Optimize] Не удалось получить остаток лимитов для %s: %v", ip, err)
		limits = decision.Limits
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Success: processedCount > 0,
		Results: results,
		Limits:  limits,
	})
}

func (h *OptimizeHandler) processOne(r *http.Request, header *multipart.FileHeader, quality int, ip, country string, ownerID *string) processedFileResult {
	result := processedFileResult{Filename: header.Filename}

	format := formatFromFilename(header.Filename)
	if !h.fileCfg.FormatAllowed(format) {
		result.Error = "Unsupported image format"
		return result
	}

	if header.Size > h.fileCfg.MaxSizeKB*1024 {
		result.Error = "File is too large"
		return result
	}

	file, err := header.Open()
	if err != nil {
		result.Error = "Failed to read file"
		return result
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		result.Error = "Failed to read file"
		return result
	}

	optimized, err := h.optimizationService.Optimize(data, format, quality)
	if err != nil {
		log.Printf("[Optimize] Не удалось обработать %s: %v", header.Filename, err)
		result.Error = "Failed to optimize image"
		return result
	}

	image, err := h.imageService.SaveProcessed(r.Context(), &service.ProcessedImage{
		UserID:           ownerID,
		IPAddress:        ip,
		Country:          &country,
		OriginalFilename: header.Filename,
		OriginalFormat:   format,
		ProcessedFormat:  optimized.Format,
		OriginalSize:     optimized.OriginalSize,
		ProcessedSize:    optimized.ProcessedSize,
		Operation:        domain.OperationOptimize,
		Data:             optimized.Data,
	})
	if err != nil {
		log.Printf("[Optimize] Не удалось сохранить результат для %s: %v", header.Filename, err)
		result.Error = "Failed to save processed image"
		return result
	}

	result.ID = image.ID
	result.OriginalSize = optimized.OriginalSize
	result.ProcessedSize = optimized.ProcessedSize
	result.CompressionRatio = optimized.CompressionRatio
	result.UsedOriginal = optimized.UsedOriginal
	result.DownloadURL = h.imageService.DownloadURL(image.ID)

	return result
}

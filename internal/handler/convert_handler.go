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

// ConvertHandler принимает пакет изображений и отдает их в другом формате
type ConvertHandler struct {
	conversionService *service.ConversionService
	imageService      *service.ImageService
	rateLimitService  *service.RateLimitService
	locationService   *service.LocationService
	fileCfg           config.FileConfig
}

func NewConvertHandler(
	conversionService *service.ConversionService,
	imageService *service.ImageService,
	rateLimitService *service.RateLimitService,
	locationService *service.LocationService,
	fileCfg config.FileConfig,
) *ConvertHandler {
	return &ConvertHandler{
		conversionService: conversionService,
		imageService:      imageService,
		rateLimitService:  rateLimitService,
		locationService:   locationService,
		fileCfg:           fileCfg,
	}
}

// Convert обрабатывает POST /api/convert
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
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

	targetFormat := r.FormValue("format")
	if targetFormat == "" {
		http.Error(w, "Target format is required", http.StatusBadRequest)
		return
	}
	if !h.fileCfg.FormatAllowed(targetFormat) {
		http.Error(w, "Unsupported target format", http.StatusBadRequest)
		return
	}

	quality := h.fileCfg.ConvertQuality
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
		log.Printf("[Convert] Ошибка проверки лимитов для %s: %v", ip, err)
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
		result := h.processOne(r, header, targetFormat, quality, ip, country, ownerID)
		if result.Error == "" {
			processedCount++
		}
		results = append(results, result)
	}

	if err := h.rateLimitService.IncrementCount(r.Context(), ip, policy, len(files)); err != nil {
		log.Printf("[Convert] Не удалось зафиксировать потребление для %s: %v", ip, err)
	}

	limits, err := h.rateLimitService.GetRemainingLimit(r.Context(), ip, policy)
	if err != nil {
		log.Printf("[Convert] Не удалось получить остаток лимитов для %s: %v", ip, err)
		limits = decision.Limits
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Success: processedCount > 0,
		Results: results,
		Limits:  limits,
	})
}

// Formats обрабатывает GET /api/formats
func (h *ConvertHandler) Formats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"formats": h.conversionService.SupportedFormats(),
	})
}

func (h *ConvertHandler) processOne(r *http.Request, header *multipart.FileHeader, targetFormat string, quality int, ip, country string, ownerID *string) processedFileResult {
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

	converted, err := h.conversionService.Convert(data, format, targetFormat, quality)
	if err != nil {
		log.Printf("[Convert] Не удалось конвертировать %s: %v", header.Filename, err)
		result.Error = "Failed to convert image"
		return result
	}

	image, err := h.imageService.SaveProcessed(r.Context(), &service.ProcessedImage{
		UserID:           ownerID,
		IPAddress:        ip,
		Country:          &country,
		OriginalFilename: header.Filename,
		OriginalFormat:   converted.OriginalFormat,
		ProcessedFormat:  converted.TargetFormat,
		OriginalSize:     converted.OriginalSize,
		ProcessedSize:    converted.ProcessedSize,
		Operation:        domain.OperationConvert,
		Data:             converted.Data,
	})
	if err != nil {
		log.Printf("[Convert] Не удалось сохранить результат для %s: %v", header.Filename, err)
		result.Error = "Failed to save processed image"
		return result
	}

	result.ID = image.ID
	result.OriginalSize = converted.OriginalSize
	result.ProcessedSize = converted.ProcessedSize
	result.DownloadURL = h.imageService.DownloadURL(image.ID)

	return result
}

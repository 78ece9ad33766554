package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"imgify/internal/service"
)

// DownloadHandler отдает обработанные файлы до истечения срока хранения
type DownloadHandler struct {
	imageService *service.ImageService
}

func NewDownloadHandler(imageService *service.ImageService) *DownloadHandler {
	return &DownloadHandler{imageService: imageService}
}

// Download обрабатывает GET /api/download/{id}
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid image ID", http.StatusBadRequest)
		return
	}

	image, object, err := h.imageService.GetForDownload(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageNotFound):
			http.Error(w, "Image not found", http.StatusNotFound)
		case errors.Is(err, service.ErrImageExpired):
			http.Error(w, "Image has expired and been deleted", http.StatusNotFound)
		default:
			log.Printf("[Download] Ошибка получения файла %d: %v", id, err)
			http.Error(w, "Failed to get file", http.StatusInternalServerError)
		}
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", object.ContentType())
	w.Header().Set("Content-Length", strconv.FormatInt(object.ContentLength(), 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", downloadFilename(image.OriginalFilename, image.ProcessedFormat)))

	if _, err := io.Copy(w, object); err != nil {
		log.Printf("[Download] Ошибка отдачи файла %d: %v", id, err)
	}
}

// downloadFilename подменяет расширение исходного имени на формат
// обработанного файла
func downloadFilename(original, format string) string {
	base := original
	if idx := strings.LastIndex(original, "."); idx > 0 {
		base = original[:idx]
	}
	return base + "." + format
}

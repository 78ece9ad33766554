package handler

import (
	"log"
	"net/http"

	"imgify/internal/auth"
	"imgify/internal/domain"
	"imgify/internal/service"
)

// RateLimitHandler отдает клиенту снимок его текущих лимитов
type RateLimitHandler struct {
	rateLimitService *service.RateLimitService
}

func NewRateLimitHandler(rateLimitService *service.RateLimitService) *RateLimitHandler {
	return &RateLimitHandler{rateLimitService: rateLimitService}
}

// Limits обрабатывает GET /api/limits. Чтение лимитов ничего не меняет:
// повторные запросы возвращают одинаковый снимок.
func (h *RateLimitHandler) Limits(w http.ResponseWriter, r *http.Request) {
	_, authenticated := auth.UserFromRequest(r)

	ip := clientIP(r)
	policy := h.rateLimitService.ResolvePolicy(authenticated)

	limits, err := h.rateLimitService.GetRemainingLimit(r.Context(), ip, policy)
	if err != nil {
		log.Printf("[Limits] Ошибка получения лимитов для %s: %v", ip, err)
		http.Error(w, "Failed to get limits", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]domain.LimitsInfo{
		"limits": limits,
	})
}

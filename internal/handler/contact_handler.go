package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"imgify/internal/domain"
	"imgify/internal/repository"
)

const (
	contactMaxPerHour  = 3
	contactMaxName     = 100
	contactMaxSubject  = 200
	contactMaxMessage  = 5000
	contactThankYouMsg = "Thank you for your message. We will get back to you soon."
)

// ContactHandler принимает обращения через форму обратной связи
type ContactHandler struct {
	contactRepo *repository.ContactRepository
}

func NewContactHandler(contactRepo *repository.ContactRepository) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	// Поле-приманка для ботов, в форме оно скрыто
	Website string `json:"website,omitempty"`
}

// Submit обрабатывает POST /api/contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Бот заполнил скрытое поле. Отвечаем как на успех, чтобы не
	// подсказывать, что отправка отброшена.
	if strings.TrimSpace(req.Website) != "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": contactThankYouMsg,
		})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		http.Error(w, "All fields are required", http.StatusBadRequest)
		return
	}
	if len(req.Name) > contactMaxName || len(req.Subject) > contactMaxSubject || len(req.Message) > contactMaxMessage {
		http.Error(w, "Field length limit exceeded", http.StatusBadRequest)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		http.Error(w, "Invalid email address", http.StatusBadRequest)
		return
	}

	ip := clientIP(r)

	recent, err := h.contactRepo.CountRecentByIP(r.Context(), ip, time.Now().Add(-time.Hour))
	if err != nil {
		log.Printf("[Contact] Ошибка проверки частоты обращений для %s: %v", ip, err)
		http.Error(w, "Failed to submit message", http.StatusInternalServerError)
		return
	}

	if recent >= contactMaxPerHour {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": "Too many submissions. Please try again later.",
		})
		return
	}

	subject := req.Subject

	submission := &domain.ContactSubmission{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   &subject,
		Message:   req.Message,
		IPAddress: ip,
	}

	if err := h.contactRepo.Create(r.Context(), submission); err != nil {
		log.Printf("[Contact] Не удалось сохранить обращение: %v", err)
		http.Error(w, "Failed to submit message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": contactThankYouMsg,
	})
}

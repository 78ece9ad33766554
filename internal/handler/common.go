package handler

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"

	"imgify/internal/domain"
)

// rejectedResponse возвращается при отказе по лимитам вместе с 429
type rejectedResponse struct {
	Error  string            `json:"error"`
	Limits domain.LimitsInfo `json:"limits"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] Не удалось записать ответ: %v", err)
	}
}

// clientIP достает адрес клиента из запроса. За прокси берется первый
// адрес из X-Forwarded-For.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// formatFromFilename возвращает расширение файла без точки
func formatFromFilename(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

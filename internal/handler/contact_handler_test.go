package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postContact(t *testing.T, h *ContactHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest("POST", "/api/contact", strings.NewReader(body))
	r.RemoteAddr = "203.0.113.1:54321"
	w := httptest.NewRecorder()

	h.Submit(w, r)
	return w
}

func TestContactSubmit_HoneypotLooksLikeSuccess(t *testing.T) {
	h := NewContactHandler(nil)

	// Заполненная приманка отбрасывает отправку до обращения к базе,
	// но ответ неотличим от успешного
	w := postContact(t, h, `{
        "name": "Bot",
        "email": "bot@example.com",
        "subject": "Spam",
        "message": "Buy now",
        "website": "https://spam.example.com"
    }`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, contactThankYouMsg, resp["message"])
}

func TestContactSubmit_MissingFields(t *testing.T) {
	h := NewContactHandler(nil)

	w := postContact(t, h, `{"name": "Alex", "email": "alex@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactSubmit_InvalidEmail(t *testing.T) {
	h := NewContactHandler(nil)

	w := postContact(t, h, `{
        "name": "Alex",
        "email": "not-an-email",
        "subject": "Hello",
        "message": "Hi there"
    }`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactSubmit_InvalidBody(t *testing.T) {
	h := NewContactHandler(nil)

	w := postContact(t, h, `{broken`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

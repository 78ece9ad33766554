package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/limits", nil)
	r.RemoteAddr = "203.0.113.1:54321"
	assert.Equal(t, "203.0.113.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", clientIP(r))

	r.Header.Set("X-Forwarded-For", " , ")
	assert.Equal(t, "203.0.113.1", clientIP(r))
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, "png", formatFromFilename("photo.PNG"))
	assert.Equal(t, "jpg", formatFromFilename("my.photo.jpg"))
	assert.Equal(t, "", formatFromFilename("noextension"))
	assert.Equal(t, "", formatFromFilename("trailing."))
}

func TestDownloadFilename(t *testing.T) {
	assert.Equal(t, "photo.webp", downloadFilename("photo.png", "webp"))
	assert.Equal(t, "archive.2024.jpg", downloadFilename("archive.2024.png", "jpg"))
	assert.Equal(t, "noextension.png", downloadFilename("noextension", "png"))
}

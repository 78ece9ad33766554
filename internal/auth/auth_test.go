package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func requestWithToken(token string) *http.Request {
	r := httptest.NewRequest("GET", "/api/limits", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func TestVerifyToken(t *testing.T) {
	Init(&Config{JWTSecret: "test-secret"})

	token := signToken(t, "test-secret", &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	userID, err := VerifyToken(requestWithToken(token))
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	Init(&Config{JWTSecret: "test-secret"})

	token := signToken(t, "other-secret", &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-42"},
	})

	_, err := VerifyToken(requestWithToken(token))
	assert.Error(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	Init(&Config{JWTSecret: "test-secret"})

	token := signToken(t, "test-secret", &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := VerifyToken(requestWithToken(token))
	assert.Error(t, err)
}

func TestUserFromRequest_GuestWithoutToken(t *testing.T) {
	Init(&Config{JWTSecret: "test-secret"})

	userID, authenticated := UserFromRequest(requestWithToken(""))
	assert.False(t, authenticated)
	assert.Empty(t, userID)
}

func TestIsAdmin(t *testing.T) {
	Init(&Config{JWTSecret: "test-secret"})

	admin := signToken(t, "test-secret", &Claims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	assert.True(t, IsAdmin(requestWithToken(admin)))

	regular := signToken(t, "test-secret", &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	assert.False(t, IsAdmin(requestWithToken(regular)))

	assert.False(t, IsAdmin(requestWithToken("")))
}

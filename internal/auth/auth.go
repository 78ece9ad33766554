package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var secret []byte

// Init сохраняет секрет для проверки токенов. Выпуском токенов
// занимается внешний сервис аутентификации.
func Init(cfg *Config) {
	secret = []byte(cfg.JWTSecret)
}

// Claims описывает полезную нагрузку токена
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// VerifyToken проверяет токен из заголовка Authorization и возвращает
// идентификатор пользователя
func VerifyToken(r *http.Request) (string, error) {
	claims, err := parseClaims(r)
	if err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return claims.Subject, nil
}

// UserFromRequest возвращает идентификатор пользователя, если запрос
// пришел с валидным токеном. Отсутствие или невалидность токена
// означает гостя, это не ошибка.
func UserFromRequest(r *http.Request) (string, bool) {
	userID, err := VerifyToken(r)
	if err != nil {
		return "", false
	}
	return userID, true
}

// IsAdmin проверяет, что запрос пришел от администратора
func IsAdmin(r *http.Request) bool {
	claims, err := parseClaims(r)
	if err != nil {
		return false
	}
	return claims.Admin
}

func parseClaims(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("no authorization header")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, fmt.Errorf("authorization header is not a bearer token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

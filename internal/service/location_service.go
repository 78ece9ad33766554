package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	locationAPIBase  = "https://ipapi.co"
	locationCacheTTL = 24 * time.Hour
	locationTimeout  = 2 * time.Second
)

// LocationService определяет страну по IP-адресу через ipapi.co.
// Ответы кешируются в Redis на сутки, чтобы не упираться в лимиты API.
type LocationService struct {
	redis      *redis.Client
	httpClient *http.Client
}

func NewLocationService(redisClient *redis.Client) *LocationService {
	return &LocationService{
		redis: redisClient,
		httpClient: &http.Client{
			Timeout: locationTimeout,
		},
	}
}

// CountryFromIP возвращает название страны для IP-адреса.
// Локальные и приватные адреса не отправляются во внешний API.
func (s *LocationService) CountryFromIP(ctx context.Context, ipAddress string) string {
	if isPrivateIP(ipAddress) {
		return "Local"
	}

	cacheKey := fmt.Sprintf("ip_country_%s", ipAddress)

	cached, err := s.redis.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		return cached
	}
	if err != nil && err != redis.Nil {
		log.Printf("[Location] Ошибка чтения кеша для %s: %v", ipAddress, err)
	}

	country := s.lookupCountry(ctx, ipAddress)

	if err := s.redis.Set(ctx, cacheKey, country, locationCacheTTL).Err(); err != nil {
		log.Printf("[Location] Не удалось закешировать страну для %s: %v", ipAddress, err)
	}

	return country
}

func (s *LocationService) lookupCountry(ctx context.Context, ipAddress string) string {
	url := fmt.Sprintf("%s/%s/country_name/", locationAPIBase, ipAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "Unknown"
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[Location] Не удалось получить страну для %s: %v", ipAddress, err)
		return "Unknown"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "Unknown"
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "Unknown"
	}

	country := strings.TrimSpace(string(body))
	if country == "" {
		return "Unknown"
	}

	return country
}

// isPrivateIP проверяет, является ли адрес локальным или приватным.
// Некорректный адрес тоже считается локальным: наружу он не уйдет.
func isPrivateIP(ipAddress string) bool {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return true
	}

	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

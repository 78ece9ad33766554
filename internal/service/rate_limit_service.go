package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"imgify/internal/config"
	"imgify/internal/domain"
)

// Ошибки контракта вызывающей стороны. Это программные ошибки,
// наверху они должны превращаться в 5xx, а не в 429.
var (
	ErrEmptyIPAddress    = errors.New("ip address must not be empty")
	ErrInvalidImageCount = errors.New("image count must be at least 1")
)

// RateLimitStore определяет узкий интерфейс хранилища счетчиков.
// Сервис не знает, что за ним стоит Postgres.
type RateLimitStore interface {
	GetOrCreate(ctx context.Context, ipAddress string, today time.Time) (*domain.RateLimit, error)
	Get(ctx context.Context, ipAddress string) (*domain.RateLimit, error)
	ResetDaily(ctx context.Context, ipAddress string, today time.Time) error
	IncrementCount(ctx context.Context, ipAddress string, count, dailyLimit int) (bool, error)
}

// RateLimitService решает, можно ли обработать пакет из N изображений
// для данного IP-адреса, и ведет учет потребления. Проверка и инкремент
// разнесены: счетчик растет только после фактической обработки.
type RateLimitService struct {
	store  RateLimitStore
	limits config.LimitsConfig
	now    func() time.Time
}

func NewRateLimitService(store RateLimitStore, limits config.LimitsConfig) *RateLimitService {
	return &RateLimitService{
		store:  store,
		limits: limits,
		now:    time.Now,
	}
}

// ResolvePolicy возвращает тариф по признаку аутентификации
func (s *RateLimitService) ResolvePolicy(authenticated bool) domain.Policy {
	if authenticated {
		return domain.Policy{
			UserType:   domain.UserTypeRegistered,
			BatchLimit: s.limits.UserBatchLimit,
			DailyLimit: s.limits.UserDailyLimit,
		}
	}

	return domain.Policy{
		UserType:   domain.UserTypeGuest,
		BatchLimit: s.limits.GuestBatchLimit,
		DailyLimit: s.limits.GuestDailyLimit,
	}
}

// CheckLimit проверяет, укладывается ли пакет из imageCount изображений
// в лимиты тарифа. Счетчик при проверке не меняется: фиксация выполняется
// отдельным вызовом IncrementCount после обработки. Смена дня
// определяется лениво при первом обращении, фоновых задач нет.
func (s *RateLimitService) CheckLimit(ctx context.Context, ipAddress string, policy domain.Policy, imageCount int) (*domain.LimitDecision, error) {
	if ipAddress == "" {
		return nil, ErrEmptyIPAddress
	}
	if imageCount < 1 {
		return nil, ErrInvalidImageCount
	}

	today := dateOnly(s.now())

	limit, err := s.store.GetOrCreate(ctx, ipAddress, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load rate limit: %w", err)
	}

	// Сбрасываем дневной счетчик, если наступил новый день.
	// Сброс выполняется до проверки лимитов.
	if dateOnly(limit.LastResetDate).Before(today) {
		if err := s.store.ResetDaily(ctx, ipAddress, today); err != nil {
			return nil, fmt.Errorf("failed to reset daily count: %w", err)
		}
		limit.DailyCount = 0
		limit.CurrentBatchCount = 0
		limit.LastResetDate = today
	}

	// Проверка лимита пакета выполняется раньше дневного: слишком
	// большой пакет отклоняется даже при пустом дневном счетчике
	if imageCount > policy.BatchLimit {
		return &domain.LimitDecision{
			Allowed: false,
			Reason:  domain.ReasonBatchLimitExceeded,
			Message: fmt.Sprintf("Batch limit exceeded. Maximum %d images per batch.", policy.BatchLimit),
			Limits:  snapshotOf(limit, policy),
		}, nil
	}

	// Ровно до лимита можно, отклоняется только строгое превышение
	if limit.DailyCount+imageCount > policy.DailyLimit {
		remaining := policy.DailyLimit - limit.DailyCount
		if remaining < 0 {
			remaining = 0
		}
		return &domain.LimitDecision{
			Allowed: false,
			Reason:  domain.ReasonDailyLimitExceeded,
			Message: fmt.Sprintf("Daily limit exceeded. You have %d images remaining today.", remaining),
			Limits:  snapshotOf(limit, policy),
		}, nil
	}

	return &domain.LimitDecision{
		Allowed: true,
		Limits:  snapshotOf(limit, policy),
	}, nil
}

// IncrementCount фиксирует потребление count изображений после успешной
// обработки. Если счетчика нет (вызов без предшествующего CheckLimit)
// или прибавление превысило бы дневной лимит, вызов ничего не меняет и
// только пишет предупреждение в лог: хранилище применяет инкремент
// атомарно, вместе с проверкой остатка.
func (s *RateLimitService) IncrementCount(ctx context.Context, ipAddress string, policy domain.Policy, count int) error {
	if ipAddress == "" {
		return ErrEmptyIPAddress
	}
	if count < 1 {
		return ErrInvalidImageCount
	}

	applied, err := s.store.IncrementCount(ctx, ipAddress, count, policy.DailyLimit)
	if err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}

	if !applied {
		log.Printf("[RateLimit] Инкремент на %d не применен для %s: счетчик отсутствует или дневной лимит исчерпан", count, ipAddress)
	}

	return nil
}

// GetRemainingLimit возвращает снимок оставшихся лимитов. Для нового дня
// применяет тот же ленивый сброс, что и CheckLimit; в снимке свежего дня
// поле daily_used отсутствует.
func (s *RateLimitService) GetRemainingLimit(ctx context.Context, ipAddress string, policy domain.Policy) (domain.LimitsInfo, error) {
	if ipAddress == "" {
		return domain.LimitsInfo{}, ErrEmptyIPAddress
	}

	today := dateOnly(s.now())

	limit, err := s.store.Get(ctx, ipAddress)
	if err != nil {
		return domain.LimitsInfo{}, fmt.Errorf("failed to load rate limit: %w", err)
	}

	if limit == nil || dateOnly(limit.LastResetDate).Before(today) {
		if limit != nil {
			if err := s.store.ResetDaily(ctx, ipAddress, today); err != nil {
				return domain.LimitsInfo{}, fmt.Errorf("failed to reset daily count: %w", err)
			}
		}
		return domain.LimitsInfo{
			DailyRemaining: policy.DailyLimit,
			DailyLimit:     policy.DailyLimit,
			BatchLimit:     policy.BatchLimit,
			UserType:       policy.UserType,
		}, nil
	}

	return snapshotOf(limit, policy), nil
}

// snapshotOf собирает снимок лимитов из текущего счетчика и тарифа.
// Лимиты не хранятся на счетчике: один и тот же IP до и после входа
// оценивается по лимитам своего тарифа при общем daily_count.
func snapshotOf(limit *domain.RateLimit, policy domain.Policy) domain.LimitsInfo {
	remaining := policy.DailyLimit - limit.DailyCount
	if remaining < 0 {
		remaining = 0
	}

	return domain.LimitsInfo{
		DailyRemaining: remaining,
		DailyLimit:     policy.DailyLimit,
		BatchLimit:     policy.BatchLimit,
		DailyUsed:      limit.DailyCount,
		UserType:       policy.UserType,
	}
}

// dateOnly отбрасывает время, оставляя календарную дату в UTC.
// Граница дня фиксирована в UTC на все время работы сервиса.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

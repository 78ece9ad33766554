package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgify/internal/config"
	"imgify/internal/domain"
)

var testLimits = config.LimitsConfig{
	GuestBatchLimit: 5,
	GuestDailyLimit: 20,
	UserBatchLimit:  50,
	UserDailyLimit:  500,
}

// fakeLimitStore повторяет контракт хранилища счетчиков в памяти
type fakeLimitStore struct {
	rows map[string]*domain.RateLimit
}

func newFakeLimitStore() *fakeLimitStore {
	return &fakeLimitStore{rows: make(map[string]*domain.RateLimit)}
}

func (s *fakeLimitStore) GetOrCreate(ctx context.Context, ipAddress string, today time.Time) (*domain.RateLimit, error) {
	if row, ok := s.rows[ipAddress]; ok {
		copied := *row
		return &copied, nil
	}

	row := &domain.RateLimit{
		ID:            int64(len(s.rows) + 1),
		IPAddress:     ipAddress,
		LastResetDate: today,
	}
	s.rows[ipAddress] = row

	copied := *row
	return &copied, nil
}

func (s *fakeLimitStore) Get(ctx context.Context, ipAddress string) (*domain.RateLimit, error) {
	row, ok := s.rows[ipAddress]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (s *fakeLimitStore) ResetDaily(ctx context.Context, ipAddress string, today time.Time) error {
	row, ok := s.rows[ipAddress]
	if !ok {
		return nil
	}
	if row.LastResetDate.Before(today) {
		row.DailyCount = 0
		row.CurrentBatchCount = 0
		row.LastResetDate = today
	}
	return nil
}

func (s *fakeLimitStore) IncrementCount(ctx context.Context, ipAddress string, count, dailyLimit int) (bool, error) {
	row, ok := s.rows[ipAddress]
	if !ok {
		return false, nil
	}
	if row.DailyCount+count > dailyLimit {
		return false, nil
	}
	row.DailyCount += count
	row.CurrentBatchCount = count
	return true, nil
}

func newTestService(store RateLimitStore) *RateLimitService {
	svc := NewRateLimitService(store, testLimits)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestResolvePolicy(t *testing.T) {
	svc := newTestService(newFakeLimitStore())

	guest := svc.ResolvePolicy(false)
	assert.Equal(t, domain.UserTypeGuest, guest.UserType)
	assert.Equal(t, 5, guest.BatchLimit)
	assert.Equal(t, 20, guest.DailyLimit)

	registered := svc.ResolvePolicy(true)
	assert.Equal(t, domain.UserTypeRegistered, registered.UserType)
	assert.Equal(t, 50, registered.BatchLimit)
	assert.Equal(t, 500, registered.DailyLimit)
}

func TestCheckLimit_BatchLimitRejectedFirst(t *testing.T) {
	svc := newTestService(newFakeLimitStore())
	policy := svc.ResolvePolicy(false)

	// Пакет больше лимита отклоняется даже при пустом дневном счетчике
	decision, err := svc.CheckLimit(context.Background(), "203.0.113.1", policy, 6)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.ReasonBatchLimitExceeded, decision.Reason)
	assert.Equal(t, "Batch limit exceeded. Maximum 5 images per batch.", decision.Message)
	assert.Equal(t, 20, decision.Limits.DailyRemaining)
}

func TestCheckLimit_ExactlyAtDailyLimitAllowed(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)
	ctx := context.Background()

	store.rows["203.0.113.1"] = &domain.RateLimit{
		IPAddress:     "203.0.113.1",
		DailyCount:    15,
		LastResetDate: dateOnly(svc.now()),
	}

	// 15 + 5 = 20, ровно до лимита можно
	decision, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 5)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 5, decision.Limits.DailyRemaining)
	assert.Equal(t, 15, decision.Limits.DailyUsed)
}

func TestCheckLimit_DailyLimitExceeded(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)

	store.rows["203.0.113.1"] = &domain.RateLimit{
		IPAddress:     "203.0.113.1",
		DailyCount:    18,
		LastResetDate: dateOnly(svc.now()),
	}

	decision, err := svc.CheckLimit(context.Background(), "203.0.113.1", policy, 3)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.ReasonDailyLimitExceeded, decision.Reason)
	assert.Equal(t, "Daily limit exceeded. You have 2 images remaining today.", decision.Message)
}

func TestCheckLimit_CheckDoesNotConsume(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		decision, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 5)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 20, decision.Limits.DailyRemaining)
	}

	assert.Equal(t, 0, store.rows["203.0.113.1"].DailyCount)
}

func TestIncrementCount_ConsumesAfterProcessing(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)
	ctx := context.Background()

	_, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 5)
	require.NoError(t, err)

	require.NoError(t, svc.IncrementCount(ctx, "203.0.113.1", policy, 5))
	assert.Equal(t, 5, store.rows["203.0.113.1"].DailyCount)

	decision, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 5)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 15, decision.Limits.DailyRemaining)
	assert.Equal(t, 5, decision.Limits.DailyUsed)
}

func TestIncrementCount_MissingCounterIsSilent(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)

	// Вызов без предшествующей проверки ничего не создает и не падает
	err := svc.IncrementCount(context.Background(), "203.0.113.9", policy, 3)
	require.NoError(t, err)
	assert.Empty(t, store.rows)
}

func TestIncrementCount_NeverOvershootsDailyLimit(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)

	store.rows["203.0.113.1"] = &domain.RateLimit{
		IPAddress:     "203.0.113.1",
		DailyCount:    18,
		LastResetDate: dateOnly(svc.now()),
	}

	err := svc.IncrementCount(context.Background(), "203.0.113.1", policy, 5)
	require.NoError(t, err)

	// Инкремент сверх лимита отбрасывается целиком
	assert.Equal(t, 18, store.rows["203.0.113.1"].DailyCount)
}

func TestCheckLimit_DayRolloverRestoresLimit(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)
	ctx := context.Background()

	_, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 5)
	require.NoError(t, err)
	require.NoError(t, svc.IncrementCount(ctx, "203.0.113.1", policy, 20))

	decision, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 1)
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	// Наступил следующий день
	svc.now = func() time.Time {
		return time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)
	}

	decision, err = svc.CheckLimit(ctx, "203.0.113.1", policy, 5)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 20, decision.Limits.DailyRemaining)
	assert.Zero(t, decision.Limits.DailyUsed)
	assert.Equal(t, 0, store.rows["203.0.113.1"].DailyCount)
}

func TestCheckLimit_CountersIsolatedPerIP(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)
	ctx := context.Background()

	_, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 5)
	require.NoError(t, err)
	require.NoError(t, svc.IncrementCount(ctx, "203.0.113.1", policy, 20))

	decision, err := svc.CheckLimit(ctx, "203.0.113.2", policy, 5)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 20, decision.Limits.DailyRemaining)
}

func TestCheckLimit_SharedCounterAcrossTiers(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	ctx := context.Background()

	guest := svc.ResolvePolicy(false)
	registered := svc.ResolvePolicy(true)

	_, err := svc.CheckLimit(ctx, "203.0.113.1", guest, 5)
	require.NoError(t, err)
	require.NoError(t, svc.IncrementCount(ctx, "203.0.113.1", guest, 20))

	// Гостевой лимит исчерпан
	decision, err := svc.CheckLimit(ctx, "203.0.113.1", guest, 1)
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	// После входа тот же счетчик оценивается по лимитам registered
	decision, err = svc.CheckLimit(ctx, "203.0.113.1", registered, 10)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 480, decision.Limits.DailyRemaining)
	assert.Equal(t, 20, decision.Limits.DailyUsed)
	assert.Equal(t, domain.UserTypeRegistered, decision.Limits.UserType)
}

func TestCheckLimit_RegisteredDailyBoundary(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	registered := svc.ResolvePolicy(true)

	store.rows["203.0.113.1"] = &domain.RateLimit{
		IPAddress:     "203.0.113.1",
		DailyCount:    480,
		LastResetDate: dateOnly(svc.now()),
	}

	decision, err := svc.CheckLimit(context.Background(), "203.0.113.1", registered, 21)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, domain.ReasonDailyLimitExceeded, decision.Reason)
	assert.Equal(t, "Daily limit exceeded. You have 20 images remaining today.", decision.Message)

	decision, err = svc.CheckLimit(context.Background(), "203.0.113.1", registered, 20)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCheckLimit_InvalidInput(t *testing.T) {
	svc := newTestService(newFakeLimitStore())
	policy := svc.ResolvePolicy(false)
	ctx := context.Background()

	_, err := svc.CheckLimit(ctx, "", policy, 1)
	assert.ErrorIs(t, err, ErrEmptyIPAddress)

	_, err = svc.CheckLimit(ctx, "203.0.113.1", policy, 0)
	assert.ErrorIs(t, err, ErrInvalidImageCount)

	err = svc.IncrementCount(ctx, "", policy, 1)
	assert.ErrorIs(t, err, ErrEmptyIPAddress)

	err = svc.IncrementCount(ctx, "203.0.113.1", policy, -1)
	assert.ErrorIs(t, err, ErrInvalidImageCount)

	_, err = svc.GetRemainingLimit(ctx, "", policy)
	assert.ErrorIs(t, err, ErrEmptyIPAddress)
}

func TestGetRemainingLimit_UnknownIPReturnsFullLimits(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)

	limits, err := svc.GetRemainingLimit(context.Background(), "203.0.113.1", policy)
	require.NoError(t, err)

	assert.Equal(t, 20, limits.DailyRemaining)
	assert.Equal(t, 20, limits.DailyLimit)
	assert.Equal(t, 5, limits.BatchLimit)
	assert.Zero(t, limits.DailyUsed)
	assert.Equal(t, domain.UserTypeGuest, limits.UserType)

	// Чтение лимитов не создает счетчик
	assert.Empty(t, store.rows)
}

func TestGetRemainingLimit_Idempotent(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)
	ctx := context.Background()

	_, err := svc.CheckLimit(ctx, "203.0.113.1", policy, 3)
	require.NoError(t, err)
	require.NoError(t, svc.IncrementCount(ctx, "203.0.113.1", policy, 3))

	first, err := svc.GetRemainingLimit(ctx, "203.0.113.1", policy)
	require.NoError(t, err)
	second, err := svc.GetRemainingLimit(ctx, "203.0.113.1", policy)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 17, first.DailyRemaining)
	assert.Equal(t, 3, first.DailyUsed)
}

func TestGetRemainingLimit_RolloverOnRead(t *testing.T) {
	store := newFakeLimitStore()
	svc := newTestService(store)
	policy := svc.ResolvePolicy(false)

	store.rows["203.0.113.1"] = &domain.RateLimit{
		IPAddress:     "203.0.113.1",
		DailyCount:    20,
		LastResetDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	}

	limits, err := svc.GetRemainingLimit(context.Background(), "203.0.113.1", policy)
	require.NoError(t, err)

	assert.Equal(t, 20, limits.DailyRemaining)
	assert.Zero(t, limits.DailyUsed)
	assert.Equal(t, 0, store.rows["203.0.113.1"].DailyCount)
}

func TestDateOnly(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)

	// 01:30 по Москве это еще 22:30 предыдущего дня в UTC
	local := time.Date(2026, 3, 10, 1, 30, 0, 0, moscow)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), dateOnly(local))

	utc := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), dateOnly(utc))
}

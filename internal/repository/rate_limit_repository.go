package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"imgify/internal/domain"
)

type RateLimitRepository struct {
	db *sqlx.DB
}

func NewRateLimitRepository(db *sqlx.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// GetOrCreate возвращает счетчик для IP-адреса, лениво создавая его
// при первом обращении с нулевыми значениями.
func (r *RateLimitRepository) GetOrCreate(ctx context.Context, ipAddress string, today time.Time) (*domain.RateLimit, error) {
	var limit domain.RateLimit

	err := r.db.GetContext(ctx, &limit,
		`SELECT * FROM rate_limits WHERE ip_address = $1`,
		ipAddress)

	if err != nil {
		// Если счетчика нет, создаем новый с нулевыми значениями
		if err == sql.ErrNoRows {
			limit = domain.RateLimit{
				IPAddress:     ipAddress,
				DailyCount:    0,
				LastResetDate: today,
			}

			err = r.create(ctx, &limit)
			if err != nil {
				return nil, fmt.Errorf("failed to create rate limit: %w", err)
			}
			return &limit, nil
		}
		return nil, fmt.Errorf("failed to get rate limit: %w", err)
	}

	return &limit, nil
}

// Get возвращает счетчик для IP-адреса или nil, если его еще нет
func (r *RateLimitRepository) Get(ctx context.Context, ipAddress string) (*domain.RateLimit, error) {
	var limit domain.RateLimit

	err := r.db.GetContext(ctx, &limit,
		`SELECT * FROM rate_limits WHERE ip_address = $1`,
		ipAddress)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rate limit: %w", err)
	}

	return &limit, nil
}

func (r *RateLimitRepository) create(ctx context.Context, limit *domain.RateLimit) error {
	query := `
        INSERT INTO rate_limits (ip_address, daily_count, current_batch_count, last_reset_date)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (ip_address) DO NOTHING
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		limit.IPAddress,
		limit.DailyCount,
		limit.CurrentBatchCount,
		limit.LastResetDate,
	).Scan(&limit.ID, &limit.CreatedAt, &limit.UpdatedAt)

	// Параллельный запрос мог создать счетчик первым, перечитываем строку
	if err == sql.ErrNoRows {
		return r.db.GetContext(ctx, limit,
			`SELECT * FROM rate_limits WHERE ip_address = $1`,
			limit.IPAddress)
	}

	return err
}

// ResetDaily обнуляет дневной счетчик при первом обращении в новый день.
// Условие last_reset_date < $2 гарантирует, что сброс применится не
// больше одного раза в день даже при параллельных запросах.
func (r *RateLimitRepository) ResetDaily(ctx context.Context, ipAddress string, today time.Time) error {
	query := `
        UPDATE rate_limits
        SET daily_count = 0,
            current_batch_count = 0,
            last_reset_date = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE ip_address = $1
        AND last_reset_date < $2`

	_, err := r.db.ExecContext(ctx, query, ipAddress, today)
	if err != nil {
		return fmt.Errorf("failed to reset daily count: %w", err)
	}

	return nil
}

// IncrementCount атомарно прибавляет count к дневному счетчику, но только
// если итог не превысит dailyLimit. Возвращает false, если строки нет или
// прибавление вышло бы за лимит: проверка и инкремент выполняются одним
// UPDATE, чтобы два параллельных запроса не переполнили счетчик.
func (r *RateLimitRepository) IncrementCount(ctx context.Context, ipAddress string, count, dailyLimit int) (bool, error) {
	query := `
        UPDATE rate_limits
        SET daily_count = daily_count + $2,
            current_batch_count = $2,
            updated_at = CURRENT_TIMESTAMP
        WHERE ip_address = $1
        AND daily_count + $2 <= $3`

	result, err := r.db.ExecContext(ctx, query, ipAddress, count, dailyLimit)
	if err != nil {
		return false, fmt.Errorf("failed to increment count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// DeleteStale удаляет счетчики, не обновлявшиеся с указанного момента
func (r *RateLimitRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM rate_limits WHERE updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale rate limits: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

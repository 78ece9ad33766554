package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"imgify/internal/domain"
)

type ActivityLogRepository struct {
	db *sqlx.DB
}

func NewActivityLogRepository(db *sqlx.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	query := `
        INSERT INTO activity_logs (
            user_id, ip_address, action, entity_type,
            description, level, status, metadata
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		entry.UserID,
		entry.IPAddress,
		entry.Action,
		entry.EntityType,
		entry.Description,
		entry.Level,
		entry.Status,
		entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// Recent возвращает последние записи журнала
func (r *ActivityLogRepository) Recent(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	var entries []domain.ActivityLog

	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM activity_logs ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity logs: %w", err)
	}

	return entries, nil
}

// DeleteOlderThan удаляет записи журнала старше указанного момента
func (r *ActivityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM activity_logs WHERE created_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old activity logs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

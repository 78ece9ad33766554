package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"imgify/internal/domain"
)

type ImageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, image *domain.Image) error {
	query := `
        INSERT INTO images (
            user_id, ip_address, country, original_filename,
            original_format, processed_format, original_size, processed_size,
            storage_key, operation, processing_time, success, error_message, expires_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		image.UserID,
		image.IPAddress,
		image.Country,
		image.OriginalFilename,
		image.OriginalFormat,
		image.ProcessedFormat,
		image.OriginalSize,
		image.ProcessedSize,
		image.StorageKey,
		image.Operation,
		image.ProcessingTime,
		image.Success,
		image.ErrorMessage,
		image.ExpiresAt,
	).Scan(&image.ID, &image.CreatedAt)
}

func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.Image, error) {
	var image domain.Image

	err := r.db.GetContext(ctx, &image,
		`SELECT * FROM images WHERE id = $1`,
		id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}

	return &image, nil
}

// DeleteOlderThan удаляет устаревшие записи и возвращает их,
// чтобы вызывающая сторона могла убрать файлы из S3
func (r *ImageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Image, error) {
	var deleted []domain.Image

	query := `
        DELETE FROM images
        WHERE created_at < $1
        RETURNING *`

	err := r.db.SelectContext(ctx, &deleted, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete old images: %w", err)
	}

	return deleted, nil
}

// Stats собирает сводную статистику обработок начиная с указанной даты
func (r *ImageRepository) Stats(ctx context.Context, since time.Time) (*domain.ImageStats, error) {
	var stats domain.ImageStats

	query := `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE operation = 'optimize'),
            COUNT(*) FILTER (WHERE operation = 'convert'),
            COUNT(*) FILTER (WHERE operation = 'background_removal'),
            COUNT(*) FILTER (WHERE operation = 'background_removal' AND success),
            COUNT(*) FILTER (WHERE operation = 'background_removal' AND NOT success),
            COALESCE(ROUND(AVG(processing_time) FILTER (WHERE operation = 'background_removal')::numeric, 2), 0),
            COALESCE(SUM(original_size - processed_size) FILTER (WHERE processed_size > 0), 0)
        FROM images
        WHERE created_at >= $1`

	err := r.db.QueryRowContext(ctx, query, since).Scan(
		&stats.TotalImages,
		&stats.TotalOptimizations,
		&stats.TotalConversions,
		&stats.TotalBackgroundRemovals,
		&stats.SuccessfulRemovals,
		&stats.FailedRemovals,
		&stats.AvgProcessingTime,
		&stats.TotalStorageSaved,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get image stats: %w", err)
	}

	return &stats, nil
}

// CountDistinctVisitors считает уникальные IP-адреса за период
func (r *ImageRepository) CountDistinctVisitors(ctx context.Context, since time.Time) (int64, error) {
	var count int64

	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(DISTINCT ip_address) FROM images WHERE created_at >= $1`,
		since)
	if err != nil {
		return 0, fmt.Errorf("failed to count visitors: %w", err)
	}

	return count, nil
}

// DailyBreakdown возвращает разбивку обработок по дням
func (r *ImageRepository) DailyBreakdown(ctx context.Context, since time.Time) ([]domain.DailyImageStats, error) {
	var breakdown []domain.DailyImageStats

	query := `
        SELECT
            TO_CHAR(created_at::date, 'YYYY-MM-DD') AS date,
            COUNT(*) AS count,
            COUNT(*) FILTER (WHERE operation = 'optimize') AS optimizations,
            COUNT(*) FILTER (WHERE operation = 'convert') AS conversions,
            COUNT(*) FILTER (WHERE operation = 'background_removal') AS background_removals
        FROM images
        WHERE created_at >= $1
        GROUP BY created_at::date
        ORDER BY created_at::date`

	err := r.db.SelectContext(ctx, &breakdown, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily breakdown: %w", err)
	}

	return breakdown, nil
}

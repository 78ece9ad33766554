package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"imgify/internal/domain"
)

type PageViewRepository struct {
	db *sqlx.DB
}

func NewPageViewRepository(db *sqlx.DB) *PageViewRepository {
	return &PageViewRepository{db: db}
}

func (r *PageViewRepository) Create(ctx context.Context, view *domain.PageView) error {
	query := `
        INSERT INTO page_views (
            user_id, session_id, ip_address, page_path,
            referrer, user_agent, entry_time
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		view.UserID,
		view.SessionID,
		view.IPAddress,
		view.PagePath,
		view.Referrer,
		view.UserAgent,
		view.EntryTime,
	).Scan(&view.ID, &view.CreatedAt)
}

// CloseView проставляет время выхода последнему открытому просмотру
// страницы в сессии. Возвращает false, если открытого просмотра нет.
func (r *PageViewRepository) CloseView(ctx context.Context, sessionID, pagePath string, exitTime time.Time, duration *int) (bool, error) {
	query := `
        UPDATE page_views
        SET exit_time = $3,
            duration = $4
        WHERE id = (
            SELECT id FROM page_views
            WHERE session_id = $1
            AND page_path = $2
            AND exit_time IS NULL
            ORDER BY entry_time DESC
            LIMIT 1
        )`

	result, err := r.db.ExecContext(ctx, query, sessionID, pagePath, exitTime, duration)
	if err != nil {
		return false, fmt.Errorf("failed to close page view: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// TrafficSummary собирает сводку посещаемости за период
func (r *PageViewRepository) TrafficSummary(ctx context.Context, since time.Time) (*domain.TrafficSummary, error) {
	var summary domain.TrafficSummary

	query := `
        SELECT
            COUNT(*) AS page_views,
            COUNT(DISTINCT session_id) AS unique_visitors,
            COALESCE(AVG(duration) FILTER (WHERE duration IS NOT NULL), 0) AS avg_duration,
            COUNT(DISTINCT session_id) AS total_sessions
        FROM page_views
        WHERE created_at >= $1`

	err := r.db.GetContext(ctx, &summary, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get traffic summary: %w", err)
	}

	return &summary, nil
}

// Trends возвращает просмотры и уникальных посетителей по дням
func (r *PageViewRepository) Trends(ctx context.Context, since time.Time) ([]domain.PageViewTrend, error) {
	var trends []domain.PageViewTrend

	query := `
        SELECT
            TO_CHAR(created_at::date, 'YYYY-MM-DD') AS date,
            COUNT(*) AS views,
            COUNT(DISTINCT session_id) AS unique_visitors
        FROM page_views
        WHERE created_at >= $1
        GROUP BY created_at::date
        ORDER BY created_at::date`

	err := r.db.SelectContext(ctx, &trends, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get page view trends: %w", err)
	}

	return trends, nil
}

// TopReferrers возвращает самые частые источники переходов
func (r *PageViewRepository) TopReferrers(ctx context.Context, since time.Time, limit int) ([]domain.Referrer, error) {
	var referrers []domain.Referrer

	query := `
        SELECT referrer, COUNT(*) AS visits
        FROM page_views
        WHERE created_at >= $1
        AND referrer IS NOT NULL
        AND referrer != ''
        GROUP BY referrer
        ORDER BY visits DESC
        LIMIT $2`

	err := r.db.SelectContext(ctx, &referrers, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}

	return referrers, nil
}

// BounceRate считает долю сессий с единственным просмотром, в процентах
func (r *PageViewRepository) BounceRate(ctx context.Context, since time.Time) (float64, error) {
	var rate float64

	query := `
        WITH sessions AS (
            SELECT session_id, COUNT(*) AS page_count
            FROM page_views
            WHERE created_at >= $1
            GROUP BY session_id
        )
        SELECT COALESCE(
            ROUND(COUNT(*) FILTER (WHERE page_count = 1) * 100.0 / NULLIF(COUNT(*), 0), 2),
            0
        )
        FROM sessions`

	err := r.db.GetContext(ctx, &rate, query, since)
	if err != nil {
		return 0, fmt.Errorf("failed to get bounce rate: %w", err)
	}

	return rate, nil
}

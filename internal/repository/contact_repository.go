package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"imgify/internal/domain"
)

type ContactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, submission *domain.ContactSubmission) error {
	query := `
        INSERT INTO contact_submissions (name, email, subject, message, ip_address)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		submission.Name,
		submission.Email,
		submission.Subject,
		submission.Message,
		submission.IPAddress,
	).Scan(&submission.ID, &submission.CreatedAt)
}

// CountRecentByIP считает обращения с одного IP начиная с указанного
// момента. Используется для защиты формы от спама.
func (r *ContactRepository) CountRecentByIP(ctx context.Context, ipAddress string, since time.Time) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM contact_submissions WHERE ip_address = $1 AND created_at >= $2`,
		ipAddress, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent submissions: %w", err)
	}

	return count, nil
}

func (r *ContactRepository) List(ctx context.Context, limit, offset int) ([]domain.ContactSubmission, error) {
	var submissions []domain.ContactSubmission

	err := r.db.SelectContext(ctx, &submissions,
		`SELECT * FROM contact_submissions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact submissions: %w", err)
	}

	return submissions, nil
}

func (r *ContactRepository) MarkReviewed(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE contact_submissions SET is_reviewed = TRUE WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("failed to mark submission reviewed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("contact submission not found: %d", id)
	}

	return nil
}

package domain

import "time"

// ContactSubmission представляет обращение через форму обратной связи
type ContactSubmission struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Subject    *string   `json:"subject,omitempty" db:"subject"`
	Message    string    `json:"message" db:"message"`
	IPAddress  string    `json:"ip_address" db:"ip_address"`
	IsReviewed bool      `json:"reviewed" db:"is_reviewed"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

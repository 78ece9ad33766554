package domain

import "time"

// PageView представляет просмотр страницы в рамках сессии
type PageView struct {
	ID        int64      `json:"id" db:"id"`
	UserID    *string    `json:"user_id,omitempty" db:"user_id"`
	SessionID string     `json:"session_id" db:"session_id"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	PagePath  string     `json:"page_path" db:"page_path"`
	Referrer  *string    `json:"referrer,omitempty" db:"referrer"`
	UserAgent *string    `json:"user_agent,omitempty" db:"user_agent"`
	EntryTime time.Time  `json:"entry_time" db:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty" db:"exit_time"`
	Duration  *int       `json:"duration,omitempty" db:"duration"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// TrafficSummary содержит сводку посещаемости за период
type TrafficSummary struct {
	PageViews          int64   `json:"page_views_today" db:"page_views"`
	UniqueVisitors     int64   `json:"unique_visitors_today" db:"unique_visitors"`
	AvgSessionDuration float64 `json:"avg_session_duration" db:"avg_duration"`
	TotalSessions      int64   `json:"total_sessions" db:"total_sessions"`
}

// PageViewTrend содержит просмотры и уникальных посетителей по дням
type PageViewTrend struct {
	Date           string `json:"date" db:"date"`
	Views          int64  `json:"views" db:"views"`
	UniqueVisitors int64  `json:"unique_visitors" db:"unique_visitors"`
}

// Referrer представляет источник переходов
type Referrer struct {
	Referrer string `json:"referrer" db:"referrer"`
	Visits   int64  `json:"visits" db:"visits"`
}

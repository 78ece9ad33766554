package domain

import (
	"encoding/json"
	"time"
)

// ActivityLog представляет запись журнала действий
type ActivityLog struct {
	ID          int64           `json:"id" db:"id"`
	UserID      *string         `json:"user_id,omitempty" db:"user_id"`
	IPAddress   string          `json:"ip_address" db:"ip_address"`
	Action      string          `json:"action" db:"action"`
	EntityType  string          `json:"entity_type" db:"entity_type"`
	Description string          `json:"description" db:"description"`
	Level       string          `json:"level" db:"level"`
	Status      string          `json:"status" db:"status"`
	Metadata    json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

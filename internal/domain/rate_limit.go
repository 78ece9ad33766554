package domain

import "time"

// RateLimit хранит счетчик использования для одного IP-адреса
type RateLimit struct {
	ID                int64     `json:"id" db:"id"`
	IPAddress         string    `json:"ip_address" db:"ip_address"`
	DailyCount        int       `json:"daily_count" db:"daily_count"`
	CurrentBatchCount int       `json:"current_batch_count" db:"current_batch_count"`
	LastResetDate     time.Time `json:"last_reset_date" db:"last_reset_date"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Тарифы пользователей
const (
	UserTypeGuest      = "guest"
	UserTypeRegistered = "registered"
)

// Policy описывает лимиты одного тарифа. Значения приходят из
// конфигурации и не меняются в течение жизни процесса.
type Policy struct {
	UserType   string
	BatchLimit int
	DailyLimit int
}

// Причины отказа при проверке лимитов
type LimitReason string

const (
	ReasonBatchLimitExceeded LimitReason = "batch_limit_exceeded"
	ReasonDailyLimitExceeded LimitReason = "daily_limit_exceeded"
)

// LimitsInfo представляет снимок оставшихся лимитов для клиента.
// Имена JSON-полей фиксированы, фронтенд разбирает их напрямую.
// daily_used отсутствует в ответе для свежего дня.
type LimitsInfo struct {
	DailyRemaining int    `json:"daily_remaining"`
	DailyLimit     int    `json:"daily_limit"`
	BatchLimit     int    `json:"batch_limit"`
	DailyUsed      int    `json:"daily_used,omitempty"`
	UserType       string `json:"user_type"`
}

// LimitDecision представляет результат проверки лимитов. Отказ
// возвращается как обычное значение, а не ошибка: превышение
// лимита штатная ситуация.
type LimitDecision struct {
	Allowed bool
	Reason  LimitReason
	Message string
	Limits  LimitsInfo
}

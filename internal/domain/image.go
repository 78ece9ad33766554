package domain

import "time"

// Операции над изображениями
const (
	OperationOptimize          = "optimize"
	OperationConvert           = "convert"
	OperationBackgroundRemoval = "background_removal"
)

// Image представляет запись об обработанном изображении. Для фонового
// удаления (обрабатывается на клиенте) StorageKey пустой.
type Image struct {
	ID               int64     `json:"id" db:"id"`
	UserID           *string   `json:"user_id,omitempty" db:"user_id"`
	IPAddress        string    `json:"ip_address" db:"ip_address"`
	Country          *string   `json:"country,omitempty" db:"country"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	OriginalFormat   string    `json:"original_format" db:"original_format"`
	ProcessedFormat  string    `json:"processed_format" db:"processed_format"`
	OriginalSize     int64     `json:"original_size" db:"original_size"`
	ProcessedSize    int64     `json:"processed_size" db:"processed_size"`
	StorageKey       *string   `json:"-" db:"storage_key"`
	Operation        string    `json:"operation" db:"operation"`
	ProcessingTime   *float64  `json:"processing_time,omitempty" db:"processing_time"`
	Success          bool      `json:"success" db:"success"`
	ErrorMessage     *string   `json:"error_message,omitempty" db:"error_message"`
	ExpiresAt        time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ImageStats содержит сводную статистику для админки
type ImageStats struct {
	TotalImages             int64   `json:"total_images"`
	DailyVisitors           int64   `json:"daily_visitors"`
	TotalOptimizations      int64   `json:"total_optimizations"`
	TotalConversions        int64   `json:"total_conversions"`
	TotalBackgroundRemovals int64   `json:"total_background_removals"`
	SuccessfulRemovals      int64   `json:"successful_background_removals"`
	FailedRemovals          int64   `json:"failed_background_removals"`
	AvgProcessingTime       float64 `json:"avg_processing_time"`
	TotalStorageSaved       int64   `json:"total_storage_saved"`
}

// DailyImageStats содержит разбивку обработок по дням
type DailyImageStats struct {
	Date               string `json:"date" db:"date"`
	Count              int64  `json:"count" db:"count"`
	Optimizations      int64  `json:"optimizations" db:"optimizations"`
	Conversions        int64  `json:"conversions" db:"conversions"`
	BackgroundRemovals int64  `json:"background_removals" db:"background_removals"`
}

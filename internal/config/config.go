package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"Server"`
	Database DatabaseConfig `mapstructure:"Database"`
	Redis    RedisConfig    `mapstructure:"Redis"`
	Limits   LimitsConfig   `mapstructure:"Limits"`
	File     FileConfig     `mapstructure:"File"`
}

type ServerConfig struct {
	Port    string `mapstructure:"Port"`
	BaseURL string `mapstructure:"BaseURL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"Host"`
	Port     string `mapstructure:"Port"`
	User     string `mapstructure:"User"`
	Password string `mapstructure:"Password"`
	Name     string `mapstructure:"Name"`
	SSLMode  string `mapstructure:"SSLMode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"Addr"`
	Password string `mapstructure:"Password"`
	DB       int    `mapstructure:"DB"`
}

// LimitsConfig содержит лимиты тарифов. Значения читаются один раз
// при старте процесса и дальше не меняются.
type LimitsConfig struct {
	GuestBatchLimit int `mapstructure:"GuestBatchLimit"`
	GuestDailyLimit int `mapstructure:"GuestDailyLimit"`
	UserBatchLimit  int `mapstructure:"UserBatchLimit"`
	UserDailyLimit  int `mapstructure:"UserDailyLimit"`
}

type FileConfig struct {
	RetentionHours    int      `mapstructure:"RetentionHours"`
	LogRetentionHours int      `mapstructure:"LogRetentionHours"`
	MaxSizeKB         int64    `mapstructure:"MaxSizeKB"`
	AllowedFormats    []string `mapstructure:"AllowedFormats"`
	OptimizeQuality   int      `mapstructure:"OptimizeQuality"`
	ConvertQuality    int      `mapstructure:"ConvertQuality"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	// Устанавливаем файл конфигурации
	v.SetConfigFile(path)

	// Привязываем переменные окружения
	v.BindEnv("Database.Host", "DATABASE_HOST")
	v.BindEnv("Database.Port", "DATABASE_PORT")
	v.BindEnv("Database.User", "DATABASE_USER")
	v.BindEnv("Database.Password", "DATABASE_PASSWORD")
	v.BindEnv("Database.Name", "DATABASE_NAME")
	v.BindEnv("Database.SSLMode", "DATABASE_SSLMODE")
	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Server.BaseURL", "BASE_URL")
	v.BindEnv("Redis.Addr", "REDIS_ADDR")
	v.BindEnv("Redis.Password", "REDIS_PASSWORD")
	v.BindEnv("Limits.GuestBatchLimit", "IMGIFY_GUEST_BATCH_LIMIT")
	v.BindEnv("Limits.GuestDailyLimit", "IMGIFY_GUEST_DAILY_LIMIT")
	v.BindEnv("Limits.UserBatchLimit", "IMGIFY_USER_BATCH_LIMIT")
	v.BindEnv("Limits.UserDailyLimit", "IMGIFY_USER_DAILY_LIMIT")
	v.BindEnv("File.RetentionHours", "IMGIFY_FILE_RETENTION_HOURS")
	v.BindEnv("File.LogRetentionHours", "IMGIFY_LOG_RETENTION_HOURS")
	v.BindEnv("File.MaxSizeKB", "IMGIFY_MAX_FILE_SIZE")
	v.BindEnv("File.AllowedFormats", "IMGIFY_ALLOWED_FORMATS")

	// Читаем конфигурацию из файла
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Проверяем переменные окружения напрямую если конфигурация неполная
	if cfg.Database.Host == "" {
		cfg.Database.Host = v.GetString("DATABASE_HOST")
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = v.GetString("DATABASE_PORT")
	}
	if cfg.Database.User == "" {
		cfg.Database.User = v.GetString("DATABASE_USER")
	}
	if cfg.Database.Password == "" {
		cfg.Database.Password = v.GetString("DATABASE_PASSWORD")
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = v.GetString("DATABASE_NAME")
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = v.GetString("HTTP_PORT")
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	}

	// Проверяем, что все необходимые поля заполнены
	if cfg.Database.Host == "" ||
		cfg.Database.Port == "" ||
		cfg.Database.User == "" ||
		cfg.Database.Password == "" ||
		cfg.Database.Name == "" {
		return nil, fmt.Errorf("database configuration is incomplete: host=%s, port=%s, user=%s, name=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Name)
	}

	// Установка значений по умолчанию
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "2525"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}

	applyLimitDefaults(&cfg.Limits)
	applyFileDefaults(&cfg.File)

	return &cfg, nil
}

// applyLimitDefaults заполняет лимиты тарифов значениями по умолчанию
func applyLimitDefaults(l *LimitsConfig) {
	if l.GuestBatchLimit <= 0 {
		l.GuestBatchLimit = 5
	}
	if l.GuestDailyLimit <= 0 {
		l.GuestDailyLimit = 20
	}
	if l.UserBatchLimit <= 0 {
		l.UserBatchLimit = 50
	}
	if l.UserDailyLimit <= 0 {
		l.UserDailyLimit = 500
	}
}

func applyFileDefaults(f *FileConfig) {
	if f.RetentionHours <= 0 {
		f.RetentionHours = 24
	}
	if f.LogRetentionHours <= 0 {
		f.LogRetentionHours = 24
	}
	if f.MaxSizeKB <= 0 {
		f.MaxSizeKB = 10240 // 10MB
	}
	if len(f.AllowedFormats) == 0 {
		f.AllowedFormats = []string{"jpg", "jpeg", "png", "webp", "gif", "tiff"}
	}
	if f.OptimizeQuality <= 0 {
		f.OptimizeQuality = 85
	}
	if f.ConvertQuality <= 0 {
		f.ConvertQuality = 90
	}
}

// FormatAllowed проверяет, разрешен ли формат для загрузки
func (f *FileConfig) FormatAllowed(format string) bool {
	format = strings.ToLower(format)
	for _, allowed := range f.AllowedFormats {
		if format == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"imgify/internal/auth"
	"imgify/internal/config"
	"imgify/internal/handler"
	"imgify/internal/repository"
	"imgify/internal/service"
	"imgify/internal/service/s3"
)

func connectWithRetry(cfg *config.Config, maxAttempts int, delay time.Duration) (*sqlx.DB, error) {
	dsn := cfg.Database.GetDSN()

	// Сначала подключаемся к системной базе postgres, она существует всегда
	pgDSN := strings.Replace(dsn, "dbname="+cfg.Database.Name, "dbname=postgres", 1)
	pgDB, err := sqlx.Connect("postgres", pgDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres database: %v", err)
	}
	defer pgDB.Close()

	var exists bool
	err = pgDB.Get(&exists, "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)", cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	if !exists {
		log.Printf("Database %s does not exist, creating...", cfg.Database.Name)
		_, err = pgDB.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Database.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	var db *sqlx.DB
	for i := 0; i < maxAttempts; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to connect to database (attempt %d/%d): %v", i+1, maxAttempts, err)
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %v", maxAttempts, err)
}

func runMigrations(cfg *config.Config) error {
	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	var m *migrate.Migrate
	var err error

	for i := 0; i < 5; i++ {
		m, err = migrate.New("file://migrations", databaseURL)
		if err == nil {
			break
		}
		log.Printf("Failed to create migrate instance (attempt %d/5): %v", i+1, err)
		time.Sleep(time.Second * 5)
	}

	if err != nil {
		return fmt.Errorf("failed to create migrate instance after retries: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		log.Printf("Found dirty database state at version %d, attempting to force version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func main() {
	// Загружаем конфигурации
	appConfig, err := config.NewConfig(".app.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := connectWithRetry(appConfig, 5, time.Second*5)
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer db.Close()

	if err := runMigrations(appConfig); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	// Инициализация S3 клиента
	s3Config, err := s3.NewConfig(".s3.env")
	if err != nil {
		log.Fatalf("Failed to load S3 config: %v", err)
	}

	s3Client, err := s3.NewClient(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	// Подключаемся к Redis для кеша геолокации
	redisClient := redis.NewClient(&redis.Options{
		Addr:     appConfig.Redis.Addr,
		Password: appConfig.Redis.Password,
		DB:       appConfig.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to ping redis: %v", err)
	}

	// Настройка проверки токенов
	authConfig, err := auth.NewConfig(".auth.env")
	if err != nil {
		log.Fatalf("Failed to load auth config: %v", err)
	}

	auth.Init(authConfig)

	// Инициализация репозиториев
	rateLimitRepo := repository.NewRateLimitRepository(db)
	imageRepo := repository.NewImageRepository(db)
	pageViewRepo := repository.NewPageViewRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Инициализация сервисов
	rateLimitService := service.NewRateLimitService(rateLimitRepo, appConfig.Limits)
	optimizationService := service.NewOptimizationService(appConfig.File.OptimizeQuality)
	conversionService := service.NewConversionService(appConfig.File.ConvertQuality)
	imageService := service.NewImageService(imageRepo, s3Client, appConfig.File.RetentionHours, appConfig.Server.BaseURL)
	locationService := service.NewLocationService(redisClient)
	analyticsService := service.NewAnalyticsService(pageViewRepo, activityRepo)
	cleanupService := service.NewCleanupService(imageRepo, activityRepo, rateLimitRepo, s3Client, appConfig.File)

	// Инициализация хендлеров
	optimizeHandler := handler.NewOptimizeHandler(optimizationService, imageService, rateLimitService, locationService, appConfig.File)
	convertHandler := handler.NewConvertHandler(conversionService, imageService, rateLimitService, locationService, appConfig.File)
	downloadHandler := handler.NewDownloadHandler(imageService)
	rateLimitHandler := handler.NewRateLimitHandler(rateLimitService)
	analyticsHandler := handler.NewAnalyticsHandler(imageService, analyticsService)
	contactHandler := handler.NewContactHandler(contactRepo)
	adminHandler := handler.NewAdminHandler(imageRepo, analyticsService, contactRepo)

	// Настройка HTTP роутера
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// HTTP маршруты
	r.Route("/api", func(r chi.Router) {
		r.Post("/optimize", optimizeHandler.Optimize)
		r.Post("/convert", convertHandler.Convert)
		r.Get("/formats", convertHandler.Formats)
		r.Get("/download/{id}", downloadHandler.Download)
		r.Get("/limits", rateLimitHandler.Limits)

		r.Route("/analytics", func(r chi.Router) {
			r.Post("/background-removal", analyticsHandler.TrackBackgroundRemoval)
			r.Post("/page-view", analyticsHandler.TrackPageView)
			r.Post("/page-exit", analyticsHandler.TrackPageExit)
		})

		r.Post("/contact", contactHandler.Submit)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/analytics", adminHandler.Analytics)
			r.Get("/traffic", adminHandler.Traffic)
			r.Get("/logs", adminHandler.Logs)
			r.Get("/contacts", adminHandler.Contacts)
			r.Patch("/contacts/{id}/review", adminHandler.ReviewContact)
		})
	})

	// Создаем HTTP сервер
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Server.Port),
		Handler: r,
	}

	// Канал для сигналов завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Запускаем HTTP сервер
	go func() {
		log.Printf("Starting HTTP server on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Запускаем периодическую очистку устаревших файлов и счетчиков
	cleanupTicker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-cleanupTicker.C:
				ctx := context.Background()
				if err := cleanupService.Run(ctx); err != nil {
					log.Printf("Error during cleanup: %v", err)
				}
			case <-quit:
				cleanupTicker.Stop()
				return
			}
		}
	}()

	// Ожидаем сигнал завершения
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server forced to shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	}

	log.Println("Server exited properly")
}

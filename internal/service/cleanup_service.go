package service

import (
	"context"
	"log"
	"time"

	"imgify/internal/config"
	"imgify/internal/repository"
	"imgify/internal/service/s3"
)

// CleanupService удаляет отработавшие данные: записи об изображениях
// вместе с файлами в S3, старые записи журнала и залежавшиеся счетчики
// лимитов. Запускается по таймеру из main.
type CleanupService struct {
	imageRepo     *repository.ImageRepository
	activityRepo  *repository.ActivityLogRepository
	rateLimitRepo *repository.RateLimitRepository
	storage       s3.Storage
	fileCfg       config.FileConfig
}

func NewCleanupService(
	imageRepo *repository.ImageRepository,
	activityRepo *repository.ActivityLogRepository,
	rateLimitRepo *repository.RateLimitRepository,
	storage s3.Storage,
	fileCfg config.FileConfig,
) *CleanupService {
	return &CleanupService{
		imageRepo:     imageRepo,
		activityRepo:  activityRepo,
		rateLimitRepo: rateLimitRepo,
		storage:       storage,
		fileCfg:       fileCfg,
	}
}

// Run выполняет один проход очистки
func (s *CleanupService) Run(ctx context.Context) error {
	log.Printf("[Cleanup] Начинаем очистку устаревших данных")

	imageCutoff := time.Now().Add(-time.Duration(s.fileCfg.RetentionHours) * time.Hour)

	deleted, err := s.imageRepo.DeleteOlderThan(ctx, imageCutoff)
	if err != nil {
		return err
	}

	deletedFiles := 0
	for _, image := range deleted {
		if image.StorageKey == nil {
			continue
		}
		if err := s.storage.DeleteObject(ctx, *image.StorageKey); err != nil {
			log.Printf("[Cleanup] Не удалось удалить объект %s из S3: %v", *image.StorageKey, err)
			continue
		}
		deletedFiles++
	}

	log.Printf("[Cleanup] Удалено записей об изображениях: %d, файлов в S3: %d", len(deleted), deletedFiles)

	logCutoff := time.Now().Add(-time.Duration(s.fileCfg.LogRetentionHours) * time.Hour)

	deletedLogs, err := s.activityRepo.DeleteOlderThan(ctx, logCutoff)
	if err != nil {
		return err
	}

	log.Printf("[Cleanup] Удалено записей журнала: %d", deletedLogs)

	// Счетчик, не обновлявшийся сутки, все равно обнулится при
	// следующем обращении, его можно спокойно удалить
	deletedLimits, err := s.rateLimitRepo.DeleteStale(ctx, time.Now().AddDate(0, 0, -1))
	if err != nil {
		return err
	}

	log.Printf("[Cleanup] Удалено счетчиков лимитов: %d", deletedLimits)

	return nil
}

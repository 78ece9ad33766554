package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"imgify/internal/domain"
	"imgify/internal/repository"
	"imgify/internal/service/s3"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrImageExpired  = errors.New("image has expired and been deleted")
)

// ProcessedImage описывает результат обработки для сохранения
type ProcessedImage struct {
	UserID           *string
	IPAddress        string
	Country          *string
	OriginalFilename string
	OriginalFormat   string
	ProcessedFormat  string
	OriginalSize     int64
	ProcessedSize    int64
	Operation        string
	Data             []byte
}

// ClientSideResult описывает обработку, выполненную на клиенте
// (удаление фона). Файл на сервер не попадает, сохраняется только учет.
type ClientSideResult struct {
	UserID           *string
	IPAddress        string
	OriginalFilename string
	OriginalFormat   string
	OriginalSize     int64
	ProcessedSize    int64
	ProcessingTime   float64
	Success          bool
	ErrorMessage     *string
}

// ImageService сохраняет обработанные изображения в S3 и ведет их учет
// в базе. Файлы живут ограниченное время и удаляются фоновой очисткой.
type ImageService struct {
	imageRepo *repository.ImageRepository
	storage   s3.Storage
	retention time.Duration
	baseURL   string
}

func NewImageService(imageRepo *repository.ImageRepository, storage s3.Storage, retentionHours int, baseURL string) *ImageService {
	return &ImageService{
		imageRepo: imageRepo,
		storage:   storage,
		retention: time.Duration(retentionHours) * time.Hour,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// SaveProcessed загружает обработанный файл в S3 и создает запись
func (s *ImageService) SaveProcessed(ctx context.Context, processed *ProcessedImage) (*domain.Image, error) {
	key := fmt.Sprintf("processed/%s.%s", uuid.New().String(), processed.ProcessedFormat)

	err := s.storage.UploadBytes(ctx, key, processed.Data, contentTypeForFormat(processed.ProcessedFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to upload processed image: %w", err)
	}

	image := &domain.Image{
		UserID:           processed.UserID,
		IPAddress:        processed.IPAddress,
		Country:          processed.Country,
		OriginalFilename: processed.OriginalFilename,
		OriginalFormat:   processed.OriginalFormat,
		ProcessedFormat:  processed.ProcessedFormat,
		OriginalSize:     processed.OriginalSize,
		ProcessedSize:    processed.ProcessedSize,
		StorageKey:       &key,
		Operation:        processed.Operation,
		Success:          true,
		ExpiresAt:        time.Now().Add(s.retention),
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		// Запись не создана, убираем осиротевший объект из S3
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			return nil, fmt.Errorf("failed to save image record: %w (cleanup also failed: %v)", err, delErr)
		}
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}

	return image, nil
}

// TrackClientSide сохраняет учетную запись для обработки на клиенте
func (s *ImageService) TrackClientSide(ctx context.Context, result *ClientSideResult) (*domain.Image, error) {
	processingTime := result.ProcessingTime

	image := &domain.Image{
		UserID:           result.UserID,
		IPAddress:        result.IPAddress,
		OriginalFilename: result.OriginalFilename,
		OriginalFormat:   result.OriginalFormat,
		ProcessedFormat:  "png", // Удаление фона всегда отдает PNG
		OriginalSize:     result.OriginalSize,
		ProcessedSize:    result.ProcessedSize,
		Operation:        domain.OperationBackgroundRemoval,
		ProcessingTime:   &processingTime,
		Success:          result.Success,
		ErrorMessage:     result.ErrorMessage,
		ExpiresAt:        time.Now().Add(s.retention),
	}

	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to save tracking record: %w", err)
	}

	return image, nil
}

// GetForDownload возвращает запись и содержимое обработанного файла
func (s *ImageService) GetForDownload(ctx context.Context, id int64) (*domain.Image, s3.S3Object, error) {
	image, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if image == nil {
		return nil, nil, ErrImageNotFound
	}

	if image.ExpiresAt.Before(time.Now()) {
		return nil, nil, ErrImageExpired
	}

	if image.StorageKey == nil {
		return nil, nil, ErrImageNotFound
	}

	object, err := s.storage.GetObject(ctx, *image.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get processed file: %w", err)
	}

	return image, object, nil
}

// DownloadURL возвращает ссылку для скачивания обработанного файла
func (s *ImageService) DownloadURL(id int64) string {
	return fmt.Sprintf("%s/api/download/%d", s.baseURL, id)
}

func contentTypeForFormat(format string) string {
	switch strings.ToLower(format) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	case "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

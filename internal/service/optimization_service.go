package service

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/h2non/bimg"
)

// OptimizeResult содержит результат сжатия одного изображения
type OptimizeResult struct {
	Data             []byte
	Format           string
	OriginalSize     int64
	ProcessedSize    int64
	CompressionRatio float64
	UsedOriginal     bool
}

// OptimizationService сжимает изображения без смены формата.
// Кодированием занимается libvips через bimg.
type OptimizationService struct {
	defaultQuality int
}

func NewOptimizationService(defaultQuality int) *OptimizationService {
	return &OptimizationService{defaultQuality: defaultQuality}
}

// Optimize пережимает изображение с указанным качеством и вырезает
// метаданные. Если пережатый вариант оказался не меньше исходного,
// возвращается исходный файл.
func (s *OptimizationService) Optimize(data []byte, format string, quality int) (*OptimizeResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	if quality <= 0 {
		quality = s.defaultQuality
	}

	imageType, err := imageTypeForFormat(format)
	if err != nil {
		return nil, err
	}

	originalSize := int64(len(data))

	options := bimg.Options{
		Quality:       quality,
		Type:          imageType,
		StripMetadata: true,
	}

	// Для PNG качество превращается в уровень сжатия zlib
	if imageType == bimg.PNG {
		options.Compression = (100 - quality) / 11
	}

	processed, err := bimg.NewImage(data).Process(options)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	processedSize := int64(len(processed))

	// Уже хорошо сжатое изображение после пережатия может вырасти,
	// в этом случае отдаем оригинал
	if processedSize >= originalSize {
		log.Printf("[Optimize] Пережатый вариант больше исходного (%d >= %d байт), используем оригинал", processedSize, originalSize)
		return &OptimizeResult{
			Data:             data,
			Format:           strings.ToLower(format),
			OriginalSize:     originalSize,
			ProcessedSize:    originalSize,
			CompressionRatio: 0,
			UsedOriginal:     true,
		}, nil
	}

	ratio := float64(originalSize-processedSize) / float64(originalSize) * 100

	return &OptimizeResult{
		Data:             processed,
		Format:           strings.ToLower(format),
		OriginalSize:     originalSize,
		ProcessedSize:    processedSize,
		CompressionRatio: math.Round(ratio*100) / 100,
		UsedOriginal:     false,
	}, nil
}

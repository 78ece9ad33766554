package service

import (
	"fmt"
	"strings"

	"github.com/h2non/bimg"
)

// ConvertResult содержит результат конвертации одного изображения
type ConvertResult struct {
	Data           []byte
	OriginalFormat string
	TargetFormat   string
	OriginalSize   int64
	ProcessedSize  int64
}

// ConversionService переводит изображения в другой формат
type ConversionService struct {
	defaultQuality int
}

func NewConversionService(defaultQuality int) *ConversionService {
	return &ConversionService{defaultQuality: defaultQuality}
}

// Convert перекодирует изображение в целевой формат
func (s *ConversionService) Convert(data []byte, originalFormat, targetFormat string, quality int) (*ConvertResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	if quality <= 0 {
		quality = s.defaultQuality
	}

	imageType, err := imageTypeForFormat(targetFormat)
	if err != nil {
		return nil, err
	}

	processed, err := bimg.NewImage(data).Process(bimg.Options{
		Quality:       quality,
		Type:          imageType,
		StripMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}

	return &ConvertResult{
		Data:           processed,
		OriginalFormat: strings.ToLower(originalFormat),
		TargetFormat:   strings.ToLower(targetFormat),
		OriginalSize:   int64(len(data)),
		ProcessedSize:  int64(len(processed)),
	}, nil
}

// SupportedFormats возвращает список поддерживаемых целевых форматов
func (s *ConversionService) SupportedFormats() []string {
	formats := make([]string, len(supportedFormats))
	copy(formats, supportedFormats)
	return formats
}

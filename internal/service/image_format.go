package service

import (
	"fmt"
	"strings"

	"github.com/h2non/bimg"
)

// Соответствие расширений типам libvips. BMP из исходного списка
// не поддерживается libvips, вместо него доступен TIFF.
var imageTypes = map[string]bimg.ImageType{
	"jpg":  bimg.JPEG,
	"jpeg": bimg.JPEG,
	"png":  bimg.PNG,
	"webp": bimg.WEBP,
	"gif":  bimg.GIF,
	"tiff": bimg.TIFF,
}

var supportedFormats = []string{"jpg", "jpeg", "png", "webp", "gif", "tiff"}

func imageTypeForFormat(format string) (bimg.ImageType, error) {
	imageType, ok := imageTypes[strings.ToLower(format)]
	if !ok {
		return bimg.UNKNOWN, fmt.Errorf("unsupported target format: %s", format)
	}
	return imageType, nil
}

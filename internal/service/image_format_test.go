package service

import (
	"testing"
	"time"

	"github.com/h2non/bimg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageTypeForFormat(t *testing.T) {
	jpeg, err := imageTypeForFormat("jpg")
	require.NoError(t, err)
	assert.Equal(t, bimg.JPEG, jpeg)

	jpeg, err = imageTypeForFormat("JPEG")
	require.NoError(t, err)
	assert.Equal(t, bimg.JPEG, jpeg)

	webp, err := imageTypeForFormat("webp")
	require.NoError(t, err)
	assert.Equal(t, bimg.WEBP, webp)

	_, err = imageTypeForFormat("bmp")
	assert.Error(t, err)

	_, err = imageTypeForFormat("")
	assert.Error(t, err)
}

func TestSupportedFormats(t *testing.T) {
	svc := NewConversionService(90)

	formats := svc.SupportedFormats()
	assert.Contains(t, formats, "jpg")
	assert.Contains(t, formats, "png")
	assert.Contains(t, formats, "webp")
	assert.NotContains(t, formats, "bmp")

	// Возвращается копия, изменения не задевают сервис
	formats[0] = "raw"
	assert.NotContains(t, svc.SupportedFormats(), "raw")
}

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), PeriodStart("week", now))
	assert.Equal(t, now.AddDate(0, -1, 0), PeriodStart("month", now))
	assert.Equal(t, now.AddDate(-1, 0, 0), PeriodStart("year", now))

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, PeriodStart("today", now))
	assert.Equal(t, today, PeriodStart("", now))
	assert.Equal(t, today, PeriodStart("bogus", now))
}

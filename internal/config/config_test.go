package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyLimitDefaults(t *testing.T) {
	var limits LimitsConfig
	applyLimitDefaults(&limits)

	assert.Equal(t, 5, limits.GuestBatchLimit)
	assert.Equal(t, 20, limits.GuestDailyLimit)
	assert.Equal(t, 50, limits.UserBatchLimit)
	assert.Equal(t, 500, limits.UserDailyLimit)
}

func TestApplyLimitDefaultsKeepsConfigured(t *testing.T) {
	limits := LimitsConfig{
		GuestBatchLimit: 10,
		GuestDailyLimit: 40,
		UserBatchLimit:  100,
		UserDailyLimit:  1000,
	}
	applyLimitDefaults(&limits)

	assert.Equal(t, 10, limits.GuestBatchLimit)
	assert.Equal(t, 40, limits.GuestDailyLimit)
	assert.Equal(t, 100, limits.UserBatchLimit)
	assert.Equal(t, 1000, limits.UserDailyLimit)
}

func TestApplyFileDefaults(t *testing.T) {
	var file FileConfig
	applyFileDefaults(&file)

	assert.Equal(t, 24, file.RetentionHours)
	assert.Equal(t, int64(10240), file.MaxSizeKB)
	assert.Equal(t, 85, file.OptimizeQuality)
	assert.Equal(t, 90, file.ConvertQuality)
	assert.Contains(t, file.AllowedFormats, "webp")
}

func TestFormatAllowed(t *testing.T) {
	var file FileConfig
	applyFileDefaults(&file)

	assert.True(t, file.FormatAllowed("png"))
	assert.True(t, file.FormatAllowed("JPG"))
	assert.False(t, file.FormatAllowed("bmp"))
	assert.False(t, file.FormatAllowed(""))
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitsInfoJSONFieldNames(t *testing.T) {
	info := LimitsInfo{
		DailyRemaining: 15,
		DailyLimit:     20,
		BatchLimit:     5,
		DailyUsed:      5,
		UserType:       UserTypeGuest,
	}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, float64(15), fields["daily_remaining"])
	assert.Equal(t, float64(20), fields["daily_limit"])
	assert.Equal(t, float64(5), fields["batch_limit"])
	assert.Equal(t, float64(5), fields["daily_used"])
	assert.Equal(t, "guest", fields["user_type"])
}

func TestLimitsInfoOmitsDailyUsedOnFreshDay(t *testing.T) {
	info := LimitsInfo{
		DailyRemaining: 20,
		DailyLimit:     20,
		BatchLimit:     5,
		UserType:       UserTypeGuest,
	}

	data, err := json.Marshal(info)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	_, present := fields["daily_used"]
	assert.False(t, present)
}

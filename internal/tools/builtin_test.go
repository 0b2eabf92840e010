package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callClock(t *testing.T, args string) map[string]string {
	t.Helper()
	raw, err := DefaultRegistry.Execute(context.Background(), ClockToolName, json.RawMessage(args))
	require.NoError(t, err)
	var result map[string]string
	require.NoError(t, json.Unmarshal(raw, &result))
	return result
}

func TestCurrentTimeDefaultsToUTC(t *testing.T) {
	result := callClock(t, `{}`)
	assert.Equal(t, "UTC", result["timezone"])
	assert.Empty(t, result["note"])

	_, err := time.Parse(time.RFC3339, result["time"])
	assert.NoError(t, err)
}

func TestCurrentTimeWithTimezone(t *testing.T) {
	result := callClock(t, `{"timezone": "Asia/Shanghai"}`)
	assert.Equal(t, "Asia/Shanghai", result["timezone"])
	assert.Empty(t, result["note"])
}

func TestCurrentTimeInvalidTimezoneFallsBack(t *testing.T) {
	result := callClock(t, `{"timezone": "Mars/Olympus_Mons"}`)
	assert.Equal(t, "UTC", result["timezone"])
	assert.Contains(t, result["note"], "Mars/Olympus_Mons")
}

func TestCurrentTimeCustomFormat(t *testing.T) {
	result := callClock(t, `{"format": "2006-01-02"}`)
	_, err := time.Parse("2006-01-02", result["time"])
	assert.NoError(t, err)
}

func TestExecuteUnknownTool(t *testing.T) {
	_, err := DefaultRegistry.Execute(context.Background(), "no.such.tool", nil)
	assert.Error(t, err)
}

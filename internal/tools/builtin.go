package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ClockToolName is the builtin current-time tool.
const ClockToolName = "time.now"

func init() {
	MustRegister(Definition{
		Name:        ClockToolName,
		Description: "Get the current date and time. Optionally takes an IANA timezone name and a Go time layout.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"timezone": {"type": "string", "description": "IANA timezone name, e.g. 'Asia/Shanghai'. Defaults to UTC."},
				"format": {"type": "string", "description": "Go time layout string. Defaults to RFC 3339."}
			}
		}`),
	}, currentTime)
}

// currentTime reports the current time. An unknown timezone falls back to
// UTC with a note in the result rather than failing the call.
func currentTime(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	var params struct {
		Timezone string `json:"timezone"`
		Format   string `json:"format"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	loc := time.UTC
	note := ""
	if params.Timezone != "" {
		l, err := time.LoadLocation(params.Timezone)
		if err != nil {
			note = fmt.Sprintf("unknown timezone %q, falling back to UTC", params.Timezone)
		} else {
			loc = l
		}
	}

	layout := time.RFC3339
	if params.Format != "" {
		layout = params.Format
	}

	result := map[string]string{
		"time":     time.Now().In(loc).Format(layout),
		"timezone": loc.String(),
	}
	if note != "" {
		result["note"] = note
	}
	return json.Marshal(result)
}

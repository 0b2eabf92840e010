package llm

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/luoxiaowei/chatflow/internal/policy"
	"github.com/luoxiaowei/chatflow/internal/tools"
)

// ModeMock selects the mock completion client.
const ModeMock = "MOCK"

// NewCompletionClient creates a completion client for the given mode.
// mode=MOCK returns the mock client; anything else returns the real one.
func NewCompletionClient(mode, baseURL, apiKey, model string, timeout time.Duration, registry *tools.Registry, engine *policy.Engine, logger zerolog.Logger) CompletionClient {
	if mode == ModeMock {
		logger.Info().Msg("mock mode enabled, using mock completion client")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, model, timeout, registry, engine, logger)
}

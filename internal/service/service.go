package service

import (
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/luoxiaowei/chatflow/internal/config"
	"github.com/luoxiaowei/chatflow/internal/llm"
	"github.com/luoxiaowei/chatflow/internal/store"
)

type Service struct {
	store  store.Store
	llm    llm.CompletionClient
	config *config.Config
	logger zerolog.Logger

	// tasks supervises per-turn background work so shutdown can drain
	// in-flight persistence instead of dropping it.
	tasks conc.WaitGroup
}

func New(st store.Store, client llm.CompletionClient, cfg *config.Config, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		llm:    client,
		config: cfg,
		logger: logger.With().Str("component", "service").Logger(),
	}
}

// Wait blocks until all spawned turn tasks have finished.
func (s *Service) Wait() {
	s.tasks.Wait()
}

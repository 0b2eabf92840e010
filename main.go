package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/luoxiaowei/chatflow/internal/config"
	"github.com/luoxiaowei/chatflow/internal/llm"
	"github.com/luoxiaowei/chatflow/internal/policy"
	"github.com/luoxiaowei/chatflow/internal/service"
	"github.com/luoxiaowei/chatflow/internal/store"
	"github.com/luoxiaowei/chatflow/internal/tools"
	transport "github.com/luoxiaowei/chatflow/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	logger.Info().
		Int("port", cfg.HTTPPort).
		Str("database", cfg.DatabasePath).
		Str("model", cfg.CompletionModel).
		Msg("starting chatflow")

	// Initialize store, running migrations before serving begins
	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer db.Close()

	// Initialize policy engine for tool-use gating
	ctx := context.Background()
	engine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize policy engine")
	}

	// Initialize completion client
	client := llm.NewCompletionClient(
		cfg.Mode,
		cfg.CompletionBaseURL,
		cfg.CompletionAPIKey,
		cfg.CompletionModel,
		cfg.CompletionTimeout,
		tools.DefaultRegistry,
		engine,
		logger,
	)

	// Initialize service and server
	svc := service.New(db, client, cfg, logger)
	server := transport.NewServer(svc, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	logger.Info().Int("port", cfg.HTTPPort).Msg("chatflow started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server gracefully")
	}

	// Let in-flight persistence tasks finish before closing the store.
	svc.Wait()

	logger.Info().Msg("chatflow stopped")
}

// Package config provides configuration for the chat backend.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabasePath string

	// Completion provider
	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string
	CompletionTimeout time.Duration

	// Mode switches the completion backend; MOCK runs without a provider.
	Mode string

	// Logging
	LogLevel string
}

// Load loads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		DatabasePath:      getEnv("DATABASE_PATH", "file:chatflow.db?cache=shared&mode=rwc&_foreign_keys=1"),
		CompletionBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		CompletionAPIKey:  getEnv("LLM_API_KEY", ""),
		CompletionModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		CompletionTimeout: time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		Mode:              getEnv("CHATFLOW_MODE", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

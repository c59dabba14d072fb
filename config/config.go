// Package config provides configuration for the budget engine binaries.
// It loads settings from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	// Port is the HTTP server port (BUDGET_PORT).
	Port int

	// DBPath is the SQLite database path (BUDGET_DB). ":memory:" works for
	// throwaway sessions.
	DBPath string
}

// Load loads configuration from environment variables. It automatically
// loads a .env file from the current directory if available; an explicit
// path can be given instead.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Missing .env is fine; plain env vars still apply.
		_ = godotenv.Load()
	}

	port, err := parseIntEnv("BUDGET_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid BUDGET_PORT: %w", err)
	}

	return &Config{
		Port:   port,
		DBPath: getEnvOrDefault("BUDGET_DB", "budget.db"),
	}, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

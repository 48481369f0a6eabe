// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DatabaseURL string
	// DataRoot is the base location holding uploads/, generated/, and
	// public/javascripts/preload/.
	DataRoot  string
	TokenSalt string
	// Copy workers for deliverable clone batches.
	CopyWorkers   int
	CopyQueueSize int
}

// Load reads .env when present, then the environment. DATABASE_URL and
// TOKEN_SALT are required; everything else has a default.
func Load() (Config, error) {
	// missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	cfg := Config{
		Port:          envInt("PORT", 3000),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DataRoot:      envOr("DATA_ROOT", "."),
		TokenSalt:     os.Getenv("TOKEN_SALT"),
		CopyWorkers:   envInt("COPY_WORKERS", 4),
		CopyQueueSize: envInt("COPY_QUEUE_SIZE", 64),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TokenSalt == "" {
		return Config{}, fmt.Errorf("TOKEN_SALT is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

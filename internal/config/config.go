package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the service reads from the environment.
type Config struct {
	// DatabaseDriver is "sqlite3" or "postgres".
	DatabaseDriver string
	// DatabaseDSN is a file path for sqlite3 or a connection string for
	// postgres.
	DatabaseDSN string
	// HTTPAddr is the listen address of the API server.
	HTTPAddr string
	// JWTSecret signs and verifies bearer tokens. Required for
	// authenticated review; guests work without it.
	JWTSecret string
	// TelegramToken enables the Telegram review surface when set.
	TelegramToken string
	// SessionTTL is how long an idle review session survives before the
	// purge job drops it.
	SessionTTL time.Duration
	// Timezone resolves calendar-day boundaries for statistics.
	Timezone *time.Location
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// A missing .env file is fine; env vars may come from the deployment.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDriver: envOr("DATABASE_DRIVER", "sqlite3"),
		DatabaseDSN:    envOr("DATABASE_DSN", "data/flashvocab.db"),
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		SessionTTL:     30 * time.Minute,
		Timezone:       time.UTC,
	}

	if cfg.DatabaseDriver != "sqlite3" && cfg.DatabaseDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES %q", v)
		}
		cfg.SessionTTL = time.Duration(minutes) * time.Minute
	}

	if v := os.Getenv("TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %v", v, err)
		}
		cfg.Timezone = loc
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package config loads runtime settings from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config selects the journal and event backends and tunes the alert
// threshold. Every field has a default that keeps the process fully
// in-memory and offline.
type Config struct {
	// JournalBackend is "memory" or "postgres".
	JournalBackend string
	// PostgresDSN is required when JournalBackend is "postgres".
	PostgresDSN string

	// EventBackend is "log" or "kafka".
	EventBackend string
	// KafkaBrokers is required when EventBackend is "kafka".
	KafkaBrokers []string

	// LowBalanceThreshold is the per-currency alert threshold.
	LowBalanceThreshold decimal.Decimal
}

// Load reads .env when present, then the environment. Missing values fall
// back to in-memory defaults; malformed values are an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		JournalBackend:      getenv("JOURNAL_BACKEND", "memory"),
		PostgresDSN:         os.Getenv("POSTGRES_DSN"),
		EventBackend:        getenv("EVENT_BACKEND", "log"),
		LowBalanceThreshold: decimal.NewFromInt(100),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if raw := os.Getenv("LOW_BALANCE_THRESHOLD"); raw != "" {
		threshold, err := decimal.NewFromString(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse LOW_BALANCE_THRESHOLD: %w", err)
		}
		cfg.LowBalanceThreshold = threshold
	}

	switch cfg.JournalBackend {
	case "memory":
	case "postgres":
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("JOURNAL_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return Config{}, fmt.Errorf("unknown JOURNAL_BACKEND %q", cfg.JournalBackend)
	}

	switch cfg.EventBackend {
	case "log":
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return Config{}, fmt.Errorf("EVENT_BACKEND=kafka requires KAFKA_BROKERS")
		}
	default:
		return Config{}, fmt.Errorf("unknown EVENT_BACKEND %q", cfg.EventBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

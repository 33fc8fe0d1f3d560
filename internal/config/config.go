package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort        string
	BackendBaseURL  string
	BackendTimeout  time.Duration
	CheckoutTimeout time.Duration
	ShutdownTimeout time.Duration
	SessionTTL      time.Duration

	RedisAddr       string
	RedisPassword   string
	CatalogCacheTTL time.Duration

	ReceiptDBPath  string
	MigrationsPath string

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel     string
	DefaultNotes string
}

// Load reads an optional .env file, then the environment. A missing .env is not an error.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8081"),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		ReceiptDBPath:  getEnv("RECEIPT_DB_PATH", "./pos_receipts.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "pos-sales"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DefaultNotes:   getEnv("POS_NOTES", "Penjualan via POS"),
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"BACKEND_TIMEOUT", "10s", &cfg.BackendTimeout},
		{"CHECKOUT_TIMEOUT", "15s", &cfg.CheckoutTimeout},
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
		{"SESSION_TTL", "30m", &cfg.SessionTTL},
		{"CATALOG_CACHE_TTL", "2m", &cfg.CatalogCacheTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", d.key)
		}
		*d.dst = v
	}

	return cfg, nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

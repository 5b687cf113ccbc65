package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	EventBusMemory = "memory"
	EventBusRedis  = "redis"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"legisflow"`
	HTTPAddr    string `env:"HTTP_ADDR"    envDefault:":8080"`

	// DatabaseURL selects the postgres stores; empty runs on memory stores.
	DatabaseURL           string `env:"DATABASE_URL"`
	ProcessDefinitionPath string `env:"PROCESS_DEFINITION_PATH"`

	EventBus          string `env:"EVENT_BUS"           envDefault:"memory"`
	RedisAddr         string `env:"REDIS_ADDR"          envDefault:"localhost:6379"`
	RedisStreamPrefix string `env:"REDIS_STREAM_PREFIX" envDefault:"legisflow"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"    envDefault:"100"`
	ConsumerDedupTTL   time.Duration `env:"CONSUMER_DEDUP_TTL"   envDefault:"168h"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`

	WriteRateLimitRPS   float64 `env:"WRITE_RATE_LIMIT_RPS"   envDefault:"50"`
	WriteRateLimitBurst int     `env:"WRITE_RATE_LIMIT_BURST" envDefault:"100"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.EventBus = strings.ToLower(strings.TrimSpace(cfg.EventBus))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.EventBus {
	case EventBusMemory, EventBusRedis:
	default:
		return fmt.Errorf("config: unknown EVENT_BUS %q", c.EventBus)
	}
	if c.EventBus == EventBusRedis && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("config: REDIS_ADDR is required when EVENT_BUS=redis")
	}
	if c.OutboxPollInterval <= 0 {
		return fmt.Errorf("config: OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("config: OUTBOX_BATCH_SIZE must be positive")
	}
	if c.WriteRateLimitRPS <= 0 || c.WriteRateLimitBurst <= 0 {
		return fmt.Errorf("config: write rate limit must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) UsesPostgres() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return level, nil
}

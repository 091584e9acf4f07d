// Package config loads service settings from environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// SubscriptionKey is the National Highways API subscription key.
	SubscriptionKey string        `env:"SUBSCRIPTION_KEY" validate:"required"`
	APIURL          string        `env:"API_URL" envDefault:"https://api.data.nationalhighways.co.uk/roads/v1.0/closures" validate:"url"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s" validate:"gt=0"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	// Cache settings. File modification time is the staleness source of
	// truth, so the files double as state across restarts.
	CacheDir      string        `env:"CACHE_DIR" envDefault:"."`
	PayloadFile   string        `env:"PAYLOAD_CACHE_FILE" envDefault:"closures.json"`
	RecordsFile   string        `env:"RECORD_CACHE_FILE" envDefault:"processed.json"`
	MaxPayloadAge time.Duration `env:"MAX_PAYLOAD_AGE" envDefault:"24h" validate:"gt=0"`
	TimezoneName  string        `env:"TIMEZONE" envDefault:"Europe/London"`

	// SkipFilteredRecords examines every situation record independently
	// instead of stopping at the first filtered record in a situation.
	SkipFilteredRecords bool `env:"SKIP_FILTERED_RECORDS" envDefault:"false"`

	// Kafka sink. Publishing is disabled when no brokers are configured.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"road-closures"`

	// Timezone is the reference zone for staleness checks and display
	// times, resolved from TimezoneName.
	Timezone *time.Location `env:"-" validate:"-"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.TimezoneName, err)
	}
	cfg.Timezone = loc

	return cfg, nil
}

// PayloadPath is the full path of the raw payload cache file.
func (c *Config) PayloadPath() string {
	return filepath.Join(c.CacheDir, c.PayloadFile)
}

// RecordsPath is the full path of the derived record cache file.
func (c *Config) RecordsPath() string {
	return filepath.Join(c.CacheDir, c.RecordsFile)
}

// KafkaEnabled reports whether the record publisher should run.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

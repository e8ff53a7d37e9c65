package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Challonge     ChallongeConfig     `yaml:"challonge"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

// NATSConfig holds NATS configuration. An empty URL runs the bus in memory.
type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL"`
}

// ChallongeConfig holds bracket provider settings. An empty APIKey disables
// remote brackets.
type ChallongeConfig struct {
	APIKey            string        `yaml:"api_key" env:"CHALLONGE_API_KEY"`
	BaseURL           string        `yaml:"base_url" env:"CHALLONGE_BASE_URL"`
	Timeout           time.Duration `yaml:"timeout" env:"CHALLONGE_TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"CHALLONGE_REQUESTS_PER_SECOND"`
	Burst             int           `yaml:"burst" env:"CHALLONGE_BURST"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address" env:"METRICS_ADDRESS"`
	Environment    string `yaml:"environment" env:"ENV"`
	LogLevel       string `yaml:"log_level" env:"LOG_LEVEL"`
	ServiceName    string `yaml:"service_name" env:"SERVICE_NAME"`
}

// LoadConfig loads the configuration from a YAML file. Environment variables
// override file values. Without a file the environment alone is used.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return loadConfigFromEnv()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables. Only
// DATABASE_URL is required; without NATS_URL the bus runs in memory.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "tourney-bot"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
}

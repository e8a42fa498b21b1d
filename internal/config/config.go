package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Terminal  TerminalConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8200"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// TerminalConfig holds session manager configuration.
type TerminalConfig struct {
	// Scrollback buffer hysteresis thresholds, in bytes.
	BufferHighWater int `envconfig:"TERM_BUFFER_HIGH_WATER" default:"200000"`
	BufferLowWater  int `envconfig:"TERM_BUFFER_LOW_WATER" default:"160000"`

	// Hard bound on the login-shell environment probe.
	EnvSnapshotTimeout time.Duration `envconfig:"TERM_ENV_SNAPSHOT_TIMEOUT" default:"5s"`

	// Default overrides; empty means platform resolution applies.
	Shell       string `envconfig:"TERM_SHELL" default:""`
	AgentBinary string `envconfig:"TERM_AGENT_BINARY" default:"claude"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8200",
			Host: "0.0.0.0",
		},
		Terminal: TerminalConfig{
			BufferHighWater:    200000,
			BufferLowWater:     160000,
			EnvSnapshotTimeout: 5 * time.Second,
			AgentBinary:        "claude",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

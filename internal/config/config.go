package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/zoobzio/herald"
)

// Config holds dispatcher and process settings for the herald CLI.
type Config struct {
	LogLevel string `env:"HERALD_LOG_LEVEL" envDefault:"info"`

	// Dispatcher configuration
	ShutdownPolicy  string        `env:"HERALD_SHUTDOWN_POLICY" envDefault:"drain"`
	ShutdownTimeout time.Duration `env:"HERALD_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Metrics configuration; empty disables the HTTP endpoint.
	MetricsAddr string `env:"HERALD_METRICS_ADDR"`

	policy herald.Policy
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	policy, err := herald.ParsePolicy(c.ShutdownPolicy)
	if err != nil {
		return err
	}
	c.policy = policy

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Policy returns the validated shutdown policy.
func (c *Config) Policy() herald.Policy {
	return c.policy
}

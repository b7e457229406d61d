package config

import (
	"fmt"
	"time"
)

// Config represents a drawctl.yaml configuration file.
// All values are optional and act as defaults for drawctl flags.
// CLI flags always override config values.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Poll  PollConfig  `yaml:"poll"`
	Retry RetryConfig `yaml:"retry"`
	Cache CacheConfig `yaml:"cache"`
}

// APIConfig holds backend connection defaults from the config file.
type APIConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout,omitempty"`
}

// PollConfig holds result polling defaults from the config file.
type PollConfig struct {
	Interval Duration `yaml:"interval,omitempty"`
}

// RetryConfig holds request retry defaults from the config file.
// Attempts is a pointer so that 0 (no retries beyond the first try)
// stays distinct from "not configured".
type RetryConfig struct {
	Attempts       *int          `yaml:"attempts,omitempty"`
	InitialBackoff Duration      `yaml:"initial_backoff,omitempty"`
	MaxBackoff     Duration      `yaml:"max_backoff,omitempty"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker defaults from the config file.
type BreakerConfig struct {
	Enabled      bool     `yaml:"enabled"`
	MinRequests  int      `yaml:"min_requests,omitempty"`
	FailureRatio float64  `yaml:"failure_ratio,omitempty"`
	OpenTimeout  Duration `yaml:"open_timeout,omitempty"`
}

// CacheConfig holds local result cache defaults from the config file.
type CacheConfig struct {
	Dir      string `yaml:"dir,omitempty"`
	Disabled bool   `yaml:"disabled"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Package config provides configuration loading and validation for the
// recipe-share service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the service configuration loadable from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags or environment variables.
type Config struct {
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`

	// APIKey is the Gemini key backing the rewrite service. When empty the
	// service runs, but every share attempt reports the rewrite service as
	// unavailable.
	APIKey string `json:"api_key,omitempty"`

	// RewriteTimeoutSeconds bounds each upstream rewrite call.
	RewriteTimeoutSeconds int `json:"rewrite_timeout_seconds,omitempty"`

	// Workers bounds concurrent recipe processing per share batch.
	Workers int `json:"workers,omitempty"`
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid TCP port, got %d", c.Port)
	}
	if c.RewriteTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'rewrite_timeout_seconds' must be non-negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	return nil
}

// RewriteTimeout returns the configured rewrite timeout as a duration,
// defaulting to 60 seconds.
func (c *Config) RewriteTimeout() time.Duration {
	if c.RewriteTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RewriteTimeoutSeconds) * time.Second
}

// ApplyEnv fills unset fields from environment variables. Explicit file
// values win over the environment.
func (c *Config) ApplyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

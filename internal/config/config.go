// Package config loads engine configuration from BOTFACTORY_* environment
// variables. Everything has a default so a zero-config local run works.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the Bot Factory engine.
type Config struct {
	Port    int    `envconfig:"PORT" default:"8080"`
	Version string `envconfig:"VERSION" default:"0.4.0"`

	// DataDir is where the file-backed document store keeps snapshots.
	// Defaults to ~/.botfactory.
	DataDir string `envconfig:"DATA_DIR"`

	// DatabaseURL switches persistence to the PostgreSQL document store
	// when set.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	Telemetry TelemetryConfig
	Dispatch  DispatchConfig
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string `envconfig:"OTEL_ENDPOINT" default:"localhost:4317"`
	ServiceName  string `envconfig:"OTEL_SERVICE_NAME" default:"botfactory-engine"`
}

// DispatchConfig holds the platform endpoints for the built-in channel
// drivers. Unset endpoints leave the driver unconfigured; sandbox bots never
// need them.
type DispatchConfig struct {
	FacebookEndpoint  string `envconfig:"FACEBOOK_ENDPOINT"`
	InstagramEndpoint string `envconfig:"INSTAGRAM_ENDPOINT"`
	LinkedInEndpoint  string `envconfig:"LINKEDIN_ENDPOINT"`
	XEndpoint         string `envconfig:"X_ENDPOINT"`

	SMTPAddr string `envconfig:"SMTP_ADDR"`
	SMTPFrom string `envconfig:"SMTP_FROM" default:"bots@botfactory.local"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("botfactory", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".botfactory")
	}

	return &cfg, nil
}

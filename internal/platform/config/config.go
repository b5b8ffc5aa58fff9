// Package config loads deployment configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything cmd/api needs to wire the service.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// AuthMode selects bearer-token verification ("jwt") or the local dev shim
	// ("dev", X-Debug-Profile header).
	AuthMode   string `env:"AUTH_MODE" envDefault:"jwt"`
	JWTSecret  string `env:"JWT_SECRET"`
	DevProfile string `env:"DEV_PROFILE"`

	// StorageBackend selects "memory" or "postgres".
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`

	MaxSecondaries int `env:"MAX_SECONDARIES" envDefault:"10"`

	CompanyName    string `env:"COMPANY_NAME" envDefault:"Mobile Electronics Competition Association"`
	CompanyEmail   string `env:"COMPANY_EMAIL" envDefault:"billing@mecacaraudio.com"`
	CompanyWebsite string `env:"COMPANY_WEBSITE" envDefault:"https://mecacaraudio.com"`
	Currency       string `env:"INVOICE_CURRENCY" envDefault:"USD"`
}

// Load parses the environment and validates cross-field requirements.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.AuthMode == "jwt" && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}
	if cfg.MaxSecondaries <= 0 {
		return Config{}, fmt.Errorf("MAX_SECONDARIES must be positive")
	}
	return cfg, nil
}

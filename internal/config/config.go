package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Store StoreConfig
	App   AppConfig
}

// StoreConfig holds the shortener store configuration.
type StoreConfig struct {
	Domain          string `envconfig:"SHORTSTORE_DOMAIN"`                          // e.g. "short.ly"
	AliasLength     int    `envconfig:"SHORTSTORE_ALIAS_LENGTH" default:"7"`
	AliasStrategy   string `envconfig:"SHORTSTORE_ALIAS_STRATEGY" default:"random"` // random, sequence
	AliasMaxRetries int    `envconfig:"SHORTSTORE_ALIAS_MAX_RETRIES" default:"3"`
}

// Validate validates the store configuration. Domain may still be empty
// here; the CLI can supply it as a flag, so presence is enforced after
// flag merging.
func (c *StoreConfig) Validate() error {
	if c.AliasLength <= 0 {
		return fmt.Errorf("alias length must be positive")
	}
	if c.AliasMaxRetries <= 0 {
		return fmt.Errorf("alias max retries must be positive")
	}

	validStrategies := map[string]bool{
		"random":   true,
		"sequence": true,
	}
	if !validStrategies[c.AliasStrategy] {
		return fmt.Errorf("invalid alias strategy: %s (must be one of: random, sequence)", c.AliasStrategy)
	}
	return nil
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"` // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`      // debug, info, warn, error
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`     // text, json
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log format: %s (must be one of: text, json)", c.LogFormat)
	}
	return nil
}

// Load loads configuration from environment variables only.
// (Do .env loading in the app layer for dev, not here.)
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process("", &cfg.Store); err != nil {
		return nil, fmt.Errorf("failed to load Store config: %w", err)
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Store config: %w", err)
	}

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load App config: %w", err)
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid App config: %w", err)
	}

	return cfg, nil
}

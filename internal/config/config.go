// Package config loads the application configuration from an optional
// YAML file overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rbarroso/acolyte-scheduler/internal/service"
)

const configFileName = "acolyte_config.yaml"

// Config represents the application configuration.
type Config struct {
	// DatabaseURL is the libpq-compatible PostgreSQL connection string.
	// Required by serve and migrate unless running with --in-memory.
	DatabaseURL string `yaml:"databaseURL" env:"DATABASE_URL"`

	// ListenAddr is the HTTP bind address.
	ListenAddr string `yaml:"listenAddr" env:"LISTEN_ADDR" validate:"required"`

	// AdminPasswordHash is the Argon2id hash gating admin routes.
	// Empty disables the gate (development only); the server logs a
	// loud warning in that case.
	AdminPasswordHash string `yaml:"adminPasswordHash" env:"ADMIN_PASSWORD_HASH"`

	// Timezone is the IANA reference zone masses are interpreted in.
	// It is part of the scoring contract, not a display preference.
	Timezone string `yaml:"timezone" env:"TIMEZONE" validate:"required"`

	// Environment selects logger behavior.
	Environment string `yaml:"environment" env:"ENVIRONMENT" validate:"oneof=development production"`
}

var validate = validator.New()

func defaults() Config {
	return Config{
		ListenAddr:  ":8080",
		Timezone:    service.DefaultTimezone,
		Environment: "development",
	}
}

// Load reads the configuration: defaults, then the YAML file if one is
// found in the current directory or the user's home directory, then
// environment variables, then validation.
func Load() (*Config, error) {
	cfg := defaults()

	if path, ok := findConfigFile(); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromPath reads the configuration from a specific YAML file, then
// applies environment overrides and validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration, including that the timezone
// resolves to a real IANA location.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return nil
}

// Location resolves the configured reference timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// findConfigFile searches the current directory, then the home
// directory.
func findConfigFile() (string, bool) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, true
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	homePath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, true
	}
	return "", false
}

// Package config loads the application configuration shared by the books
// CLI and the API server: an optional YAML file named by BOOKS_CONFIG,
// overridden by individual environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the YAML file path.
const ConfigEnv = "BOOKS_CONFIG"

// AppConfig represents the application configuration.
type AppConfig struct {
	Session struct {
		// Identity is the list identity policy: "id" or "title".
		Identity string `yaml:"identity"`
		// Presentation is the initial rendering: "list" or "grid".
		Presentation string `yaml:"presentation"`
	} `yaml:"session"`

	// Defaults seeds settings that have never been written, by settings key
	// (e.g. maxResults, orderBy, printType, filter, langRestrict).
	Defaults map[string]string `yaml:"defaults"`

	Server struct {
		ListenAddr    string        `yaml:"listen_addr"`
		ReadTimeout   time.Duration `yaml:"read_timeout"`
		WriteTimeout  time.Duration `yaml:"write_timeout"`
		SettleTimeout time.Duration `yaml:"settle_timeout"`
	} `yaml:"server"`

	Storage struct {
		// SettingsDSN is a sqlite file path or a postgres:// URL.
		SettingsDSN string `yaml:"settings_dsn"`
	} `yaml:"storage"`
}

// DefaultAppConfig returns the configuration used when no file is given.
func DefaultAppConfig() *AppConfig {
	cfg := &AppConfig{}
	cfg.Session.Identity = "id"
	cfg.Session.Presentation = "list"
	cfg.Server.ListenAddr = "127.0.0.1:8080"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 60 * time.Second
	cfg.Server.SettleTimeout = 30 * time.Second
	cfg.Storage.SettingsDSN = DefaultSettingsDSN()
	return cfg
}

// DefaultSettingsDSN is $HOME/.books-search/settings.db, or a file in the
// working directory when there is no home directory.
func DefaultSettingsDSN() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "books-search-settings.db"
	}
	return filepath.Join(home, ".books-search", "settings.db")
}

// LoadAppConfig loads the configuration from a YAML file. Fields absent from
// the file keep their defaults.
// The path parameter is expected to come from a trusted source (environment or CLI flag).
func LoadAppConfig(path string) (*AppConfig, error) {
	// #nosec G304 -- path is provided by the operator, not by request input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultAppConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// Load reads the file named by BOOKS_CONFIG, when set, and applies the
// environment overrides:
//
//	BOOKS_IDENTITY, BOOKS_PRESENTATION, BOOKS_LISTEN_ADDR,
//	BOOKS_SETTLE_TIMEOUT, BOOKS_SETTINGS_DSN
func Load() (*AppConfig, error) {
	config := DefaultAppConfig()
	if path := strings.TrimSpace(os.Getenv(ConfigEnv)); path != "" {
		loaded, err := LoadAppConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config.Session.Identity = getEnvOrDefault("BOOKS_IDENTITY", config.Session.Identity)
	config.Session.Presentation = getEnvOrDefault("BOOKS_PRESENTATION", config.Session.Presentation)
	config.Server.ListenAddr = getEnvOrDefault("BOOKS_LISTEN_ADDR", config.Server.ListenAddr)
	config.Server.SettleTimeout = getEnvDuration("BOOKS_SETTLE_TIMEOUT", config.Server.SettleTimeout)
	config.Storage.SettingsDSN = getEnvOrDefault("BOOKS_SETTINGS_DSN", config.Storage.SettingsDSN)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate checks every field and reports all problems at once.
func (c *AppConfig) Validate() error {
	var errs []error

	switch strings.ToLower(c.Session.Identity) {
	case "id", "title", "displaykey":
	default:
		errs = append(errs, fmt.Errorf("session.identity must be 'id' or 'title', got '%s'", c.Session.Identity))
	}

	switch c.Session.Presentation {
	case "list", "grid":
	default:
		errs = append(errs, fmt.Errorf("session.presentation must be 'list' or 'grid', got '%s'", c.Session.Presentation))
	}

	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if c.Server.SettleTimeout <= 0 {
		errs = append(errs, errors.New("server.settle_timeout must be positive"))
	}
	if strings.TrimSpace(c.Storage.SettingsDSN) == "" {
		errs = append(errs, errors.New("storage.settings_dsn is required"))
	}

	return errors.Join(errs...)
}

// getEnvOrDefault returns environment variable value or default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses duration environment variable with default.
// Supports formats like "30s", "1m", "2h".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

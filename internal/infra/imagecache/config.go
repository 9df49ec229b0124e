package imagecache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"books-search/internal/pkg/config"
)

// Config holds the image cache and loader configuration.
type Config struct {
	// CacheMB is the cache byte budget in megabytes.
	// Range: 1-512
	// Default: 32
	CacheMB int

	// FetchTimeout bounds a single image download attempt.
	// Range: 1s-1m
	// Default: 10 seconds
	FetchTimeout time.Duration

	// MaxImageKB rejects downloads larger than this.
	// Range: 16-16384
	// Default: 2048 (2MB)
	MaxImageKB int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		CacheMB:      32,
		FetchTimeout: 10 * time.Second,
		MaxImageKB:   2048,
	}
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	var errs []error
	if err := config.InRange(c.CacheMB, 1, 512); err != nil {
		errs = append(errs, fmt.Errorf("cache mb: %w", err))
	}
	if err := config.InRange(c.FetchTimeout, time.Second, time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("fetch timeout: %w", err))
	}
	if err := config.InRange(c.MaxImageKB, 16, 16384); err != nil {
		errs = append(errs, fmt.Errorf("max image kb: %w", err))
	}
	return errors.Join(errs...)
}

// MaxBytes is the cache budget in bytes.
func (c *Config) MaxBytes() int64 {
	return int64(c.CacheMB) << 20
}

// LoadConfigFromEnv loads the configuration. Invalid values fall back to
// their defaults.
//
// Environment variables:
//   - BOOKS_IMAGE_CACHE_MB: Integer 1-512 (default: 32)
//   - BOOKS_IMAGE_TIMEOUT: Duration string (default: 10s)
//   - BOOKS_IMAGE_MAX_KB: Integer 16-16384 (default: 2048)
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.Metrics) (*Config, error) {
	cfg := DefaultConfig()
	env := config.NewEnv(logger, metrics)

	cfg.CacheMB = env.Int("BOOKS_IMAGE_CACHE_MB", cfg.CacheMB, config.Between(1, 512))
	cfg.FetchTimeout = env.Duration("BOOKS_IMAGE_TIMEOUT", cfg.FetchTimeout, config.Between(time.Second, time.Minute))
	cfg.MaxImageKB = env.Int("BOOKS_IMAGE_MAX_KB", cfg.MaxImageKB, config.Between(16, 16384))

	env.Done()
	return &cfg, nil
}

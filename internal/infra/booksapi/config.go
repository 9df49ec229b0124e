// Package booksapi is the client for the remote books catalog (the Google
// Books volumes endpoint). It builds page requests, parses volume lists
// into entity.Book records and exposes the raw body for bound probes.
package booksapi

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"books-search/internal/domain/entity"
	"books-search/internal/pkg/config"
)

// DefaultBaseURL is the public volumes endpoint.
const DefaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Config holds the configuration for the catalog client.
//
// Example usage:
//
//	cfg, _ := LoadConfigFromEnv(logger, config.NewMetrics("books_api"))
//	client := NewClient(*cfg, logger)
type Config struct {
	// BaseURL is the volumes endpoint.
	// Default: https://www.googleapis.com/books/v1/volumes
	BaseURL string

	// APIKey is sent as the "key" query parameter when set.
	APIKey string

	// Timeout bounds a single HTTP attempt.
	// Range: 1s-2m
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the number of attempts per request, the first included.
	// Range: 1-5
	// Default: 3
	MaxRetries int

	// RateLimit is the sustained request rate in requests per second.
	// Range: 0.1-100
	// Default: 2
	RateLimit float64

	// RateBurst is the token bucket size.
	// Range: 1-50
	// Default: 5
	RateBurst int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		Timeout:    10 * time.Second,
		MaxRetries: 3,
		RateLimit:  2,
		RateBurst:  5,
	}
}

// Validate checks every field and reports all failures together.
func (c *Config) Validate() error {
	return errors.Join(
		prefixed("base url", entity.ValidateURL(c.BaseURL)),
		prefixed("timeout", config.InRange(c.Timeout, time.Second, 2*time.Minute)),
		prefixed("max retries", config.InRange(c.MaxRetries, 1, 5)),
		prefixed("rate limit", config.InRange(c.RateLimit, 0.1, 100)),
		prefixed("rate burst", config.InRange(c.RateBurst, 1, 50)),
	)
}

func prefixed(field string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", field, err)
}

// LoadConfigFromEnv loads client configuration from environment variables.
// Invalid values fall back to defaults with a warning; the returned error
// is always nil.
//
// Environment variables:
//   - BOOKS_API_BASE_URL: http(s) URL (default: DefaultBaseURL)
//   - BOOKS_API_KEY: API key (default: none)
//   - BOOKS_API_TIMEOUT: Duration 1s-2m (default: 10s)
//   - BOOKS_API_MAX_RETRIES: Integer 1-5 (default: 3)
//   - BOOKS_API_RATE_LIMIT: Float 0.1-100 requests per second (default: 2)
//   - BOOKS_API_RATE_BURST: Integer 1-50 (default: 5)
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.Metrics) (*Config, error) {
	cfg := DefaultConfig()
	env := config.NewEnv(logger, metrics)

	cfg.BaseURL = env.String("BOOKS_API_BASE_URL", cfg.BaseURL, entity.ValidateURL)
	cfg.APIKey = env.String("BOOKS_API_KEY", "")
	cfg.Timeout = env.Duration("BOOKS_API_TIMEOUT", cfg.Timeout, config.Between(time.Second, 2*time.Minute))
	cfg.MaxRetries = env.Int("BOOKS_API_MAX_RETRIES", cfg.MaxRetries, config.Between(1, 5))
	cfg.RateLimit = env.Float("BOOKS_API_RATE_LIMIT", cfg.RateLimit, config.Between(0.1, 100.0))
	cfg.RateBurst = env.Int("BOOKS_API_RATE_BURST", cfg.RateBurst, config.Between(1, 50))

	env.Done()
	return &cfg, nil
}

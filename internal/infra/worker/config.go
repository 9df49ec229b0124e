// Package worker runs background work for the catalog session: page
// fetches, bound probes and list diffs. Work never runs on the caller's
// goroutine and concurrency is bounded by PoolConfig.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"books-search/internal/pkg/config"
)

// PoolConfig holds the configuration for the background worker pool.
//
// Example usage:
//
//	cfg, _ := LoadConfigFromEnv(logger, metrics)
//	pool := NewPool(*cfg, metrics, logger)
//	defer pool.Close()
type PoolConfig struct {
	// Workers is the maximum number of tasks running at the same time.
	// Range: 1-16
	// Default: 3 (fetch, probe and diff can each make progress)
	Workers int

	// TaskTimeout bounds a single task. The task context is cancelled after it.
	// Range: 1s-5m
	// Default: 30 seconds
	TaskTimeout time.Duration

	// ShutdownTimeout bounds how long Close waits for running tasks.
	// Range: 1s-1m
	// Default: 10 seconds
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a PoolConfig with default values.
func DefaultConfig() PoolConfig {
	return PoolConfig{
		Workers:         3, // fetch, probe, diff
		TaskTimeout:     30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks every field and reports all failures together.
//
// Validation rules:
//   - Workers: 1-16
//   - TaskTimeout: 1s-5m
//   - ShutdownTimeout: 1s-1m
func (c *PoolConfig) Validate() error {
	var errs []error
	if err := config.InRange(c.Workers, 1, 16); err != nil {
		errs = append(errs, fmt.Errorf("workers: %w", err))
	}
	if err := config.InRange(c.TaskTimeout, time.Second, 5*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("task timeout: %w", err))
	}
	if err := config.InRange(c.ShutdownTimeout, time.Second, time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("shutdown timeout: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv loads pool configuration from environment variables.
// Invalid values fall back to their defaults with a warning; the returned
// configuration is always valid and the error always nil.
//
// Environment variables:
//   - BOOKS_WORKERS: Integer 1-16 (default: 3)
//   - BOOKS_TASK_TIMEOUT: Duration 1s-5m (default: 30s)
//   - BOOKS_SHUTDOWN_TIMEOUT: Duration 1s-1m (default: 10s)
func LoadConfigFromEnv(logger *slog.Logger, metrics *PoolMetrics) (*PoolConfig, error) {
	var cm *config.Metrics
	if metrics != nil {
		cm = metrics.Config
	}
	cfg := DefaultConfig()
	env := config.NewEnv(logger, cm)

	cfg.Workers = env.Int("BOOKS_WORKERS", cfg.Workers, config.Between(1, 16))
	cfg.TaskTimeout = env.Duration("BOOKS_TASK_TIMEOUT", cfg.TaskTimeout, config.Between(time.Second, 5*time.Minute))
	cfg.ShutdownTimeout = env.Duration("BOOKS_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout, config.Between(time.Second, time.Minute))

	env.Done()
	return &cfg, nil
}

// Package circuitbreaker guards remote hosts with github.com/sony/gobreaker.
// The catalog and the cover image hosts trip independently.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// stateGauge is 0 closed, 1 half-open, 2 open, by breaker name.
var stateGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "books_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	},
	[]string{"name"},
)

// Config describes when a breaker trips and how it recovers.
type Config struct {
	Name string

	// MaxRequests may pass while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	// The breaker trips once MinRequests have been seen in an interval and
	// at least FailureRatio of them failed.
	MinRequests  uint32
	FailureRatio float64
}

// Catalog is the breaker for the books catalog API. An open breaker makes
// the session show the network error state, so it reopens after 30s.
func Catalog() Config {
	return Config{
		Name:         "books-api",
		MaxRequests:  3,
		Interval:     30 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
}

// Images is the breaker for cover image downloads.
func Images() Config {
	return Config{
		Name:         "image-fetch",
		MaxRequests:  5,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  10,
		FailureRatio: 0.7,
	}
}

// CircuitBreaker wraps a gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	cb   *gobreaker.CircuitBreaker
	name string
}

// New creates a breaker. A cancelled call is neither a success nor a
// failure of the host, so it is counted as a success.
func New(cfg Config, logger *slog.Logger) *CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	stateGauge.WithLabelValues(cfg.Name).Set(0)
	return &CircuitBreaker{
		name: cfg.Name,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.Requests >= cfg.MinRequests &&
					float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				stateGauge.WithLabelValues(name).Set(float64(to))
				logger.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Execute runs fn through cb. While the breaker rejects calls it returns
// gobreaker.ErrOpenState or gobreaker.ErrTooManyRequests without calling fn.
func Execute[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	v, err := cb.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	t, _ := v.(T)
	return t, err
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.cb.State()
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Rejecting reports whether err came from the breaker rather than the call.
func Rejecting(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

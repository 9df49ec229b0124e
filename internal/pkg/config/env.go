// Package config reads component settings from environment variables.
//
// Loading never fails: a value that does not parse or does not pass its
// checks is replaced by the default, logged at warn level and counted in
// the component's Metrics. Components read all of their keys through one
// Env and call Done when finished.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Fallback records a rejected value.
type Fallback struct {
	Key   string
	Value string
	Err   error
}

func (f Fallback) String() string {
	return fmt.Sprintf("%s=%q: %v", f.Key, f.Value, f.Err)
}

// Env reads one component's settings.
type Env struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)

	logger    *slog.Logger
	metrics   *Metrics
	fallbacks []Fallback
}

// NewEnv returns an Env reading the process environment. metrics may be nil.
func NewEnv(logger *slog.Logger, metrics *Metrics) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	return &Env{Lookup: os.LookupEnv, logger: logger, metrics: metrics}
}

// Get reads key with parse. An unset or empty variable yields def without a
// fallback; a value that fails parse or any check yields def with one.
func Get[T any](e *Env, key string, def T, parse func(string) (T, error), checks ...func(T) error) T {
	raw, ok := e.Lookup(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		e.reject(key, raw, def, fmt.Errorf("parse: %w", err))
		return def
	}
	for _, check := range checks {
		if err := check(v); err != nil {
			e.reject(key, raw, def, err)
			return def
		}
	}
	return v
}

func (e *Env) reject(key, raw string, def any, err error) {
	e.fallbacks = append(e.fallbacks, Fallback{Key: key, Value: raw, Err: err})
	e.metrics.recordFallback(key)
	e.logger.Warn("Configuration fallback applied",
		slog.String("key", key),
		slog.String("value", raw),
		slog.Any("default", def),
		slog.Any("error", err))
}

// String returns the raw value of key, or def.
func (e *Env) String(key, def string, checks ...func(string) error) string {
	return Get(e, key, def, func(s string) (string, error) { return s, nil }, checks...)
}

func (e *Env) Int(key string, def int, checks ...func(int) error) int {
	return Get(e, key, def, strconv.Atoi, checks...)
}

func (e *Env) Float(key string, def float64, checks ...func(float64) error) float64 {
	return Get(e, key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	}, checks...)
}

// Duration accepts time.ParseDuration syntax ("30s", "1m30s").
func (e *Env) Duration(key string, def time.Duration, checks ...func(time.Duration) error) time.Duration {
	return Get(e, key, def, time.ParseDuration, checks...)
}

// List splits a comma-separated value, dropping blank items.
func (e *Env) List(key string) []string {
	raw, _ := e.Lookup(key)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Fallbacks returns the values rejected so far.
func (e *Env) Fallbacks() []Fallback {
	return e.fallbacks
}

// Done publishes the load to the metrics.
func (e *Env) Done() {
	e.metrics.loaded(len(e.fallbacks) > 0)
}

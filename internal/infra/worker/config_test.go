package worker

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Workers != 3 {
		t.Errorf("Expected Workers 3, got %d", config.Workers)
	}

	if config.TaskTimeout != 30*time.Second {
		t.Errorf("Expected TaskTimeout 30s, got %v", config.TaskTimeout)
	}

	if config.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected ShutdownTimeout 10s, got %v", config.ShutdownTimeout)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got: %v", err)
	}
}

func TestPoolConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*PoolConfig)
		wantErr    bool
		errContain []string
	}{
		{
			name:    "valid custom",
			modify:  func(c *PoolConfig) { c.Workers = 16; c.TaskTimeout = 5 * time.Minute },
			wantErr: false,
		},
		{
			name:       "zero workers",
			modify:     func(c *PoolConfig) { c.Workers = 0 },
			wantErr:    true,
			errContain: []string{"workers"},
		},
		{
			name:       "too many workers",
			modify:     func(c *PoolConfig) { c.Workers = 17 },
			wantErr:    true,
			errContain: []string{"workers"},
		},
		{
			name:       "task timeout too short",
			modify:     func(c *PoolConfig) { c.TaskTimeout = 100 * time.Millisecond },
			wantErr:    true,
			errContain: []string{"task timeout"},
		},
		{
			name: "multiple errors are aggregated",
			modify: func(c *PoolConfig) {
				c.Workers = -1
				c.ShutdownTimeout = 2 * time.Minute
			},
			wantErr:    true,
			errContain: []string{"workers", "shutdown timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, s := range tt.errContain {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("Expected error to contain %q, got: %v", s, err)
				}
			}
		})
	}
}

// globalTestMetrics is a shared metrics instance for tests to avoid
// duplicate Prometheus registration errors. In production, metrics are
// created once at startup, so this simulates that behavior.
var globalTestMetrics = NewPoolMetrics()

func TestLoadConfigFromEnv_AllEnvVarsValid(t *testing.T) {
	t.Setenv("BOOKS_WORKERS", "8")
	t.Setenv("BOOKS_TASK_TIMEOUT", "1m")
	t.Setenv("BOOKS_SHUTDOWN_TIMEOUT", "5s")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if config.Workers != 8 {
		t.Errorf("Expected Workers 8, got %d", config.Workers)
	}
	if config.TaskTimeout != 1*time.Minute {
		t.Errorf("Expected TaskTimeout 1m, got %v", config.TaskTimeout)
	}
	if config.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected ShutdownTimeout 5s, got %v", config.ShutdownTimeout)
	}

	// No warnings should be logged
	if buf.Len() > 0 {
		t.Errorf("Expected no warnings, got: %s", buf.String())
	}
}

func TestLoadConfigFromEnv_MissingEnvVars(t *testing.T) {
	t.Setenv("BOOKS_WORKERS", "")
	t.Setenv("BOOKS_TASK_TIMEOUT", "")
	t.Setenv("BOOKS_SHUTDOWN_TIMEOUT", "")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}

	if *config != DefaultConfig() {
		t.Errorf("Expected default config, got %+v", *config)
	}

	// Missing env vars don't trigger fallback
	if buf.Len() > 0 {
		t.Errorf("Expected no warnings, got: %s", buf.String())
	}
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("BOOKS_WORKERS", "99")
	t.Setenv("BOOKS_TASK_TIMEOUT", "soon")
	t.Setenv("BOOKS_SHUTDOWN_TIMEOUT", "5s")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	config, err := LoadConfigFromEnv(logger, globalTestMetrics)
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if got := testutil.ToFloat64(globalTestMetrics.Config.FallbackActive); got != 1 {
		t.Errorf("Expected fallback_active 1, got %v", got)
	}

	defaults := DefaultConfig()
	if config.Workers != defaults.Workers {
		t.Errorf("Expected default Workers, got %d", config.Workers)
	}
	if config.TaskTimeout != defaults.TaskTimeout {
		t.Errorf("Expected default TaskTimeout, got %v", config.TaskTimeout)
	}
	if config.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected ShutdownTimeout 5s, got %v", config.ShutdownTimeout)
	}

	logs := buf.String()
	if !strings.Contains(logs, "Configuration fallback applied") {
		t.Errorf("Expected fallback warning, got: %s", logs)
	}
	if !strings.Contains(logs, `"key":"BOOKS_WORKERS"`) || !strings.Contains(logs, `"key":"BOOKS_TASK_TIMEOUT"`) {
		t.Errorf("Expected warnings for Workers and TaskTimeout, got: %s", logs)
	}
}

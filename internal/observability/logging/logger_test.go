package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-search/internal/handler/http/requestid"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "output should be valid JSON")
	return entry
}

func TestLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			assert.Equal(t, tt.want, Level())
		})
	}
}

func TestLevelOr(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, slog.LevelWarn, LevelOr(slog.LevelWarn))

	t.Setenv("LOG_LEVEL", "info")
	assert.Equal(t, slog.LevelInfo, LevelOr(slog.LevelWarn))

	t.Setenv("LOG_LEVEL", "loud")
	assert.Equal(t, slog.LevelWarn, LevelOr(slog.LevelWarn))
}

func TestNew_JSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	logger := New(&buf, FormatJSON)

	logger.Debug("filtered")
	logger.Info("catalog page fetched", slog.String("query", "go"), slog.Int("page", 2))

	assert.NotContains(t, buf.String(), "filtered")
	entry := decode(t, &buf)
	assert.Equal(t, "catalog page fetched", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "go", entry["query"])
	assert.Equal(t, float64(2), entry["page"])
	assert.NotContains(t, entry, "source")
}

func TestNew_TextWithDebug(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	logger := New(&buf, FormatText)

	logger.Debug("state changed", slog.String("state", "fetching"))

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "state=fetching")
	assert.Contains(t, out, "source=")
}

func TestNewLogger_NotNil(t *testing.T) {
	assert.NotNil(t, NewLogger())
}

func TestWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		wantField bool
	}{
		{"with request id", "550e8400-e29b-41d4-a716-446655440000", true},
		{"without request id", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.New(slog.NewJSONHandler(&buf, nil))
			ctx := context.Background()
			if tt.requestID != "" {
				ctx = requestid.WithRequestID(ctx, tt.requestID)
			}

			WithRequestID(ctx, base).Info("search submitted")

			entry := decode(t, &buf)
			if tt.wantField {
				assert.Equal(t, tt.requestID, entry["request_id"])
			} else {
				assert.NotContains(t, entry, "request_id")
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	bad := context.WithValue(context.Background(), loggerContextKey, "not a logger")
	assert.Equal(t, slog.Default(), FromContext(bad))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx).Info("from context")
	assert.Contains(t, buf.String(), "from context")
}

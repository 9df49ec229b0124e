package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"books-search/internal/handler/http/requestid"
)

// Level reads LOG_LEVEL. Supported levels: debug, info, warn, error.
// Anything else is info.
func Level() slog.Level {
	return LevelOr(slog.LevelInfo)
}

// LevelOr reads LOG_LEVEL like Level but returns def when it is unset or
// unknown.
func LevelOr(def slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return def
	}
}

// NewLogger creates a JSON logger on stderr. Stdout stays free for command
// output.
func NewLogger() *slog.Logger {
	return New(os.Stderr, FormatJSON)
}

// Output formats accepted by New.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// New creates a logger writing to w at the LOG_LEVEL level.
func New(w io.Writer, format string) *slog.Logger {
	return NewWithLevel(w, format, Level())
}

// NewWithLevel creates a logger writing to w at level.
func NewWithLevel(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		// debug のときだけソース位置を出す
		AddSource: level <= slog.LevelDebug,
	}
	if format == FormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// WithRequestID returns a new logger that includes the request ID from the context.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With(slog.String("request_id", reqID))
}

// FromContext retrieves the logger from the context, or returns the default logger if not found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"

// Package logging provides slog loggers with context propagation.
//
// Loggers write to stderr, JSON by default and text for the interactive
// shell. LOG_LEVEL selects debug, info, warn or error.
//
// Example usage:
//
//	import "books-search/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("api started", slog.String("addr", addr))
//	}
//
//	func handle(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("search submitted")
//	}
package logging

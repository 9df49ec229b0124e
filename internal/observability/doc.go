// Package observability groups the logging, metrics and tracing packages.
//
// Subpackages:
//   - logging: slog loggers with request ID and context propagation
//   - metrics: Prometheus collectors for HTTP, database and catalog traffic
//   - tracing: OpenTelemetry spans for HTTP handlers and catalog requests
//
// Example usage:
//
//	import (
//	    "books-search/internal/observability/logging"
//	    "books-search/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordCatalogRequest("ok", elapsed)
//	}
package observability

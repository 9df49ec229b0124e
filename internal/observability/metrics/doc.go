// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the application-wide metrics:
//   - HTTP request metrics (duration, count, size)
//   - Catalog request metrics (outcome, duration, records per page)
//   - Cover image download metrics
//   - Settings database metrics
//
// Component-local collectors (worker pool, reconcile engine, pagination
// controller, image cache) live next to their components.
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "books-search/internal/observability/metrics"
//
//	func search(ctx context.Context) {
//	    start := time.Now()
//	    page, err := client.Search(ctx, q)
//	    // ...
//	    metrics.RecordCatalogRequest(metrics.OutcomeSuccess, time.Since(start))
//	}
package metrics

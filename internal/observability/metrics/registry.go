// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Catalog metrics track requests against the remote books catalog
var (
	// CatalogRequestsTotal counts catalog requests by outcome
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_catalog_requests_total",
			Help: "Total number of catalog requests",
		},
		[]string{"outcome"}, // outcome: success, remote_error, malformed, no_connectivity, cancelled
	)

	// CatalogRequestDuration measures catalog request duration, retries included
	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "books_catalog_request_duration_seconds",
			Help:    "Catalog request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// CatalogRecordsReturned measures how many records a parsed page carried
	CatalogRecordsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "books_catalog_records_returned",
			Help:    "Number of records in a parsed catalog page",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 40},
		},
	)

	// CatalogRecordsSkipped counts volumes dropped because they failed validation
	CatalogRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_catalog_records_skipped_total",
			Help: "Total number of catalog volumes skipped during parsing",
		},
		[]string{"field"},
	)

	// ImageFetchTotal counts cover image downloads by result
	ImageFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_image_fetch_total",
			Help: "Total number of cover image downloads",
		},
		[]string{"result"}, // result: success, failure, cached
	)

	// ImageFetchDuration measures time to download a cover image
	ImageFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "books_image_fetch_duration_seconds",
			Help:    "Time taken to download a cover image",
			Buckets: []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2},
		},
	)

	// ImageFetchSize measures downloaded image size in bytes
	ImageFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "books_image_fetch_size_bytes",
			Help:    "Downloaded cover image size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // up to 2MB
		},
	)
)

// Settings database metrics
var (
	// DBQueryDuration measures settings query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "books_settings_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "books_settings_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "books_settings_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// Rate limiting metrics
var (
	// RateLimitRequests counts requests seen by the per-client limiter
	RateLimitRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limit_requests_total",
			Help: "Requests checked by the rate limiter by decision (allowed, denied)",
		},
		[]string{"decision"},
	)

	// RateLimitClients tracks the number of clients with a live limiter
	RateLimitClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_rate_limit_active_clients",
			Help: "Number of client addresses currently tracked by the rate limiter",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}


package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"books-search/internal/handler/http/responsewriter"
	"books-search/internal/observability/metrics"
	"books-search/internal/observability/tracing"
)

// unmatchedRoute labels requests that matched no route, so unknown paths
// do not create new series.
const unmatchedRoute = "unmatched"

// MetricsMiddleware records request count, duration and sizes per chi route
// pattern ("/books/{index}", not "/books/3").
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		wrapped := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(wrapped, r)

		route := tracing.RoutePattern(r)
		if route == "" {
			route = unmatchedRoute
		}
		size := 0
		if r.ContentLength > 0 {
			size = int(r.ContentLength)
		}
		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(wrapped.StatusCode()),
			time.Since(start), size, wrapped.BytesWritten())
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

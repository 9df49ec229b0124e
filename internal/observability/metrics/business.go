package metrics

import (
	"time"
)

// Catalog request outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeRemoteError    = "remote_error"
	OutcomeMalformed      = "malformed"
	OutcomeNoConnectivity = "no_connectivity"
	OutcomeCancelled      = "cancelled"
)

// RecordCatalogRequest records the outcome and duration of one catalog request.
// Duration covers every retry attempt and rate limiter wait.
func RecordCatalogRequest(outcome string, duration time.Duration) {
	CatalogRequestsTotal.WithLabelValues(outcome).Inc()
	CatalogRequestDuration.Observe(duration.Seconds())
}

// RecordCatalogPage records how many records a parsed page produced and
// how many volumes were dropped on the way.
func RecordCatalogPage(returned int, skipped map[string]int) {
	CatalogRecordsReturned.Observe(float64(returned))
	for field, n := range skipped {
		CatalogRecordsSkipped.WithLabelValues(field).Add(float64(n))
	}
}

// RecordImageFetchSuccess records a successful cover image download.
//
// Example:
//
//	start := time.Now()
//	data, err := loader.download(ctx, url)
//	if err == nil {
//	    RecordImageFetchSuccess(time.Since(start), len(data))
//	}
func RecordImageFetchSuccess(duration time.Duration, size int) {
	ImageFetchTotal.WithLabelValues("success").Inc()
	ImageFetchDuration.Observe(duration.Seconds())
	ImageFetchSize.Observe(float64(size))
}

// RecordImageFetchFailed records a failed cover image download.
func RecordImageFetchFailed(duration time.Duration) {
	ImageFetchTotal.WithLabelValues("failure").Inc()
	ImageFetchDuration.Observe(duration.Seconds())
}

// RecordImageFetchCached records an image served from the cache without a download.
func RecordImageFetchCached() {
	ImageFetchTotal.WithLabelValues("cached").Inc()
}

// RecordDBQuery records the duration of a settings database operation.
// Operation should describe the query type (e.g., "get", "put_all").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// TimeDBQuery starts timing a settings database operation. Call the returned
// function when the operation finishes.
//
//	defer metrics.TimeDBQuery("list")()
func TimeDBQuery(operation string) func() {
	start := time.Now()
	return func() {
		RecordDBQuery(operation, time.Since(start))
	}
}

// UpdateDBConnectionStats updates settings database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts page requests.
	// Labels: action (submit for a new query, first, previous, next, last, jump),
	// page_range (page bucket: 1-10, 11-50, etc.)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_pagination_requests_total",
			Help: "Total number of page requests",
		},
		[]string{"action", "page_range"},
	)

	// HighestPage tracks the upper page bound of the last displayed page.
	HighestPage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "books_pagination_highest_page",
			Help: "Current best known upper page bound",
		},
	)
)

// RecordRequest records a page request metric.
func RecordRequest(action string, page int) {
	RequestsTotal.WithLabelValues(action, getPageRangeBucket(page)).Inc()
}

// UpdateHighestPage updates the upper bound gauge.
func UpdateHighestPage(page int) {
	HighestPage.Set(float64(page))
}

// getPageRangeBucket returns the page range bucket for a given page number.
func getPageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}

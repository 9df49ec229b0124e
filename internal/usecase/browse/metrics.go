package browse

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes, used as metric labels.
const (
	OutcomeDisplayed    = "displayed"
	OutcomeEmpty        = "empty"
	OutcomeNetworkError = "network_error"
	OutcomeSuperseded   = "superseded"
	OutcomeFailed       = "failed"
)

var (
	// transitionsTotal tracks controller state changes
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_pagination_transitions_total",
			Help: "Total number of pagination controller state transitions",
		},
		[]string{"from", "to"},
	)

	// fetchDuration tracks the time from fetch start to its outcome,
	// including any page restores
	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "books_pagination_fetch_duration_seconds",
			Help:    "Page fetch duration in seconds by outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"},
	)
)

func recordTransition(from, to State) {
	transitionsTotal.WithLabelValues(from.String(), to.String()).Inc()
}

func recordFetch(outcome string, d time.Duration) {
	fetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

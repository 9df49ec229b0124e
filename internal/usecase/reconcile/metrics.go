package reconcile

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Diff delivery outcomes, used as metric labels.
const (
	OutcomeDelivered  = "delivered"
	OutcomeSuperseded = "superseded"
	OutcomeDetached   = "detached"
	OutcomeCancelled  = "cancelled"
)

var (
	// diffsTotal tracks diff results by delivery outcome
	diffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_reconcile_diffs_total",
			Help: "Total number of list diffs by outcome",
		},
		[]string{"outcome"},
	)

	// operationsTotal tracks delivered edit operations by kind
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_reconcile_operations_total",
			Help: "Total number of delivered edit operations",
		},
		[]string{"kind"}, // kind: remove|move|insert|change
	)

	// diffDuration tracks diff computation time
	diffDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "books_reconcile_diff_duration_seconds",
			Help:    "List diff computation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)
)

func recordDiff(outcome string) {
	diffsTotal.WithLabelValues(outcome).Inc()
}

func recordOps(s Script) {
	for _, op := range s.Ops {
		operationsTotal.WithLabelValues(op.Kind.String()).Inc()
	}
}

func recordDuration(d time.Duration) {
	diffDuration.Observe(d.Seconds())
}

package estimate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// probesTotal tracks page-bound probes by outcome
	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_estimate_probes_total",
			Help: "Total number of page-bound probes",
		},
		[]string{"outcome"}, // outcome: estimated|probe_error|malformed|remote_error|empty
	)

	// probeSourceTotal tracks whether a probe was replayed or sent
	probeSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "books_estimate_probe_source_total",
			Help: "Total number of probes by source",
		},
		[]string{"source"}, // source: replay|remote
	)
)

func recordProbe(outcome string) {
	probesTotal.WithLabelValues(outcome).Inc()
}

func recordSource(source string) {
	probeSourceTotal.WithLabelValues(source).Inc()
}

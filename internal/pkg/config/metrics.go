package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are one component's configuration metrics, prefixed with the
// component name:
//
//	{component}_config_load_timestamp
//	{component}_config_fallbacks_total{key}
//	{component}_config_fallback_active
//
// They are registered with the default registry, so NewMetrics panics when
// called twice with the same component.
type Metrics struct {
	LoadTimestamp  prometheus.Gauge
	FallbacksTotal *prometheus.CounterVec
	FallbackActive prometheus.Gauge
}

func NewMetrics(component string) *Metrics {
	return &Metrics{
		LoadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_load_timestamp",
			Help: "Unix time of the last " + component + " configuration load",
		}),
		FallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_fallbacks_total",
			Help: "Rejected " + component + " configuration values replaced by defaults",
		}, []string{"key"}),
		FallbackActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_fallback_active",
			Help: "1 if the last " + component + " configuration load used a fallback",
		}),
	}
}

func (m *Metrics) recordFallback(key string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabelValues(key).Inc()
}

func (m *Metrics) loaded(fallback bool) {
	if m == nil {
		return
	}
	m.LoadTimestamp.SetToCurrentTime()
	if fallback {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}

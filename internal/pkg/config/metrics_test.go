package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics("config_test_component")

	m.loaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))

	m.recordFallback("BOOKS_WORKERS")
	assert.Equal(t, 1, testutil.CollectAndCount(m.FallbacksTotal, "config_test_component_config_fallbacks_total"))

	assert.Panics(t, func() { NewMetrics("config_test_component") }, "names are registered once")
}

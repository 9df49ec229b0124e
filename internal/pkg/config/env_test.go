package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(vars map[string]string, metrics *Metrics) (*Env, *bytes.Buffer) {
	var buf bytes.Buffer
	e := NewEnv(slog.New(slog.NewTextHandler(&buf, nil)), metrics)
	e.Lookup = func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
	return e, &buf
}

// unregistered builds Metrics outside the default registry so tests can
// create as many as they like.
func unregistered() *Metrics {
	return &Metrics{
		LoadTimestamp:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "t_load"}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_fallbacks"}, []string{"key"}),
		FallbackActive: prometheus.NewGauge(prometheus.GaugeOpts{Name: "t_active"}),
	}
}

func TestEnv_Int(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		vars         map[string]string
		want         int
		wantFallback bool
	}{
		{name: "unset", vars: nil, want: 3},
		{name: "empty", vars: map[string]string{"N": ""}, want: 3},
		{name: "valid", vars: map[string]string{"N": "7"}, want: 7},
		{name: "surrounding spaces", vars: map[string]string{"N": " 8 "}, want: 8},
		{name: "lower bound", vars: map[string]string{"N": "1"}, want: 1},
		{name: "below range", vars: map[string]string{"N": "0"}, want: 3, wantFallback: true},
		{name: "above range", vars: map[string]string{"N": "17"}, want: 3, wantFallback: true},
		{name: "decimal", vars: map[string]string{"N": "2.5"}, want: 3, wantFallback: true},
		{name: "garbage", vars: map[string]string{"N": "many"}, want: 3, wantFallback: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, logs := testEnv(tt.vars, nil)

			assert.Equal(t, tt.want, e.Int("N", 3, Between(1, 16)))
			if tt.wantFallback {
				require.Len(t, e.Fallbacks(), 1)
				assert.Equal(t, "N", e.Fallbacks()[0].Key)
				assert.Contains(t, logs.String(), "Configuration fallback applied")
			} else {
				assert.Empty(t, e.Fallbacks())
				assert.Empty(t, logs.String())
			}
		})
	}
}

func TestEnv_Duration(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(map[string]string{
		"OK":       "1m30s",
		"TOO_LONG": "2h",
		"BAD":      "10",
	}, nil)
	check := Between(time.Second, time.Hour)

	assert.Equal(t, 90*time.Second, e.Duration("OK", time.Minute, check))
	assert.Equal(t, time.Minute, e.Duration("TOO_LONG", time.Minute, check))
	assert.Equal(t, time.Minute, e.Duration("BAD", time.Minute, check), "a bare number has no unit")
	assert.Equal(t, time.Minute, e.Duration("MISSING", time.Minute, check))

	require.Len(t, e.Fallbacks(), 2)
	assert.Contains(t, e.Fallbacks()[0].Err.Error(), "out of range")
	assert.Contains(t, e.Fallbacks()[1].Err.Error(), "parse")
}

func TestEnv_FloatAndString(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(map[string]string{
		"RATE":  "0.5",
		"ORDER": "newest",
		"PRINT": "comics",
	}, nil)

	assert.Equal(t, 0.5, e.Float("RATE", 2, Between(0.1, 100.0)))
	assert.Equal(t, "newest", e.String("ORDER", "relevance", OneOf("relevance", "newest")))
	assert.Equal(t, "all", e.String("PRINT", "all", OneOf("all", "books", "magazines")))
	assert.Equal(t, "plain", e.String("NOTHING", "plain"))

	require.Len(t, e.Fallbacks(), 1)
	assert.Equal(t, `PRINT="comics": "comics" is not one of [all, books, magazines]`, e.Fallbacks()[0].String())
}

func TestEnv_List(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(map[string]string{"ORIGINS": " http://a , ,http://b,"}, nil)
	assert.Equal(t, []string{"http://a", "http://b"}, e.List("ORIGINS"))
	assert.Nil(t, e.List("NONE"))
}

func TestEnv_ChecksRunInOrder(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(map[string]string{"N": "40"}, nil)
	even := func(v int) error {
		if v%2 != 0 {
			return assert.AnError
		}
		return nil
	}

	assert.Equal(t, 40, e.Int("N", 2, even, Between(0, 100)))
	assert.Equal(t, 2, e.Int("N", 2, even, Between(0, 10)))
	assert.Len(t, e.Fallbacks(), 1)
}

func TestEnv_Done_UpdatesMetrics(t *testing.T) {
	t.Parallel()
	m := unregistered()

	e, _ := testEnv(map[string]string{"A": "x", "B": "y"}, m)
	e.Int("A", 1)
	e.Int("B", 1)
	e.Int("A", 1)
	e.Done()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("A")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Positive(t, testutil.ToFloat64(m.LoadTimestamp))

	clean, _ := testEnv(map[string]string{"A": "5"}, m)
	clean.Int("A", 1)
	clean.Done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.FallbackActive))
}

func TestEnv_NilMetrics(t *testing.T) {
	t.Parallel()

	e, _ := testEnv(map[string]string{"A": "x"}, nil)
	assert.NotPanics(t, func() {
		e.Int("A", 1)
		e.Done()
	})
}

func TestNewEnv_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv("BOOKS_TEST_WORKERS", "4")

	e := NewEnv(nil, nil)
	assert.Equal(t, 4, e.Int("BOOKS_TEST_WORKERS", 1))
}

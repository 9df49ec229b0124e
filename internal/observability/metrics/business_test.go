package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordCatalogRequest(t *testing.T) {
	outcomes := []string{
		OutcomeSuccess,
		OutcomeRemoteError,
		OutcomeMalformed,
		OutcomeNoConnectivity,
		OutcomeCancelled,
	}

	for _, outcome := range outcomes {
		t.Run(outcome, func(t *testing.T) {
			before := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues(outcome))

			RecordCatalogRequest(outcome, 150*time.Millisecond)

			after := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues(outcome))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordCatalogPage(t *testing.T) {
	before := testutil.ToFloat64(CatalogRecordsSkipped.WithLabelValues("title"))

	RecordCatalogPage(8, map[string]int{"title": 2})

	after := testutil.ToFloat64(CatalogRecordsSkipped.WithLabelValues("title"))
	assert.Equal(t, before+2, after)

	assert.NotPanics(t, func() {
		RecordCatalogPage(0, nil)
	})
}

func TestRecordImageFetch(t *testing.T) {
	tests := []struct {
		name   string
		result string
		record func()
	}{
		{
			name:   "success",
			result: "success",
			record: func() { RecordImageFetchSuccess(80*time.Millisecond, 24*1024) },
		},
		{
			name:   "failure",
			result: "failure",
			record: func() { RecordImageFetchFailed(2 * time.Second) },
		},
		{
			name:   "cached",
			result: "cached",
			record: RecordImageFetchCached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(ImageFetchTotal.WithLabelValues(tt.result))
			tt.record()
			after := testutil.ToFloat64(ImageFetchTotal.WithLabelValues(tt.result))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		duration  time.Duration
	}{
		{
			name:      "point read",
			operation: "get",
			duration:  2 * time.Millisecond,
		},
		{
			name:      "batch write",
			operation: "put_all",
			duration:  5 * time.Millisecond,
		},
		{
			name:      "slow reset",
			operation: "delete_all",
			duration:  500 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordDBQuery(tt.operation, tt.duration)
			})
		})
	}
}

func TestUpdateDBConnectionStats(t *testing.T) {
	tests := []struct {
		name   string
		active int
		idle   int
	}{
		{
			name:   "no connections",
			active: 0,
			idle:   0,
		},
		{
			name:   "single sqlite connection",
			active: 1,
			idle:   0,
		},
		{
			name:   "postgres pool",
			active: 3,
			idle:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateDBConnectionStats(tt.active, tt.idle)
			assert.Equal(t, float64(tt.active), testutil.ToFloat64(DBConnectionsActive))
			assert.Equal(t, float64(tt.idle), testutil.ToFloat64(DBConnectionsIdle))
		})
	}
}

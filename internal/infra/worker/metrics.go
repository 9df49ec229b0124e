package worker

import (
	"books-search/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics provides Prometheus metrics for the worker pool.
//
// Config carries the books_worker_config_* metrics written by
// LoadConfigFromEnv. Pool metrics:
//   - books_worker_tasks_total: Tasks by kind and status (success/failure/cancelled/panic)
//   - books_worker_task_duration_seconds: Task duration by kind
//   - books_worker_inflight: Tasks currently holding a worker slot
//
// Metrics are registered with the default registry on creation, so create
// one PoolMetrics per process.
type PoolMetrics struct {
	Config *config.Metrics

	// TasksTotal counts finished tasks.
	// Labels: kind (fetch, probe, diff, ...), status
	TasksTotal *prometheus.CounterVec

	// TaskDurationSeconds measures time spent running a task, excluding queueing.
	TaskDurationSeconds *prometheus.HistogramVec

	// ActiveTasks is the number of tasks currently running.
	ActiveTasks prometheus.Gauge
}

// NewPoolMetrics creates a new PoolMetrics instance with all metrics registered.
func NewPoolMetrics() *PoolMetrics {
	return &PoolMetrics{
		Config: config.NewMetrics("books_worker"),

		TasksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "books_worker_tasks_total",
			Help: "Total number of pool tasks by kind and status",
		}, []string{"kind", "status"}),

		TaskDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "books_worker_task_duration_seconds",
			Help:    "Duration of pool task execution in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30}, // 1ms to 30s
		}, []string{"kind"}),

		ActiveTasks: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "books_worker_inflight",
			Help: "Number of pool tasks currently running",
		}),
	}
}

// RecordTask increments the task counter for the given kind and status.
func (m *PoolMetrics) RecordTask(kind, status string) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(kind, status).Inc()
}

// RecordTaskDuration observes a task duration in seconds.
func (m *PoolMetrics) RecordTaskDuration(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.TaskDurationSeconds.WithLabelValues(kind).Observe(seconds)
}

// TaskStarted and TaskFinished track the active task gauge.
func (m *PoolMetrics) TaskStarted() {
	if m != nil {
		m.ActiveTasks.Inc()
	}
}

func (m *PoolMetrics) TaskFinished() {
	if m != nil {
		m.ActiveTasks.Dec()
	}
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Task statuses, used as metric labels.
const (
	StatusSuccess   = "success"
	StatusFailure   = "failure"
	StatusCancelled = "cancelled"
	StatusPanic     = "panic"
)

// Pool runs submitted tasks in the background with at most Workers tasks
// running at once. Submit never blocks on a free slot.
type Pool struct {
	cfg     PoolConfig
	sem     *semaphore.Weighted
	group   errgroup.Group
	metrics *PoolMetrics
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool. metrics may be nil.
func NewPool(cfg PoolConfig, metrics *PoolMetrics, logger *slog.Logger) *Pool {
	if err := cfg.Validate(); err != nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.Workers)),
		metrics: metrics,
		logger:  logger,
	}
}

// Submit schedules fn and returns immediately. name identifies the task in
// logs; the part before ':' is its metric kind ("diff:list" -> "diff").
// fn receives ctx bounded by TaskTimeout. If ctx is cancelled before a slot
// frees up, fn is not run.
func (p *Pool) Submit(ctx context.Context, name string, fn func(context.Context) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	kind := taskKind(name)
	p.group.Go(func() error {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			p.metrics.RecordTask(kind, StatusCancelled)
			p.logger.Debug("task cancelled before start", slog.String("task", name))
			return nil
		}
		defer p.sem.Release(1)

		p.run(ctx, name, kind, fn)
		return nil
	})
	return nil
}

func (p *Pool) run(ctx context.Context, name, kind string, fn func(context.Context) error) {
	taskCtx, cancel := context.WithTimeout(ctx, p.cfg.TaskTimeout)
	defer cancel()

	p.metrics.TaskStarted()
	defer p.metrics.TaskFinished()

	start := time.Now()
	defer func() {
		p.metrics.RecordTaskDuration(kind, time.Since(start).Seconds())
		if r := recover(); r != nil {
			p.metrics.RecordTask(kind, StatusPanic)
			p.logger.Error("task panicked",
				slog.String("task", name),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()

	err := fn(taskCtx)
	switch {
	case err == nil:
		p.metrics.RecordTask(kind, StatusSuccess)
	case errors.Is(err, context.Canceled):
		p.metrics.RecordTask(kind, StatusCancelled)
	default:
		p.metrics.RecordTask(kind, StatusFailure)
		p.logger.Warn("task failed",
			slog.String("task", name),
			slog.Any("error", err))
	}
}

// Close stops accepting tasks and waits up to ShutdownTimeout for running
// tasks to finish.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(p.cfg.ShutdownTimeout):
		p.logger.Warn("worker pool shutdown timed out",
			slog.Duration("timeout", p.cfg.ShutdownTimeout))
		return fmt.Errorf("worker pool shutdown: %w", context.DeadlineExceeded)
	}
}

func taskKind(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}

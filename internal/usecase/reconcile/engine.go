package reconcile

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"books-search/internal/domain/entity"
)

// Runner executes background work. worker.Pool satisfies it.
type Runner interface {
	Submit(ctx context.Context, name string, fn func(context.Context) error) error
}

// DeliverFunc receives a computed script together with the list it produces.
type DeliverFunc func(script Script, list []*entity.Book)

// goRunner runs each task on its own goroutine.
type goRunner struct{}

func (goRunner) Submit(ctx context.Context, _ string, fn func(context.Context) error) error {
	go func() { _ = fn(ctx) }()
	return nil
}

// Engine owns the displayed list of one consumer. Each Swap diffs the new list
// against the last delivered one off the caller's goroutine. A later Swap or
// Clear supersedes any result not yet delivered, and nothing is delivered
// after Detach.
type Engine struct {
	name     string
	identity Identity
	runner   Runner
	logger   *slog.Logger

	deliverMu sync.Mutex // held while a result is checked and delivered

	mu         sync.Mutex
	baseline   []*entity.Book
	generation uint64
	detached   bool
}

// NewEngine creates an Engine for the named consumer. A nil runner runs each
// diff on a fresh goroutine.
func NewEngine(name string, identity Identity, runner Runner, logger *slog.Logger) (*Engine, error) {
	if identity.IsZero() {
		return nil, ErrIdentityPolicyRequired
	}
	if runner == nil {
		runner = goRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		name:     name,
		identity: identity,
		runner:   runner,
		logger:   logger.With(slog.String("list", name)),
	}, nil
}

// Identity returns the policy the engine diffs with.
func (e *Engine) Identity() Identity { return e.identity }

// Swap schedules a diff from the current baseline to newList. deliver is
// called exactly once if this request is still the latest one when the
// diff completes and the engine is attached; otherwise the result is
// dropped. The baseline becomes newList only on delivery.
func (e *Engine) Swap(ctx context.Context, newList []*entity.Book, deliver DeliverFunc) error {
	target := slices.Clone(newList)

	e.mu.Lock()
	e.generation++
	gen := e.generation
	base := e.baseline
	e.mu.Unlock()

	return e.runner.Submit(ctx, "diff:"+e.name, func(ctx context.Context) error {
		start := time.Now()
		script, err := Diff(base, target, e.identity)
		if err != nil {
			return err
		}
		recordDuration(time.Since(start))
		e.deliver(ctx, gen, script, target, deliver)
		return nil
	})
}

func (e *Engine) deliver(ctx context.Context, gen uint64, script Script, target []*entity.Book, fn DeliverFunc) {
	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()

	e.mu.Lock()
	switch {
	case e.detached:
		e.mu.Unlock()
		recordDiff(OutcomeDetached)
		e.logger.Debug("diff discarded, consumer detached")
		return
	case gen != e.generation:
		e.mu.Unlock()
		recordDiff(OutcomeSuperseded)
		e.logger.Debug("diff discarded, superseded", slog.Uint64("generation", gen))
		return
	case ctx.Err() != nil:
		e.mu.Unlock()
		recordDiff(OutcomeCancelled)
		return
	}
	e.baseline = target
	e.mu.Unlock()

	recordDiff(OutcomeDelivered)
	recordOps(script)
	if fn != nil {
		fn(script, slices.Clone(target))
	}
}

// Clear drops the baseline and supersedes every pending diff.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.generation++
	e.baseline = nil
	e.mu.Unlock()
}

// Baseline returns a copy of the last delivered list.
func (e *Engine) Baseline() []*entity.Book {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.baseline)
}

// Detach stops delivery for good. Work already running completes and is
// discarded.
func (e *Engine) Detach() {
	e.mu.Lock()
	e.detached = true
	e.generation++
	e.baseline = nil
	e.mu.Unlock()
}

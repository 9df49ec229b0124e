package reconcile_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-search/internal/domain/entity"
	"books-search/internal/usecase/reconcile"
)

// manualRunner queues tasks until the test runs them.
type manualRunner struct {
	mu    sync.Mutex
	tasks []func(context.Context) error
	err   error
}

func (r *manualRunner) Submit(_ context.Context, _ string, fn func(context.Context) error) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.tasks = append(r.tasks, fn)
	r.mu.Unlock()
	return nil
}

func (r *manualRunner) run(t *testing.T, i int) {
	t.Helper()
	r.mu.Lock()
	fn := r.tasks[i]
	r.mu.Unlock()
	require.NoError(t, fn(context.Background()))
}

type delivery struct {
	script reconcile.Script
	list   []*entity.Book
}

type collector struct {
	mu  sync.Mutex
	got []delivery
}

func (c *collector) deliver(s reconcile.Script, l []*entity.Book) {
	c.mu.Lock()
	c.got = append(c.got, delivery{script: s, list: l})
	c.mu.Unlock()
}

func (c *collector) deliveries() []delivery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]delivery(nil), c.got...)
}

func newEngine(t *testing.T, runner reconcile.Runner) *reconcile.Engine {
	t.Helper()
	e, err := reconcile.NewEngine("results", reconcile.IdentityByID, runner, nil)
	require.NoError(t, err)
	return e
}

func TestNewEngine_RequiresIdentity(t *testing.T) {
	t.Parallel()
	_, err := reconcile.NewEngine("results", reconcile.Identity{}, nil, nil)
	assert.ErrorIs(t, err, reconcile.ErrIdentityPolicyRequired)
}

func TestEngine_DeliversOnceAndAdvancesBaseline(t *testing.T) {
	t.Parallel()
	runner := &manualRunner{}
	engine := newEngine(t, runner)
	c := &collector{}
	ctx := context.Background()

	require.NoError(t, engine.Swap(ctx, list("a", "b"), c.deliver))
	runner.run(t, 0)

	got := c.deliveries()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].script.Count(reconcile.OpInsert))
	assert.Equal(t, []string{"a", "b"}, ids(engine.Baseline()))

	// The next diff starts from the delivered list.
	require.NoError(t, engine.Swap(ctx, list("a", "b", "c"), c.deliver))
	runner.run(t, 1)

	got = c.deliveries()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].script.Count(reconcile.OpInsert))
	assert.Equal(t, 1, len(got[1].script.Ops))
}

func TestEngine_LaterSwapSupersedes(t *testing.T) {
	t.Parallel()
	runner := &manualRunner{}
	engine := newEngine(t, runner)
	first, second := &collector{}, &collector{}
	ctx := context.Background()

	require.NoError(t, engine.Swap(ctx, list("a"), first.deliver))
	require.NoError(t, engine.Swap(ctx, list("x", "y"), second.deliver))

	// The superseded diff finishes last but is never delivered.
	runner.run(t, 1)
	runner.run(t, 0)

	assert.Empty(t, first.deliveries())
	require.Len(t, second.deliveries(), 1)
	assert.Equal(t, []string{"x", "y"}, ids(engine.Baseline()))
}

func TestEngine_SupersededBaselineIsNotUsed(t *testing.T) {
	t.Parallel()
	runner := &manualRunner{}
	engine := newEngine(t, runner)
	c := &collector{}
	ctx := context.Background()

	require.NoError(t, engine.Swap(ctx, list("a", "b"), c.deliver))
	runner.run(t, 0)

	require.NoError(t, engine.Swap(ctx, list("c"), c.deliver)) // superseded
	require.NoError(t, engine.Swap(ctx, list("a", "b", "d"), c.deliver))
	runner.run(t, 2)
	runner.run(t, 1)

	got := c.deliveries()
	require.Len(t, got, 2)
	// Diffed against [a b], not against the undelivered [c].
	assert.Equal(t, 1, len(got[1].script.Ops))
	assert.Equal(t, reconcile.OpInsert, got[1].script.Ops[0].Kind)
}

func TestEngine_DetachDiscards(t *testing.T) {
	t.Parallel()
	runner := &manualRunner{}
	engine := newEngine(t, runner)
	c := &collector{}

	require.NoError(t, engine.Swap(context.Background(), list("a"), c.deliver))
	engine.Detach()
	runner.run(t, 0)

	assert.Empty(t, c.deliveries())
	assert.Empty(t, engine.Baseline())

	require.NoError(t, engine.Swap(context.Background(), list("a"), c.deliver))
	runner.run(t, 1)
	assert.Empty(t, c.deliveries(), "detached engine must stay silent")
}

func TestEngine_ClearResetsBaseline(t *testing.T) {
	t.Parallel()
	runner := &manualRunner{}
	engine := newEngine(t, runner)
	c := &collector{}
	ctx := context.Background()

	require.NoError(t, engine.Swap(ctx, list("a", "b"), c.deliver))
	runner.run(t, 0)
	require.NoError(t, engine.Swap(ctx, list("a"), c.deliver))
	engine.Clear()
	runner.run(t, 1)

	assert.Len(t, c.deliveries(), 1)
	assert.Empty(t, engine.Baseline())

	require.NoError(t, engine.Swap(ctx, list("a"), c.deliver))
	runner.run(t, 2)
	got := c.deliveries()
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[1].script.Count(reconcile.OpInsert))
}

func TestEngine_CancelledContextDiscards(t *testing.T) {
	t.Parallel()
	c := &collector{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	runner := runnerFunc(func(ctx context.Context, fn func(context.Context) error) error {
		go func() {
			defer wg.Done()
			_ = fn(ctx)
		}()
		return nil
	})
	engine, err := reconcile.NewEngine("results", reconcile.IdentityByID, runner, nil)
	require.NoError(t, err)

	require.NoError(t, engine.Swap(ctx, list("a"), c.deliver))
	wg.Wait()
	assert.Empty(t, c.deliveries())
}

func TestEngine_RunnerError(t *testing.T) {
	t.Parallel()
	boom := errors.New("pool closed")
	engine := newEngine(t, &manualRunner{err: boom})

	err := engine.Swap(context.Background(), list("a"), nil)
	assert.ErrorIs(t, err, boom)
}

func TestEngine_DefaultRunner(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, nil)
	done := make(chan reconcile.Script, 1)

	require.NoError(t, engine.Swap(context.Background(), list("a", "b"), func(s reconcile.Script, _ []*entity.Book) {
		done <- s
	}))

	select {
	case s := <-done:
		assert.Equal(t, 2, s.Count(reconcile.OpInsert))
	case <-time.After(2 * time.Second):
		t.Fatal("diff was not delivered")
	}
}

type runnerFunc func(ctx context.Context, fn func(context.Context) error) error

func (f runnerFunc) Submit(ctx context.Context, _ string, fn func(context.Context) error) error {
	return f(ctx, fn)
}

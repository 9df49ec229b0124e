package browse

import (
	"context"
	"slices"
	"sync"

	"books-search/internal/domain/entity"
	"books-search/internal/usecase/reconcile"
)

// Signal names the last settle event a Recorder saw.
type Signal string

const (
	SignalNone         Signal = ""
	SignalPage         Signal = "page"
	SignalEmpty        Signal = "empty"
	SignalNetworkError Signal = "network_error"
)

// Restore describes a page restore reported by the controller.
type Restore struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Snapshot is what a Recorder currently shows.
type Snapshot struct {
	Rows     []*entity.Book
	Page     PageState
	Signal   Signal
	Restores []Restore // restores that led to the last settle event
	Applied  reconcile.Script
	Err      error // last script that could not be applied
}

// Recorder is a Surface that keeps its own copy of the rows by applying
// every edit script it receives. The CLI and the HTTP API render from it.
//
// A settle event is a page state change, an empty result or a network error.
// Callers take a Mark before starting an action and Wait for the first
// settle event after it.
type Recorder struct {
	mu       sync.Mutex
	rows     []*entity.Book
	page     PageState
	signal   Signal
	restores []Restore
	pending  []Restore
	applied  reconcile.Script
	err      error
	seq      uint64
	changed  chan struct{}
}

var _ Surface = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{changed: make(chan struct{})}
}

// OnEditScriptReady applies script to the recorded rows.
func (r *Recorder) OnEditScriptReady(script reconcile.Script) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, err := reconcile.Apply(r.rows, script)
	if err != nil {
		r.err = err
		return
	}
	r.rows = rows
	r.applied = script
	r.err = nil
}

// OnPagesStateChanged records the page state and settles.
func (r *Recorder) OnPagesStateChanged(state PageState) {
	r.mu.Lock()
	r.page = state
	r.signal = SignalPage
	r.settleLocked()
	r.mu.Unlock()
}

// OnEmptyResult settles with an empty result.
func (r *Recorder) OnEmptyResult() {
	r.mu.Lock()
	r.page = PageState{}
	r.signal = SignalEmpty
	r.settleLocked()
	r.mu.Unlock()
}

// OnNetworkError settles with a network error.
func (r *Recorder) OnNetworkError() {
	r.mu.Lock()
	r.signal = SignalNetworkError
	r.settleLocked()
	r.mu.Unlock()
}

// OnPageRestored records the restore. It does not settle.
func (r *Recorder) OnPageRestored(from, to int) {
	r.mu.Lock()
	r.pending = append(r.pending, Restore{From: from, To: to})
	r.mu.Unlock()
}

func (r *Recorder) settleLocked() {
	r.restores, r.pending = r.pending, nil
	r.seq++
	close(r.changed)
	r.changed = make(chan struct{})
}

// Snapshot returns the current view.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Recorder) snapshotLocked() Snapshot {
	return Snapshot{
		Rows:     slices.Clone(r.rows),
		Page:     r.page,
		Signal:   r.signal,
		Restores: slices.Clone(r.restores),
		Applied:  r.applied,
		Err:      r.err,
	}
}

// Mark returns the current settle sequence number.
func (r *Recorder) Mark() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Wait blocks until a settle event after mark, then returns the view.
func (r *Recorder) Wait(ctx context.Context, mark uint64) (Snapshot, error) {
	for {
		r.mu.Lock()
		if r.seq > mark {
			snap := r.snapshotLocked()
			r.mu.Unlock()
			return snap, nil
		}
		ch := r.changed
		r.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
}

package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"books-search/internal/domain/entity"
)

// ErrNotSettled is returned when an action did not settle within the
// session's settle timeout. The action keeps running.
var ErrNotSettled = errors.New("browse: result not settled yet")

// ErrNoSuchRow is returned for a row index outside the displayed list.
var ErrNoSuchRow = errors.New("browse: no such row")

// DefaultSettleTimeout bounds how long Session actions wait for a result.
const DefaultSettleTimeout = 30 * time.Second

// Session couples a Controller with one Recorder per presentation kind and
// turns its asynchronous deliveries into request/response calls.
type Session struct {
	ctl       *Controller
	recorders [2]*Recorder
	settle    time.Duration
}

// NewSession attaches a Recorder for both kinds and activates initial.
func NewSession(ctl *Controller, initial PresentationKind, settle time.Duration) (*Session, error) {
	if ctl == nil {
		return nil, errors.New("browse: session requires a controller")
	}
	if settle <= 0 {
		settle = DefaultSettleTimeout
	}
	s := &Session{
		ctl:       ctl,
		recorders: [2]*Recorder{NewRecorder(), NewRecorder()},
		settle:    settle,
	}
	for _, kind := range []PresentationKind{KindList, KindGrid} {
		if kind == initial {
			continue
		}
		if err := ctl.Attach(s.presentation(kind)); err != nil {
			return nil, err
		}
	}
	if err := ctl.SetPresentation(s.presentation(initial)); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) presentation(kind PresentationKind) Presentation {
	if kind == KindGrid {
		return GridPresentation(s.recorders[KindGrid])
	}
	return ListPresentation(s.recorders[KindList])
}

// Controller returns the underlying controller.
func (s *Session) Controller() *Controller { return s.ctl }

// Recorder returns the surface of kind.
func (s *Session) Recorder(kind PresentationKind) *Recorder {
	return s.recorders[kind]
}

// View returns what the active presentation currently shows.
func (s *Session) View() Snapshot {
	return s.recorders[s.ctl.ActivePresentation()].Snapshot()
}

// Search submits query and waits for its first settle event.
func (s *Session) Search(ctx context.Context, query string) (Snapshot, error) {
	return s.await(ctx, func() error {
		return s.ctl.Submit(ctx, query)
	})
}

// Page navigates and waits for the result.
func (s *Session) Page(ctx context.Context, action Action, page int) (Snapshot, error) {
	return s.await(ctx, func() error {
		return s.ctl.Navigate(ctx, action, page)
	})
}

// Reload refetches the current page and waits for the result.
func (s *Session) Reload(ctx context.Context) (Snapshot, error) {
	return s.await(ctx, func() error {
		return s.ctl.Reload(ctx)
	})
}

// Present makes kind the active presentation. When there are rows to show
// it waits until they reach the new surface.
func (s *Session) Present(ctx context.Context, kind PresentationKind) (Snapshot, error) {
	rec := s.recorders[kind]
	mark := rec.Mark()
	if err := s.ctl.SetPresentation(s.presentation(kind)); err != nil {
		return Snapshot{}, err
	}
	if s.ctl.State() != StateDisplaying || len(s.ctl.Records()) == 0 {
		return rec.Snapshot(), nil
	}
	return s.wait(ctx, rec, mark)
}

// Row returns the record at 1-based index in the active presentation.
func (s *Session) Row(index int) (*entity.Book, error) {
	rows := s.View().Rows
	if index < 1 || index > len(rows) {
		return nil, fmt.Errorf("%w: %d (showing %d)", ErrNoSuchRow, index, len(rows))
	}
	return rows[index-1], nil
}

// Close closes the controller.
func (s *Session) Close() {
	s.ctl.Close()
}

func (s *Session) await(ctx context.Context, start func() error) (Snapshot, error) {
	rec := s.recorders[s.ctl.ActivePresentation()]
	mark := rec.Mark()
	if err := start(); err != nil {
		return Snapshot{}, err
	}
	return s.wait(ctx, rec, mark)
}

func (s *Session) wait(ctx context.Context, rec *Recorder, mark uint64) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.settle)
	defer cancel()

	snap, err := rec.Wait(ctx, mark)
	if errors.Is(err, context.DeadlineExceeded) {
		return rec.Snapshot(), ErrNotSettled
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

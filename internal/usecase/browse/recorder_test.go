package browse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-search/internal/domain/entity"
	"books-search/internal/usecase/browse"
	"books-search/internal/usecase/reconcile"
)

func books(ids ...string) []*entity.Book {
	out := make([]*entity.Book, len(ids))
	for i, id := range ids {
		out[i] = entity.NewBook(entity.BookFields{ID: id, Title: "Title " + id})
	}
	return out
}

func TestRecorder_AppliesScripts(t *testing.T) {
	rec := browse.NewRecorder()

	first, err := reconcile.Diff(nil, books("a", "b", "c"), reconcile.IdentityByID)
	require.NoError(t, err)
	rec.OnEditScriptReady(first)

	next, err := reconcile.Diff(books("a", "b", "c"), books("c", "a", "d"), reconcile.IdentityByID)
	require.NoError(t, err)
	rec.OnEditScriptReady(next)

	snap := rec.Snapshot()
	assert.Equal(t, []string{"c", "a", "d"}, rowIDs(snap.Rows))
	assert.NoError(t, snap.Err)
}

func TestRecorder_KeepsRowsOnInvalidScript(t *testing.T) {
	rec := browse.NewRecorder()
	rec.OnEditScriptReady(reconcile.Script{Ops: []reconcile.Op{{Kind: reconcile.OpRemove, From: 3}}})

	snap := rec.Snapshot()
	assert.ErrorIs(t, snap.Err, reconcile.ErrInvalidScript)
	assert.Empty(t, snap.Rows)
}

func TestRecorder_WaitReturnsAfterMark(t *testing.T) {
	rec := browse.NewRecorder()
	mark := rec.Mark()

	go func() {
		time.Sleep(10 * time.Millisecond)
		rec.OnPageRestored(4, 3)
		rec.OnPagesStateChanged(browse.PageState{Current: 3, Highest: 3})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := rec.Wait(ctx, mark)
	require.NoError(t, err)
	assert.Equal(t, browse.SignalPage, snap.Signal)
	assert.Equal(t, 3, snap.Page.Current)
	assert.Equal(t, []browse.Restore{{From: 4, To: 3}}, snap.Restores)
	assert.Greater(t, rec.Mark(), mark)
}

func TestRecorder_WaitHonoursContext(t *testing.T) {
	rec := browse.NewRecorder()
	rec.OnEmptyResult()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := rec.Wait(ctx, rec.Mark())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// an event before the mark is returned at once
	snap, err := rec.Wait(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, browse.SignalEmpty, snap.Signal)
}

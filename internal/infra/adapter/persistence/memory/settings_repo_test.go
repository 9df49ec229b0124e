package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepo()

	_, found, err := repo.Get(ctx, "startIndex")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.PutAll(ctx, map[string]string{"startIndex": "3", "endIndex": "9"}))

	v, found, err := repo.Get(ctx, "startIndex")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "3", v)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"startIndex": "3", "endIndex": "9"}, all)

	all["startIndex"] = "mutated"
	v, _, _ = repo.Get(ctx, "startIndex")
	assert.Equal(t, "3", v)

	require.NoError(t, repo.DeleteAll(ctx))
	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

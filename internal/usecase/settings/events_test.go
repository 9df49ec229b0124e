package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-search/internal/usecase/settings"
)

func TestReloadFilter_ShouldReload(t *testing.T) {
	t.Parallel()
	filter := settings.NewReloadFilter(nil)

	tests := []struct {
		name string
		ev   settings.ChangeEvent
		want bool
	}{
		{"user changes page size", settings.ChangeEvent{Key: settings.KeyMaxResults}, true},
		{"user changes order", settings.ChangeEvent{Key: settings.KeyOrderBy}, true},
		{"user changes current page", settings.ChangeEvent{Key: settings.KeyStartIndex}, true},
		{"silent page write", settings.ChangeEvent{Key: settings.KeyStartIndex, Silent: true}, false},
		{"derived upper bound", settings.ChangeEvent{Key: settings.KeyEndIndex}, false},
		{"last displayed page", settings.ChangeEvent{Key: settings.KeyLastDisplayedPage}, false},
		{"last query", settings.ChangeEvent{Key: settings.KeyLastSearchQuery}, false},
		{"reset", settings.ChangeEvent{Key: settings.KeyResetSettings}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, filter.ShouldReload(tt.ev))
		})
	}
}

// A key excluded around a single write suppresses the reload for that write
// only; the next write to the same key reloads again.
func TestExclusionSet_AddWriteRemove(t *testing.T) {
	t.Parallel()
	store := settings.NewStore(memoryRepo(), nil)
	filter := settings.NewReloadFilter(settings.NewExclusionSet(settings.DefaultExcludedKeys()...))
	ctx := context.Background()

	reloads := 0
	store.Subscribe(func(ev settings.ChangeEvent) {
		if filter.ShouldReload(ev) {
			reloads++
		}
	})

	filter.Exclusions().Exclude(settings.KeyStartIndex)
	require.NoError(t, store.Set(ctx, settings.KeyStartIndex, "2"))
	filter.Exclusions().Include(settings.KeyStartIndex)
	assert.Equal(t, 0, reloads)

	require.NoError(t, store.Set(ctx, settings.KeyStartIndex, "3"))
	assert.Equal(t, 1, reloads)
}

func TestExclusionSet_Keys(t *testing.T) {
	t.Parallel()
	set := settings.NewExclusionSet(settings.DefaultExcludedKeys()...)

	assert.Equal(t, []settings.Key{
		settings.KeyEndIndex,
		settings.KeyLastDisplayedPage,
		settings.KeyLastSearchQuery,
		settings.KeyResetSettings,
	}, set.Keys())

	set.Include(settings.KeyEndIndex)
	assert.False(t, set.Contains(settings.KeyEndIndex))
	set.Exclude(settings.KeyMaxResults)
	assert.True(t, set.Contains(settings.KeyMaxResults))
}

func TestKeys_DeclarationOrder(t *testing.T) {
	t.Parallel()
	keys := settings.Keys()

	require.Len(t, keys, 10)
	assert.Equal(t, settings.KeyStartIndex, keys[0])
	assert.Equal(t, "10", settings.Default(settings.KeyMaxResults))
	assert.Equal(t, "", settings.Default(settings.Key("nope")))
}

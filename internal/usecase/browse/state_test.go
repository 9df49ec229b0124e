package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in       string
		want     Action
		wantPage int
		wantErr  bool
	}{
		{in: "first", want: ActionFirst},
		{in: "Prev", want: ActionPrevious},
		{in: "previous", want: ActionPrevious},
		{in: " next ", want: ActionNext},
		{in: "LAST", want: ActionLast},
		{in: "jump", want: ActionJump},
		{in: "7", want: ActionJump, wantPage: 7},
		{in: "sideways", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, page, err := ParseAction(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPage, page)
		})
	}
}

func TestAction_Target(t *testing.T) {
	tests := []struct {
		action Action
		page   int
		want   int
	}{
		{ActionFirst, 0, 1},
		{ActionPrevious, 0, 3},
		{ActionNext, 0, 5},
		{ActionLast, 0, 9},
		{ActionJump, 6, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.action.target(4, 9, tt.page), tt.action.String())
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "network_error", StateNetworkError.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.True(t, StateFetching.busy())
	assert.True(t, StateRestoring.busy())
	assert.False(t, StateDisplaying.busy())

	b, err := StateEmpty.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "empty", string(b))
}

func TestParsePresentationKind(t *testing.T) {
	k, ok := ParsePresentationKind("grid")
	assert.True(t, ok)
	assert.Equal(t, KindGrid, k)

	_, ok = ParsePresentationKind("table")
	assert.False(t, ok)
}

package imagecache

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blob(n int) []byte {
	return bytes.Repeat([]byte{0xff}, n)
}

func TestCache_GetPut(t *testing.T) {
	c := New(100)

	_, ok := c.Get("a")
	assert.False(t, ok)

	require.True(t, c.Put("a", blob(10)))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Len(t, got, 10)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(10), c.Size())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(30)
	evictionsBefore := testutil.ToFloat64(cacheEvictionsTotal)

	c.Put("a", blob(10))
	c.Put("b", blob(10))
	c.Put("c", blob(10))

	// a becomes most recently used, so b is the oldest
	_, _ = c.Get("a")
	c.Put("d", blob(10))

	_, ok := c.Get("b")
	assert.False(t, ok, "b should be evicted")
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, int64(30), c.Size())
	assert.Equal(t, evictionsBefore+1, testutil.ToFloat64(cacheEvictionsTotal))
}

func TestCache_LargeEntryEvictsSeveral(t *testing.T) {
	c := New(30)
	c.Put("a", blob(10))
	c.Put("b", blob(10))
	c.Put("c", blob(10))

	require.True(t, c.Put("big", blob(25)))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(25), c.Size())
}

func TestCache_RejectsOversizedAndEmpty(t *testing.T) {
	c := New(30)
	c.Put("a", blob(10))

	assert.False(t, c.Put("huge", blob(31)))
	assert.False(t, c.Put("empty", nil))
	assert.False(t, c.Put("", blob(1)))

	assert.Equal(t, 1, c.Len(), "rejected puts must not evict")
}

func TestCache_ReplaceUpdatesSize(t *testing.T) {
	c := New(100)
	c.Put("a", blob(10))
	c.Put("a", blob(40))

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(40), c.Size())
}

func TestCache_Clear(t *testing.T) {
	c := New(100)
	c.Put("a", blob(10))
	c.Put("b", blob(10))

	c.Clear()

	assert.Zero(t, c.Len())
	assert.Zero(t, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)

	// still usable after clear
	assert.True(t, c.Put("c", blob(10)))
	assert.Equal(t, 1, c.Len())
}

func TestCache_DefaultBudget(t *testing.T) {
	assert.Equal(t, DefaultMaxBytes, New(0).MaxBytes())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New(1000)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("k%d", (i+j)%30)
				c.Put(key, blob(10+j%20))
				_, _ = c.Get(key)
				if j%25 == 0 {
					c.Clear()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), int64(1000))
}

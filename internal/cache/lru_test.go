package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](3)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", 4)

	_, ok = c.Get("b")
	assert.False(t, ok, "least-recently-used entry should be evicted")

	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "entry %q should survive", key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestLRU_CapacityPlusOneDistinctKeys(t *testing.T) {
	c := NewLRU[string, int](DefaultCapacity)

	for i := 0; i <= DefaultCapacity; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}

	_, ok := c.Get("key-0")
	assert.False(t, ok, "oldest key should report a miss after N+1 inserts")
	assert.Equal(t, DefaultCapacity, c.Len())
}

func TestLRU_PutExistingKeyUpdatesInPlace(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10)
	c.Put("c", 3)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got)

	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Delete("a")
	c.Delete("missing")

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestNewLRU_BadCapacityFallsBack(t *testing.T) {
	c := NewLRU[string, int](0)
	for i := 0; i < DefaultCapacity+5; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}
	assert.Equal(t, DefaultCapacity, c.Len())
}

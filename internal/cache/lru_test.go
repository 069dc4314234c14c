package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagcache/dagstore/internal/dagtypes"
)

func TestNodeCachePutGet(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	n := dagtypes.Node{Data: []byte("hi")}
	h := dagtypes.Hash{1}
	c.Put(h, n)

	got, ok := c.Get(h)
	require.True(t, ok)
	assert.Equal(t, n, got)
}

func TestNodeCacheMiss(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	_, ok := c.Get(dagtypes.Hash{9})
	assert.False(t, ok)
}

func TestNodeCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	h1, h2, h3 := dagtypes.Hash{1}, dagtypes.Hash{2}, dagtypes.Hash{3}
	c.Put(h1, dagtypes.Node{Data: []byte("1")})
	c.Put(h2, dagtypes.Node{Data: []byte("2")})

	// touch h1 so h2 becomes the least-recently-used entry
	_, _ = c.Get(h1)
	c.Put(h3, dagtypes.Node{Data: []byte("3")})

	_, ok := c.Get(h2)
	assert.False(t, ok, "h2 should have been evicted")

	_, ok = c.Get(h1)
	assert.True(t, ok)
	_, ok = c.Get(h3)
	assert.True(t, ok)
}

func TestNodeCacheContainsDoesNotAffectRecency(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	h1, h2, h3 := dagtypes.Hash{1}, dagtypes.Hash{2}, dagtypes.Hash{3}

	c.Put(h1, dagtypes.Node{})
	c.Put(h2, dagtypes.Node{})
	assert.True(t, c.Contains(h1))

	c.Put(h3, dagtypes.Node{})
	assert.False(t, c.Contains(h1), "Contains must not have refreshed h1, so h1 was still least recently used and evicted")
}

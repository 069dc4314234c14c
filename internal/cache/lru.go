package cache

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/dagcache/dagstore/internal/dagtypes"
)

// NodeCache is a fixed-size, thread-safe hash -> Node cache. The zero value
// is not usable; construct with New.
//
// golang-lru's Cache already guards its internal structure with a single
// mutex around an O(1) operation, which is exactly the "exclusive-lock
// around the LRU structure; critical section is O(1) amortized" resource
// model of spec.md §5.
type NodeCache struct {
	inner *lru.Cache
}

// New creates a NodeCache bounded to size entries. size must be positive.
func New(size int) (*NodeCache, error) {
	inner, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &NodeCache{inner: inner}, nil
}

// Get returns the cached node for hash, if present, refreshing its
// recency. The bool reports whether hash was present.
func (c *NodeCache) Get(hash dagtypes.Hash) (dagtypes.Node, bool) {
	v, ok := c.inner.Get(hash)
	if !ok {
		return dagtypes.Node{}, false
	}
	return v.(dagtypes.Node), true
}

// Put inserts or refreshes hash -> node, evicting the least-recently-used
// entry if the cache is at capacity.
func (c *NodeCache) Put(hash dagtypes.Hash, node dagtypes.Node) {
	c.inner.Add(hash, node)
}

// Contains reports whether hash is cached without affecting recency. The
// opportunistic-get expansion does not use it: it reads through
// readthrough.Getter.CachePeek, which calls Get.
func (c *NodeCache) Contains(hash dagtypes.Hash) bool {
	return c.inner.Contains(hash)
}

// Len reports the current number of cached entries.
func (c *NodeCache) Len() int {
	return c.inner.Len()
}

// Package readthrough implements the read-through get of spec.md §4.D: a
// cache lookup that falls back to the blob store on miss and populates the
// cache with what it found. It is the single point every other engine
// (bulk-put's materialize step, recursive-get's per-node fetch,
// opportunistic-get's initial fetch) goes through to read a node.
package readthrough

import (
	"github.com/dagcache/dagstore/internal/cache"
	"github.com/dagcache/dagstore/internal/dagtypes"
	"github.com/dagcache/dagstore/internal/store"
)

// Getter performs cache-then-store reads and populates the cache on a
// store hit, per spec.md §4.D. It is logically at-most-once per hash per
// call, not globally memoized — callers that need cross-call memoization
// (recursive-get) layer their own scheduled-set on top.
type Getter struct {
	cache *cache.NodeCache
	blobs *store.BlobStore
}

// New builds a Getter over the given cache and blob store.
func New(c *cache.NodeCache, blobs *store.BlobStore) *Getter {
	return &Getter{cache: c, blobs: blobs}
}

// GetAndCache returns the node for hash. On a cache hit it returns
// directly; on a miss it reads through to the blob store and, if found,
// stores the result in the cache before returning it. Store errors
// (including NotFound) propagate unchanged; there is no negative caching
// of misses.
func (g *Getter) GetAndCache(hash dagtypes.Hash) (dagtypes.Node, error) {
	if n, ok := g.cache.Get(hash); ok {
		return n, nil
	}

	n, err := g.blobs.Get(hash)
	if err != nil {
		return dagtypes.Node{}, err
	}
	g.cache.Put(hash, n)
	return n, nil
}

// Put stores n through to the blob store and populates the cache with the
// result, mirroring the write-through half of spec.md §4.D's policy. This
// is what bulk-put's materialize step calls once a node's children are
// resolved.
func (g *Getter) Put(n dagtypes.Node) (dagtypes.Hash, error) {
	hash, err := g.blobs.Put(n)
	if err != nil {
		return hash, err
	}
	g.cache.Put(hash, n)
	return hash, nil
}

// CachePeek returns the cached node for hash, if present, for components
// (opportunistic-get) that need cache-only visibility without a store
// fallback. It goes through NodeCache.Get, so a hit refreshes the entry's
// recency.
func (g *Getter) CachePeek(hash dagtypes.Hash) (dagtypes.Node, bool) {
	return g.cache.Get(hash)
}

// Package oneget implements the opportunistic single-get of spec.md §4.H:
// fetch one node normally, then greedily expand a cache-only BFS frontier
// of its links so an RPC client can amortize round trips for hot
// subgraphs without paying for a full recursive fetch.
package oneget

import (
	"github.com/dagcache/dagstore/internal/dagtypes"
	"github.com/dagcache/dagstore/internal/readthrough"
)

// DefaultMaxExtra is the compile-time policy spec.md §4.H allows in place
// of a protocol-level parameter. NewWithMaxExtra takes any other value;
// the RPC facade uses New, since no request message carries a max_extra.
const DefaultMaxExtra = 4

// Extra is one node picked up by the cache-only expansion, paired with the
// header that referenced it from wherever it was discovered.
type Extra struct {
	Header dagtypes.Header
	Node   dagtypes.Node
}

// Result is the return value of Get: the requested node plus whatever
// extras the cache-only expansion turned up.
type Result struct {
	Requested dagtypes.Node
	Extras    []Extra
}

// Getter performs opportunistic single-gets over a readthrough.Getter,
// expanding only cache-resident children.
type Getter struct {
	getter   *readthrough.Getter
	maxExtra int
}

// New builds a Getter with DefaultMaxExtra.
func New(getter *readthrough.Getter) *Getter {
	return &Getter{getter: getter, maxExtra: DefaultMaxExtra}
}

// NewWithMaxExtra builds a Getter with an explicit max_extra.
func NewWithMaxExtra(getter *readthrough.Getter, maxExtra int) *Getter {
	return &Getter{getter: getter, maxExtra: maxExtra}
}

// Get fetches hash via the read-through path (cache, then store), then
// expands a BFS frontier of its links, following only children already
// present in the cache — cache presence is checked but a miss never
// triggers a store read during expansion. The expansion halts when the
// frontier empties or when len(extras)+len(frontier) >= maxExtra-1, per
// spec.md §4.H.
func (g *Getter) Get(hash dagtypes.Hash) (Result, error) {
	requested, err := g.getter.GetAndCache(hash)
	if err != nil {
		return Result{}, err
	}

	seen := map[dagtypes.Hash]struct{}{hash: {}}
	frontier := make([]dagtypes.Header, 0, len(requested.Links))
	for _, l := range requested.Links {
		if _, dup := seen[l.Hash]; dup {
			continue
		}
		seen[l.Hash] = struct{}{}
		frontier = append(frontier, l)
	}

	var extras []Extra
	for len(frontier) > 0 && len(extras)+len(frontier) < g.maxExtra-1 {
		hdr := frontier[0]
		frontier = frontier[1:]

		node, ok := g.getter.CachePeek(hdr.Hash)
		if !ok {
			continue
		}
		extras = append(extras, Extra{Header: hdr, Node: node})

		for _, l := range node.Links {
			if _, dup := seen[l.Hash]; dup {
				continue
			}
			seen[l.Hash] = struct{}{}
			frontier = append(frontier, l)
		}
	}

	return Result{Requested: requested, Extras: extras}, nil
}

package bulkput

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dagcache/dagstore/internal/dagtypes"
	"github.com/dagcache/dagstore/internal/readthrough"
	"github.com/dagcache/dagstore/internal/store"
)

// IdHash pairs a client-local Id with the content hash it published to,
// one entry per publish of a Local child (spec.md §4.F's "uploaded"
// sequence). The root has no Id and gets no entry; an Id reached under
// several parents gets one entry per parent.
type IdHash struct {
	Id   dagtypes.Id
	Hash dagtypes.Hash
}

// Result is the return value of PutTree: the hash the tree's root
// materialized to, plus every (Id, Hash) pair produced along the way. The
// order of Uploaded is unspecified (spec.md §5).
type Result struct {
	RootHash dagtypes.Hash
	Uploaded []IdHash
}

// Engine is the bulk-put engine. It reads and writes through a
// readthrough.Getter, so every materialized node ends up in both the blob
// store and the cache.
type Engine struct {
	getter *readthrough.Getter
}

// New builds an Engine over the given read-through getter.
func New(getter *readthrough.Getter) *Engine {
	return &Engine{getter: getter}
}

// uploadAcc collects (Id, Hash) pairs from concurrent publishers.
type uploadAcc struct {
	mu    sync.Mutex
	items []IdHash
}

func (a *uploadAcc) add(id dagtypes.Id, hash dagtypes.Hash) {
	a.mu.Lock()
	a.items = append(a.items, IdHash{Id: id, Hash: hash})
	a.mu.Unlock()
}

// PutTree publishes tree bottom-up and returns the root's hash plus the
// full (Id, Hash) accumulator, per spec.md §4.F. Any StoreIO (or other)
// error in any subtask fails the whole call with that error; blobs
// written by sibling subtasks before the failure are not reverted
// (spec.md's documented failure semantics).
func (e *Engine) PutTree(tree dagtypes.ValidatedTree) (Result, error) {
	acc := &uploadAcc{}
	rootHash, err := e.publish(tree.Root, tree.Nodes, acc)
	if err != nil {
		return Result{}, err
	}
	return Result{RootHash: rootHash, Uploaded: acc.items}, nil
}

// CasRequest names the mutable-name key to advance once PutTree succeeds.
type CasRequest struct {
	Key      string
	Previous *dagtypes.Hash
}

// PutTreeWithCas performs PutTree, then on success attempts
// register.CAS(req.Key, req.Previous, rootHash). A CAS conflict does not
// roll back the bulk put: the blobs remain in the store, and
// PutTreeWithCas returns the conflict error alongside the already-computed
// Result so the caller can inspect what got published even though the
// name was not advanced, per spec.md §4.F.
func PutTreeWithCas(e *Engine, reg *store.Register, tree dagtypes.ValidatedTree, req CasRequest) (Result, error) {
	result, err := e.PutTree(tree)
	if err != nil {
		return Result{}, err
	}
	if casErr := reg.CAS(req.Key, req.Previous, result.RootHash); casErr != nil {
		return result, casErr
	}
	return result, nil
}

// publish resolves node's children (fanning each Local child out to its own
// goroutine via an errgroup.Group), assembles the node with headers in
// input link order regardless of which child finished first, stores it
// through the read-through getter, and returns the resulting hash. The
// group has no context, so a child error does not cancel its siblings:
// Wait returns once every child has finished, and the first child error
// is returned as publish's own error.
func (e *Engine) publish(node dagtypes.PendingNode, nodes map[dagtypes.Id]dagtypes.PendingNode, acc *uploadAcc) (dagtypes.Hash, error) {
	headers := make([]dagtypes.Header, len(node.Links))

	var g errgroup.Group
	for i, link := range node.Links {
		if link.Kind == dagtypes.LinkRemote {
			headers[i] = link.Remote
			continue
		}

		i, id := i, link.Local
		child := nodes[id] // validate.Tree guarantees this key exists

		g.Go(func() error {
			hash, err := e.publish(child, nodes, acc)
			if err != nil {
				return err
			}
			acc.add(id, hash)
			headers[i] = dagtypes.Header{Id: id, Hash: hash}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return dagtypes.Hash{}, err
	}

	hash, err := e.getter.Put(dagtypes.Node{Links: headers, Data: node.Data})
	if err != nil {
		return dagtypes.Hash{}, err
	}
	return hash, nil
}

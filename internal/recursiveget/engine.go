package recursiveget

import (
	"context"
	"sync"

	"github.com/dagcache/dagstore/internal/dagtypes"
	"github.com/dagcache/dagstore/internal/readthrough"
)

// Item is one element of the stream GetRecursive produces: either a
// successfully fetched (Hash, Node) pair, or Err set when the fetch for
// Hash failed. A failed fetch does not terminate the stream — only the
// subtree rooted at that hash is abandoned (spec.md §4.G).
type Item struct {
	Hash dagtypes.Hash
	Node dagtypes.Node
	Err  error
}

// DefaultBufferSize is the capacity of the output channel when callers do
// not specify one. It bounds how far a fast producer can run ahead of a
// slow consumer before workers start blocking on send.
const DefaultBufferSize = 64

// Engine is the recursive-get engine, reading every node through a
// readthrough.Getter.
type Engine struct {
	getter     *readthrough.Getter
	bufferSize int
}

// New builds an Engine with the default output buffer size.
func New(getter *readthrough.Getter) *Engine {
	return &Engine{getter: getter, bufferSize: DefaultBufferSize}
}

// NewWithBuffer builds an Engine with an explicit output channel capacity.
func NewWithBuffer(getter *readthrough.Getter, bufferSize int) *Engine {
	return &Engine{getter: getter, bufferSize: bufferSize}
}

// GetRecursive streams rootHash and every node transitively reachable
// from it, each exactly once, starting with the root. The returned
// channel is closed once every spawned worker has finished — either
// because traversal exhausted the reachable set or because ctx was
// canceled (the caller's analog of "dropping the receiver": canceling ctx
// causes in-flight workers to abandon their sends and stop spawning new
// children).
func (e *Engine) GetRecursive(ctx context.Context, rootHash dagtypes.Hash) <-chan Item {
	out := make(chan Item, e.bufferSize)

	scheduled := &sync.Map{}
	scheduled.Store(rootHash, struct{}{})

	var wg sync.WaitGroup
	wg.Add(1)
	go e.worker(ctx, rootHash, out, scheduled, &wg)

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// worker fetches hash, emits it, and spawns a worker for every child whose
// hash was not already scheduled. The scheduled-set insert-and-spawn is
// atomic per hash (sync.Map.LoadOrStore), so at most one worker ever runs
// per hash per call, satisfying the "uniqueness of streamed hashes"
// invariant (spec.md §8 invariant 5).
func (e *Engine) worker(ctx context.Context, hash dagtypes.Hash, out chan<- Item, scheduled *sync.Map, wg *sync.WaitGroup) {
	defer wg.Done()

	node, err := e.getter.GetAndCache(hash)
	if err != nil {
		sendOrAbandon(ctx, out, Item{Hash: hash, Err: err})
		return
	}
	if !sendOrAbandon(ctx, out, Item{Hash: hash, Node: node}) {
		return
	}

	for _, link := range node.Links {
		if _, alreadyScheduled := scheduled.LoadOrStore(link.Hash, struct{}{}); alreadyScheduled {
			continue
		}
		wg.Add(1)
		go e.worker(ctx, link.Hash, out, scheduled, wg)
	}
}

// sendOrAbandon attempts to deliver item, returning false if ctx was
// canceled before the send could complete — the signal for a worker to
// abandon the rest of its subtree without spawning further children.
func sendOrAbandon(ctx context.Context, out chan<- Item, item Item) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

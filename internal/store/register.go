package store

import (
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/dagcache/dagstore/internal/dagerr"
	"github.com/dagcache/dagstore/internal/dagtypes"
)

// Register is the mutable-name register of spec.md §4.B: key -> Hash,
// mutated only by compare-and-swap. It shares a Pebble handle with
// BlobStore but writes into the disjoint "name:" key prefix.
//
// CAS atomicity is per-key: the Register's map of per-key mutexes
// serializes the read-compare-write sequence for a given key, matching
// §4.B's "CAS is a single linearization point; concurrent CAS on the same
// key serialize." CAS on different keys proceeds independently, since each
// key gets its own mutex.
type Register struct {
	db *pebble.DB

	mu       sync.Mutex // protects keyLocks
	keyLocks map[string]*sync.Mutex
}

// NewRegister wraps db (typically the same handle backing a BlobStore) as
// a mutable-name register.
func NewRegister(db *pebble.DB) *Register {
	return &Register{db: db, keyLocks: make(map[string]*sync.Mutex)}
}

func (r *Register) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		r.keyLocks[key] = l
	}
	return l
}

// Get returns the hash currently bound to key, or (zero, false, nil) if
// the key has never been set.
func (r *Register) Get(key string) (dagtypes.Hash, bool, error) {
	raw, closer, err := r.db.Get(nameKey(key))
	if err == pebble.ErrNotFound {
		return dagtypes.Hash{}, false, nil
	}
	if err != nil {
		return dagtypes.Hash{}, false, dagerr.Wrap(dagerr.StoreIO, err, "get name")
	}
	defer closer.Close()

	if len(raw) != dagtypes.HashSize {
		return dagtypes.Hash{}, false, dagerr.Newf(dagerr.StoreIO, "corrupt name register value for %q", key)
	}
	var h dagtypes.Hash
	copy(h[:], raw)
	return h, true, nil
}

// CAS atomically sets key to proposed iff the current value equals
// previous (nil previous means "must be currently unset"). On success it
// returns nil. On conflict it returns a *dagerr.CasConflictError-wrapped
// error carrying the value actually observed, per spec.md §4.B.
func (r *Register) CAS(key string, previous *dagtypes.Hash, proposed dagtypes.Hash) error {
	lock := r.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	current, ok, err := r.Get(key)
	if err != nil {
		return err
	}

	switch {
	case !ok && previous != nil:
		return dagerr.NewCasConflict(key, nil)
	case ok && previous == nil:
		actual := current
		return dagerr.NewCasConflict(key, actual[:])
	case ok && previous != nil && current != *previous:
		actual := current
		return dagerr.NewCasConflict(key, actual[:])
	}

	if err := r.db.Set(nameKey(key), proposed[:], pebble.Sync); err != nil {
		return dagerr.Wrap(dagerr.StoreIO, err, "cas set")
	}
	return nil
}

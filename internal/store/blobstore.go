package store

import (
	"github.com/cockroachdb/pebble"

	"github.com/dagcache/dagstore/internal/dagerr"
	"github.com/dagcache/dagstore/internal/dagtypes"
)

// blobKeySuffix identifies the Blake2s digest family in the persisted key,
// per spec.md §6 ("base58 of the hash followed by a fixed suffix
// identifying the digest family").
const blobKeySuffix = ".blake2"

// namePrefix puts mutable-name keys in a namespace disjoint from blob
// keys; base58 never produces a leading "name:" since base58's alphabet
// excludes ':'.
const namePrefix = "name:"

func blobKey(h dagtypes.Hash) []byte {
	return append([]byte(h.String()), blobKeySuffix...)
}

func nameKey(key string) []byte {
	return append([]byte(namePrefix), key...)
}

// BlobStore is the hashed blob store of spec.md §4.A: content-addressed,
// idempotent puts, backed by an embedded Pebble database.
type BlobStore struct {
	db *pebble.DB
}

// OpenBlobStore opens (creating if absent) a Pebble database at dir and
// wraps it as a BlobStore.
func OpenBlobStore(dir string) (*BlobStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, dagerr.Wrap(dagerr.StoreIO, err, "open pebble store")
	}
	return &BlobStore{db: db}, nil
}

// NewBlobStoreFromDB wraps an already-open Pebble handle, letting the blob
// store and the mutable-name register (store.Register) share one database.
func NewBlobStoreFromDB(db *pebble.DB) *BlobStore {
	return &BlobStore{db: db}
}

// DB exposes the underlying Pebble handle so a Register can be built over
// the same database, keeping blob and name keys in one file on disk while
// staying in disjoint key prefixes.
func (s *BlobStore) DB() *pebble.DB {
	return s.db
}

// Close releases the underlying Pebble handle.
func (s *BlobStore) Close() error {
	if err := s.db.Close(); err != nil {
		return dagerr.Wrap(dagerr.StoreIO, err, "close pebble store")
	}
	return nil
}

// Get fetches and decodes the node stored under hash. It returns a
// dagerr.NotFound error if no blob is stored under that key.
func (s *BlobStore) Get(hash dagtypes.Hash) (dagtypes.Node, error) {
	raw, closer, err := s.db.Get(blobKey(hash))
	if err == pebble.ErrNotFound {
		return dagtypes.Node{}, dagerr.Newf(dagerr.NotFound, "blob %s not found", hash)
	}
	if err != nil {
		return dagtypes.Node{}, dagerr.Wrap(dagerr.StoreIO, err, "get blob")
	}
	defer closer.Close()

	node, decErr := dagtypes.Decode(raw)
	if decErr != nil {
		return dagtypes.Node{}, dagerr.Wrap(dagerr.Decode, decErr, "decode stored blob")
	}
	return node, nil
}

// Put computes n's canonical hash, writes hash -> serialized(n) if no such
// key already exists, and returns the hash either way. Repeated puts of
// the same content are no-ops (idempotent), satisfying spec.md §4.A and
// invariant 3 of §8.
func (s *BlobStore) Put(n dagtypes.Node) (dagtypes.Hash, error) {
	hash := dagtypes.CanonicalHash(n)
	key := blobKey(hash)

	_, closer, err := s.db.Get(key)
	if err == nil {
		closer.Close()
		return hash, nil
	}
	if err != pebble.ErrNotFound {
		return hash, dagerr.Wrap(dagerr.StoreIO, err, "probe blob before put")
	}

	if err := s.db.Set(key, dagtypes.Encode(n), pebble.Sync); err != nil {
		return hash, dagerr.Wrap(dagerr.StoreIO, err, "put blob")
	}
	return hash, nil
}

// Has reports whether hash is already present, without decoding the
// stored node. Used by components that only need presence (e.g. nothing
// in the core today, but kept small and exported for RPC-facade use).
func (s *BlobStore) Has(hash dagtypes.Hash) (bool, error) {
	_, closer, err := s.db.Get(blobKey(hash))
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, dagerr.Wrap(dagerr.StoreIO, err, "probe blob")
	}
	closer.Close()
	return true, nil
}

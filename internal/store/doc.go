// Package store implements the DAG store's two persisted components: the
// hashed blob store (spec.md §4.A) and the mutable-name register (§4.B).
// Both share a single embedded Pebble instance, keyed in disjoint
// namespaces so canonical-hash keys and mutable-name keys can never
// collide.
//
// # Key layout
//
//	blob:  base58(hash) + ".blake2"
//	name:  "name:" + key
//
// Every blob and name write is committed with pebble.Sync, so it is
// synced to Pebble's WAL before the call returns.
package store

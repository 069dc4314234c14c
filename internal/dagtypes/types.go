// Package dagtypes defines the domain model shared by every component of the
// DAG store: the content hash, the client-local id used inside a bulk-put
// request, the header that links a parent to a child, the node itself, and
// the pending-node shapes a bulk-put payload is built from before anything
// has been hashed.
//
// Nothing in this package talks to storage, the network, or a cache. It is
// the vocabulary the rest of the module shares.
package dagtypes

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2s"
)

// HashSize is the width, in bytes, of a content hash. The reference digest
// family is Blake2s-256, which produces exactly this many bytes.
const HashSize = 32

// Hash is the content-derived identity of a stored Node. Two nodes with the
// same logical content (same link order, same link ids/hashes, same data)
// hash identically; this is the sole basis for deduplication in the blob
// store.
type Hash [HashSize]byte

// String renders the hash as base58, matching the display form used by the
// persisted key layout (§6 of the spec: base58(hash) + digest suffix).
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// IsZero reports whether h is the all-zero hash (never a valid content
// hash in practice, but not specially rejected by the store).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ParseHash decodes a base58 string produced by Hash.String back into a
// Hash, failing if the decoded length does not match HashSize.
func ParseHash(s string) (Hash, error) {
	var h Hash
	decoded, err := base58.Decode(s)
	if err != nil {
		return h, err
	}
	if len(decoded) != HashSize {
		return h, errInvalidHashLength(len(decoded))
	}
	copy(h[:], decoded)
	return h, nil
}

type hashLengthError int

func (e hashLengthError) Error() string {
	return "dagtypes: decoded hash has wrong length"
}

func errInvalidHashLength(n int) error {
	return hashLengthError(n)
}

// Id is a client-assigned 32-bit integer, unique within a single bulk-put
// request, naming a pending node before it has a content hash.
type Id uint32

// Header is a typed reference appearing inside a node's link list: the
// in-request Id the client used when it built the payload, paired with the
// Hash the child resolved to once published. Both fields are always
// populated on a stored Node; Id is carried through even though, once
// stored, only Hash is load-bearing for identity — it lets a decoder
// recover which client-local slot a link came from if that matters to a
// higher layer.
type Header struct {
	Id   Id
	Hash Hash
}

// Node is the atomic object persisted by the store: an ordered sequence of
// links plus an opaque data payload. data is never interpreted by this
// package or any package in this module — only higher layers assign it
// meaning.
type Node struct {
	Links []Header
	Data  []byte
}

// CanonicalHash computes n's content hash per spec.md §3: the digest of,
// for each link in order, the link's Id as 4 big-endian bytes followed by
// the link's 32-byte Hash, concatenated across all links in link order,
// followed by the data bytes. Link order is part of node identity —
// reordering links (even identical links) changes the hash.
func CanonicalHash(n Node) Hash {
	buf := make([]byte, 0, len(n.Links)*(4+HashSize)+len(n.Data))
	var idBytes [4]byte
	for _, l := range n.Links {
		binary.BigEndian.PutUint32(idBytes[:], uint32(l.Id))
		buf = append(buf, idBytes[:]...)
		buf = append(buf, l.Hash[:]...)
	}
	buf = append(buf, n.Data...)
	sum := blake2s.Sum256(buf)
	return Hash(sum)
}

// Encode serializes n into the deterministic binary wire/storage form: a
// varint link count, then for each link a 4-byte big-endian id and the
// 32-byte hash in link order, then the raw data bytes. This is the same
// byte layout CanonicalHash digests (modulo the leading count, which is
// not part of the hash but is needed to delimit links from data on
// decode).
func Encode(n Node) []byte {
	var buf bytes.Buffer
	var countBytes [8]byte
	nWritten := binary.PutUvarint(countBytes[:], uint64(len(n.Links)))
	buf.Write(countBytes[:nWritten])

	var idBytes [4]byte
	for _, l := range n.Links {
		binary.BigEndian.PutUint32(idBytes[:], uint32(l.Id))
		buf.Write(idBytes[:])
		buf.Write(l.Hash[:])
	}
	buf.Write(n.Data)
	return buf.Bytes()
}

// Decode is the inverse of Encode. It returns a decode error (as a plain
// error; internal/store wraps this into dagerr's Decode error kind)
// if the buffer is truncated mid-link.
func Decode(raw []byte) (Node, error) {
	r := bytes.NewReader(raw)
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return Node{}, decodeError{"link count"}
	}
	links := make([]Header, 0, count)
	for i := uint64(0); i < count; i++ {
		var idBytes [4]byte
		if _, err := readFull(r, idBytes[:]); err != nil {
			return Node{}, decodeError{"link id"}
		}
		var h Hash
		if _, err := readFull(r, h[:]); err != nil {
			return Node{}, decodeError{"link hash"}
		}
		links = append(links, Header{Id: Id(binary.BigEndian.Uint32(idBytes[:])), Hash: h})
	}
	data := make([]byte, r.Len())
	if _, err := r.Read(data); err != nil && r.Len() > 0 {
		return Node{}, decodeError{"data"}
	}
	return Node{Links: links, Data: data}, nil
}

func readFull(r *bytes.Reader, p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := r.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

type decodeError struct{ field string }

func (e decodeError) Error() string { return "dagtypes: truncated node encoding at " + e.field }

// LinkKind distinguishes the two shapes a pending-node link can take before
// a bulk-put request has been published.
type LinkKind int

const (
	// LinkRemote is a link to a node that already lives in the store.
	LinkRemote LinkKind = iota
	// LinkLocal is a link to another pending node within the same request.
	LinkLocal
)

// PendingLink is one child reference inside a PendingNode. Exactly one of
// Remote/Local applies, selected by Kind.
type PendingLink struct {
	Kind   LinkKind
	Remote Header // valid iff Kind == LinkRemote
	Local  Id     // valid iff Kind == LinkLocal
}

// RemoteLink constructs a PendingLink pointing at an already-stored node.
func RemoteLink(h Header) PendingLink { return PendingLink{Kind: LinkRemote, Remote: h} }

// LocalLink constructs a PendingLink pointing at another node in the same
// bulk-put request.
func LocalLink(id Id) PendingLink { return PendingLink{Kind: LinkLocal, Local: id} }

// PendingNode is a node as submitted in a bulk-put request, before any
// Local links have been resolved to hashes.
type PendingNode struct {
	Links []PendingLink
	Data  []byte
}

// LocalChildren returns, in link order, the Ids referenced by n's Local
// links. Used by the tree validator's reachability walk.
func (n PendingNode) LocalChildren() []Id {
	var ids []Id
	for _, l := range n.Links {
		if l.Kind == LinkLocal {
			ids = append(ids, l.Local)
		}
	}
	return ids
}

// ValidatedTree is a bulk-put payload that has passed validate.Tree: every
// Local reference resolves within Nodes, and every entry of Nodes is
// reachable from Root.
type ValidatedTree struct {
	Root  PendingNode
	Nodes map[Id]PendingNode
}

// sortedHeaders is a small helper used by tests to compare header slices
// independent of slice identity; it does not reorder hashing input anywhere
// in the production path, since link order is load-bearing there.
func sortedHeaders(hs []Header) []Header {
	out := append([]Header(nil), hs...)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Hash[:], out[j].Hash[:]) < 0
	})
	return out
}

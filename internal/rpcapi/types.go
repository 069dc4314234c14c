// Package rpcapi defines the wire message types of spec.md §6, field for
// field. These are plain JSON-tagged Go structs rather than generated
// protobuf code: no file in this module's reference corpus hand-writes
// generated protobuf message bindings, and protoc tooling is not
// available in this environment (see DESIGN.md). The four RPCs are
// exposed over HTTP by internal/rpcserver using these types as the
// request/response bodies, with GetNodes streamed as newline-delimited
// JSON over a chunked response.
package rpcapi

import (
	"encoding/json"

	"github.com/dagcache/dagstore/internal/dagtypes"
)

// HashMsg mirrors the wire Hash message: a fixed 32-byte value.
type HashMsg struct {
	HashData []byte `json:"hash_data"`
}

// IdMsg mirrors the wire Id message.
type IdMsg struct {
	IdData uint32 `json:"id_data"`
}

// HeaderMsg mirrors the wire Header message: an in-request Id paired with
// the stored child's Hash.
type HeaderMsg struct {
	HeaderId   IdMsg   `json:"header_id"`
	HeaderHash HashMsg `json:"header_hash"`
}

// NodeMsg mirrors the wire Node message.
type NodeMsg struct {
	NodeLinks []HeaderMsg `json:"node_links"`
	NodeData  []byte      `json:"node_data"`
}

// BulkPutLinkMsg mirrors the wire BulkPutLink oneof: exactly one of
// InStore/InReq is set.
type BulkPutLinkMsg struct {
	InStore *HeaderMsg `json:"in_store,omitempty"`
	InReq   *IdMsg     `json:"in_req,omitempty"`
}

// BulkPutNodeMsg mirrors the wire BulkPutNode message.
type BulkPutNodeMsg struct {
	Links []BulkPutLinkMsg `json:"links"`
	Data  []byte           `json:"data"`
}

// BulkPutNodeWithIdMsg mirrors the wire BulkPutNodeWithId message.
type BulkPutNodeWithIdMsg struct {
	Id   IdMsg          `json:"id"`
	Node BulkPutNodeMsg `json:"node"`
}

// BulkPutReqMsg mirrors the wire BulkPutReq message: the root node plus
// every other pending node in the request, addressed by Id.
type BulkPutReqMsg struct {
	RootNode BulkPutNodeMsg         `json:"root_node"`
	Nodes    []BulkPutNodeWithIdMsg `json:"nodes"`
}

// ToDomainHash converts a HashMsg into a dagtypes.Hash, failing if the
// byte length does not match dagtypes.HashSize.
func ToDomainHash(m HashMsg) (dagtypes.Hash, error) {
	var h dagtypes.Hash
	if len(m.HashData) != dagtypes.HashSize {
		return h, errWrongHashLength(len(m.HashData))
	}
	copy(h[:], m.HashData)
	return h, nil
}

type wrongHashLengthError int

func (e wrongHashLengthError) Error() string {
	return "rpcapi: hash_data has the wrong length"
}

func errWrongHashLength(n int) error { return wrongHashLengthError(n) }

// FromDomainHash converts a dagtypes.Hash into its wire form.
func FromDomainHash(h dagtypes.Hash) HashMsg {
	return HashMsg{HashData: append([]byte(nil), h[:]...)}
}

// ToDomainNode converts a NodeMsg into a dagtypes.Node.
func ToDomainNode(m NodeMsg) (dagtypes.Node, error) {
	links := make([]dagtypes.Header, 0, len(m.NodeLinks))
	for _, l := range m.NodeLinks {
		h, err := ToDomainHash(l.HeaderHash)
		if err != nil {
			return dagtypes.Node{}, err
		}
		links = append(links, dagtypes.Header{Id: dagtypes.Id(l.HeaderId.IdData), Hash: h})
	}
	return dagtypes.Node{Links: links, Data: m.NodeData}, nil
}

// FromDomainNode converts a dagtypes.Node into its wire form.
func FromDomainNode(n dagtypes.Node) NodeMsg {
	links := make([]HeaderMsg, 0, len(n.Links))
	for _, l := range n.Links {
		links = append(links, HeaderMsg{
			HeaderId:   IdMsg{IdData: uint32(l.Id)},
			HeaderHash: FromDomainHash(l.Hash),
		})
	}
	return NodeMsg{NodeLinks: links, NodeData: n.Data}
}

// ToDomainBulkPutReq converts a BulkPutReqMsg into a root PendingNode plus
// an Id->PendingNode map, the shape validate.Tree consumes.
func ToDomainBulkPutReq(m BulkPutReqMsg) (dagtypes.PendingNode, map[dagtypes.Id]dagtypes.PendingNode, error) {
	root, err := toDomainPendingNode(m.RootNode)
	if err != nil {
		return dagtypes.PendingNode{}, nil, err
	}

	nodes := make(map[dagtypes.Id]dagtypes.PendingNode, len(m.Nodes))
	for _, nw := range m.Nodes {
		pn, err := toDomainPendingNode(nw.Node)
		if err != nil {
			return dagtypes.PendingNode{}, nil, err
		}
		nodes[dagtypes.Id(nw.Id.IdData)] = pn
	}
	return root, nodes, nil
}

func toDomainPendingNode(m BulkPutNodeMsg) (dagtypes.PendingNode, error) {
	links := make([]dagtypes.PendingLink, 0, len(m.Links))
	for _, l := range m.Links {
		switch {
		case l.InStore != nil:
			h, err := ToDomainHash(l.InStore.HeaderHash)
			if err != nil {
				return dagtypes.PendingNode{}, err
			}
			links = append(links, dagtypes.RemoteLink(dagtypes.Header{
				Id:   dagtypes.Id(l.InStore.HeaderId.IdData),
				Hash: h,
			}))
		case l.InReq != nil:
			links = append(links, dagtypes.LocalLink(dagtypes.Id(l.InReq.IdData)))
		default:
			return dagtypes.PendingNode{}, errEmptyLinkOneof
		}
	}
	return dagtypes.PendingNode{Links: links, Data: m.Data}, nil
}

var errEmptyLinkOneof = emptyOneofError{}

type emptyOneofError struct{}

func (emptyOneofError) Error() string {
	return "rpcapi: bulk_put_link has neither in_store nor in_req set"
}

// ExtraMsg is one cache-only expansion result from get_one (component H):
// the header that referenced the extra node, plus the node itself.
type ExtraMsg struct {
	Header HeaderMsg `json:"header"`
	Node   NodeMsg   `json:"node"`
}

// GetOneResponseMsg is the response body for the get_one RPC: the
// requested node plus whatever extras the opportunistic cache-only
// expansion turned up (spec.md §4.H).
type GetOneResponseMsg struct {
	Requested NodeMsg    `json:"requested"`
	Extras    []ExtraMsg `json:"extras"`
}

// StreamItem is one line of the newline-delimited JSON stream GetNodes
// produces: a (Hash, Node) pair, or an error string when the fetch for
// Hash failed (spec.md §4.G: errors become stream items, not a
// terminated stream).
type StreamItem struct {
	Hash  HashMsg `json:"hash"`
	Node  NodeMsg `json:"node,omitempty"`
	Error string  `json:"error,omitempty"`
}

// MarshalLine encodes item as a single JSON line (no trailing newline).
func MarshalLine(item StreamItem) ([]byte, error) {
	return json.Marshal(item)
}

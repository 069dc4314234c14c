package rpcserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dagcache/dagstore/internal/bulkput"
	"github.com/dagcache/dagstore/internal/dagerr"
	"github.com/dagcache/dagstore/internal/dagtypes"
	"github.com/dagcache/dagstore/internal/oneget"
	"github.com/dagcache/dagstore/internal/readthrough"
	"github.com/dagcache/dagstore/internal/recursiveget"
	"github.com/dagcache/dagstore/internal/rpcapi"
	"github.com/dagcache/dagstore/internal/store"
	"github.com/dagcache/dagstore/internal/validate"
)

// Server is the RPC facade: it owns no state of its own beyond the
// components it dispatches to.
type Server struct {
	getter    *readthrough.Getter
	bulk      *bulkput.Engine
	recursive *recursiveget.Engine
	one       *oneget.Getter
	names     *store.Register
	log       *zap.Logger
}

// New builds a Server wired to the given components. log may be nil, in
// which case a no-op logger is used.
func New(getter *readthrough.Getter, bulk *bulkput.Engine, recursive *recursiveget.Engine, one *oneget.Getter, names *store.Register, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{getter: getter, bulk: bulk, recursive: recursive, one: one, names: names, log: log}
}

// Handler builds the http.Handler exposing the four RPCs of spec.md §6,
// plus a get route and a CAS route for the mutable-name register.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/node", s.handlePutNode)
	mux.HandleFunc("GET /v1/node/{hash}", s.handleGetNode)
	mux.HandleFunc("GET /v1/nodes/{hash}", s.handleGetNodes)
	mux.HandleFunc("POST /v1/tree", s.handlePutTree)
	mux.HandleFunc("GET /v1/name/{key}", s.handleGetName)
	mux.HandleFunc("POST /v1/name/{key}/cas", s.handleCAS)
	return mux
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	var msg rpcapi.NodeMsg
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, dagerr.Wrap(dagerr.Decode, err, "decode PutNode request"))
		return
	}
	node, err := rpcapi.ToDomainNode(msg)
	if err != nil {
		writeError(w, dagerr.Wrap(dagerr.Decode, err, "convert PutNode request"))
		return
	}

	hash, err := s.getter.Put(node)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rpcapi.FromDomainHash(hash))
}

// handleGetNode serves the get_one RPC (spec.md §4.H): the requested node
// plus an opportunistic, cache-only expansion of its hot neighborhood.
func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	hash, err := parsePathHash(r.PathValue("hash"))
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.one.Get(hash)
	if err != nil {
		writeError(w, err)
		return
	}

	extras := make([]rpcapi.ExtraMsg, 0, len(result.Extras))
	for _, e := range result.Extras {
		extras = append(extras, rpcapi.ExtraMsg{
			Header: rpcapi.HeaderMsg{
				HeaderId:   rpcapi.IdMsg{IdData: uint32(e.Header.Id)},
				HeaderHash: rpcapi.FromDomainHash(e.Header.Hash),
			},
			Node: rpcapi.FromDomainNode(e.Node),
		})
	}
	writeJSON(w, http.StatusOK, rpcapi.GetOneResponseMsg{
		Requested: rpcapi.FromDomainNode(result.Requested),
		Extras:    extras,
	})
}

func (s *Server) handleGetNodes(w http.ResponseWriter, r *http.Request) {
	hash, err := parsePathHash(r.PathValue("hash"))
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, dagerr.New(dagerr.Unexpected, "response writer does not support flushing"))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	enc := json.NewEncoder(w)
	for item := range s.recursive.GetRecursive(ctx, hash) {
		var streamItem rpcapi.StreamItem
		if item.Err != nil {
			streamItem = rpcapi.StreamItem{Hash: rpcapi.FromDomainHash(item.Hash), Error: item.Err.Error()}
		} else {
			streamItem = rpcapi.StreamItem{Hash: rpcapi.FromDomainHash(item.Hash), Node: rpcapi.FromDomainNode(item.Node)}
		}
		if err := enc.Encode(streamItem); err != nil {
			s.log.Warn("get_recursive: client disconnected mid-stream", zap.Error(err))
			cancel()
			return
		}
		flusher.Flush()
	}
}

func (s *Server) handlePutTree(w http.ResponseWriter, r *http.Request) {
	var msg rpcapi.BulkPutReqMsg
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		writeError(w, dagerr.Wrap(dagerr.Decode, err, "decode PutNodes request"))
		return
	}

	root, nodes, err := rpcapi.ToDomainBulkPutReq(msg)
	if err != nil {
		writeError(w, dagerr.Wrap(dagerr.Decode, err, "convert PutNodes request"))
		return
	}

	tree, err := validate.Tree(root, nodes)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.bulk.PutTree(tree)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rpcapi.FromDomainHash(result.RootHash))
}

func (s *Server) handleGetName(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	hash, ok, err := s.names.Get(key)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, dagerr.Newf(dagerr.NotFound, "name %q not set", key))
		return
	}
	writeJSON(w, http.StatusOK, rpcapi.FromDomainHash(hash))
}

type casRequestBody struct {
	Previous *rpcapi.HashMsg `json:"previous"`
	Proposed rpcapi.HashMsg  `json:"proposed"`
}

func (s *Server) handleCAS(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var body casRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, dagerr.Wrap(dagerr.Decode, err, "decode CAS request"))
		return
	}

	proposed, err := rpcapi.ToDomainHash(body.Proposed)
	if err != nil {
		writeError(w, dagerr.Wrap(dagerr.Decode, err, "convert proposed hash"))
		return
	}

	var previous *dagtypes.Hash
	if body.Previous != nil {
		h, err := rpcapi.ToDomainHash(*body.Previous)
		if err != nil {
			writeError(w, dagerr.Wrap(dagerr.Decode, err, "convert previous hash"))
			return
		}
		previous = &h
	}

	if err := s.names.CAS(key, previous, proposed); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func parsePathHash(raw string) (dagtypes.Hash, error) {
	raw = strings.TrimSpace(raw)
	h, err := dagtypes.ParseHash(raw)
	if err != nil {
		return dagtypes.Hash{}, dagerr.Wrap(dagerr.Decode, err, "parse hash path segment")
	}
	return h, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a dagerr.Kind into the HTTP status spec.md §7
// assigns it: Decode -> 400, NotFound -> 404, CasConflict -> a dedicated
// conflict status (409), StoreIO/Unexpected -> 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch dagerr.KindOf(err) {
	case dagerr.Decode:
		status = http.StatusBadRequest
	case dagerr.NotFound:
		status = http.StatusNotFound
	case dagerr.CasConflict:
		status = http.StatusConflict
	}

	body := map[string]string{"error": err.Error(), "kind": dagerr.KindOf(err).String()}
	if conflict, ok := dagerr.AsCasConflict(err); ok && conflict.Actual != nil {
		var h dagtypes.Hash
		copy(h[:], conflict.Actual)
		body["actual"] = h.String()
	}
	writeJSON(w, status, body)
}

package rpcserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagcache/dagstore/internal/bulkput"
	"github.com/dagcache/dagstore/internal/cache"
	"github.com/dagcache/dagstore/internal/dagtypes"
	"github.com/dagcache/dagstore/internal/oneget"
	"github.com/dagcache/dagstore/internal/readthrough"
	"github.com/dagcache/dagstore/internal/recursiveget"
	"github.com/dagcache/dagstore/internal/rpcapi"
	"github.com/dagcache/dagstore/internal/store"
)

func newTestServer(t *testing.T) (*Server, *readthrough.Getter) {
	t.Helper()
	blobs, err := store.OpenBlobStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = blobs.Close() })

	c, err := cache.New(64)
	require.NoError(t, err)

	getter := readthrough.New(c, blobs)
	reg := store.NewRegister(blobs.DB())
	bulk := bulkput.New(getter)
	recursive := recursiveget.New(getter)
	one := oneget.New(getter)

	return New(getter, bulk, recursive, one, reg, nil), getter
}

func TestHandlePutNodeAndGetNode(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	body, err := json.Marshal(rpcapi.FromDomainNode(dagtypes.Node{Data: []byte("hello")}))
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/node", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hashMsg rpcapi.HashMsg
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hashMsg))
	hash, err := rpcapi.ToDomainHash(hashMsg)
	require.NoError(t, err)

	getResp, err := http.Get(ts.URL + "/v1/node/" + hash.String())
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var out rpcapi.GetOneResponseMsg
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&out))
	assert.Equal(t, []byte("hello"), out.Requested.NodeData)
}

func TestHandleGetNodeMissingReturns404(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	missing := dagtypes.Hash{0xab, 0xcd}
	resp, err := http.Get(ts.URL + "/v1/node/" + missing.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleGetNodesStreamsNdjson(t *testing.T) {
	s, getter := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	leaf := dagtypes.Node{Data: []byte("leaf")}
	hLeaf, err := getter.Put(leaf)
	require.NoError(t, err)
	root := dagtypes.Node{Links: []dagtypes.Header{{Id: 1, Hash: hLeaf}}, Data: []byte("root")}
	hRoot, err := getter.Put(root)
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/v1/nodes/" + hRoot.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	var lines []rpcapi.StreamItem
	for scanner.Scan() {
		var item rpcapi.StreamItem
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &item))
		lines = append(lines, item)
	}
	require.Len(t, lines, 2)
}

func TestHandlePutTreeAndName(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	req := rpcapi.BulkPutReqMsg{
		RootNode: rpcapi.BulkPutNodeMsg{Data: []byte("root")},
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/tree", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var hashMsg rpcapi.HashMsg
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&hashMsg))
	rootHash, err := rpcapi.ToDomainHash(hashMsg)
	require.NoError(t, err)

	casBody, err := json.Marshal(map[string]interface{}{
		"previous": nil,
		"proposed": hashMsg,
	})
	require.NoError(t, err)
	casResp, err := http.Post(ts.URL+"/v1/name/notes/cas", "application/json", bytes.NewReader(casBody))
	require.NoError(t, err)
	defer casResp.Body.Close()
	require.Equal(t, http.StatusOK, casResp.StatusCode)

	nameResp, err := http.Get(ts.URL + "/v1/name/notes")
	require.NoError(t, err)
	defer nameResp.Body.Close()
	require.Equal(t, http.StatusOK, nameResp.StatusCode)

	var gotHashMsg rpcapi.HashMsg
	require.NoError(t, json.NewDecoder(nameResp.Body).Decode(&gotHashMsg))
	gotHash, err := rpcapi.ToDomainHash(gotHashMsg)
	require.NoError(t, err)
	assert.Equal(t, rootHash, gotHash)
}

func TestHandleCasConflictReturns409(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	casBody, err := json.Marshal(map[string]interface{}{
		"previous": rpcapi.FromDomainHash(dagtypes.Hash{1}),
		"proposed": rpcapi.FromDomainHash(dagtypes.Hash{2}),
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/name/absent/cas", "application/json", bytes.NewReader(casBody))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "cas_conflict", body["kind"])
}

func TestHandleGetNameUnsetReturns404(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/name/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

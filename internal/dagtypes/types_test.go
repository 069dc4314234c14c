package dagtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalHashDeterministic(t *testing.T) {
	n := Node{Data: []byte{0x01, 0x03, 0x03, 0x07}}
	h1 := CanonicalHash(n)
	h2 := CanonicalHash(n)
	assert.Equal(t, h1, h2)
}

func TestCanonicalHashOrderSensitive(t *testing.T) {
	a := Header{Id: 1, Hash: Hash{1}}
	b := Header{Id: 2, Hash: Hash{2}}

	n1 := Node{Links: []Header{a, b}, Data: []byte("x")}
	n2 := Node{Links: []Header{b, a}, Data: []byte("x")}

	assert.NotEqual(t, CanonicalHash(n1), CanonicalHash(n2), "reordering links must change the hash")
}

func TestCanonicalHashDuplicateLinksPreserveOrder(t *testing.T) {
	a := Header{Id: 1, Hash: Hash{9}}
	n1 := Node{Links: []Header{a, a}, Data: []byte("dup")}
	n2 := Node{Links: []Header{a, a}, Data: []byte("dup")}
	assert.Equal(t, CanonicalHash(n1), CanonicalHash(n2))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	n := Node{
		Links: []Header{
			{Id: 1, Hash: Hash{1, 2, 3}},
			{Id: 2, Hash: Hash{4, 5, 6}},
		},
		Data: []byte("hello"),
	}

	raw := Encode(n)
	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, n.Links, decoded.Links)
	assert.Equal(t, n.Data, decoded.Data)
}

func TestEncodeDecodeEmptyNode(t *testing.T) {
	n := Node{}
	decoded, err := Decode(Encode(n))
	require.NoError(t, err)
	assert.Empty(t, decoded.Links)
	assert.Empty(t, decoded.Data)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{0x02, 0x00, 0x00}) // claims 2 links, not enough bytes
	assert.Error(t, err)
}

func TestHashStringRoundTrip(t *testing.T) {
	h := Hash{0xff, 0xee, 0x01}
	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestHashMaxBytePattern(t *testing.T) {
	var h Hash
	for i := range h {
		h[i] = 0xff
	}
	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
}

func TestLocalChildrenPreservesOrder(t *testing.T) {
	n := PendingNode{Links: []PendingLink{
		LocalLink(3),
		RemoteLink(Header{Id: 9, Hash: Hash{1}}),
		LocalLink(1),
	}}
	assert.Equal(t, []Id{3, 1}, n.LocalChildren())
}

func TestSortedHeadersHelper(t *testing.T) {
	hs := []Header{{Hash: Hash{2}}, {Hash: Hash{1}}}
	sorted := sortedHeaders(hs)
	assert.Equal(t, Hash{1}, sorted[0].Hash)
	assert.Equal(t, Hash{2}, sorted[1].Hash)
	// original slice must be untouched
	assert.Equal(t, Hash{2}, hs[0].Hash)
}

package dagerr

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		Unexpected:  "unexpected",
		Decode:      "decode",
		NotFound:    "not_found",
		StoreIO:     "store_io",
		CasConflict: "cas_conflict",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestNewCarriesKind(t *testing.T) {
	err := New(NotFound, "missing hash")
	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, StoreIO))
	assert.Equal(t, "missing hash", err.Error())
}

func TestNewfFormats(t *testing.T) {
	err := Newf(Decode, "bad byte at offset %d", 7)
	assert.Equal(t, "bad byte at offset 7", err.Error())
	assert.Equal(t, Decode, KindOf(err))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("pebble: closed")
	err := Wrap(StoreIO, cause, "blobstore: get")
	assert.True(t, Is(err, StoreIO))
	assert.ErrorIs(t, err, cause)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(StoreIO, nil, "no-op"))
}

func TestKindOfUnclassifiedErrorIsUnexpected(t *testing.T) {
	plain := errors.New("not built through dagerr")
	assert.Equal(t, Unexpected, KindOf(plain))
}

func TestCasConflictRoundTrip(t *testing.T) {
	err := NewCasConflict("notes", []byte{1, 2, 3})
	require.True(t, Is(err, CasConflict))

	conflict, ok := AsCasConflict(err)
	require.True(t, ok)
	assert.Equal(t, "notes", conflict.Key)
	assert.Equal(t, []byte{1, 2, 3}, conflict.Actual)
}

func TestAsCasConflictFalseForOtherKinds(t *testing.T) {
	_, ok := AsCasConflict(New(StoreIO, "disk full"))
	assert.False(t, ok)
}

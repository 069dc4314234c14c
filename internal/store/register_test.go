package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagcache/dagstore/internal/dagerr"
	"github.com/dagcache/dagstore/internal/dagtypes"
)

func openTestRegister(t *testing.T) *Register {
	t.Helper()
	blobs := openTestBlobStore(t)
	return NewRegister(blobs.DB())
}

// TestCasHappyPath mirrors seed scenario S4.
func TestCasHappyPath(t *testing.T) {
	r := openTestRegister(t)
	h1 := dagtypes.Hash{1}
	h2 := dagtypes.Hash{2}

	require.NoError(t, r.CAS("notes", nil, h1))
	got, ok, err := r.Get("notes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, h1, got)

	require.NoError(t, r.CAS("notes", &h1, h2))
	got, ok, err = r.Get("notes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, h2, got)
}

// TestCasConflict mirrors seed scenario S5: a second CAS with previous=None
// on an already-set key fails and reports the actual current value.
func TestCasConflict(t *testing.T) {
	r := openTestRegister(t)
	h1 := dagtypes.Hash{1}
	h2 := dagtypes.Hash{2}

	require.NoError(t, r.CAS("notes", nil, h1))

	err := r.CAS("notes", nil, h2)
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.CasConflict))

	conflict, ok := dagerr.AsCasConflict(err)
	require.True(t, ok)
	var actual dagtypes.Hash
	copy(actual[:], conflict.Actual)
	assert.Equal(t, h1, actual)

	got, ok, err := r.Get("notes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, h1, got, "state must be unchanged after a failed CAS")
}

func TestCasWrongPrevious(t *testing.T) {
	r := openTestRegister(t)
	h1 := dagtypes.Hash{1}
	h2 := dagtypes.Hash{2}
	h3 := dagtypes.Hash{3}

	require.NoError(t, r.CAS("notes", nil, h1))
	err := r.CAS("notes", &h2, h3)
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.CasConflict))
}

func TestGetUnsetKey(t *testing.T) {
	r := openTestRegister(t)
	_, ok, err := r.Get("absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCasIndependentKeys(t *testing.T) {
	r := openTestRegister(t)
	h1 := dagtypes.Hash{1}
	h2 := dagtypes.Hash{2}

	require.NoError(t, r.CAS("a", nil, h1))
	require.NoError(t, r.CAS("b", nil, h2))

	gotA, _, err := r.Get("a")
	require.NoError(t, err)
	gotB, _, err := r.Get("b")
	require.NoError(t, err)
	assert.Equal(t, h1, gotA)
	assert.Equal(t, h2, gotB)
}

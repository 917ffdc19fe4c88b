package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoid/engine/internal/store"
)

func TestListHeader_NullBeforeAnyWrite(t *testing.T) {
	s := New()
	hdr, err := s.OnIndexerListHeader(42)
	require.NoError(t, err)
	assert.True(t, hdr.IsNull())
}

func TestNewBlockThenGetPlistBlock(t *testing.T) {
	s := New()
	body := []byte{1, 2, 3}
	require.NoError(t, s.OnIndexerNewBlock(7, store.ListHeader{BlockCount: 1}, store.BlockHeader{ID: 1, BodySize: len(body), FIDmax: 9}, body))

	got, ok := s.GetPlistBlock(7, 1)
	require.True(t, ok)
	assert.Equal(t, body, got)

	hdr, err := s.OnIndexerBlockHeader(7, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), hdr.FIDmax)
}

func TestGetPlistBlock_MissingTermOrBlockReturnsFalse(t *testing.T) {
	s := New()
	_, ok := s.GetPlistBlock(1, 1)
	assert.False(t, ok)
}

func TestFingerprintRoundTrip(t *testing.T) {
	s := New()
	require.NoError(t, s.OnIndexerFingerprint(3, []byte{1, 2, 3, 4, 5, 6, 7, 8}))

	n, err := s.GetFingerprintSize(3)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	got, err := s.GetFingerprint(3, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5, 6}, got)
}

func TestGetFingerprint_OutOfRangeIsError(t *testing.T) {
	s := New()
	require.NoError(t, s.OnIndexerFingerprint(1, []byte{1, 2}))
	_, err := s.GetFingerprint(1, 4, 0)
	require.Error(t, err)
}

package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoid/engine/internal/codebook"
	"github.com/echoid/engine/internal/index"
	"github.com/echoid/engine/internal/store/memstore"
	"github.com/echoid/engine/internal/terms"
)

func twoClusterCodebook(t *testing.T) *codebook.Codebook {
	t.Helper()
	cb, err := codebook.New([]codebook.Cluster{
		{ID: 0, Centroid: []byte{0x00}},
		{ID: 1, Centroid: []byte{0xFF}},
	}, 1)
	require.NoError(t, err)
	return cb
}

func seedRecording(t *testing.T, s *memstore.Store, fid uint32, n int) {
	t.Helper()
	qlfs := make([]index.QLF, n)
	for i := range qlfs {
		qlfs[i] = terms.QLF{T: uint32(i), F: 150, W: uint8(i % 2), E: 0}
	}
	ix := index.New(s, index.Config{CacheLimitMB: 64}, nil)
	require.NoError(t, ix.Start())
	require.NoError(t, ix.IndexQLFs(fid, qlfs))
	require.NoError(t, ix.End(true))
}

func synthQuery(n int) []terms.LF {
	lfs := make([]terms.LF, n)
	for i := range lfs {
		d := byte(0x00)
		if i%2 == 1 {
			d = 0xFF
		}
		lfs[i] = terms.LF{ID: uint32(i), T: uint32(i), F: 150, D: []byte{d}}
	}
	return lfs
}

func TestMatcher_IdentifiesIndexedRecording(t *testing.T) {
	s := memstore.New()
	seedRecording(t, s, 1, 25)

	m := New(s, twoClusterCodebook(t), false, 0.5, 1800)
	n, err := m.Process(synthQuery(25))
	require.NoError(t, err)
	assert.Equal(t, 25, n)
	require.NoError(t, m.Flush())

	require.NotEmpty(t, m.TopK)
	assert.Equal(t, uint32(1), m.TopK[0].FID)
	assert.Greater(t, m.TopK[0].Score, float64(minAcceptScore))
}

func TestMatcher_NonContiguousLFIDIsInvalidMatchSequence(t *testing.T) {
	s := memstore.New()
	m := New(s, twoClusterCodebook(t), false, 0.5, 1800)
	_, err := m.Process([]terms.LF{{ID: 1, T: 0, F: 150, D: []byte{0x00}}})
	assert.Error(t, err)
}

func TestMatcher_ResetClearsSessionState(t *testing.T) {
	s := memstore.New()
	seedRecording(t, s, 1, 25)

	m := New(s, twoClusterCodebook(t), false, 0.5, 1800)
	_, err := m.Process(synthQuery(25))
	require.NoError(t, err)
	require.NoError(t, m.Flush())
	require.NotEmpty(t, m.TopK)

	m.Reset()
	assert.Empty(t, m.TopK)
	assert.Empty(t, m.Qc)

	_, err = m.Process([]terms.LF{{ID: 0, T: 0, F: 150, D: []byte{0x00}}})
	require.NoError(t, err)
}

func TestMatcher_DistinctRecordingsScoreSeparately(t *testing.T) {
	s := memstore.New()
	seedRecording(t, s, 1, 25)
	seedRecording(t, s, 2, 25)

	m := New(s, twoClusterCodebook(t), false, 0.5, 1800)
	_, err := m.Process(synthQuery(25))
	require.NoError(t, err)
	require.NoError(t, m.Flush())

	var fids []uint32
	for _, c := range m.TopK {
		fids = append(fids, c.FID)
	}
	assert.Contains(t, fids, uint32(1))
	assert.Contains(t, fids, uint32(2))
}

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoid/engine/internal/indexcodec"
	"github.com/echoid/engine/internal/match"
	"github.com/echoid/engine/internal/store/memstore"
	"github.com/echoid/engine/internal/terms"
)

func synthQLFs(n int) []QLF {
	qlfs := make([]QLF, n)
	for i := range qlfs {
		qlfs[i] = QLF{T: uint32(i), F: uint16(100 + i%50), W: uint8(i % 10), E: uint8(i % 20)}
	}
	return qlfs
}

func TestIndexer_StartTwiceIsInvalidState(t *testing.T) {
	ix := New(memstore.New(), Config{CacheLimitMB: 64}, nil)
	require.NoError(t, ix.Start())
	require.Error(t, ix.Start())
}

func TestIndexer_IndexBeforeStartIsInvalidState(t *testing.T) {
	ix := New(memstore.New(), Config{CacheLimitMB: 64}, nil)
	err := ix.IndexQLFs(1, synthQLFs(5))
	require.Error(t, err)
}

func TestIndexer_FIDMustBeStrictlyIncreasing(t *testing.T) {
	ix := New(memstore.New(), Config{CacheLimitMB: 64}, nil)
	require.NoError(t, ix.Start())
	require.NoError(t, ix.IndexQLFs(1, synthQLFs(5)))
	err := ix.IndexQLFs(1, synthQLFs(5))
	require.Error(t, err)
}

func TestIndexer_FlushThenGetPlistBlockRoundTrips(t *testing.T) {
	s := memstore.New()
	ix := New(s, Config{CacheLimitMB: 64}, nil)
	require.NoError(t, ix.Start())
	require.NoError(t, ix.IndexQLFs(1, synthQLFs(30)))
	require.NoError(t, ix.End(true))

	term := terms.SWord(synthQLFs(30)[0])
	body, ok := s.GetPlistBlock(term, 1)
	require.True(t, ok)

	postings, err := indexcodec.DecodeBlock(body, 0)
	require.NoError(t, err)
	require.NotEmpty(t, postings)
	assert.Equal(t, uint32(1), postings[0].FID)
}

func TestIndexer_CacheUsedStaysBounded(t *testing.T) {
	s := memstore.New()
	ix := New(s, Config{CacheLimitMB: 0.001}, nil) // ~1KB limit forces frequent flushes
	require.NoError(t, ix.Start())
	for fid := uint32(1); fid <= 20; fid++ {
		require.NoError(t, ix.IndexQLFs(fid, synthQLFs(30)))
		assert.LessOrEqual(t, ix.CacheUsedBytes(), 1048+4096) // 0.001 MB = 1048 bytes, truncated
	}
	require.NoError(t, ix.End(true))
}

// TestIndexer_ManyFlushesDecodeExactPostingSequence is the S5 round-trip
// scenario from spec.md §8: a tiny cache limit forces a flush after
// every IndexQLFs call, so a term shared across many FIDs receives
// several OnIndexerChunk appends into the same still-open block before
// it ever fills to a new one. Decoding that block's full postings
// sequence back must reproduce exactly the FIDs indexed, in order —
// this is the path that silently inflates FIDs if a backend forgets to
// persist the updated block FIDmax between chunk appends.
func TestIndexer_ManyFlushesDecodeExactPostingSequence(t *testing.T) {
	s := memstore.New()
	ix := New(s, Config{CacheLimitMB: 0.00001}, nil) // forces a flush after nearly every call
	require.NoError(t, ix.Start())

	const numFIDs = 25
	qlfs := synthQLFs(30)
	term := terms.SWord(qlfs[0]) // LID 0 of every FID: W=0, F=100, a fixed term

	for fid := uint32(1); fid <= numFIDs; fid++ {
		require.NoError(t, ix.IndexQLFs(fid, synthQLFs(30)))
	}
	require.NoError(t, ix.End(true))

	hdr, err := s.OnIndexerListHeader(term)
	require.NoError(t, err)
	require.Greater(t, hdr.BlockCount, 0)

	it := match.NewPostingIterator(s, term)
	var got []indexcodec.Posting
	for !it.EOL() {
		p, ok := it.Get()
		if !ok {
			break
		}
		got = append(got, p)
		it.Next()
	}
	require.NoError(t, it.Err())

	require.Len(t, got, numFIDs)
	for i, p := range got {
		wantFID := uint32(i + 1)
		assert.Equal(t, wantFID, p.FID, "FID at position %d must be exactly the FID indexed, not inflated by a stale block FIDmax base", i)
		require.Equal(t, 1, len(p.LID))
		assert.Equal(t, uint32(0), p.LID[0])
		assert.Equal(t, uint32(0), p.T[0])
		assert.Equal(t, byte(0), p.E[0])
	}
}

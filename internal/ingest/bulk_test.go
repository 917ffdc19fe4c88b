package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoid/engine/internal/codebook"
	"github.com/echoid/engine/internal/index"
	"github.com/echoid/engine/internal/params"
	"github.com/echoid/engine/internal/store/memstore"
)

func flatCodebook(t *testing.T) *codebook.Codebook {
	t.Helper()
	cb, err := codebook.New([]codebook.Cluster{
		{ID: 0, Centroid: make([]byte, params.IDIb)},
	}, params.IDIb)
	require.NoError(t, err)
	return cb
}

func TestBulkIndexer_IndexesEveryJobConcurrently(t *testing.T) {
	s := memstore.New()
	cb := flatCodebook(t)
	bi := NewBulkIndexer(s, cb, index.Config{XSCALE: false, CacheLimitMB: 8}, nil)

	jobs := make([]BulkJob, 5)
	for i := range jobs {
		jobs[i] = BulkJob{FID: uint32(i + 1), Samples: make([]float32, int(1.0*params.Fs))}
	}

	results := bi.Run(context.Background(), jobs)
	require.Len(t, results, len(jobs))
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestBulkIndexer_ContextCancelStopsFeedingNewJobs(t *testing.T) {
	s := memstore.New()
	cb := flatCodebook(t)
	bi := NewBulkIndexer(s, cb, index.Config{XSCALE: false, CacheLimitMB: 8}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []BulkJob{{FID: 1, Samples: make([]float32, int(1.0*params.Fs))}}
	results := bi.Run(ctx, jobs)
	assert.LessOrEqual(t, len(results), len(jobs))
}

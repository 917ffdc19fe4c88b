package ingest

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	enginelog "github.com/echoid/engine/internal/logger"

	"github.com/echoid/engine/internal/codebook"
	"github.com/echoid/engine/internal/fingerprint"
	"github.com/echoid/engine/internal/index"
	"github.com/echoid/engine/internal/store"
)

// BulkJob is one recording to index: its FID and its full-length PCM.
type BulkJob struct {
	FID     uint32
	Samples []float32
}

// BulkResult is the outcome of indexing one BulkJob.
type BulkResult struct {
	FID   uint32
	Err   error
	LFs   int
}

// BulkIndexer fans independent fingerprint-then-index passes out
// across a bounded worker pool, the same buffered-channel,
// capped-goroutine, context-cancelled shape as the teacher's
// AudioQueue, adapted to run one Indexer session per job instead of
// one upload-processing job per worker.
//
// Every worker shares one store.DataStore and one index.Config but
// owns its own Fingerprinter and Indexer, matching spec.md §5's rule
// that an Indexer instance is never shared across sessions; the store
// itself is responsible for serializing the concurrent writes (as
// memstore and sqlstore both do).
type BulkIndexer struct {
	s       store.DataStore
	cb      *codebook.Codebook
	cfg     index.Config
	workers int
	log     *zap.Logger
}

// NewBulkIndexer returns a BulkIndexer bound to s and codebook cb with
// cfg, using up to runtime.NumCPU workers capped at 8 (the teacher's
// AudioQueue cap, chosen to avoid overwhelming the store backend with
// concurrent flushes).
func NewBulkIndexer(s store.DataStore, cb *codebook.Codebook, cfg index.Config, log *zap.Logger) *BulkIndexer {
	if log == nil {
		log = enginelog.Nop()
	}
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return &BulkIndexer{s: s, cb: cb, cfg: cfg, workers: workers, log: log}
}

// Run indexes every job, at most b.workers at a time, and returns one
// BulkResult per job (order not guaranteed to match input order). Run
// returns early if ctx is canceled; in-flight jobs still finish.
func (b *BulkIndexer) Run(ctx context.Context, jobs []BulkJob) []BulkResult {
	in := make(chan BulkJob)
	out := make(chan BulkResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range in {
				out <- b.indexOne(job)
			}
		}(i)
	}

	go func() {
		defer close(in)
		for _, j := range jobs {
			select {
			case in <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]BulkResult, 0, len(jobs))
	for r := range out {
		results = append(results, r)
	}
	return results
}

func (b *BulkIndexer) indexOne(job BulkJob) BulkResult {
	fp := fingerprint.New(b.log)
	ix := index.New(b.s, b.cfg, b.log)

	if err := ix.Start(); err != nil {
		return BulkResult{FID: job.FID, Err: err}
	}

	lfs, err := fp.Process(job.Samples, true)
	if err != nil {
		return BulkResult{FID: job.FID, Err: err}
	}
	qlfs := make([]index.QLF, len(lfs))
	for i, lf := range lfs {
		word, dist := b.cb.Quantize(lf.D)
		qlfs[i] = index.QLF{T: lf.T, F: uint16(lf.F), W: uint8(word), E: uint8(dist)}
	}

	if len(qlfs) > 0 {
		if err := ix.IndexQLFs(job.FID, qlfs); err != nil {
			_ = ix.End(false)
			return BulkResult{FID: job.FID, Err: err}
		}
	}

	if err := ix.End(true); err != nil {
		return BulkResult{FID: job.FID, Err: err}
	}
	return BulkResult{FID: job.FID, LFs: len(lfs)}
}

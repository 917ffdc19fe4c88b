package index

import (
	"go.uber.org/zap"

	"github.com/echoid/engine/internal/acierrors"
	"github.com/echoid/engine/internal/indexcodec"
	enginelog "github.com/echoid/engine/internal/logger"
	"github.com/echoid/engine/internal/params"
	"github.com/echoid/engine/internal/store"
	"github.com/echoid/engine/internal/terms"
)

// QLF re-exports terms.QLF for callers of this package that only need
// the Indexer's view of a quantized local fingerprint.
type QLF = terms.QLF

type state int

const (
	stateIdle state = iota
	stateOpen
)

// posting accumulates one FID's occurrences for one term in the
// in-memory cache, the same layout spec.md §4.3 describes as
// "[FID, tf, LID_0, T_0, E_0, …]" before it's flattened for the codec.
type posting struct {
	fid uint32
	lid []uint32
	t   []uint32
	e   []byte
}

func (p posting) sizeBytes() int {
	return 4 + 4 + len(p.lid)*4 + len(p.t)*4 + len(p.e)
}

// Indexer implements spec.md §4.3: the Idle/Open state machine that
// turns a stream of quantized local fingerprints into term postings,
// buffered in memory and flushed to a store.DataStore in size-bounded
// blocks.
type Indexer struct {
	st       state
	store    store.DataStore
	matchXS  bool // true for XSCALE, false for MSCALE
	cacheMB  float64
	cache    map[uint32][]posting
	cacheSz  int
	lastFID  uint32
	anyFID   bool
	log      *zap.Logger
}

// Config mirrors config.IndexerConfig's validated fields without
// importing the config package (the engine's internal packages avoid
// a dependency cycle by taking plain values).
type Config struct {
	XSCALE       bool
	CacheLimitMB float64
}

// New constructs an Idle Indexer bound to store s.
func New(s store.DataStore, cfg Config, log *zap.Logger) *Indexer {
	if log == nil {
		log = enginelog.Nop()
	}
	return &Indexer{
		store:   s,
		matchXS: cfg.XSCALE,
		cacheMB: cfg.CacheLimitMB,
		cache:   make(map[uint32][]posting),
		log:     log,
	}
}

// Start transitions Idle -> Open. Fatal if already Open or if no store
// is bound.
func (ix *Indexer) Start() error {
	const op = "Indexer.Start"
	if ix.st == stateOpen {
		return acierrors.InvalidIndexerState(op, "indexer already open")
	}
	if ix.store == nil {
		return acierrors.InvalidIndexerState(op, "no store bound")
	}
	if err := ix.store.OnIndexerStart(); err != nil {
		return err
	}
	ix.st = stateOpen
	return nil
}

// IndexQLFs indexes a pre-existing QLF stream for FID, which must be
// strictly greater than every previously indexed FID in this session.
func (ix *Indexer) IndexQLFs(fid uint32, qlfs []QLF) error {
	const op = "Indexer.IndexQLFs"
	if ix.st != stateOpen {
		return acierrors.InvalidIndexerState(op, "index called outside Open state")
	}
	if ix.anyFID && fid <= ix.lastFID {
		return acierrors.InvalidIndexerState(op, "FID is not strictly increasing across Index calls")
	}
	ix.lastFID = fid
	ix.anyFID = true

	if err := ix.store.OnIndexerFingerprint(fid, packQLFs(qlfs)); err != nil {
		return err
	}

	if ix.matchXS {
		ix.indexXSCALE(fid, qlfs)
	} else {
		ix.indexMSCALE(fid, qlfs)
	}

	if float64(ix.cacheSz) > ix.cacheMB*1024*1024 {
		return ix.Flush()
	}
	return nil
}

func (ix *Indexer) indexMSCALE(fid uint32, qlfs []QLF) {
	for lid, q := range qlfs {
		term := terms.SWord(q)
		ix.appendPosting(term, fid, uint32(lid), q.T, q.E)
	}
}

func (ix *Indexer) indexXSCALE(fid uint32, qlfs []QLF) {
	for k := range qlfs {
		pivot := qlfs[k]
		pivotBand := terms.Band(pivot.F)
		for j := k + 1; j < len(qlfs) && j <= k+params.PairDmax; j++ {
			if qlfs[j].T-pivot.T > uint32(params.PairTmax) {
				break
			}
			if terms.Band(qlfs[j].F) != pivotBand {
				continue
			}
			term := terms.BWord(pivot, qlfs[j])
			ix.appendPosting(term, fid, uint32(k), pivot.T, pivot.E)
		}
	}
}

func (ix *Indexer) appendPosting(term, fid, lid, t uint32, e uint8) {
	list := ix.cache[term]
	if n := len(list); n > 0 && list[n-1].fid == fid {
		p := &list[n-1]
		ix.cacheSz -= p.sizeBytes()
		p.lid = append(p.lid, lid)
		p.t = append(p.t, t)
		p.e = append(p.e, e)
		ix.cacheSz += p.sizeBytes()
		return
	}
	p := posting{fid: fid, lid: []uint32{lid}, t: []uint32{t}, e: []byte{e}}
	ix.cache[term] = append(list, p)
	ix.cacheSz += p.sizeBytes()
}

// CacheUsedBytes reports the current approximate in-memory cache size,
// the value spec.md's S5 scenario observes staying under the
// configured limit.
func (ix *Indexer) CacheUsedBytes() int { return ix.cacheSz }

// Flush drains the in-memory cache to the store in size-bounded
// blocks, per the algorithm in spec.md §4.3.
func (ix *Indexer) Flush() error {
	const op = "Indexer.Flush"
	if err := ix.store.OnIndexerFlushStart(); err != nil {
		return err
	}

	for term, postings := range ix.cache {
		if err := ix.flushTerm(term, postings); err != nil {
			return acierrors.InvalidIndexerState(op, "flush failed").Wrap(err)
		}
	}
	ix.cache = make(map[uint32][]posting)
	ix.cacheSz = 0

	return ix.store.OnIndexerFlushEnd()
}

func (ix *Indexer) flushTerm(term uint32, postings []posting) error {
	listHdr, err := ix.store.OnIndexerListHeader(term)
	if err != nil {
		return err
	}
	blockID := listHdr.BlockCount
	if blockID == 0 {
		blockID = 1
	}
	blockHdr, err := ix.store.OnIndexerBlockHeader(term, blockID)
	if err != nil {
		return err
	}

	fidBase := blockHdr.FIDmax
	var chunk []indexcodec.Posting
	for _, p := range postings {
		chunk = append(chunk, indexcodec.Posting{FID: p.fid, LID: p.lid, T: p.t, E: p.e})
	}

	body := indexcodec.EncodeBlock(chunk, fidBase)
	lastFID := postings[len(postings)-1].fid

	if blockHdr.BodySize+len(body) > params.PostingsListBlockThreshold {
		newList := store.ListHeader{BlockCount: listHdr.BlockCount + 1}
		newBlock := store.BlockHeader{ID: newList.BlockCount, BodySize: len(body), FIDmax: lastFID}
		return ix.store.OnIndexerNewBlock(term, newList, newBlock, body)
	}

	if blockHdr.IsNull() {
		newList := store.ListHeader{BlockCount: 1}
		newBlock := store.BlockHeader{ID: 1, BodySize: len(body), FIDmax: lastFID}
		return ix.store.OnIndexerNewBlock(term, newList, newBlock, body)
	}

	updated := blockHdr
	updated.BodySize += len(body)
	updated.FIDmax = lastFID
	return ix.store.OnIndexerChunk(term, listHdr, updated, body)
}

// End flushes any remaining cache (if flush is true) and transitions
// Open -> Idle.
func (ix *Indexer) End(flush bool) error {
	if ix.st != stateOpen {
		return acierrors.InvalidIndexerState("Indexer.End", "end called outside Open state")
	}
	if flush {
		if err := ix.Flush(); err != nil {
			return err
		}
	}
	if err := ix.store.OnIndexerEnd(); err != nil {
		return err
	}
	ix.st = stateIdle
	return nil
}

func packQLFs(qlfs []QLF) []byte {
	out := make([]byte, 0, len(qlfs)*8)
	for _, q := range qlfs {
		out = append(out,
			byte(q.T), byte(q.T>>8), byte(q.T>>16), byte(q.T>>24),
			byte(q.F), byte(q.F>>8),
			q.W, q.E,
		)
	}
	return out
}

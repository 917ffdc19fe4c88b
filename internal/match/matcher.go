package match

import (
	"sort"

	"github.com/echoid/engine/internal/acierrors"
	"github.com/echoid/engine/internal/codebook"
	"github.com/echoid/engine/internal/indexcodec"
	"github.com/echoid/engine/internal/params"
	"github.com/echoid/engine/internal/store"
	"github.com/echoid/engine/internal/terms"
)

// histoBinInfo records, for one occurrence scored into a bin, which
// query pivot LF produced it and which candidate occurrence (Sij) it
// was — named after Matcher.h's nested Info_t{CandLF,Pivot}.
type histoBinInfo struct {
	candLF uint32
	pivot  uint32
}

// histoBin is one time-histogram bin for one candidate FID, named
// after Matcher.h's HistoBin_t.
type histoBin struct {
	score    float64
	lastT    uint32
	torder   int
	scoredLF uint32 // id of the query LF that last scored this bin; noLF means none yet
	info     map[uint32]histoBinInfo
}

const noLF = ^uint32(0)

// qhisto is one candidate FID's time histogram, named after
// Matcher.h's Qhisto_t.
type qhisto struct {
	bins         []histoBin
	bmax         int
	distinctSeen map[uint32]bool
}

func newQhisto(nbins int) *qhisto {
	bins := make([]histoBin, nbins)
	for i := range bins {
		bins[i].scoredLF = noLF
		bins[i].info = make(map[uint32]histoBinInfo)
	}
	return &qhisto{bins: bins, distinctSeen: make(map[uint32]bool)}
}

// resize grows the histogram to at least n bins (with 10% slack),
// matching spec.md §4.5's "dynamically grows with a 10% slack (warn)".
func (q *qhisto) resize(n int) {
	if n <= len(q.bins) {
		return
	}
	grown := n + n/10
	extra := make([]histoBin, grown-len(q.bins))
	for i := range extra {
		extra[i].scoredLF = noLF
		extra[i].info = make(map[uint32]histoBinInfo)
	}
	q.bins = append(q.bins, extra...)
}

// ac is the score/cue-point accumulator for one candidate FID, named
// after Matcher.h's Ac_t.
type ac struct {
	Ac     float64
	Tmatch float64
}

// Candidate is one scored match result, the Matcher's per-FID output.
type Candidate struct {
	FID   uint32
	Score float64
}

// Matcher implements the DaaT matching step and PGH re-ranking of
// spec.md §4.5. One instance belongs to exactly one identification
// session; it is not safe for concurrent use.
type Matcher struct {
	s       store.DataStore
	cb      *codebook.Codebook
	xscale  bool
	mms     float64
	maxDur  float64

	xk        []terms.QLF
	processed int

	histograms map[uint32]*qhisto
	Qc         map[uint32]ac
	TopK       []Candidate
}

// New constructs a Matcher bound to store s and codebook cb.
func New(s store.DataStore, cb *codebook.Codebook, xscale bool, mms, maxRecordingDuration float64) *Matcher {
	return &Matcher{
		s:          s,
		cb:         cb,
		xscale:     xscale,
		mms:        mms,
		maxDur:     maxRecordingDuration,
		histograms: make(map[uint32]*qhisto),
		Qc:         make(map[uint32]ac),
	}
}

// Reset clears all session state between identifications.
func (m *Matcher) Reset() {
	m.xk = nil
	m.processed = 0
	m.histograms = make(map[uint32]*qhisto)
	m.Qc = make(map[uint32]ac)
	m.TopK = nil
}

// Process appends lfs (quantizing each via the codebook) to the query
// sequence and runs matching steps on every complete Nk-sized batch.
// Returns the number of LFs accepted from lfs. lf.ID must continue the
// session's contiguous 0-based LF ID sequence.
func (m *Matcher) Process(lfs []terms.LF) (int, error) {
	const op = "Matcher.Process"
	accepted := 0
	for _, lf := range lfs {
		expected := uint32(len(m.xk))
		if lf.ID != expected {
			return accepted, acierrors.InvalidMatchSequence(op, "non-contiguous LF ID in query stream")
		}
		word, dist := m.cb.Quantize(lf.D)
		m.xk = append(m.xk, terms.QLF{T: lf.T, F: uint16(lf.F), W: uint8(word), E: uint8(dist)})
		accepted++

		for len(m.xk)-m.processed >= params.Nk {
			if err := m.step(m.xk[m.processed : m.processed+params.Nk]); err != nil {
				return accepted, err
			}
			m.processed += params.Nk
		}
	}
	return accepted, nil
}

// Flush forces one matching step on whatever remains, if at least two
// LFs are pending.
func (m *Matcher) Flush() error {
	remaining := m.xk[m.processed:]
	if len(remaining) < 2 {
		return nil
	}
	if err := m.step(remaining); err != nil {
		return err
	}
	m.processed = len(m.xk)
	return nil
}

func (m *Matcher) nbins() int {
	n := int(m.maxDur / (params.Dt * float64(params.Tk)))
	if n <= 0 {
		n = int(params.MaxRecordingLength / (params.Dt * float64(params.Tk)))
	}
	return n
}

// step runs one matching step (spec.md §4.5) over window, a slice of
// Nk (or fewer, on Flush) query QLFs.
func (m *Matcher) step(window []terms.QLF) error {
	base := m.processed
	for i, pivot := range window {
		k := uint32(base + i)
		var termList []uint32
		if m.xscale {
			pivotBand := terms.Band(pivot.F)
			for j := i + 1; j < len(window) && j <= i+params.PairDmax; j++ {
				if window[j].T-pivot.T > uint32(params.PairTmax) {
					break
				}
				if terms.Band(window[j].F) != pivotBand {
					continue
				}
				termList = append(termList, terms.BWord(pivot, window[j]))
			}
		} else {
			termList = append(termList, terms.SWord(pivot))
		}

		for _, term := range termList {
			if err := m.scoreTerm(term, k, pivot); err != nil {
				return err
			}
		}
	}
	m.collectTopK()
	return nil
}

// scoreTerm runs the DaaT merge over one term's postings list,
// scoring every occurrence into each matching FID's histogram.
func (m *Matcher) scoreTerm(term, k uint32, pivot terms.QLF) error {
	const op = "Matcher.scoreTerm"
	it := NewPostingIterator(m.s, term)
	for !it.EOL() {
		p, ok := it.Get()
		if !ok {
			break
		}
		m.scorePosting(p, k, pivot)
		it.Next()
	}
	if err := it.Err(); err != nil {
		return acierrors.InvalidIndexData(op, "posting iterator failed").Wrap(err)
	}
	return nil
}

func (m *Matcher) scorePosting(p indexcodec.Posting, k uint32, pivot terms.QLF) {
	h, ok := m.histograms[p.FID]
	if !ok {
		h = newQhisto(m.nbins())
		m.histograms[p.FID] = h
	}

	for i := range p.LID {
		sij := p.LID[i]
		sijT := p.T[i]
		sijE := p.E[i]

		bin := int(sijT) / params.Tk
		h.resize(bin + 1)
		hb := &h.bins[bin]

		if hb.scoredLF == k {
			continue // at most one score per bin per query LF
		}
		if _, seen := hb.info[sij]; seen {
			continue // at most one score per bin for the same (Sij, pivot)
		}

		wtp := 1.0 - absInt(int(pivot.E)-int(sijE))/float64(params.IDI)

		tdiff := int64(sijT) - int64(hb.lastT)
		if tdiff >= -2 {
			hb.torder++
		}
		h.distinctSeen[sij] = true
		wto := 0.0
		if len(h.distinctSeen) > 0 {
			wto = float64(hb.torder) / float64(len(h.distinctSeen))
		}

		add := params.Smax * wtp
		if tdiff >= 0 {
			add += wto * params.Smax
		}
		hb.score += add
		hb.lastT = sijT
		hb.scoredLF = k
		hb.info[sij] = histoBinInfo{candLF: sij, pivot: k}

		if hb.score > h.bins[h.bmax].score {
			h.bmax = bin
		}
	}
}

func absInt(v int) float64 {
	if v < 0 {
		return float64(-v)
	}
	return float64(v)
}

const minAcceptScore = 2 * params.Smax

// collectTopK finalizes this step's candidates into Matcher.TopK,
// applying the reranking decision and PGH pass from spec.md §4.5.
func (m *Matcher) collectTopK() {
	type scored = struct {
		fid   uint32
		score float64
	}
	var all []scored
	for fid, h := range m.histograms {
		maxScore := h.bins[h.bmax].score
		if maxScore > minAcceptScore {
			all = append(all, scored{fid: fid, score: maxScore})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score > all[j].score })

	if len(all) >= 2 {
		top1, top2 := all[0].score, all[1].score
		conf := 2*top1/(top1+top2) - 1
		if conf <= m.mms {
			m.rerank(all)
			for i := range all {
				all[i].score = m.histograms[all[i].fid].bins[m.histograms[all[i].fid].bmax].score
			}
			sort.Slice(all, func(i, j int) bool { return all[i].score > all[j].score })
		}
	}

	if len(all) > params.TopK {
		all = all[:params.TopK]
	}
	m.TopK = m.TopK[:0]
	for _, s := range all {
		m.TopK = append(m.TopK, Candidate{FID: s.fid, Score: s.score})
		cuepoint := (float64(m.histograms[s.fid].bmax)*float64(params.Tk) + float64(params.Tk)/2) * params.Dt
		m.Qc[s.fid] = ac{Ac: s.score, Tmatch: cuepoint}
	}
}

// rerank performs a simplified Pair-wise Geodesic Hashing pass. Only
// each candidate's bmax bin is re-scored, and only when its score
// exceeds 1.5*minAcceptScore; other locally maximal bins are not
// re-ranked. One entry of the bin's info map is used (which one is not
// defined, as map iteration order is not), and rerankBin compares the
// codewords of the query's QLFs around that pivot position by position
// with the candidate's stored QLFs around the matched LID, adding Smax
// times the fraction that agree. No edge-hash tables are built and the
// time/frequency offsets between LFs are not compared; a failed
// fingerprint fetch adds nothing.
func (m *Matcher) rerank(all []struct {
	fid   uint32
	score float64
}) {
	for _, c := range all {
		h := m.histograms[c.fid]
		bin := &h.bins[h.bmax]
		if bin.score <= 1.5*minAcceptScore {
			continue
		}
		for _, info := range bin.info {
			m.rerankBin(c.fid, bin, info)
			break
		}
	}
}

func (m *Matcher) rerankBin(fid uint32, bin *histoBin, info histoBinInfo) {
	k := int(info.pivot)
	ntf := params.RNpT
	lo := k - ntf
	if lo < 0 {
		lo = 0
	}
	hi := k + ntf
	if hi >= len(m.xk) {
		hi = len(m.xk) - 1
	}
	if hi <= lo {
		return
	}
	xh := m.xk[lo : hi+1]

	sij := int(info.candLF)
	qlo := sij - ntf
	if qlo < 0 {
		qlo = 0
	}
	qhi := sij + ntf

	nbytes := (qhi - qlo + 1) * 8
	data, err := m.s.GetFingerprint(fid, nbytes, qlo*8)
	if err != nil {
		return
	}
	qh := unpackQLFs(data)

	agree := 0
	n := len(xh)
	if len(qh) < n {
		n = len(qh)
	}
	for i := 0; i < n; i++ {
		if xh[i].W == qh[i].W {
			agree++
		}
	}
	if n == 0 {
		return
	}
	bonus := params.Smax * (float64(agree) / float64(n))
	bin.score += bonus
}

func unpackQLFs(data []byte) []terms.QLF {
	n := len(data) / 8
	out := make([]terms.QLF, n)
	for i := 0; i < n; i++ {
		rec := data[i*8 : i*8+8]
		t := uint32(rec[0]) | uint32(rec[1])<<8 | uint32(rec[2])<<16 | uint32(rec[3])<<24
		f := uint16(rec[4]) | uint16(rec[5])<<8
		out[i] = terms.QLF{T: t, F: f, W: rec[6], E: rec[7]}
	}
	return out
}

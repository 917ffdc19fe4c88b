// Package fingerprint turns raw mono PCM into the stream of local
// fingerprints (LFs) the Indexer and Matcher both consume (spec.md
// §4.1): overlap-and-save windowing, a rolling energy spectrogram,
// Laplacian-response peak picking with non-maximum suppression, and a
// hysteresis-coded binary descriptor around each point of interest.
package fingerprint

import (
	"go.uber.org/zap"

	enginelog "github.com/echoid/engine/internal/logger"

	"github.com/echoid/engine/internal/audiobuf"
	"github.com/echoid/engine/internal/descriptor"
	"github.com/echoid/engine/internal/params"
	"github.com/echoid/engine/internal/spectrogram"
	"github.com/echoid/engine/internal/terms"
)

// Fingerprinter extracts LFs from a stream of PCM chunks. It keeps the
// whole session's spectrogram in memory rather than trimming it as
// overlap-and-save strictly allows, trading memory (which grows with
// the session's audio length; no upper bound is enforced) for simpler
// frontier bookkeeping between
// Process calls — the time translation ΔT from spec.md §4.1 step 5 is
// therefore implicit: T is the frame's absolute index into this
// cumulative spectrogram rather than a separately tracked offset.
type Fingerprinter struct {
	buf   *audiobuf.Buffer
	spec  *spectrogram.Builder
	desc  *descriptor.Builder
	log   *zap.Logger

	frames        []spectrogram.Frame
	windowStart   int // sample offset of the next un-analyzed window
	pickedThrough int // frame index of the peak-picking frontier

	lid uint32
}

// New returns a Fingerprinter ready to Process audio for one session.
func New(log *zap.Logger) *Fingerprinter {
	if log == nil {
		log = enginelog.Nop()
	}
	return &Fingerprinter{
		buf:  audiobuf.New(params.OrigWindowSize),
		spec: spectrogram.New(params.OrigWindowSize, params.WindowSize, params.Kmin, params.Kmax),
		desc: &descriptor.Builder{
			RNpT: params.RNpT, RNpF: params.RNpF,
			RWcT: params.RWcT, RWcF: params.RWcF,
			NsT: params.Nst, NsF: params.Nsf,
			NbT: params.Nbt, NbF: params.Nbf,
			NWcT: params.NWcT, NWcF: params.NWcF,
		},
		log: log,
	}
}

// Reset clears all state, including the implicit time translation, so
// the next Process call starts a fresh session at T=0.
func (f *Fingerprinter) Reset() {
	f.buf.Reset()
	f.frames = nil
	f.windowStart = 0
	f.pickedThrough = 0
	f.lid = 0
}

// Process consumes samples (mono, 11025 Hz, range [-1,1]), advances the
// spectrogram, and returns the LFs newly resolved by this call. Pass
// flush=true on the final call for a recording to drain the residual
// partial window (zero-padded) and resolve every remaining POI
// regardless of trailing neighborhood margin. Blocks too short to
// produce a full analysis window, or too short for any POI to clear
// its neighborhood margin, simply yield no LFs — not an error.
func (f *Fingerprinter) Process(samples []float32, flush bool) ([]terms.LF, error) {
	full := f.buf.Append(samples)

	for f.windowStart+params.OrigWindowSize <= len(full) {
		f.analyzeWindow(full[f.windowStart : f.windowStart+params.OrigWindowSize])
		f.windowStart += params.HopSize
		full = f.buf.Samples()
	}

	if flush && f.windowStart < f.buf.Len() {
		f.buf.PadTo(f.windowStart + params.OrigWindowSize)
		full = f.buf.Samples()
		f.analyzeWindow(full[f.windowStart : f.windowStart+params.OrigWindowSize])
		f.windowStart += params.HopSize
	}

	return f.pickNewLFs(flush), nil
}

func (f *Fingerprinter) analyzeWindow(window []float32) {
	w64 := make([]float64, len(window))
	for i, s := range window {
		w64[i] = float64(s)
	}
	f.frames = append(f.frames, f.spec.Analyze(w64))
}

// pickNewLFs runs the peak picker over the frontier of frames that
// have settled (enough trailing margin that future frames cannot
// change their outcome), or over everything remaining when flush is
// set, then builds a descriptor for each POI found.
func (f *Fingerprinter) pickNewLFs(flush bool) []terms.LF {
	hi := len(f.frames)
	if !flush {
		settle := params.RNpT
		if params.RWp > settle {
			settle = params.RWp
		}
		hi -= settle
	}
	if hi <= f.pickedThrough {
		return nil
	}
	lo := f.pickedThrough
	pois := spectrogram.PickPeaks(f.frames, lo, hi, params.RNpT, params.RNpF, params.RWp, params.RHp)
	f.pickedThrough = hi
	if len(pois) == 0 {
		return nil
	}

	grid := make([][]float64, len(f.frames))
	for i, fr := range f.frames {
		grid[i] = fr
	}

	out := make([]terms.LF, 0, len(pois))
	for _, p := range pois {
		out = append(out, terms.LF{
			ID: f.lid,
			T:  uint32(p.Frame),
			F:  uint32(params.Kmin + p.Bin),
			D:  f.desc.Build(grid, p.Frame, p.Bin),
		})
		f.lid++
	}
	return out
}

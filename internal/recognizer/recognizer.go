// Package recognizer orchestrates one identification session: it wires
// a Fingerprinter, a Matcher and a Classifier together the way
// Recognizer.h's RecognizerImpl does, turning a stream of audio
// snippets into an eventual match decision (spec.md §4.7).
package recognizer

import (
	"go.uber.org/zap"

	enginelog "github.com/echoid/engine/internal/logger"

	"github.com/echoid/engine/internal/acierrors"
	"github.com/echoid/engine/internal/classify"
	"github.com/echoid/engine/internal/codebook"
	"github.com/echoid/engine/internal/fingerprint"
	"github.com/echoid/engine/internal/match"
	"github.com/echoid/engine/internal/params"
	"github.com/echoid/engine/internal/store"
)

// IDType selects which Classifier mode a Recognizer uses.
type IDType int

const (
	IDFuzzy IDType = iota
	IDBinary
)

// Config enumerates a Recognizer's tunables (spec.md §6.5). Zero value
// is not valid; use DefaultConfig or construct with sane defaults (MMS:
// 0.5, BinThreshold: 0.6, MaxRecordingDuration: params.MaxRecordingLength).
type Config struct {
	XScale               bool
	MMS                  float64
	IDType               IDType
	IDMode               classify.Mode
	BinThreshold         float64
	BinMinTime           float64
	MaxRecordingDuration float64
}

// DefaultConfig returns the reference parameter defaults from spec.md
// §4.5/§4.6: MSCALE matching, Fuzzy/EASY classification, mms=0.5,
// bin_threshold=0.6, bin_min_time=0, max recording duration = params.MaxRecordingLength.
func DefaultConfig() Config {
	return Config{
		XScale:               false,
		MMS:                  0.5,
		IDType:               IDFuzzy,
		IDMode:               classify.ModeEasy,
		BinThreshold:         0.6,
		BinMinTime:           0,
		MaxRecordingDuration: params.MaxRecordingLength,
	}
}

func (c Config) validate() error {
	const op = "recognizer.Config.validate"
	if c.MMS < 0 || c.MMS > 1 {
		return acierrors.InvalidParameter(op, "mms must be in [0,1]")
	}
	if c.IDType != IDFuzzy && c.IDType != IDBinary {
		return acierrors.InvalidParameter(op, "unknown id_type")
	}
	if c.IDMode != classify.ModeEasy && c.IDMode != classify.ModeStrict {
		return acierrors.InvalidParameter(op, "unknown id_mode")
	}
	if c.BinThreshold < 0.5 || c.BinThreshold > 1 {
		return acierrors.InvalidParameter(op, "bin_threshold must be in [0.5,1]")
	}
	if c.BinMinTime < 0 || c.BinMinTime > 20 {
		return acierrors.InvalidParameter(op, "bin_min_time must be in [0,20]")
	}
	if c.MaxRecordingDuration <= 0 {
		return acierrors.InvalidParameter(op, "max_recording_duration must be > 0")
	}
	return nil
}

// Match is one tied-for-top candidate in a finalized decision.
type Match struct {
	FID        uint32
	Class      classify.Label
	Score      float64
	Confidence float64
	CuePoint   float64
}

// maxSnippetSeconds bounds identify()'s input per spec.md §4.7: longer
// snippets overflow and the excess is dropped rather than buffered.
const maxSnippetSeconds = 2.0

// Recognizer drives one identification session. It is not safe for
// concurrent use; per spec.md §5, one session owns one Recognizer, one
// Matcher and one Fingerprinter.
type Recognizer struct {
	fp      *fingerprint.Fingerprinter
	matcher *match.Matcher
	binary  *classify.Binary
	fuzzy   *classify.Fuzzy
	idType  IDType

	elapsed float64
	done    bool
	results []Match

	log *zap.Logger
}

// New validates cfg and constructs a Recognizer bound to store s and
// codebook cb.
func New(s store.DataStore, cb *codebook.Codebook, cfg Config, log *zap.Logger) (*Recognizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = enginelog.Nop()
	}

	r := &Recognizer{
		fp:      fingerprint.New(log),
		matcher: match.New(s, cb, cfg.XScale, cfg.MMS, cfg.MaxRecordingDuration),
		idType:  cfg.IDType,
		log:     log,
	}
	if cfg.IDType == IDBinary {
		bin, err := classify.NewBinary(cfg.BinThreshold, cfg.BinMinTime)
		if err != nil {
			return nil, err
		}
		r.binary = bin
	} else {
		r.fuzzy = classify.NewFuzzy(cfg.IDMode)
	}
	return r, nil
}

// Reset returns the Recognizer to its initial state, ready for a new
// identification session.
func (r *Recognizer) Reset() {
	r.fp.Reset()
	r.matcher.Reset()
	r.elapsed = 0
	r.done = false
	r.results = nil
}

// Identify feeds one snippet of mono 11025 Hz PCM (1-2s recommended;
// longer snippets are truncated, shorter ones simply may not yet carry
// enough audio to advance the decision) through the fingerprinter and
// matcher, updates the classifier, and returns the current decision
// state: nil (no decision yet), a non-nil empty slice (UNIDENTIFIED),
// or one-or-more tied Match entries (IDENTIFIED/SOUNDS_LIKE).
func (r *Recognizer) Identify(samples []float32) ([]Match, error) {
	if r.done {
		return r.results, nil
	}

	maxSamples := int(maxSnippetSeconds * params.Fs)
	if len(samples) > maxSamples {
		r.log.Warn("identify: snippet exceeds max length, dropping overflow",
			zap.Int("samples", len(samples)), zap.Int("max", maxSamples))
		samples = samples[:maxSamples]
	}

	r.elapsed += float64(len(samples)) / params.Fs

	lfs, err := r.fp.Process(samples, false)
	if err != nil {
		return nil, err
	}
	if len(lfs) > 0 {
		if _, err := r.matcher.Process(lfs); err != nil {
			return nil, err
		}
	}

	r.evaluate()
	if !r.done && r.elapsed >= params.MaxIdTime {
		r.finalize(nil)
	}
	return r.results, nil
}

// Flush forces the matcher to process any buffered LFs and the
// fingerprinter to drain its residual partial window, then runs one
// final classification pass. Useful when the audio stream has ended.
func (r *Recognizer) Flush() error {
	if r.done {
		return nil
	}
	lfs, err := r.fp.Process(nil, true)
	if err != nil {
		return err
	}
	if len(lfs) > 0 {
		if _, err := r.matcher.Process(lfs); err != nil {
			return err
		}
	}
	if err := r.matcher.Flush(); err != nil {
		return err
	}
	r.evaluate()
	return nil
}

// Results returns the current decision state without processing new
// audio, mirroring get_results().
func (r *Recognizer) Results() []Match {
	return r.results
}

// evaluate computes conf from the matcher's current top-2 candidates,
// feeds (conf, elapsed) to the configured classifier, and finalizes a
// decision on IDENTIFIED/SOUNDS_LIKE/UNIDENTIFIED (spec.md §4.7's
// integration loop). LISTENING leaves the session open for more audio.
func (r *Recognizer) evaluate() {
	top := r.matcher.TopK
	if len(top) == 0 {
		return
	}

	top1 := top[0].Score
	top2 := 0.0
	if len(top) >= 2 {
		top2 = top[1].Score
	}
	conf := 2*top1/(top1+top2) - 1

	label := r.classify(conf)
	switch label {
	case classify.Identified, classify.SoundsLike:
		r.finalize(r.tiedMatches(top, label, conf))
	case classify.Unidentified:
		r.finalize(nil)
	case classify.Listening:
		// Not enough evidence yet; keep accumulating audio.
	}
}

func (r *Recognizer) classify(conf float64) classify.Label {
	if r.idType == IDBinary {
		return r.binary.Classify(conf, r.elapsed)
	}
	return r.fuzzy.Classify(conf, r.elapsed)
}

// tiedMatches collects every candidate tied with top[0]'s score.
func (r *Recognizer) tiedMatches(top []match.Candidate, label classify.Label, conf float64) []Match {
	best := top[0].Score
	var out []Match
	for _, c := range top {
		if c.Score != best {
			break // top is sorted descending
		}
		cp := r.matcher.Qc[c.FID].Tmatch
		out = append(out, Match{
			FID:        c.FID,
			Class:      label,
			Score:      c.Score,
			Confidence: conf,
			CuePoint:   cp,
		})
	}
	return out
}

// finalize locks in a decision: matches == nil yields the UNIDENTIFIED
// sentinel (a non-nil empty slice); otherwise matches becomes the
// result set.
func (r *Recognizer) finalize(matches []Match) {
	r.done = true
	if matches == nil {
		r.results = []Match{}
		return
	}
	r.results = matches
}

// Package classify turns a Matcher confidence reading into one of the
// four identification decisions described in spec.md §4.6. Two modes
// are offered, mirroring MatchFuzzyClassifier.h/.cpp and the binary
// threshold test it sits beside: a cheap binary threshold test and a
// Mamdani-style fuzzy classifier with trapezoidal membership functions.
package classify

import (
	"math"

	"github.com/echoid/engine/internal/acierrors"
)

// Label is one of the four identification decisions.
type Label int

// The ordering matches MatchFuzzyClassifier's output enum so that
// Fuzzy.Classify's tie-break (first-seen wins on equal aggregated
// membership) is reproduced faithfully.
const (
	Unidentified Label = iota
	SoundsLike
	Identified
	Listening
)

func (l Label) String() string {
	switch l {
	case Unidentified:
		return "UNIDENTIFIED"
	case SoundsLike:
		return "SOUNDS_LIKE"
	case Identified:
		return "IDENTIFIED"
	case Listening:
		return "LISTENING"
	default:
		return "UNKNOWN"
	}
}

// Binary implements spec.md §4.6's threshold classifier: IDENTIFIED
// iff conf >= Threshold and elapsed listening time >= MinTime,
// UNIDENTIFIED otherwise. It never returns SOUNDS_LIKE or LISTENING.
type Binary struct {
	Threshold float64
	MinTime   float64
}

// NewBinary validates its arguments against the ranges spec.md §6.5
// enumerates for bin_threshold and bin_min_time.
func NewBinary(threshold, minTime float64) (*Binary, error) {
	const op = "classify.NewBinary"
	if threshold < 0.5 || threshold > 1 {
		return nil, acierrors.InvalidParameter(op, "bin_threshold must be in [0.5,1]")
	}
	if minTime < 0 || minTime > 20 {
		return nil, acierrors.InvalidParameter(op, "bin_min_time must be in [0,20]")
	}
	return &Binary{Threshold: threshold, MinTime: minTime}, nil
}

// Classify reports IDENTIFIED or UNIDENTIFIED for the given confidence
// and elapsed listening time (seconds).
func (b *Binary) Classify(conf, elapsed float64) Label {
	if conf >= b.Threshold && elapsed >= b.MinTime {
		return Identified
	}
	return Unidentified
}

// Mode selects the cut-point table a Fuzzy classifier uses.
type Mode int

const (
	ModeEasy Mode = iota
	ModeStrict
)

// shoulderLow is a left-shoulder trapezoid: 1 up to x2, ramping to 0
// by x3, 0 beyond. Mirrors MatchFuzzyClassifier::uCONF_LOW.
func shoulderLow(x, x2, x3 float64) float64 {
	if x <= x2 {
		return 1
	}
	return math.Max(0, (x3-x)/(x3-x2))
}

// triangle ramps 0->1 between x1 and x2, then 1->0 between x2 and x3.
// Mirrors MatchFuzzyClassifier::uCONF_MED.
func triangle(x, x1, x2, x3 float64) float64 {
	if x <= x2 {
		return math.Max(0, (x-x1)/(x2-x1))
	}
	return math.Max(0, (x3-x)/(x3-x2))
}

// shoulderHigh is a right-shoulder trapezoid: 0 below x1, ramping to 1
// by x2, 1 beyond. Mirrors MatchFuzzyClassifier::uCONF_HIGH.
func shoulderHigh(x, x1, x2 float64) float64 {
	if x >= x2 {
		return 1
	}
	return math.Max(0, (x-x1)/(x2-x1))
}

type cutpoints struct {
	lowX2, lowX3                 float64
	medX1, medX2, medX3          float64
	highX1, highX2               float64
}

// Fuzzy implements the nine-rule Mamdani classifier of spec.md §4.6.
// It holds the EASY/STRICT cut points for the CONF (match confidence)
// and CDUR (listening duration) linguistic variables.
type Fuzzy struct {
	conf cutpoints
	cdur cutpoints
}

// NewFuzzy returns a Fuzzy classifier using the given mode's cut
// points.
func NewFuzzy(mode Mode) *Fuzzy {
	if mode == ModeStrict {
		return &Fuzzy{
			conf: cutpoints{lowX2: 0.55, lowX3: 0.65, medX1: 0.60, medX2: 0.70, medX3: 0.92, highX1: 0.875, highX2: 0.95},
			cdur: cutpoints{lowX2: 2, lowX3: 5, medX1: 2.8, medX2: 12, medX3: 19.2, highX1: 15, highX2: 20},
		}
	}
	return &Fuzzy{
		conf: cutpoints{lowX2: 0.55, lowX3: 0.65, medX1: 0.60, medX2: 0.70, medX3: 0.80, highX1: 0.75, highX2: 0.90},
		cdur: cutpoints{lowX2: 1.5, lowX3: 3, medX1: 2, medX2: 10, medX3: 22, highX1: 17.5, highX2: 20},
	}
}

// Classify runs the nine antecedent rules (min-combined) and
// max-aggregates them per output class, returning the class with the
// highest aggregated membership. Ties resolve to the first class in
// Label's declaration order, matching std::max_element's behavior over
// the C++ {UNIDENTIFIED, SOUNDS_LIKE, IDENTIFIED, LISTENING} array.
func (f *Fuzzy) Classify(conf, elapsed float64) Label {
	confLow := shoulderLow(conf, f.conf.lowX2, f.conf.lowX3)
	confMed := triangle(conf, f.conf.medX1, f.conf.medX2, f.conf.medX3)
	confHigh := shoulderHigh(conf, f.conf.highX1, f.conf.highX2)

	cdurShort := shoulderLow(elapsed, f.cdur.lowX2, f.cdur.lowX3)
	cdurMed := triangle(elapsed, f.cdur.medX1, f.cdur.medX2, f.cdur.medX3)
	cdurLong := shoulderHigh(elapsed, f.cdur.highX1, f.cdur.highX2)

	var uc [4]float64

	uc[Listening] = max5(
		math.Min(confHigh, cdurShort),
		math.Min(confMed, cdurShort),
		math.Min(confMed, cdurMed),
		math.Min(confLow, cdurShort),
		math.Min(confLow, cdurMed),
	)
	uc[Identified] = math.Max(
		math.Min(confHigh, cdurMed),
		math.Min(confHigh, cdurLong),
	)
	uc[SoundsLike] = math.Min(confMed, cdurLong)
	uc[Unidentified] = math.Min(confLow, cdurLong)

	best := Unidentified
	for l := Label(0); l < 4; l++ {
		if uc[l] > uc[best] {
			best = l
		}
	}
	return best
}

func max5(a, b, c, d, e float64) float64 {
	m := a
	for _, v := range []float64{b, c, d, e} {
		if v > m {
			m = v
		}
	}
	return m
}

// Package spectrogram builds the rolling energy spectrogram the
// Fingerprinter slides its peak picker across, generalizing the
// windowed-FFT loop previously embedded directly in the anchor-hash
// fingerprinter (computeSpectrogram) into a standalone incremental
// builder plus a Laplacian-of-block peak picker with non-maximum
// suppression.
package spectrogram

import (
	"github.com/echoid/engine/internal/fft"
)

// Frame is one spectrogram column, energy values for bins [Kmin,Kmax]
// inclusive (index 0 corresponds to Kmin).
type Frame []float64

// Builder turns one window of samples into one energy Frame per
// Analyze call; it keeps no frames itself (the caller holds them and
// does the overlap-and-save stepping). Callers pass raw windows of
// origWindowSize samples — Builder applies the Hamming window itself.
type Builder struct {
	window  []float64
	fftSize int
	kmin    int
	kmax    int
}

// New returns a Builder that windows each origWindowSize-sample frame
// with a Hamming window, zero-pads to fftSize, and restricts the
// retained energy to bins [kmin,kmax].
func New(origWindowSize, fftSize, kmin, kmax int) *Builder {
	return &Builder{
		window:  fft.HammingWindow(origWindowSize),
		fftSize: fftSize,
		kmin:    kmin,
		kmax:    kmax,
	}
}

// Analyze computes one energy Frame from a window of raw samples. The
// window must be at least origWindowSize samples (as passed to New);
// extra samples are ignored, matching the O&S convention of always
// windowing the first origWindowSize samples of a hop-aligned slice.
func (b *Builder) Analyze(window []float64) Frame {
	full := fft.EnergySpectrum(window, b.window, b.fftSize)
	frame := make(Frame, b.kmax-b.kmin+1)
	copy(frame, full[b.kmin:b.kmax+1])
	return frame
}

// POI is a point of interest: a locally maximal energy peak found by
// the non-maximum-suppression pass, in spectrogram-local coordinates
// (frame index, bin index relative to Kmin).
type POI struct {
	Frame int
	Bin   int
}

// laplacianKernel is the fixed 3x3 kernel from spec step 2: a positive
// response marks a candidate peak.
var laplacianKernel = [3][3]float64{
	{-1, -1, -1},
	{-1, 6, -1},
	{-1, -1, -1},
}

// candidate is a peak found by the Laplacian response pass, before
// non-maximum suppression, carrying its local 3x3 energy sum as the
// non-max-suppression sort key.
type candidate struct {
	frame, bin int
	score      float64
}

// PickPeaks finds POIs over frames[lo:hi] (a half-open frame range
// with hi excluded) using Laplacian-response candidate detection
// followed by non-maximum suppression within a (2*rWp+1)x(2*rHp+1)
// window. frames must have margin of rNpT frames before lo and after
// hi-1, and rNpF bins of margin on both ends of the bin axis, per
// spec's interior-cell constraint; out-of-margin cells are skipped
// rather than erroring.
//
// POIs are not marked in place by negating their Laplacian response
// (frames hold raw energy, not response); instead PickPeaks returns the POIs found and the caller
// is responsible for not re-scanning frames it has already picked
// from, mirroring the reference's in-place sign-flip bookkeeping via
// an explicit frontier index instead of mutating energy values (this
// keeps the energy available for descriptor computation afterward).
func PickPeaks(frames []Frame, lo, hi, rNpT, rNpF, rWp, rHp int) []POI {
	if len(frames) == 0 {
		return nil
	}
	bins := len(frames[0])

	var candidates []candidate
	for m := lo; m < hi; m++ {
		if m-rNpT < 0 || m+rNpT >= len(frames) {
			continue
		}
		for k := rNpF; k < bins-rNpF; k++ {
			if m-1 < 0 || m+1 >= len(frames) || k-1 < 0 || k+1 >= bins {
				continue
			}
			resp := laplacianResponse(frames, m, k)
			if resp <= 0 {
				continue
			}
			candidates = append(candidates, candidate{
				frame: m,
				bin:   k,
				score: localEnergySum(frames, m, k),
			})
		}
	}

	return nonMaxSuppress(frames, candidates, rWp, rHp)
}

func laplacianResponse(frames []Frame, m, k int) float64 {
	var sum float64
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			sum += laplacianKernel[di+1][dj+1] * frames[m+di][k+dj]
		}
	}
	return sum
}

func localEnergySum(frames []Frame, m, k int) float64 {
	var sum float64
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			sum += frames[m+di][k+dj]
		}
	}
	return sum
}

// nonMaxSuppress keeps only candidates that are strict local maxima
// (by score) within a (2*rWp+1)x(2*rHp+1) window of other candidates.
func nonMaxSuppress(frames []Frame, candidates []candidate, rWp, rHp int) []POI {
	pois := make([]POI, 0, len(candidates))
	for i, c := range candidates {
		isMax := true
		for j, other := range candidates {
			if i == j {
				continue
			}
			if abs(other.frame-c.frame) <= rWp && abs(other.bin-c.bin) <= rHp {
				if other.score >= c.score {
					isMax = false
					break
				}
			}
		}
		if isMax {
			pois = append(pois, POI{Frame: c.frame, Bin: c.bin})
		}
	}
	_ = frames // energy left untouched; see PickPeaks doc comment
	return pois
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

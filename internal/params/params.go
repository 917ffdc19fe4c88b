// Package params holds the fixed analysis constants from which every other
// size in the engine is derived (spec.md §3.1). None of these are meant to
// be tuned at runtime -- they define the wire format and the shape of the
// codebook, so changing them invalidates every previously built index.
package params

import "math"

const (
	// Fmin/Fmax bound the analysis band in Hz.
	Fmin = 100
	Fmax = 3100

	// OrigWindowSize is the un-padded analysis window, WindowSize the
	// zero-padded FFT size fed to the DFT.
	OrigWindowSize = 1024
	WindowSize     = 2048

	// HopInterval is the spectrogram frame hop, in seconds.
	HopInterval = 0.0138776
)

var (
	// Fs is the expected sample rate of all PCM fed to the Fingerprinter.
	Fs = 11025.0

	HopSize = int(HopInterval * Fs)
	Df      = Fs / WindowSize
	Dt      = HopInterval

	Kmin = int(math.Floor(WindowSize * Fmin / Fs))
	Kmax = int(math.Floor(WindowSize * Fmax / Fs))

	// Peak neighborhood radii, in seconds/Hz, converted below to frames/bins.
	dTWp = 0.400
	dFWp = 340.0
	dTNp = 0.300
	dFNp = 200.0
	dTWc = 0.050
	dFWc = 35.0

	sf = 50.0 // scanning window frequency stride, % of dFWc
	st = 50.0 // scanning window time stride, % of dTWc
	bf = 50.0 // neighbor window frequency displacement, % of dFWc
	bt = 50.0 // neighbor window time displacement, % of dTWc

	QT = 5.0 // time quantization step, in frames
	QF = 9.0 // frequency quantization step, in bins

	// Radius of the non-max-suppression window Wp, in frame/bin units.
	RWp = int(dTWp / 2 / Dt)
	RHp = int(dFWp / 2 / Df)

	// Radius of the POI neighborhood N(p), in frame/bin units.
	RNpF = int(dFNp / 2 / Df)
	RNpT = int(dTNp / 2 / Dt)

	// Radius of a scanning window Wc, in frame/bin units.
	RWcF = int(dFWc / 2 / Df)
	RWcT = int(dTWc / 2 / Dt)

	// Scanning window strides and neighbor displacements, in frame/bin units.
	Nsf = int((sf / 100.0) * dFWc / Df)
	Nst = int((st / 100.0) * dTWc / Dt)
	Nbf = int((bf / 100.0) * dFWc / Df)
	Nbt = int((bt / 100.0) * dTWc / Dt)

	// Number of scanning windows along each axis, and total, in N(p).
	NWcF = ((RNpF*2 + 1) - (RWcF*2 + 1)) / Nsf
	NWcT = ((RNpT*2 + 1) - (RWcT*2 + 1)) / Nst
	NWc  = NWcT * NWcF

	// IDI is the descriptor size in bits, rounded up to a whole byte.
	IDI  = int(math.Ceil(4.0*float64(NWc)/8.0)) * 8
	IDIb = IDI / 8
)

const (
	// Smax is the unit score assigned by the ranking systems; all
	// weights in the matcher multiply into this scale.
	Smax = 1000

	// Kmed is the number of codewords (K for the k-medians codebook).
	Kmed = 100

	// Nk is the minimum number of LFs buffered before a matching step runs.
	Nk = 20

	// Tk is the size of one time-histogram bin, in spectral frames
	// (~5s at the default analysis settings).
	Tk = 365

	// TopK is the size of the top-k candidate list kept by the matcher.
	TopK = 20

	// MaxIdTime is the identification time budget, in seconds.
	MaxIdTime = 20.0

	// MaxRecordingLength bounds how long a single indexed recording may be,
	// in seconds.
	MaxRecordingLength = 1800

	// PostingsListBlockThreshold is the approximate body-size cutoff (in
	// bytes) at which a postings-list append-block is closed and a new one
	// started.
	PostingsListBlockThreshold = 32 * 1024

	// XSCALE pair-word generation window.
	PairDmax = 10
	PairTmax = 73
)

// ChannelsCount is the number of spectral channels used by the MSCALE term
// scheme (GetChannelsCount in the reference parameters).
func ChannelsCount() int {
	return int(math.Ceil(float64(Kmax-Kmin+1) / QF))
}

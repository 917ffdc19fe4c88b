// Package fft provides the windowed, zero-padded discrete Fourier
// transform the spectrogram builder needs, generalized from the
// iterative radix-2 Cooley-Tukey transform previously embedded in the
// anchor-hash fingerprinter.
package fft

import (
	"math"
	"math/cmplx"
)

// HammingWindow returns a Hamming window of the given size, applied to
// the un-padded analysis window before zero-padding to the transform
// size (spec step 1: "Hamming window and zero padding to N").
func HammingWindow(size int) []float64 {
	w := make([]float64, size)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}
	return w
}

// Transform computes the discrete Fourier transform of x via an
// iterative radix-2 Cooley-Tukey algorithm. x is zero-padded up to the
// next power of two if it isn't one already (callers should pre-size
// to WindowSize, a power of two, so this is a no-op in the hot path).
func Transform(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		out := make([]complex128, n)
		copy(out, x)
		return out
	}

	if n&(n-1) != 0 {
		next := 1
		for next < n {
			next <<= 1
		}
		padded := make([]complex128, next)
		copy(padded, x)
		x = padded
		n = next
	}

	result := make([]complex128, n)
	bits := int(math.Log2(float64(n)))
	for i := 0; i < n; i++ {
		result[reverseBits(i, bits)] = x[i]
	}

	for s := 1; s <= bits; s++ {
		m := 1 << s
		wm := cmplx.Exp(complex(0, -2*math.Pi/float64(m)))
		for k := 0; k < n; k += m {
			w := complex(1.0, 0.0)
			for j := 0; j < m/2; j++ {
				t := w * result[k+j+m/2]
				u := result[k+j]
				result[k+j] = u + t
				result[k+j+m/2] = u - t
				w *= wm
			}
		}
	}
	return result
}

func reverseBits(num, bits int) int {
	result := 0
	for i := 0; i < bits; i++ {
		result = (result << 1) | (num & 1)
		num >>= 1
	}
	return result
}

// EnergySpectrum windows samples with win (Hamming, length <= len(samples)),
// zero-pads to fftSize, runs Transform, and returns the magnitude-squared
// energy of each of the first fftSize/2+1 bins (the Fingerprinter only
// ever needs the Kmin..Kmax sub-range of this, but the full half-spectrum
// is returned for generality).
func EnergySpectrum(samples []float64, win []float64, fftSize int) []float64 {
	padded := make([]complex128, fftSize)
	n := len(samples)
	if n > len(win) {
		n = len(win)
	}
	for i := 0; i < n; i++ {
		padded[i] = complex(samples[i]*win[i], 0)
	}

	spectrum := Transform(padded)
	bins := fftSize/2 + 1
	energy := make([]float64, bins)
	for k := 0; k < bins; k++ {
		m := cmplx.Abs(spectrum[k])
		energy[k] = m * m
	}
	return energy
}

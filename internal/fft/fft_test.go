package fft

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_DCSignalHasEnergyOnlyAtBinZero(t *testing.T) {
	x := make([]complex128, 8)
	for i := range x {
		x[i] = complex(1, 0)
	}
	out := Transform(x)
	require.Len(t, out, 8)
	assert.InDelta(t, 8.0, real(out[0]), 1e-9)
	for k := 1; k < 8; k++ {
		assert.InDelta(t, 0, real(out[k]), 1e-9)
		assert.InDelta(t, 0, imag(out[k]), 1e-9)
	}
}

func TestTransform_PadsToPowerOfTwo(t *testing.T) {
	x := make([]complex128, 5)
	out := Transform(x)
	assert.Len(t, out, 8)
}

func TestHammingWindow_EndpointsAreNotZero(t *testing.T) {
	w := HammingWindow(16)
	require.Len(t, w, 16)
	assert.Greater(t, w[0], 0.0)
	assert.Less(t, w[0], 1.0)
	assert.InDelta(t, w[0], w[len(w)-1], 1e-9)
}

func TestEnergySpectrum_SingleToneConcentratesEnergy(t *testing.T) {
	const n = 64
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 8 * float64(i) / n)
	}
	win := make([]float64, n)
	for i := range win {
		win[i] = 1 // rectangular window isolates the bin-concentration check
	}
	energy := EnergySpectrum(samples, win, n)
	require.Len(t, energy, n/2+1)

	maxBin, maxE := 0, 0.0
	for k, e := range energy {
		if e > maxE {
			maxE, maxBin = e, k
		}
	}
	assert.Equal(t, 8, maxBin)
}

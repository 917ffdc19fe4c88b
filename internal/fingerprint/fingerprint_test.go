package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoid/engine/internal/params"
	"github.com/echoid/engine/internal/spectrogram"
)

func TestFingerprinter_ShortBlockProducesNoLFs(t *testing.T) {
	f := New(nil)
	samples := make([]float32, int(0.2*params.Fs))
	lfs, err := f.Process(samples, false)
	require.NoError(t, err)
	assert.Empty(t, lfs)
}

// isolatedPeakFrames builds the smallest frame grid in which a single
// peak at the center has exactly enough margin for PickPeaks to
// consider it, with everything else silent.
func isolatedPeakFrames() ([]spectrogram.Frame, int, int) {
	nFrames := 2*params.RNpT + 1
	nBins := 2*params.RNpF + 1
	grid := make([]spectrogram.Frame, nFrames)
	for i := range grid {
		grid[i] = make(spectrogram.Frame, nBins)
	}
	grid[params.RNpT][params.RNpF] = 100
	return grid, params.RNpT, params.RNpF
}

func TestFingerprinter_PickNewLFs_EmitsDescriptorForIsolatedPeak(t *testing.T) {
	f := New(nil)
	frames, peakFrame, peakBin := isolatedPeakFrames()
	f.frames = frames

	lfs := f.pickNewLFs(true)
	require.Len(t, lfs, 1)
	lf := lfs[0]
	assert.Equal(t, uint32(0), lf.ID)
	assert.Equal(t, uint32(peakFrame), lf.T)
	assert.Equal(t, uint32(params.Kmin+peakBin), lf.F)
	assert.Len(t, lf.D, f.desc.Size())
	assert.GreaterOrEqual(t, int(lf.F), params.Kmin)
	assert.LessOrEqual(t, int(lf.F), params.Kmax)
}

func TestFingerprinter_PickNewLFs_NonFlushReservesSettleMargin(t *testing.T) {
	f := New(nil)
	frames, _, _ := isolatedPeakFrames()
	f.frames = frames

	lfs := f.pickNewLFs(false)
	assert.Empty(t, lfs, "the only candidate sits inside the unsettled trailing margin")
}

func TestFingerprinter_Reset_RestartsLFIDCounter(t *testing.T) {
	f := New(nil)
	frames, _, _ := isolatedPeakFrames()

	f.frames = frames
	first := f.pickNewLFs(true)
	require.Len(t, first, 1)
	assert.Equal(t, uint32(0), first[0].ID)

	f.Reset()
	f.frames = frames
	second := f.pickNewLFs(true)
	require.Len(t, second, 1)
	assert.Equal(t, uint32(0), second[0].ID)
}

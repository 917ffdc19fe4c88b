package spectrogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_AnalyzeRestrictsToBand(t *testing.T) {
	b := New(8, 16, 2, 5)
	window := make([]float64, 8)
	for i := range window {
		window[i] = 1
	}
	frame := b.Analyze(window)
	assert.Len(t, frame, 4) // bins 2..5 inclusive
}

func TestPickPeaks_FindsSingleIsolatedPeak(t *testing.T) {
	const frames, bins = 9, 9
	grid := make([]Frame, frames)
	for i := range grid {
		grid[i] = make(Frame, bins)
	}
	grid[4][4] = 100 // one strong isolated peak in the center

	pois := PickPeaks(grid, 0, frames, 2, 2, 2, 2)
	require.Len(t, pois, 1)
	assert.Equal(t, POI{Frame: 4, Bin: 4}, pois[0])
}

func TestPickPeaks_SkipsCellsWithoutMargin(t *testing.T) {
	const frames, bins = 3, 3
	grid := make([]Frame, frames)
	for i := range grid {
		grid[i] = make(Frame, bins)
	}
	grid[1][1] = 100

	pois := PickPeaks(grid, 0, frames, 2, 2, 1, 1)
	assert.Empty(t, pois, "not enough margin frames/bins to evaluate the interior cell")
}

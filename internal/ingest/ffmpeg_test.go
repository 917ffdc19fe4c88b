package ingest

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeF32LE_RoundTripsKnownSamples(t *testing.T) {
	want := []float32{0, 0.5, -0.5, 1, -1}
	raw := make([]byte, 4*len(want))
	for i, v := range want {
		binary.LittleEndian.PutUint32(raw[i*4:i*4+4], math.Float32bits(v))
	}

	got := decodeF32LE(raw)
	assert.Equal(t, want, got)
}

func TestDecodeF32LE_TruncatesTrailingPartialSample(t *testing.T) {
	raw := []byte{0, 0, 0, 0, 1, 2} // one full sample + 2 stray bytes
	got := decodeF32LE(raw)
	assert.Len(t, got, 1)
}

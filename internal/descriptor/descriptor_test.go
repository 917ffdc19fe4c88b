package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	return &Builder{
		RNpT: 4, RNpF: 4,
		RWcT: 1, RWcF: 1,
		NsT: 2, NsF: 2,
		NbT: 1, NbF: 1,
		NWcT: 4, NWcF: 4,
	}
}

func TestBuilder_SizeIsByteAligned(t *testing.T) {
	b := testBuilder()
	// 16 sub-descriptors * 4 bits = 64 bits = 8 bytes.
	assert.Equal(t, 8, b.Size())
}

func TestBuild_FlatEnergyProducesZeroDescriptor(t *testing.T) {
	b := testBuilder()
	frames := make([][]float64, 20)
	for i := range frames {
		frames[i] = make([]float64, 20)
		for j := range frames[i] {
			frames[i][j] = 5.0
		}
	}
	d := b.Build(frames, 10, 10)
	require.Len(t, d, b.Size())
	for _, byt := range d {
		assert.Equal(t, byte(0), byt)
	}
}

func TestBuild_AsymmetricEnergySetsBits(t *testing.T) {
	b := testBuilder()
	frames := make([][]float64, 20)
	for i := range frames {
		frames[i] = make([]float64, 20)
	}
	// Strong energy on the east/south side of the POI's neighborhood to
	// force at least one non-zero sub-descriptor.
	for m := 10; m < 20; m++ {
		for k := 0; k < 10; k++ {
			frames[m][k] = 50.0
		}
	}
	d := b.Build(frames, 10, 10)
	nonZero := false
	for _, byt := range d {
		if byt != 0 {
			nonZero = true
		}
	}
	assert.True(t, nonZero, "asymmetric energy distribution should set at least one bit")
}

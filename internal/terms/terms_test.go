package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSWord_EncodesCodewordInHighBits(t *testing.T) {
	a := SWord(QLF{W: 5, F: 150})
	b := SWord(QLF{W: 6, F: 150})
	assert.NotEqual(t, a, b)
	assert.Equal(t, uint32(5), a>>6)
	assert.Equal(t, uint32(6), b>>6)
}

func TestBWord_DifferentPairsProduceDifferentTerms(t *testing.T) {
	k := QLF{T: 10, F: 150, W: 3}
	j1 := QLF{T: 15, F: 155, W: 7}
	j2 := QLF{T: 20, F: 160, W: 8}
	assert.NotEqual(t, BWord(k, j1), BWord(k, j2))
}

func TestMaxTermValue_FitsInUint32(t *testing.T) {
	assert.Greater(t, MaxTermValue(true), uint32(0))
	assert.Greater(t, MaxTermValue(false), uint32(0))
}

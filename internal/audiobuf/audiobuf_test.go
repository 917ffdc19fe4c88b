package audiobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppend_AccumulatesAndReturnsFullBacking(t *testing.T) {
	b := New(4)
	full := b.Append([]float32{1, 2, 3})
	assert.Equal(t, []float32{1, 2, 3}, full)
	full = b.Append([]float32{4, 5})
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, full)
	assert.Equal(t, 5, b.Len())
}

func TestRetain_KeepsOnlyTrailingWindow(t *testing.T) {
	b := New(2)
	b.Append([]float32{1, 2, 3, 4, 5})
	b.Retain()
	assert.Equal(t, []float32{4, 5}, b.Samples())
}

func TestRetain_NoopWhenShorterThanRetain(t *testing.T) {
	b := New(10)
	b.Append([]float32{1, 2, 3})
	b.Retain()
	assert.Equal(t, []float32{1, 2, 3}, b.Samples())
}

func TestPadTo_ZeroPadsShortBuffer(t *testing.T) {
	b := New(0)
	b.Append([]float32{1, 2, 3})
	b.PadTo(5)
	assert.Equal(t, []float32{1, 2, 3, 0, 0}, b.Samples())
}

func TestPadTo_NoopWhenAlreadyLongEnough(t *testing.T) {
	b := New(0)
	b.Append([]float32{1, 2, 3})
	b.PadTo(2)
	assert.Equal(t, []float32{1, 2, 3}, b.Samples())
}

func TestReset_ClearsBuffer(t *testing.T) {
	b := New(2)
	b.Append([]float32{1, 2, 3})
	b.Reset()
	assert.Equal(t, 0, b.Len())
}

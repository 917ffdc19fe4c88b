package indexcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 300, 1 << 20, 1<<28 - 1}
	for _, v := range values {
		buf := AppendUvarint(nil, v)
		got, n, err := ReadUvarint(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestUvarint_ContinuationBitOnlyOnLastByte(t *testing.T) {
	buf := AppendUvarint(nil, 300) // needs 2 bytes
	require.Len(t, buf, 2)
	assert.Equal(t, byte(0), buf[0]&0x80, "non-terminal byte must have continuation bit clear")
	assert.Equal(t, byte(0x80), buf[1]&0x80, "terminal byte must have continuation bit set")
}

func TestReadUvarint_TruncatedIsInvalidIndexData(t *testing.T) {
	_, _, err := ReadUvarint([]byte{0x05}) // continuation bit never set
	require.Error(t, err)
}

func TestEncodeDecodeBlock_RoundTrip(t *testing.T) {
	postings := []Posting{
		{FID: 1, LID: []uint32{0, 3, 7}, T: []uint32{10, 12, 12}, E: []byte{1, 2, 3}},
		{FID: 2, LID: []uint32{1}, T: []uint32{5}, E: []byte{9}},
		{FID: 5, LID: []uint32{0, 1}, T: []uint32{100, 101}, E: []byte{0, 255}},
	}
	body := EncodeBlock(postings, 0)
	got, err := DecodeBlock(body, 0)
	require.NoError(t, err)
	require.Equal(t, postings, got)
}

func TestEncodeDecodeBlock_UsesFIDmaxOfPreviousBlockAsBase(t *testing.T) {
	postings := []Posting{
		{FID: 11, LID: []uint32{0}, T: []uint32{1}, E: []byte{0}},
		{FID: 12, LID: []uint32{0}, T: []uint32{2}, E: []byte{0}},
	}
	body := EncodeBlock(postings, 10)
	got, err := DecodeBlock(body, 10)
	require.NoError(t, err)
	assert.Equal(t, postings, got)
}

func TestDecodeBlock_RejectsNonIncreasingFID(t *testing.T) {
	var buf []byte
	buf = AppendUvarint(buf, 0) // delta FID = 0 -> FID == fidBase, not strictly increasing
	buf = AppendUvarint(buf, 0) // tf = 0
	_, err := DecodeBlock(buf, 5)
	require.Error(t, err)
}

// Package indexcodec implements the postings-block wire format from
// spec.md §6.4: a variable-byte integer codec with delta-coded FID/LID/T
// fields, grounded on original_source/src/index/BlockCodec.h's
// VByteCODEC and DeltaCodec templates.
package indexcodec

import "github.com/echoid/engine/internal/acierrors"

// AppendUvarint appends v to buf using the engine's vbyte convention:
// 7 payload bits per byte in increasing-significance order, with the
// continuation bit (0x80) clear on every byte except the last, where
// it is set. This is the reverse of standard LEB128 (which sets the
// continuation bit on every byte but the last) — BlockCodec.h's
// VByteCODEC::encode uses this convention, so this codec follows it
// to stay wire-compatible with that reference layout.
func AppendUvarint(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			return append(buf, b|0x80)
		}
		buf = append(buf, b)
	}
}

// ReadUvarint decodes one varint from the start of data, returning the
// value and the number of bytes consumed. An error is returned if data
// runs out before a terminal (high-bit-set) byte is found.
func ReadUvarint(data []byte) (uint32, int, error) {
	var v uint32
	shift := uint(0)
	for i, b := range data {
		v |= uint32(b&0x7F) << shift
		if b&0x80 != 0 {
			return v, i + 1, nil
		}
		shift += 7
		if shift > 35 {
			return 0, 0, acierrors.InvalidIndexData("indexcodec.ReadUvarint", "varint exceeds 5 bytes")
		}
	}
	return 0, 0, acierrors.InvalidIndexData("indexcodec.ReadUvarint", "truncated varint")
}

// reader walks a byte slice pulling varints off the front, tracking
// how much has been consumed so Decode can tell when a block body is
// exhausted.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() bool { return r.pos < len(r.data) }

func (r *reader) next() (uint32, error) {
	v, n, err := ReadUvarint(r.data[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// Package terms computes the MSCALE and XSCALE term schemes (spec.md
// §3.3) shared by the Indexer (write side) and the Matcher (read
// side), so both sides hash a QLF the same way.
package terms

import "github.com/echoid/engine/internal/params"

// LF is a local fingerprint as produced by the Fingerprinter (spec.md
// §3.2), before quantization: a time-frequency point with a raw binary
// descriptor.
type LF struct {
	ID uint32
	T  uint32
	F  uint32
	D  []byte
}

// QLF is a quantized local fingerprint, the unit both the Indexer and
// Matcher consume (spec.md §3.2).
type QLF struct {
	T uint32
	F uint16
	W uint8 // codeword, 0..Kmed-1
	E uint8 // Hamming distance to centroid, clipped to 255
}

// SWord computes the MSCALE single-word term for one QLF: term =
// (W<<6) | channel, channel = (F - Kmin + 1) / qF.
func SWord(q QLF) uint32 {
	channel := uint32(int(q.F)-params.Kmin+1) / uint32(params.QF)
	return (uint32(q.W) << 6) | channel
}

// Bit layout for the XSCALE pair-word term. The spec pins down the
// fields (W1, B, W2, Vpt, Vpf) and requires the packed term fit in a
// u32, but leaves the exact bit widths unspecified; Kmed=100 needs 7
// bits per codeword, the band index needs 6 bits to stay well under
// Kmed*64, and Vpt/Vpf are masked to 6 bits (matching the explicit
// "& 0x3F" on Vpf in spec.md §3.3), for a 7+7+6+6+6=32-bit total.
const (
	vpfBits = 6
	vptBits = 6
	w2Bits  = 7
	bBits   = 6

	vptShift = vpfBits
	w2Shift  = vptShift + vptBits
	bShift   = w2Shift + w2Bits
	w1Shift  = bShift + bBits
)

// Band returns the frequency-band index (F/qB, per spec.md §3.3's
// band-sharing criterion for XSCALE pair generation) a QLF's bin falls
// into. Two QLFs are pair-eligible only when Band(k.F) == Band(j.F).
func Band(f uint16) uint32 {
	return (uint32(f) - uint32(params.Kmin) + 1) / uint32(params.QF)
}

// BWord computes the XSCALE pair-word term for a pivot QLF k paired
// with a following QLF j sharing its frequency band.
func BWord(k, j QLF) uint32 {
	qF := uint32(params.QF)
	qT := uint32(params.QT)

	b := Band(k.F)

	vpt := (int32(j.T)/int32(qT) - int32(k.T)/int32(qT)) & (1<<vptBits - 1)
	vpf := (int32(j.F)/int32(qF) - int32(k.F)/int32(qF)) & 0x3F

	return uint32(k.W)<<w1Shift |
		b<<bShift |
		uint32(j.W)<<w2Shift |
		uint32(vpt)<<vptShift |
		uint32(vpf)
}

// MaxTermValue returns the largest term value the given match type can
// produce, used to validate that a term fits its u32 (spec.md §8
// invariant 4).
func MaxTermValue(xscale bool) uint32 {
	if !xscale {
		return uint32(params.Kmed)<<6 | (1<<6 - 1)
	}
	return ^uint32(0)
}

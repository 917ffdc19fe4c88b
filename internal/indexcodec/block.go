package indexcodec

import "github.com/echoid/engine/internal/acierrors"

// Posting is one recording's occurrences for a term within a single
// block: tf parallel arrays of LID/T/E, as described in spec.md §3.2.
type Posting struct {
	FID uint32
	LID []uint32
	T   []uint32
	E   []byte
}

// EncodeBlock serializes postings into the block body format from
// spec.md §6.4: per posting, FID (delta from the previous posting's
// FID, or fidBase for the first posting in the block), tf, then the
// LID array (delta-coded from 0), the T array (delta-coded from 0),
// and the E array left unencoded — each run kept contiguous so like-
// typed integers compress predictably, then the whole integer stream
// vbyte-encoded.
func EncodeBlock(postings []Posting, fidBase uint32) []byte {
	var buf []byte
	prevFID := fidBase
	for _, p := range postings {
		buf = AppendUvarint(buf, p.FID-prevFID)
		prevFID = p.FID

		tf := len(p.LID)
		buf = AppendUvarint(buf, uint32(tf))

		prevLID := uint32(0)
		for _, lid := range p.LID {
			buf = AppendUvarint(buf, lid-prevLID)
			prevLID = lid
		}
		prevT := uint32(0)
		for _, t := range p.T {
			buf = AppendUvarint(buf, t-prevT)
			prevT = t
		}
		for _, e := range p.E {
			buf = AppendUvarint(buf, uint32(e))
		}
	}
	return buf
}

// DecodeBlock is the inverse of EncodeBlock. fidBase is the FIDmax of
// the previous block (0 for the first block of a list). A malformed
// body (truncated varint, or a decoded value that violates the
// monotonicity invariants) is reported as acierrors.InvalidIndexData,
// per spec.md §4.4/§7.
func DecodeBlock(body []byte, fidBase uint32) ([]Posting, error) {
	const op = "indexcodec.DecodeBlock"
	r := &reader{data: body}
	var postings []Posting
	prevFID := fidBase

	for r.remaining() {
		deltaFID, err := r.next()
		if err != nil {
			return nil, acierrors.InvalidIndexData(op, "truncated FID delta").Wrap(err)
		}
		fid := prevFID + deltaFID
		if fid <= prevFID {
			return nil, acierrors.InvalidIndexData(op, "FID is not strictly increasing")
		}
		prevFID = fid

		tfRaw, err := r.next()
		if err != nil {
			return nil, acierrors.InvalidIndexData(op, "truncated tf").Wrap(err)
		}
		tf := int(tfRaw)

		lids := make([]uint32, tf)
		prevLID := uint32(0)
		for i := 0; i < tf; i++ {
			d, err := r.next()
			if err != nil {
				return nil, acierrors.InvalidIndexData(op, "truncated LID delta").Wrap(err)
			}
			lids[i] = prevLID + d
			if i > 0 && lids[i] <= prevLID {
				return nil, acierrors.InvalidIndexData(op, "LID is not strictly increasing")
			}
			prevLID = lids[i]
		}

		ts := make([]uint32, tf)
		prevT := uint32(0)
		for i := 0; i < tf; i++ {
			d, err := r.next()
			if err != nil {
				return nil, acierrors.InvalidIndexData(op, "truncated T delta").Wrap(err)
			}
			ts[i] = prevT + d
			if i > 0 && ts[i] < prevT {
				return nil, acierrors.InvalidIndexData(op, "T is not non-decreasing")
			}
			prevT = ts[i]
		}

		es := make([]byte, tf)
		for i := 0; i < tf; i++ {
			v, err := r.next()
			if err != nil {
				return nil, acierrors.InvalidIndexData(op, "truncated E").Wrap(err)
			}
			if v > 255 {
				return nil, acierrors.InvalidIndexData(op, "E exceeds one byte")
			}
			es[i] = byte(v)
		}

		postings = append(postings, Posting{FID: fid, LID: lids, T: ts, E: es})
	}
	return postings, nil
}

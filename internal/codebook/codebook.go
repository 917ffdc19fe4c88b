// Package codebook implements the static K-medians codebook of binary
// descriptors (spec.md §3.2, §4.2) and its nearest-centroid quantizer,
// grounded on original_source/src/quant/Codebook.h and Codebook.cpp's
// cluster record layout and quantize tie-break rule.
package codebook

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/echoid/engine/internal/acierrors"
)

// Cluster is one codeword: its centroid descriptor plus the k-medians
// bookkeeping fields carried in the wire format (SumD/Npoints are build
// time artifacts kept for reference/debugging, not read by Quantize).
type Cluster struct {
	ID       uint32
	SumD     float32
	Npoints  uint32
	Centroid []byte
}

// Codebook is the Kmed-cluster set a Fingerprinter descriptor is
// quantized against.
type Codebook struct {
	Clusters []Cluster
	idiBytes int
}

// recordSize returns the fixed per-cluster record size for a
// descriptor of idiBytes bytes: 4 (ID) + 4 (SumD) + 4 (Npoints) + idiBytes.
func recordSize(idiBytes int) int {
	return 4 + 4 + 4 + idiBytes
}

// New builds a Codebook from in-memory clusters, validating every
// centroid is idiBytes long.
func New(clusters []Cluster, idiBytes int) (*Codebook, error) {
	for _, c := range clusters {
		if len(c.Centroid) != idiBytes {
			return nil, acierrors.InvalidAudioCodes("codebook.New", "centroid length does not match descriptor size")
		}
	}
	return &Codebook{Clusters: clusters, idiBytes: idiBytes}, nil
}

// Deserialize parses the contiguous little-endian record array format
// from spec.md §6.4. A size not a multiple of the record size is a
// fatal InvalidAudioCodes error (spec.md §4.2, §7).
func Deserialize(data []byte, idiBytes int) (*Codebook, error) {
	recSize := recordSize(idiBytes)
	if recSize <= 0 || len(data)%recSize != 0 {
		return nil, acierrors.InvalidAudioCodes("codebook.Deserialize", "data size is not a multiple of the record size")
	}
	n := len(data) / recSize
	clusters := make([]Cluster, n)
	for i := 0; i < n; i++ {
		rec := data[i*recSize : (i+1)*recSize]
		id := binary.LittleEndian.Uint32(rec[0:4])
		sumD := binary.LittleEndian.Uint32(rec[4:8])
		npoints := binary.LittleEndian.Uint32(rec[8:12])
		centroid := make([]byte, idiBytes)
		copy(centroid, rec[12:12+idiBytes])
		clusters[i] = Cluster{
			ID:       id,
			SumD:     math.Float32frombits(sumD),
			Npoints:  npoints,
			Centroid: centroid,
		}
	}
	return &Codebook{Clusters: clusters, idiBytes: idiBytes}, nil
}

// Serialize writes the codebook back to the wire format Deserialize
// reads.
func (cb *Codebook) Serialize() []byte {
	recSize := recordSize(cb.idiBytes)
	out := make([]byte, recSize*len(cb.Clusters))
	for i, c := range cb.Clusters {
		rec := out[i*recSize : (i+1)*recSize]
		binary.LittleEndian.PutUint32(rec[0:4], c.ID)
		binary.LittleEndian.PutUint32(rec[4:8], math.Float32bits(c.SumD))
		binary.LittleEndian.PutUint32(rec[8:12], c.Npoints)
		copy(rec[12:12+cb.idiBytes], c.Centroid)
	}
	return out
}

// Size returns the number of clusters (Kmed in the fixed parameters).
func (cb *Codebook) Size() int { return len(cb.Clusters) }

// Quantize returns the codeword (cluster ID) whose centroid minimizes
// Hamming distance to d, and the clipped (to 255) distance. Ties are
// broken by maximum cluster ID, equivalent to a stable last-match rule
// when clusters are scanned in ascending ID order.
func (cb *Codebook) Quantize(d []byte) (word uint32, dist int) {
	bestSim := -1
	bestWord := uint32(0)
	bestDist := 0
	idi := cb.idiBytes * 8
	for _, c := range cb.Clusters {
		hd := hamming(d, c.Centroid)
		sim := idi - hd
		if sim >= bestSim {
			bestSim = sim
			bestWord = c.ID
			bestDist = hd
		}
	}
	if bestDist > 255 {
		bestDist = 255
	}
	return bestWord, bestDist
}

func hamming(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}


// Package descriptor builds the binary hysteresis-coded descriptor
// attached to each point of interest (spec.md §4.1 step 4): a grid of
// overlapping scanning windows around the POI, each contributing a
// 4-bit sub-descriptor keyed off its energy relative to four displaced
// neighbor windows.
package descriptor

import "math"

// Builder holds the scanning-window geometry derived from the fixed
// analysis parameters. All radii/strides are in frame/bin units
// (already converted from the time/frequency values in internal/params).
type Builder struct {
	RNpT, RNpF int // neighborhood N(p) radii
	RWcT, RWcF int // scanning window Wc radii
	NsT, NsF   int // scanning window strides
	NbT, NbF   int // neighbor window displacement
	NWcT, NWcF int // number of scanning windows along each axis
}

// Size returns the descriptor size in bytes: ceil(4*NWc/8), byte
// aligned up to a whole byte, matching params.IDIb.
func (b *Builder) Size() int {
	nWc := b.NWcT * b.NWcF
	bits := int(math.Ceil(4.0*float64(nWc)/8.0)) * 8
	return bits / 8
}

// energyGrid abstracts the spectrogram access the builder needs: a
// rectangular sum of energy over [m0,m1] x [k0,k1], clipped to
// whatever range is actually available.
type energyGrid interface {
	sum(m0, m1, k0, k1 int) float64
}

// frameGrid adapts a [][]float64 (frame-major) energy matrix to
// energyGrid.
type frameGrid [][]float64

func (g frameGrid) sum(m0, m1, k0, k1 int) float64 {
	var s float64
	for m := m0; m <= m1; m++ {
		if m < 0 || m >= len(g) {
			continue
		}
		row := g[m]
		for k := k0; k <= k1; k++ {
			if k < 0 || k >= len(row) {
				continue
			}
			s += row[k]
		}
	}
	return s
}

// Build computes the descriptor for a POI at (poiFrame, poiBin) in
// frames (frame-major energy, same grid the peak picker scanned).
func (b *Builder) Build(frames [][]float64, poiFrame, poiBin int) []byte {
	g := frameGrid(frames)
	out := make([]byte, b.Size())

	sub := 0
	var nibbles []byte
	for it := 0; it < b.NWcT; it++ {
		wt := poiFrame - b.RNpT + b.RWcT + it*b.NsT
		for jf := 0; jf < b.NWcF; jf++ {
			wf := poiBin - b.RNpF + b.RWcF + jf*b.NsF
			nibbles = append(nibbles, b.subDescriptor(g, wt, wf))
			sub++
		}
	}

	for i, nib := range nibbles {
		byteIdx := i / 2
		if byteIdx >= len(out) {
			break
		}
		if i%2 == 0 {
			out[byteIdx] |= nib & 0x0F
		} else {
			out[byteIdx] |= (nib & 0x0F) << 4
		}
	}
	return out
}

// subDescriptor computes one 4-bit code for the scanning window
// centered at (wt, wf): bit0=west, bit1=east, bit2=north, bit3=south,
// set per the hysteresis rule in spec.md §4.1 step 4.
func (b *Builder) subDescriptor(g energyGrid, wt, wf int) byte {
	ewc := g.sum(wt-b.RWcT, wt+b.RWcT, wf-b.RWcF, wf+b.RWcF)

	west := g.sum(wt-b.NbT-b.RWcT, wt-b.NbT+b.RWcT, wf-b.RWcF, wf+b.RWcF)
	east := g.sum(wt+b.NbT-b.RWcT, wt+b.NbT+b.RWcT, wf-b.RWcF, wf+b.RWcF)
	north := g.sum(wt-b.RWcT, wt+b.RWcT, wf+b.NbF-b.RWcF, wf+b.NbF+b.RWcF)
	south := g.sum(wt-b.RWcT, wt+b.RWcT, wf-b.NbF-b.RWcF, wf-b.NbF+b.RWcF)

	neighbors := [4]float64{west, east, north, south}

	maxRatio := 0.0
	maxDiff := 0.0
	diffs := [4]float64{}
	for i, n := range neighbors {
		diffs[i] = ewc - n
		ratio := ratioOf(ewc, n)
		if ratio > maxRatio {
			maxRatio = ratio
		}
		if math.Abs(diffs[i]) > maxDiff {
			maxDiff = math.Abs(diffs[i])
		}
	}

	var code byte
	if maxRatio <= 2 || maxDiff == 0 {
		return 0
	}
	for i, d := range diffs {
		if math.Abs(d)/maxDiff > 0.25 {
			if d > 0 {
				code |= 1 << uint(i)
			}
		}
	}
	return code
}

func ratioOf(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 1
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	if lo <= 0 {
		return math.Inf(1)
	}
	return hi / lo
}

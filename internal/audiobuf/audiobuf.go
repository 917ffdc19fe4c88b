// Package audiobuf implements the overlap-and-save PCM container the
// Fingerprinter slides its analysis window across. It has no fixed
// capacity: Append grows the buffer by every sample passed in, and only
// Retain cuts it back to the configured trailing window.
package audiobuf

// Buffer holds float32 mono samples in [-1,1] and retains the tail
// window needed to seed the next Append's overlap-and-save step.
type Buffer struct {
	samples []float32
	// retain is the number of trailing samples from the previous Append
	// call that must be prepended to the next one so windows can
	// straddle call boundaries.
	retain int
}

// New returns an empty Buffer that keeps `retain` trailing samples
// across Append calls (typically the analysis window size minus one
// hop, so overlap-and-save windows never miss samples at a call
// boundary).
func New(retain int) *Buffer {
	return &Buffer{retain: retain}
}

// Append adds samples to the buffer, normalizing nothing (callers
// provide already-normalized [-1,1] float samples) and returns the
// full backing slice available for windowing.
func (b *Buffer) Append(samples []float32) []float32 {
	b.samples = append(b.samples, samples...)
	return b.samples
}

// Retain drops everything except the trailing `retain` samples,
// keeping them as the seed for the next Append. Call after the caller
// has consumed all full windows it can from the current contents.
func (b *Buffer) Retain() {
	if len(b.samples) <= b.retain {
		return
	}
	tail := make([]float32, b.retain)
	copy(tail, b.samples[len(b.samples)-b.retain:])
	b.samples = tail
}

// Len reports the number of samples currently buffered.
func (b *Buffer) Len() int { return len(b.samples) }

// Samples exposes the current backing slice read-only.
func (b *Buffer) Samples() []float32 { return b.samples }

// Reset discards all buffered samples.
func (b *Buffer) Reset() {
	b.samples = nil
}

// PadTo zero-pads the buffer up to n samples, used for the final
// partial window on flush.
func (b *Buffer) PadTo(n int) {
	if len(b.samples) >= n {
		return
	}
	padded := make([]float32, n)
	copy(padded, b.samples)
	b.samples = padded
}

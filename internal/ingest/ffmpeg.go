// Package ingest turns arbitrary host audio (files on disk, WAV
// fixtures, bulk directories) into the mono 11025 Hz PCM streams the
// Fingerprinter and Recognizer consume, and fans bulk indexing work
// out across a bounded worker pool.
package ingest

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"

	"github.com/echoid/engine/internal/params"
)

// Decoder shells out to ffmpeg to resample and remix arbitrary input
// audio to the engine's required format, the same os/exec subprocess
// pattern the teacher's upload pipeline uses for loudness
// normalization, applied here to decoding instead of encoding.
type Decoder struct {
	// BinPath overrides the ffmpeg executable name, for tests that
	// stub it out. Empty means "ffmpeg" from PATH.
	BinPath string
}

// NewDecoder returns a Decoder that shells out to the system ffmpeg.
func NewDecoder() *Decoder {
	return &Decoder{BinPath: "ffmpeg"}
}

// Decode reads path through ffmpeg and returns mono float32 PCM at
// params.Fs, normalized to [-1,1].
func (d *Decoder) Decode(ctx context.Context, path string) ([]float32, error) {
	bin := d.BinPath
	if bin == "" {
		bin = "ffmpeg"
	}
	args := []string{
		"-i", path,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", int(params.Fs)),
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-",
	}
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed: %w: %s", err, stderr.String())
	}
	return decodeF32LE(stdout.Bytes()), nil
}

// CheckAvailable reports whether the configured ffmpeg binary can be
// located and run, mirroring the teacher's CheckFFmpegAvailable guard
// used before queuing any processing job.
func (d *Decoder) CheckAvailable(ctx context.Context) error {
	bin := d.BinPath
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, "-version")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg not available: %w: %s", err, stderr.String())
	}
	return nil
}

func decodeF32LE(raw []byte) []float32 {
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

package ingest

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/echoid/engine/internal/acierrors"
	"github.com/echoid/engine/internal/params"
)

// DecodeWAV reads a WAV file directly (no ffmpeg subprocess) and
// returns mono float32 PCM, normalized to [-1,1]. Reused from the
// teacher's waveform.Generator.GenerateFromWAV decode path, adapted to
// return samples instead of rendering an image.
func DecodeWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, acierrors.InvalidFingerprint("ingest.DecodeWAV", "not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav pcm: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, acierrors.InvalidFingerprint("ingest.DecodeWAV", "empty WAV audio buffer")
	}
	if int(decoder.SampleRate) != int(params.Fs) {
		return nil, acierrors.InvalidFingerprint("ingest.DecodeWAV",
			fmt.Sprintf("WAV sample rate %d does not match required %d Hz", decoder.SampleRate, int(params.Fs)))
	}

	channels := int(decoder.NumChans)
	if channels < 1 {
		channels = 1
	}
	samples := make([]float32, len(buf.Data)/channels)
	maxAmp := buf.SourceBitDepth
	if maxAmp <= 0 {
		maxAmp = 16
	}
	scale := float32(int(1) << uint(maxAmp-1))

	for i := range samples {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		samples[i] = sum / float32(channels)
	}
	return samples, nil
}

// WAVProvider implements store.AudioProvider by serving FIDs out of a
// pre-decoded in-memory set of recordings, the shape a bulk indexing
// run assembles from a directory of WAV fixtures.
type WAVProvider struct {
	recordings map[uint32][]float32
	cursor     map[uint32]int
}

// NewWAVProvider returns a WAVProvider with no recordings registered.
func NewWAVProvider() *WAVProvider {
	return &WAVProvider{
		recordings: make(map[uint32][]float32),
		cursor:     make(map[uint32]int),
	}
}

// Add registers samples as FID's source audio.
func (p *WAVProvider) Add(fid uint32, samples []float32) {
	p.recordings[fid] = samples
	p.cursor[fid] = 0
}

// OnAudioData implements store.AudioProvider.
func (p *WAVProvider) OnAudioData(fid uint32, out []float32) int {
	data, ok := p.recordings[fid]
	if !ok {
		return -1
	}
	pos := p.cursor[fid]
	if pos >= len(data) {
		return 0
	}
	n := copy(out, data[pos:])
	p.cursor[fid] = pos + n
	return n
}

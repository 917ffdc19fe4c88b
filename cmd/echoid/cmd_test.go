package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoid/engine/internal/classify"
	"github.com/echoid/engine/internal/config"
	"github.com/echoid/engine/internal/recognizer"
)

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["index"])
	assert.True(t, names["identify"])
	assert.True(t, names["serve"])
}

func TestFidFromPath_ParsesNumericBasename(t *testing.T) {
	fid, err := fidFromPath("/tmp/recordings/42.wav")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), fid)
}

func TestFidFromPath_RejectsNonNumericBasename(t *testing.T) {
	_, err := fidFromPath("/tmp/recordings/track-one.wav")
	assert.Error(t, err)
}

func TestIndexConfigFrom_MapsMatchType(t *testing.T) {
	cfg := indexConfigFrom(config.IndexerConfig{MatchType: config.MatchXSCALE, CacheLimitMB: 16})
	assert.True(t, cfg.XSCALE)
	assert.Equal(t, 16.0, cfg.CacheLimitMB)

	cfg = indexConfigFrom(config.IndexerConfig{MatchType: config.MatchMSCALE, CacheLimitMB: 16})
	assert.False(t, cfg.XSCALE)
}

func TestRecognizerConfigFrom_MapsEveryField(t *testing.T) {
	src := config.RecognizerConfig{
		MatchType:            config.MatchMSCALE,
		MMS:                  0.7,
		IdType:               config.IdentificationBinary,
		IdMode:               config.IdentificationStrict,
		BinThreshold:         0.8,
		BinMinTime:           2,
		MaxRecordingDuration: 600,
	}
	cfg := recognizerConfigFrom(src)

	assert.False(t, cfg.XScale)
	assert.Equal(t, 0.7, cfg.MMS)
	assert.Equal(t, recognizer.IDBinary, cfg.IDType)
	assert.Equal(t, classify.ModeStrict, cfg.IDMode)
	assert.Equal(t, 0.8, cfg.BinThreshold)
	assert.Equal(t, 2.0, cfg.BinMinTime)
	assert.Equal(t, 600.0, cfg.MaxRecordingDuration)
}

func TestRecognizerConfigFrom_DefaultsToFuzzyEasy(t *testing.T) {
	cfg := recognizerConfigFrom(config.DefaultRecognizerConfig())
	assert.Equal(t, recognizer.IDFuzzy, cfg.IDType)
	assert.Equal(t, classify.ModeEasy, cfg.IDMode)
}

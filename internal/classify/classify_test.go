package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBinary_RejectsOutOfRangeThreshold(t *testing.T) {
	_, err := NewBinary(0.4, 0)
	assert.Error(t, err)
	_, err = NewBinary(1.1, 0)
	assert.Error(t, err)
}

func TestNewBinary_RejectsOutOfRangeMinTime(t *testing.T) {
	_, err := NewBinary(0.6, -1)
	assert.Error(t, err)
	_, err = NewBinary(0.6, 21)
	assert.Error(t, err)
}

func TestBinary_Classify(t *testing.T) {
	b, err := NewBinary(0.6, 5)
	require.NoError(t, err)

	assert.Equal(t, Identified, b.Classify(0.7, 10))
	assert.Equal(t, Unidentified, b.Classify(0.7, 2), "below min time")
	assert.Equal(t, Unidentified, b.Classify(0.5, 10), "below threshold")
	assert.Equal(t, Identified, b.Classify(0.6, 5), "boundary values are inclusive")
}

func TestFuzzy_HighConfidenceMediumDurationIsIdentified(t *testing.T) {
	f := NewFuzzy(ModeEasy)
	assert.Equal(t, Identified, f.Classify(0.95, 10))
}

func TestFuzzy_LowConfidenceLongDurationIsUnidentified(t *testing.T) {
	f := NewFuzzy(ModeEasy)
	assert.Equal(t, Unidentified, f.Classify(0.1, 25))
}

func TestFuzzy_MediumConfidenceLongDurationIsSoundsLike(t *testing.T) {
	f := NewFuzzy(ModeEasy)
	assert.Equal(t, SoundsLike, f.Classify(0.70, 25))
}

func TestFuzzy_HighConfidenceShortDurationIsListening(t *testing.T) {
	f := NewFuzzy(ModeEasy)
	assert.Equal(t, Listening, f.Classify(0.95, 1))
}

func TestFuzzy_StrictModeRequiresHigherConfidenceForIdentified(t *testing.T) {
	easy := NewFuzzy(ModeEasy)
	strict := NewFuzzy(ModeStrict)

	// 0.80 confidence at 12s clears EASY's IDENTIFIED region (CONF_HIGH
	// starts ramping at 0.75) but falls on the falling slope of STRICT's
	// CONF_MED triangle (STRICT's CONF_HIGH doesn't start ramping until
	// 0.875).
	assert.Equal(t, Identified, easy.Classify(0.80, 12))
	assert.NotEqual(t, Identified, strict.Classify(0.80, 12))
}

func TestFuzzy_ZeroEverythingIsUnidentifiedOrListening(t *testing.T) {
	f := NewFuzzy(ModeEasy)
	label := f.Classify(0, 0)
	assert.Contains(t, []Label{Unidentified, Listening}, label)
}

func TestLabel_String(t *testing.T) {
	assert.Equal(t, "UNIDENTIFIED", Unidentified.String())
	assert.Equal(t, "SOUNDS_LIKE", SoundsLike.String())
	assert.Equal(t, "IDENTIFIED", Identified.String())
	assert.Equal(t, "LISTENING", Listening.String())
}

// Package config holds the two configuration structs spec.md §6.5
// enumerates, loaded through viper the way the teacher's cli/pkg/config
// layers env, file, and flag sources for its own cobra commands.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/echoid/engine/internal/acierrors"
)

// MatchType selects the term scheme the index and matcher agree on.
type MatchType string

const (
	MatchMSCALE MatchType = "MSCALE"
	MatchXSCALE MatchType = "XSCALE"
)

// IdentificationType selects the classifier family the Recognizer uses.
type IdentificationType string

const (
	IdentificationFuzzy  IdentificationType = "FUZZY"
	IdentificationBinary IdentificationType = "BINARY"
)

// IdentificationMode trades recall for precision in the fuzzy classifier.
type IdentificationMode string

const (
	IdentificationStrict IdentificationMode = "STRICT"
	IdentificationEasy   IdentificationMode = "EASY"
)

// RecognizerConfig configures a Recognizer session.
type RecognizerConfig struct {
	MatchType             MatchType          `mapstructure:"match_type"`
	MMS                   float64            `mapstructure:"mms"`
	IdType                IdentificationType `mapstructure:"id_type"`
	IdMode                IdentificationMode `mapstructure:"id_mode"`
	BinThreshold          float64            `mapstructure:"bin_threshold"`
	BinMinTime            float64            `mapstructure:"bin_min_time"`
	MaxRecordingDuration  float64            `mapstructure:"max_recording_duration"`
}

// DefaultRecognizerConfig returns the configuration the reference
// parameters imply when nothing is overridden.
func DefaultRecognizerConfig() RecognizerConfig {
	return RecognizerConfig{
		MatchType:            MatchXSCALE,
		MMS:                  0.5,
		IdType:               IdentificationFuzzy,
		IdMode:                IdentificationEasy,
		BinThreshold:         0.6,
		BinMinTime:           0,
		MaxRecordingDuration: 1800,
	}
}

// Validate rejects any field outside its documented legal range with
// acierrors.InvalidParameter; it never clamps (see DESIGN.md's Open
// Question 2 decision).
func (c RecognizerConfig) Validate() error {
	const op = "RecognizerConfig.Validate"
	switch c.MatchType {
	case MatchMSCALE, MatchXSCALE:
	default:
		return acierrors.InvalidParameter(op, fmt.Sprintf("match_type %q not in {MSCALE, XSCALE}", c.MatchType))
	}
	if c.MMS < 0 || c.MMS > 1 {
		return acierrors.InvalidParameter(op, fmt.Sprintf("mms %v not in [0,1]", c.MMS))
	}
	switch c.IdType {
	case IdentificationFuzzy, IdentificationBinary:
	default:
		return acierrors.InvalidParameter(op, fmt.Sprintf("id_type %q not in {FUZZY, BINARY}", c.IdType))
	}
	switch c.IdMode {
	case IdentificationStrict, IdentificationEasy:
	default:
		return acierrors.InvalidParameter(op, fmt.Sprintf("id_mode %q not in {STRICT, EASY}", c.IdMode))
	}
	if c.BinThreshold < 0.5 || c.BinThreshold > 1 {
		return acierrors.InvalidParameter(op, fmt.Sprintf("bin_threshold %v not in [0.5,1]", c.BinThreshold))
	}
	if c.BinMinTime < 0 || c.BinMinTime > 20 {
		return acierrors.InvalidParameter(op, fmt.Sprintf("bin_min_time %v not in [0,20]", c.BinMinTime))
	}
	if c.MaxRecordingDuration <= 0 {
		return acierrors.InvalidParameter(op, fmt.Sprintf("max_recording_duration %v must be > 0", c.MaxRecordingDuration))
	}
	return nil
}

// IndexerConfig configures an Indexer session.
type IndexerConfig struct {
	MatchType    MatchType `mapstructure:"match_type"`
	CacheLimitMB float64   `mapstructure:"cache_limit_mb"`
}

// DefaultIndexerConfig mirrors DefaultRecognizerConfig's match_type and
// picks a conservative cache ceiling.
func DefaultIndexerConfig() IndexerConfig {
	return IndexerConfig{MatchType: MatchXSCALE, CacheLimitMB: 64}
}

// Validate rejects out-of-range fields; see RecognizerConfig.Validate.
func (c IndexerConfig) Validate() error {
	const op = "IndexerConfig.Validate"
	switch c.MatchType {
	case MatchMSCALE, MatchXSCALE:
	default:
		return acierrors.InvalidParameter(op, fmt.Sprintf("match_type %q not in {MSCALE, XSCALE}", c.MatchType))
	}
	if c.CacheLimitMB <= 0 {
		return acierrors.InvalidParameter(op, fmt.Sprintf("cache_limit_mb %v must be > 0", c.CacheLimitMB))
	}
	return nil
}

// Loader reads layered configuration (env > file > defaults; it binds
// no command-line flags)
// the way the teacher's cli/pkg/config wraps viper for its cobra
// commands.
type Loader struct {
	v *viper.Viper
}

// NewLoader builds a Loader with envPrefix applied to every environment
// variable lookup (e.g. "ECHOID" turns ECHOID_RECOGNIZER_MMS into
// recognizer.mms).
func NewLoader(envPrefix string) *Loader {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// SetConfigFile points the loader at an explicit config file path
// (YAML, JSON, or TOML, dispatched by viper on extension).
func (l *Loader) SetConfigFile(path string) {
	l.v.SetConfigFile(path)
}

// ReadInConfig loads the configured file if one was set, tolerating a
// missing file (configuration then falls back entirely to defaults and
// env vars).
func (l *Loader) ReadInConfig() error {
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Recognizer decodes the "recognizer" section over DefaultRecognizerConfig.
func (l *Loader) Recognizer() (RecognizerConfig, error) {
	cfg := DefaultRecognizerConfig()
	if err := l.v.UnmarshalKey("recognizer", &cfg); err != nil {
		return cfg, acierrors.InvalidParameter("Loader.Recognizer", err.Error()).Wrap(err)
	}
	return cfg, cfg.Validate()
}

// Indexer decodes the "indexer" section over DefaultIndexerConfig.
func (l *Loader) Indexer() (IndexerConfig, error) {
	cfg := DefaultIndexerConfig()
	if err := l.v.UnmarshalKey("indexer", &cfg); err != nil {
		return cfg, acierrors.InvalidParameter("Loader.Indexer", err.Error()).Wrap(err)
	}
	return cfg, cfg.Validate()
}

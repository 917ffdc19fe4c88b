package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/echoid/engine/internal/classify"
	"github.com/echoid/engine/internal/codebook"
	"github.com/echoid/engine/internal/config"
	"github.com/echoid/engine/internal/index"
	"github.com/echoid/engine/internal/params"
	"github.com/echoid/engine/internal/recognizer"
	"github.com/echoid/engine/internal/store"
	"github.com/echoid/engine/internal/store/sqlstore"
)

// openStore connects the SQL-backed DataStore the CLI uses for every
// subcommand; the in-memory store (internal/store/memstore) is test-only
// and never reachable from the command line.
func openStore(log *zap.Logger) (store.DataStore, error) {
	s, err := sqlstore.Open(sqlstore.Options{
		DSN:    flagDSN,
		SQLite: !flagUsePostgres,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

func indexConfigFrom(c config.IndexerConfig) index.Config {
	return index.Config{
		XSCALE:       c.MatchType == config.MatchXSCALE,
		CacheLimitMB: c.CacheLimitMB,
	}
}

func recognizerConfigFrom(c config.RecognizerConfig) recognizer.Config {
	cfg := recognizer.DefaultConfig()
	cfg.XScale = c.MatchType == config.MatchXSCALE
	cfg.MMS = c.MMS
	cfg.BinThreshold = c.BinThreshold
	cfg.BinMinTime = c.BinMinTime
	cfg.MaxRecordingDuration = c.MaxRecordingDuration
	if c.IdType == config.IdentificationBinary {
		cfg.IDType = recognizer.IDBinary
	} else {
		cfg.IDType = recognizer.IDFuzzy
	}
	if c.IdMode == config.IdentificationStrict {
		cfg.IDMode = classify.ModeStrict
	} else {
		cfg.IDMode = classify.ModeEasy
	}
	return cfg
}

func loadCodebook() (*codebook.Codebook, error) {
	if flagCodebook == "" {
		return nil, fmt.Errorf("--codebook is required")
	}
	data, err := os.ReadFile(flagCodebook)
	if err != nil {
		return nil, fmt.Errorf("read codebook: %w", err)
	}
	cb, err := codebook.Deserialize(data, params.IDIb)
	if err != nil {
		return nil, fmt.Errorf("decode codebook: %w", err)
	}
	return cb, nil
}

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/echoid/engine/internal/config"
	"github.com/echoid/engine/internal/ingest"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index [files...]",
		Short: "Fingerprint and index WAV recordings",
		Long: `Index fingerprints one or more WAV files and adds them to the store.
Each file's FID is parsed from its basename (e.g. 42.wav -> FID 42);
use --dsn/--postgres/--codebook from the root command to pick the
store and quantizer.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			loader := config.NewLoader("ECHOID")
			if flagConfig != "" {
				loader.SetConfigFile(flagConfig)
			}
			if err := loader.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
			idxCfg, err := loader.Indexer()
			if err != nil {
				return fmt.Errorf("load indexer config: %w", err)
			}

			s, err := openStore(log)
			if err != nil {
				return err
			}
			cb, err := loadCodebook()
			if err != nil {
				return err
			}

			jobs := make([]ingest.BulkJob, 0, len(args))
			for _, path := range args {
				fid, err := fidFromPath(path)
				if err != nil {
					return err
				}
				samples, err := ingest.DecodeWAV(path)
				if err != nil {
					return fmt.Errorf("decode %s: %w", path, err)
				}
				jobs = append(jobs, ingest.BulkJob{FID: fid, Samples: samples})
			}

			bi := ingest.NewBulkIndexer(s, cb, indexConfigFrom(idxCfg), log)
			results := bi.Run(context.Background(), jobs)

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					log.Error("index failed", zap.Uint32("fid", r.FID), zap.Error(r.Err))
					continue
				}
				log.Info("indexed", zap.Uint32("fid", r.FID), zap.Int("lfs", r.LFs))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d recordings failed to index", failed, len(jobs))
			}
			return nil
		},
	}

	return cmd
}

func fidFromPath(path string) (uint32, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fid, err := strconv.ParseUint(base, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: filename must be a numeric FID (got %q): %w", path, base, err)
	}
	return uint32(fid), nil
}

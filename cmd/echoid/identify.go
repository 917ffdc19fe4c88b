package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/echoid/engine/internal/config"
	"github.com/echoid/engine/internal/ingest"
	"github.com/echoid/engine/internal/recognizer"
)

func newIdentifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify [file.wav]",
		Short: "Identify a WAV recording against an existing index",
		Args:  cobra.ExactArgs(1),
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
			recCfg, err := loader.Recognizer()
			if err != nil {
				return fmt.Errorf("load recognizer config: %w", err)
			}

			s, err := openStore(log)
			if err != nil {
				return err
			}
			cb, err := loadCodebook()
			if err != nil {
				return err
			}

			samples, err := ingest.DecodeWAV(args[0])
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}

			r, err := recognizer.New(s, cb, recognizerConfigFrom(recCfg), log)
			if err != nil {
				return fmt.Errorf("build recognizer: %w", err)
			}

			if _, err := r.Identify(samples); err != nil {
				return fmt.Errorf("identify: %w", err)
			}
			if err := r.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}

			matches := r.Results()
			switch {
			case matches == nil:
				fmt.Println("no decision reached")
			case len(matches) == 0:
				fmt.Println("UNIDENTIFIED")
			default:
				for _, m := range matches {
					fmt.Printf("FID=%d class=%s score=%.3f confidence=%.3f cue=%.2fs\n",
						m.FID, m.Class, m.Score, m.Confidence, m.CuePoint)
				}
			}
			log.Info("identify complete", zap.Int("matches", len(matches)))
			return nil
		},
	}
	return cmd
}

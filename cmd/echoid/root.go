// Command echoid is the engine's CLI: index recordings in bulk, run a
// one-shot identification against an existing index, or serve the
// HTTP/WebSocket API. Bootstrap follows the teacher's cmd/server/main.go
// idiom (structured zap logging via internal/logger, layered viper
// configuration) adapted from a single server process to a cobra
// command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	enginelog "github.com/echoid/engine/internal/logger"
)

var (
	flagLogLevel    string
	flagLogFile     string
	flagConfig      string
	flagDSN         string
	flagUsePostgres bool
	flagCodebook    string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "echoid",
		Short: "Audio content identification engine",
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "rotated JSON log file path (disabled if empty)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML/JSON/TOML config file")
	root.PersistentFlags().StringVar(&flagDSN, "dsn", ":memory:", "store DSN (SQLite file path, or Postgres DSN with --postgres)")
	root.PersistentFlags().BoolVar(&flagUsePostgres, "postgres", false, "use Postgres instead of SQLite for --dsn")
	root.PersistentFlags().StringVar(&flagCodebook, "codebook", "", "path to a serialized codebook file (required)")

	root.AddCommand(newIndexCmd())
	root.AddCommand(newIdentifyCmd())
	root.AddCommand(newServeCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	return enginelog.Initialize(flagLogLevel, flagLogFile)
}

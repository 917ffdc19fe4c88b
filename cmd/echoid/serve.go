package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/echoid/engine/internal/config"
	"github.com/echoid/engine/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	var allowedOrigins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and WebSocket identification API",
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

			srvCfg := server.DefaultConfig()
			srvCfg.Addr = addr
			if len(allowedOrigins) > 0 {
				srvCfg.AllowedOrigins = allowedOrigins
			}
			srvCfg.RecognizerCfg = recognizerConfigFrom(recCfg)

			srv := server.New(srvCfg, s, cb, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", nil, "CORS allowed origins (comma-separated)")

	return cmd
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/duoshao/internal/config"
	"github.com/robalobadob/duoshao/internal/httpserver"
	"github.com/robalobadob/duoshao/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for the browser client",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mem := store.NewMemoryStore()
			go mem.RunSweeper(ctx, time.Minute, deps.cfg.SessionTTL, func(n int) {
				log.Info().Int("sessions", n).Msg("swept idle sessions")
			})

			srv, err := httpserver.New(deps.cfg, mem, deps.engine, deps.catalog)
			if err != nil {
				return err
			}
			if deps.cfg.SessionSecret == config.DevSecret && deps.cfg.Production() {
				log.Warn().Msg("SESSION_SECRET is the development default")
			}
			log.Info().Str("port", deps.cfg.Port).Msg("starting duoshao server")
			if err := srv.Start(ctx, deps.cfg.Addr()); err != nil {
				return fmt.Errorf("server exited: %w", err)
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
}

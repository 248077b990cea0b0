package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/duoshao/internal/config"
	"github.com/robalobadob/duoshao/internal/game"
	"github.com/robalobadob/duoshao/internal/regions"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("duoshao failed")
		os.Exit(1)
	}
}

// app is the dependency graph shared by subcommands.
type app struct {
	cfg     config.Config
	catalog *regions.Catalog
	engine  *game.Engine
}

var deps app

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "duoshao",
		Short:         "多少錢？ Mandarin price listening drill",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
			cat, err := regions.LoadFile(cfg.RegionsFile)
			if err != nil {
				return err
			}
			eng := game.NewEngine(cat, nil)
			eng.CorrectDelay = cfg.CorrectDelay
			eng.WrongDelay = cfg.WrongDelay
			deps = app{cfg: cfg, catalog: cat, engine: eng}
			return nil
		},
	}
	root.AddCommand(serveCmd(), playCmd())
	return root
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/duoshao/internal/play"
	"github.com/robalobadob/duoshao/internal/speech"
)

func playCmd() *cobra.Command {
	var tts string
	var rateFlag string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

			voices := speech.Fallback{}
			if tts != "" {
				c, err := speech.ParseCommand(tts)
				if err != nil {
					return err
				}
				c.RateFlag = rateFlag
				voices = append(voices, c)
			}
			voices = append(voices, speech.Printer{W: os.Stdout})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			console := &play.Console{Out: os.Stdout, Regions: deps.catalog.All()}
			table := play.NewTable(uuid.NewString(), deps.engine, play.Options{
				Voice:    speech.NewCoalescer(voices, deps.cfg.SpeechLeadIn),
				OnChange: console.Render,
			})
			defer table.Close()
			console.Table = table
			if err := console.Run(ctx, os.Stdin); err != nil {
				return fmt.Errorf("read commands: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tts, "tts", "", `local TTS command, e.g. "espeak-ng -v cmn"`)
	cmd.Flags().StringVar(&rateFlag, "tts-rate-flag", "", `flag that takes words per minute, e.g. "-s"`)
	return cmd
}

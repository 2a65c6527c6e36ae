package main

import (
	"context"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alexander-D-Karpov/sides/internal/config"
	"github.com/Alexander-D-Karpov/sides/internal/ui"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.DefaultMobileConfig()
	cfg.Debug = false

	fyneApp := app.NewWithID("com.github.alexander-d-karpov.sides")

	sidesApp, err := ui.NewApp(context.Background(), fyneApp, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create app")
	}

	sidesApp.ShowAndRun()
}

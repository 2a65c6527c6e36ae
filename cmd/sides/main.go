package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Alexander-D-Karpov/sides/internal/config"
	"github.com/Alexander-D-Karpov/sides/internal/ui"
)

var Version = "dev"

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	debug, _ := flags.GetBool("debug")
	setupLogging(debug)

	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogging(cfg.Debug)

	log.Info().
		Str("component", "main").
		Str("version", Version).
		Str("release", cfg.Release.Title).
		Str("assets_dir", cfg.Assets.Dir).
		Str("assets_url", cfg.Assets.BaseURL).
		Str("cache_dir", cfg.Storage.CacheDir).
		Str("theme", cfg.UI.Theme).
		Int("sample_rate", cfg.Audio.SampleRate).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := app.NewWithID("com.github.alexander-d-karpov.sides")

	sidesApp, err := ui.NewApp(ctx, fyneApp, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create app")
	}

	setupGracefulShutdown(cancel, sidesApp)
	sidesApp.ShowAndRun()
}

func setupLogging(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func setupGracefulShutdown(cancel context.CancelFunc, sidesApp *ui.App) {
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)

		sig := <-c
		log.Info().Str("component", "main").Str("signal", sig.String()).Msg("Initiating graceful shutdown")

		cancel()
		fyne.DoAndWait(sidesApp.Close)

		log.Info().Str("component", "main").Msg("Graceful shutdown completed")
		os.Exit(0)
	}()
}

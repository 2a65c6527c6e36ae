package ui

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"github.com/gopxl/beep"
	"github.com/rs/zerolog/log"

	"github.com/Alexander-D-Karpov/sides/internal/assets"
	"github.com/Alexander-D-Karpov/sides/internal/audio"
	"github.com/Alexander-D-Karpov/sides/internal/catalog"
	"github.com/Alexander-D-Karpov/sides/internal/config"
	"github.com/Alexander-D-Karpov/sides/internal/handlers"
	"github.com/Alexander-D-Karpov/sides/internal/media"
	"github.com/Alexander-D-Karpov/sides/internal/transport"
	"github.com/Alexander-D-Karpov/sides/internal/ui/components"
	"github.com/Alexander-D-Karpov/sides/internal/ui/themes"
	"github.com/Alexander-D-Karpov/sides/internal/ui/view"
	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

const seekStep = 10

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	ctx     context.Context
	cfg     *config.Config

	catalog *catalog.Catalog
	engine  types.PlaybackEngine
	images  *media.ImageLoader
	bus     *handlers.EventBus
	ctrl    *transport.Controller

	player     *components.PlayerWidget
	background *canvas.Image
	artwork    *canvas.Image

	unsubscribe []func()
}

// NewApp wires the release player: assets, audio engine, controller and
// window.
func NewApp(ctx context.Context, fyneApp fyne.App, cfg *config.Config) (*App, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	resolver := assets.NewResolver(cfg)

	out, err := audio.NewSpeakerOutput(
		beep.SampleRate(cfg.Audio.SampleRate),
		time.Duration(cfg.Audio.BufferMs)*time.Millisecond,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize audio output: %w", err)
	}

	engine := audio.NewEngine(cfg, resolver, out, fyne.Do)
	images := media.NewImageLoader(resolver, time.Duration(cfg.Assets.Timeout)*time.Second, fyne.Do)

	return newApp(ctx, fyneApp, cfg, cat, engine, images), nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Release.CatalogFile == "" {
		return catalog.Default(), nil
	}

	cat, err := catalog.LoadFile(cfg.Release.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	log.Info().Str("component", "ui").
		Str("file", cfg.Release.CatalogFile).
		Int("tracks", cat.Len()).
		Msg("Loaded catalog file")

	return cat, nil
}

func newApp(ctx context.Context, fyneApp fyne.App, cfg *config.Config, cat *catalog.Catalog, engine types.PlaybackEngine, images *media.ImageLoader) *App {
	fyneApp.Settings().SetTheme(themes.NewTheme(cfg.UI.Theme))

	window := fyneApp.NewWindow(cfg.Release.Title)
	window.Resize(fyne.NewSize(float32(cfg.UI.WindowWidth), float32(cfg.UI.WindowHeight)))
	window.CenterOnScreen()

	a := &App{
		fyneApp: fyneApp,
		window:  window,
		ctx:     ctx,
		cfg:     cfg,
		catalog: cat,
		engine:  engine,
		images:  images,
		bus:     handlers.NewEventBus(),
	}

	log.Debug().Str("component", "ui").Str("title", cfg.Release.Title).Msg("Application initializing")

	a.ctrl = transport.New(cat, engine, a.bus)
	a.setupUI()
	a.setupEventHandlers()
	a.setupKeyboardShortcuts()
	a.loadImages()
	a.render()

	log.Debug().Str("component", "ui").Msg("Application initialized")
	return a
}

func (a *App) setupUI() {
	a.player = components.NewPlayerWidget(a.ctrl)
	a.player.OnQueryChanged(func(string) { a.render() })

	a.background = canvas.NewImageFromResource(nil)
	a.background.FillMode = canvas.ImageFillStretch

	a.artwork = canvas.NewImageFromResource(media.Placeholder())
	a.artwork.FillMode = canvas.ImageFillContain
	a.artwork.SetMinSize(fyne.NewSize(320, 320))

	panel := container.NewStack(
		canvas.NewRectangle(themes.PanelColor(a.cfg.UI.Theme)),
		container.NewPadded(a.player.Container()),
	)

	content := container.NewStack(
		a.background,
		container.NewPadded(container.NewGridWithColumns(2,
			container.NewVScroll(panel),
			container.NewCenter(a.artwork),
		)),
	)

	a.window.SetContent(content)
	a.window.SetOnClosed(a.Close)
}

func (a *App) setupEventHandlers() {
	a.unsubscribe = append(a.unsubscribe,
		a.bus.Subscribe(handlers.EventStateChanged, func(interface{}) {
			a.render()
		}),
		a.bus.Subscribe(handlers.EventTrackChanged, func(data interface{}) {
			if track, ok := data.(types.Track); ok {
				a.window.SetTitle(fmt.Sprintf("%s · %s", track.Title, a.cfg.Release.Title))
			}
		}),
		a.bus.Subscribe(handlers.EventLoadFailed, func(data interface{}) {
			if err, ok := data.(error); ok {
				log.Warn().Str("component", "ui").Err(err).Msg("Showing load failure")
			}
		}),
	)
}

func (a *App) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedKey(a.handleKey)
}

func (a *App) handleKey(key *fyne.KeyEvent) {
	state := a.ctrl.State()

	switch key.Name {
	case fyne.KeySpace:
		a.ctrl.TogglePlayPause()
	case fyne.KeyRight:
		a.seekBy(seekStep)
	case fyne.KeyLeft:
		a.seekBy(-seekStep)
	case fyne.KeyPageDown:
		a.ctrl.PlayNext()
	case fyne.KeyPageUp:
		a.ctrl.PlayPrevious()
	case fyne.KeyS:
		if err := a.ctrl.SwitchSide(state.ActiveSide.Other()); err != nil {
			log.Warn().Str("component", "ui").Err(err).Msg("Side switch failed")
		}
	case fyne.KeyF:
		a.window.SetFullScreen(!a.window.FullScreen())
		log.Debug().Str("component", "ui").Bool("fullscreen", a.window.FullScreen()).Msg("Fullscreen toggled")
	case fyne.KeyEscape:
		if a.window.FullScreen() {
			a.window.SetFullScreen(false)
		}
		if a.player.Query() != "" {
			a.player.ClearQuery()
		}
	}
}

// seekBy keeps keyboard seeks inside the track.
func (a *App) seekBy(delta float64) {
	state := a.ctrl.State()
	target := math.Max(state.Elapsed+delta, 0)
	if state.DurationKnown() {
		target = math.Min(target, state.Duration)
	}
	a.ctrl.SeekTo(target)
}

func (a *App) loadImages() {
	if a.images == nil {
		return
	}

	a.images.GetResourceAsync(a.ctx, a.cfg.Release.Background, func(res fyne.Resource, err error) {
		if err != nil {
			return
		}
		a.background.Resource = res
		a.background.Refresh()
	})

	a.images.GetResourceAsync(a.ctx, a.cfg.Release.Artwork, func(res fyne.Resource, err error) {
		a.artwork.Resource = res
		a.artwork.Refresh()
	})
}

func (a *App) render() {
	a.player.Apply(view.Render(a.ctrl.State(), a.catalog, view.Options{
		Title:         a.cfg.Release.Title,
		ShowRemaining: a.cfg.UI.ShowRemaining,
		Query:         a.player.Query(),
	}))
}

func (a *App) ShowAndRun() {
	log.Debug().Str("component", "ui").Msg("Starting application window")
	a.window.ShowAndRun()
}

// Close releases the audio engine. It is safe to call more than once.
func (a *App) Close() {
	log.Debug().Str("component", "ui").Msg("Shutting down application")

	for _, cancel := range a.unsubscribe {
		cancel()
	}
	a.unsubscribe = nil

	if closer, ok := a.engine.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Str("component", "ui").Err(err).Msg("Error closing audio engine")
		}
	}
}

// Package transport implements the player's transport state machine: the
// single authoritative TransportState, mutated synchronously by user actions
// and corrected by playback engine events.
//
// A Controller is not safe for concurrent use. All methods, including the
// PlaybackListener callbacks, must run on the UI goroutine; engines hand their
// events over through a dispatcher for that reason.
package transport

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/Alexander-D-Karpov/sides/internal/catalog"
	"github.com/Alexander-D-Karpov/sides/internal/handlers"
	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

var (
	ErrTrackOutOfRange = errors.New("track index out of range")
	ErrInvalidSide     = errors.New("invalid side")
)

type Controller struct {
	catalog *catalog.Catalog
	engine  types.PlaybackEngine
	bus     *handlers.EventBus
	state   types.TransportState
}

var _ types.PlaybackListener = (*Controller)(nil)

// New mounts the controller: state starts at track 0, paused, with unknown
// duration, and the first track is loaded into the engine.
func New(cat *catalog.Catalog, engine types.PlaybackEngine, bus *handlers.EventBus) *Controller {
	c := &Controller{
		catalog: cat,
		engine:  engine,
		bus:     bus,
		state: types.TransportState{
			CurrentIndex: 0,
			Duration:     math.NaN(),
			Loading:      true,
			ActiveSide:   cat.SideOf(0),
		},
	}

	engine.SetListener(c)

	first, _ := cat.Track(0)
	engine.Load(first.Source)

	log.Debug().Str("component", "transport").
		Int("tracks", cat.Len()).
		Str("source", first.Source).
		Msg("Controller mounted")

	return c
}

// State returns a copy of the current transport state.
func (c *Controller) State() types.TransportState {
	return c.state
}

func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

func (c *Controller) CurrentTrack() types.Track {
	t, _ := c.catalog.Track(c.state.CurrentIndex)
	return t
}

// TogglePlayPause flips Playing optimistically and issues exactly one engine
// request. The flag is never re-derived from engine events, so a rejected
// play request leaves the UI showing "playing".
func (c *Controller) TogglePlayPause() {
	if c.state.Playing {
		c.engine.Pause()
	} else {
		c.engine.Play()
	}
	c.state.Playing = !c.state.Playing

	log.Debug().Str("component", "transport").Bool("playing", c.state.Playing).Msg("Toggled playback")
	c.publishState()
}

// SelectTrack makes index current and starts playing it.
func (c *Controller) SelectTrack(index int) error {
	if _, ok := c.catalog.Track(index); !ok {
		return fmt.Errorf("%w: %d", ErrTrackOutOfRange, index)
	}

	c.state.Playing = true
	c.changeTrack(index)
	return nil
}

func (c *Controller) PlayNext() {
	n := c.catalog.Len()
	c.changeTrack((c.state.CurrentIndex + 1) % n)
}

func (c *Controller) PlayPrevious() {
	n := c.catalog.Len()
	c.changeTrack((c.state.CurrentIndex - 1 + n) % n)
}

// SwitchSide changes only the browsed side. The next track change moves it
// back to the side of the new current track.
func (c *Controller) SwitchSide(side types.Side) error {
	if !side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	c.state.ActiveSide = side
	c.publishState()
	return nil
}

// SeekTo moves the elapsed time optimistically and forwards the request.
// The engine clamps and reports the real position with its next time update.
func (c *Controller) SeekTo(seconds float64) {
	if math.IsNaN(seconds) {
		return
	}

	c.state.Elapsed = seconds
	c.engine.Seek(seconds)
	c.publishState()
}

// changeTrack is the track-change pipeline: side follow, reload, and
// re-issue play when the transport is already playing.
func (c *Controller) changeTrack(index int) {
	track, _ := c.catalog.Track(index)

	c.state.CurrentIndex = index
	c.state.ActiveSide = c.catalog.SideOf(index)
	c.state.Loading = true
	c.state.Elapsed = 0
	c.state.Duration = math.NaN()
	c.state.LoadErr = nil

	c.engine.Load(track.Source)
	if c.state.Playing {
		c.engine.Play()
	}

	log.Debug().Str("component", "transport").
		Int("index", index).
		Str("title", track.Title).
		Str("side", string(c.state.ActiveSide)).
		Bool("playing", c.state.Playing).
		Msg("Track changed")

	if c.bus != nil {
		c.bus.Publish(handlers.EventTrackChanged, track)
	}
	c.publishState()
}

func (c *Controller) OnTimeUpdate(elapsed, duration float64) {
	c.state.Elapsed = elapsed
	c.state.Duration = duration
	c.publishState()
}

func (c *Controller) OnMetadataReady(duration float64) {
	c.state.Duration = duration
	c.state.Loading = false
	c.state.Elapsed = c.engine.Position()

	log.Debug().Str("component", "transport").
		Float64("duration", duration).
		Msg("Metadata ready")

	c.publishState()
}

func (c *Controller) OnEnded() {
	c.PlayNext()
}

func (c *Controller) OnLoadFailed(path string, err error) {
	if path != c.CurrentTrack().Source {
		return
	}

	c.state.Loading = false
	c.state.LoadErr = fmt.Errorf("load %q: %w", path, err)

	log.Warn().Str("component", "transport").Err(err).Str("source", path).Msg("Track failed to load")

	if c.bus != nil {
		c.bus.Publish(handlers.EventLoadFailed, c.state.LoadErr)
	}
	c.publishState()
}

// FormatTime formats seconds for the time labels, falling back to the
// current track's listed duration while the real one is unknown.
func (c *Controller) FormatTime(seconds float64) string {
	return FormatTime(seconds, c.CurrentTrack().DisplayDuration)
}

func (c *Controller) publishState() {
	if c.bus == nil {
		return
	}
	c.bus.Publish(handlers.EventStateChanged, c.state)
}

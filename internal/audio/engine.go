// Package audio plays one release track at a time through a beep speaker and
// reports progress to a types.PlaybackListener.
package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/rs/zerolog/log"

	"github.com/Alexander-D-Karpov/sides/internal/config"
	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

// Dispatcher runs listener callbacks. The app passes fyne.Do so every
// callback lands on the UI goroutine.
type Dispatcher func(func())

// Immediate runs callbacks on the calling goroutine.
func Immediate(fn func()) { fn() }

type source struct {
	gen      uint64
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	duration time.Duration

	ready   atomic.Bool
	ended   atomic.Bool
	lastPos int
}

func (s *source) close() {
	if err := s.streamer.Close(); err != nil {
		log.Debug().Str("component", "audio").Err(err).Str("path", s.path).Msg("Error closing streamer")
	}
}

func (s *source) seconds(samples int) float64 {
	return s.format.SampleRate.D(samples).Seconds()
}

type Engine struct {
	mu sync.Mutex

	assets     types.AssetSource
	out        Output
	dispatch   Dispatcher
	listener   types.PlaybackListener
	sampleRate beep.SampleRate
	quality    int
	interval   time.Duration

	generation  atomic.Uint64
	current     *source
	wantPlay    bool
	pendingSeek float64
	cancelLoad  context.CancelFunc

	ctx       context.Context
	cancel    context.CancelFunc
	loads     sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

var _ types.PlaybackEngine = (*Engine)(nil)

func NewEngine(cfg *config.Config, assets types.AssetSource, out Output, dispatch Dispatcher) *Engine {
	if dispatch == nil {
		dispatch = Immediate
	}

	quality := cfg.Audio.ResampleQuality
	if quality < 1 || quality > 64 {
		quality = 4
	}
	interval := time.Duration(cfg.Audio.TimeUpdateMs) * time.Millisecond
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		assets:      assets,
		out:         out,
		dispatch:    dispatch,
		sampleRate:  beep.SampleRate(cfg.Audio.SampleRate),
		quality:     quality,
		interval:    interval,
		pendingSeek: math.NaN(),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}

	go e.positionUpdater()

	log.Debug().Str("component", "audio").
		Int("sample_rate", int(e.sampleRate)).
		Dur("time_update", interval).
		Msg("Engine initialized")

	return e
}

func (e *Engine) SetListener(l types.PlaybackListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

// Load replaces the current source. Events of earlier loads are dropped from
// this point on, even if they were already queued.
func (e *Engine) Load(path string) {
	gen := e.generation.Add(1)

	e.mu.Lock()
	if e.cancelLoad != nil {
		e.cancelLoad()
	}
	old := e.current
	e.current = nil
	e.wantPlay = false
	e.pendingSeek = math.NaN()
	ctx, cancel := context.WithCancel(e.ctx)
	e.cancelLoad = cancel
	e.loads.Add(1)
	e.mu.Unlock()

	if old != nil {
		e.out.Clear()
		old.close()
	}

	log.Debug().Str("component", "audio").Str("path", path).Uint64("generation", gen).Msg("Loading source")

	go e.load(ctx, gen, path)
}

func (e *Engine) load(ctx context.Context, gen uint64, path string) {
	defer e.loads.Done()

	src, err := e.open(ctx, gen, path)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Str("component", "audio").Err(err).Str("path", path).Msg("Failed to load source")
		e.emit(gen, func(l types.PlaybackListener) { l.OnLoadFailed(path, err) })
		return
	}

	e.mu.Lock()
	if e.generation.Load() != gen || ctx.Err() != nil {
		e.mu.Unlock()
		src.close()
		log.Debug().Str("component", "audio").Str("path", path).Msg("Source changed during loading, discarding")
		return
	}

	e.current = src
	if !math.IsNaN(e.pendingSeek) {
		e.seekSource(src, e.pendingSeek)
		e.pendingSeek = math.NaN()
	}
	src.ctrl.Paused = !e.wantPlay
	e.out.Play(e.sequence(src))
	e.mu.Unlock()

	log.Debug().Str("component", "audio").
		Str("path", path).
		Int("source_rate", int(src.format.SampleRate)).
		Int("channels", src.format.NumChannels).
		Dur("duration", src.duration).
		Msg("Source ready")

	// Time updates wait for the metadata to be delivered so they never
	// overtake it.
	e.emit(gen, func(l types.PlaybackListener) {
		src.ready.Store(true)
		l.OnMetadataReady(src.duration.Seconds())
	})
}

func (e *Engine) open(ctx context.Context, gen uint64, path string) (*source, error) {
	rc, err := e.assets.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	duration, probed := probeDuration(rc, path)

	streamer, format, err := decode(rc, path)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	if !probed {
		duration = format.SampleRate.D(streamer.Len())
	}

	src := &source{
		gen:      gen,
		path:     path,
		streamer: streamer,
		format:   format,
		duration: duration,
	}
	src.ctrl = &beep.Ctrl{Streamer: e.resample(src), Paused: true}
	return src, nil
}

// resample wraps the decoder for the output rate. The resampler buffers
// ahead, so it is rebuilt whenever the decoder position jumps.
func (e *Engine) resample(src *source) beep.Streamer {
	return beep.Resample(e.quality, src.format.SampleRate, e.sampleRate, src.streamer)
}

func (e *Engine) sequence(src *source) beep.Streamer {
	// Runs on the output goroutine with the output locked, so it must not
	// take e.mu.
	return beep.Seq(src.ctrl, beep.Callback(func() {
		if src.ended.CompareAndSwap(false, true) {
			e.emit(src.gen, func(l types.PlaybackListener) { l.OnEnded() })
		}
	}))
}

// Play starts or resumes playback. Before the source is ready the request is
// remembered; after the end it restarts the source.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wantPlay = true
	src := e.current
	if src == nil {
		return
	}

	if src.ended.Load() {
		e.out.Lock()
		if src.streamer.Position() >= src.streamer.Len() {
			if err := src.streamer.Seek(0); err != nil {
				log.Warn().Str("component", "audio").Err(err).Msg("Rewind failed")
			}
		}
		src.ctrl.Streamer = e.resample(src)
		src.ctrl.Paused = false
		e.out.Unlock()
		src.ended.Store(false)
		e.out.Play(e.sequence(src))
		return
	}

	e.out.Lock()
	src.ctrl.Paused = false
	e.out.Unlock()
}

func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wantPlay = false
	if src := e.current; src != nil {
		e.out.Lock()
		src.ctrl.Paused = true
		e.out.Unlock()
	}
}

// Seek moves to seconds, clamped to the source. A time update follows once
// the source is ready.
func (e *Engine) Seek(seconds float64) {
	if math.IsNaN(seconds) {
		return
	}

	e.mu.Lock()
	src := e.current
	if src == nil {
		e.pendingSeek = seconds
		e.mu.Unlock()
		return
	}

	e.out.Lock()
	pos := e.seekSource(src, seconds)
	e.out.Unlock()
	src.lastPos = pos
	elapsed, duration := src.seconds(pos), src.duration.Seconds()
	e.mu.Unlock()

	e.emit(src.gen, func(l types.PlaybackListener) { l.OnTimeUpdate(elapsed, duration) })
}

func (e *Engine) seekSource(src *source, seconds float64) int {
	length := src.streamer.Len()
	pos := src.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if pos < 0 {
		pos = 0
	}
	if pos > length {
		pos = length
	}

	if err := src.streamer.Seek(pos); err != nil {
		log.Warn().Str("component", "audio").Err(err).Int("position", pos).Msg("Seek failed")
		return src.streamer.Position()
	}
	src.ctrl.Streamer = e.resample(src)
	return pos
}

// Position reports the playback position of the current source in seconds.
func (e *Engine) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := e.current
	if src == nil {
		if !math.IsNaN(e.pendingSeek) && e.pendingSeek > 0 {
			return e.pendingSeek
		}
		return 0
	}

	e.out.Lock()
	pos := src.streamer.Position()
	e.out.Unlock()
	return src.seconds(pos)
}

// Close stops the time updates, cancels any load in flight and releases the
// current source.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		log.Debug().Str("component", "audio").Msg("Closing engine")

		e.generation.Add(1)
		e.cancel()
		close(e.done)
		e.loads.Wait()

		e.mu.Lock()
		src := e.current
		e.current = nil
		e.mu.Unlock()

		if src != nil {
			e.out.Clear()
			src.close()
		}
	})
	return nil
}

func (e *Engine) positionUpdater() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.updatePosition()
		case <-e.done:
			return
		}
	}
}

func (e *Engine) updatePosition() {
	e.mu.Lock()
	src := e.current
	if src == nil || !e.wantPlay || !src.ready.Load() || src.ended.Load() {
		e.mu.Unlock()
		return
	}

	e.out.Lock()
	pos := src.streamer.Position()
	e.out.Unlock()

	if pos == src.lastPos {
		e.mu.Unlock()
		return
	}
	src.lastPos = pos
	elapsed, duration := src.seconds(pos), src.duration.Seconds()
	e.mu.Unlock()

	e.emit(src.gen, func(l types.PlaybackListener) { l.OnTimeUpdate(elapsed, duration) })
}

// emit delivers fn through the dispatcher unless a newer Load happened in
// the meantime. Callers must not hold e.mu.
func (e *Engine) emit(gen uint64, fn func(types.PlaybackListener)) {
	e.dispatch(func() {
		if current := e.generation.Load(); current != gen {
			log.Debug().Str("component", "audio").
				Uint64("generation", gen).
				Uint64("current", current).
				Msg("Dropped stale event")
			return
		}

		e.mu.Lock()
		l := e.listener
		e.mu.Unlock()

		if l != nil {
			fn(l)
		}
	})
}

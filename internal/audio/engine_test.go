package audio

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-audio/audio"
	gawav "github.com/go-audio/wav"
	"github.com/gopxl/beep"

	"github.com/Alexander-D-Karpov/sides/internal/config"
	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

const testRate = 8000

// fakeOutput stands in for the speaker. pump pulls samples the way the
// speaker's mixer would.
type fakeOutput struct {
	mu        sync.Mutex
	streamers []*playing
	clears    int

	lock sync.Mutex
}

// playing boxes a streamer so drained entries can be matched by identity;
// beep.Seq returns a func, which is not comparable.
type playing struct {
	s beep.Streamer
}

func (o *fakeOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, &playing{s: s})
}

func (o *fakeOutput) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = nil
	o.clears++
}

func (o *fakeOutput) Lock()   { o.lock.Lock() }
func (o *fakeOutput) Unlock() { o.lock.Unlock() }

func (o *fakeOutput) active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streamers)
}

func (o *fakeOutput) pump(samples int) {
	o.mu.Lock()
	streamers := append([]*playing(nil), o.streamers...)
	o.mu.Unlock()

	buf := make([][2]float64, samples)
	drained := make(map[*playing]bool)
	for _, p := range streamers {
		o.lock.Lock()
		_, ok := p.s.Stream(buf)
		o.lock.Unlock()
		if !ok {
			drained[p] = true
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.streamers[:0]
	for _, p := range o.streamers {
		if !drained[p] {
			kept = append(kept, p)
		}
	}
	o.streamers = kept
}

type dirSource struct {
	dir string

	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (s *dirSource) gate(path string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gates == nil {
		s.gates = make(map[string]chan struct{})
	}
	ch := make(chan struct{})
	s.gates[path] = ch
	return ch
}

func (s *dirSource) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	s.mu.Lock()
	ch := s.gates[path]
	s.mu.Unlock()
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return os.Open(filepath.Join(s.dir, path))
}

type event struct {
	kind     string
	elapsed  float64
	duration float64
	path     string
	err      error
}

type recorder struct {
	events chan event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan event, 64)}
}

func (r *recorder) OnTimeUpdate(elapsed, duration float64) {
	r.events <- event{kind: "time", elapsed: elapsed, duration: duration}
}

func (r *recorder) OnMetadataReady(duration float64) {
	r.events <- event{kind: "metadata", duration: duration}
}

func (r *recorder) OnEnded() {
	r.events <- event{kind: "ended"}
}

func (r *recorder) OnLoadFailed(path string, err error) {
	r.events <- event{kind: "failed", path: path, err: err}
}

func (r *recorder) next(t *testing.T) event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for engine event")
		return event{}
	}
}

func (r *recorder) expect(t *testing.T, kind string) event {
	t.Helper()
	ev := r.next(t)
	if ev.kind != kind {
		t.Fatalf("expected %s event, got %+v", kind, ev)
	}
	return ev
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func writeWAV(t *testing.T, dir, name string, seconds int) {
	t.Helper()

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := gawav.NewEncoder(f, testRate, 16, 1, 1)
	data := make([]int, testRate*seconds)
	for i := range data {
		data[i] = (i % 64) * 256
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: testRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

type harness struct {
	engine *Engine
	out    *fakeOutput
	src    *dirSource
	rec    *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	writeWAV(t, dir, "Clowns.wav", 2)
	writeWAV(t, dir, "Loud Cloud, Soft Cloud.wav", 1)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not audio"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Audio.SampleRate = testRate
	cfg.Audio.ResampleQuality = 1
	cfg.Audio.TimeUpdateMs = int(time.Hour / time.Millisecond)

	h := &harness{
		out: &fakeOutput{},
		src: &dirSource{dir: dir},
		rec: newRecorder(),
	}
	h.engine = NewEngine(cfg, h.src, h.out, Immediate)
	h.engine.SetListener(h.rec)
	t.Cleanup(func() { h.engine.Close() })
	return h
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.05
}

func TestLoadReportsDuration(t *testing.T) {
	h := newHarness(t)

	h.engine.Load("Clowns.wav")
	ev := h.rec.expect(t, "metadata")
	if !near(ev.duration, 2) {
		t.Errorf("expected duration 2s, got %v", ev.duration)
	}
	if h.out.active() != 1 {
		t.Errorf("expected source handed to output, got %d streamers", h.out.active())
	}

	h.out.pump(testRate / 2)
	if pos := h.engine.Position(); pos != 0 {
		t.Errorf("loaded source must stay paused, position %v", pos)
	}
}

func TestPlayBeforeReadyStartsOnLoad(t *testing.T) {
	h := newHarness(t)

	h.engine.Load("Clowns.wav")
	h.engine.Play()
	h.rec.expect(t, "metadata")

	h.out.pump(testRate / 2)
	h.engine.updatePosition()

	ev := h.rec.expect(t, "time")
	if ev.elapsed <= 0 || ev.elapsed > 1 {
		t.Errorf("expected elapsed within the first second, got %v", ev.elapsed)
	}
	if !near(ev.duration, 2) {
		t.Errorf("expected duration 2s, got %v", ev.duration)
	}

	h.engine.updatePosition()
	h.rec.expectNone(t)
}

func TestPauseHoldsPosition(t *testing.T) {
	h := newHarness(t)

	h.engine.Load("Clowns.wav")
	h.engine.Play()
	h.rec.expect(t, "metadata")
	h.out.pump(testRate / 4)

	h.engine.Pause()
	before := h.engine.Position()
	h.out.pump(testRate / 4)
	if after := h.engine.Position(); after != before {
		t.Errorf("position moved while paused: %v -> %v", before, after)
	}

	h.engine.updatePosition()
	h.rec.expectNone(t)
}

func TestSeekClampsAndReports(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		expected float64
	}{
		{"inside", 1.25, 1.25},
		{"past end", 100, 2},
		{"negative", -4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.engine.Load("Clowns.wav")
			h.rec.expect(t, "metadata")

			h.engine.Seek(tt.target)
			ev := h.rec.expect(t, "time")
			if !near(ev.elapsed, tt.expected) {
				t.Errorf("expected elapsed %v, got %v", tt.expected, ev.elapsed)
			}
			if !near(h.engine.Position(), tt.expected) {
				t.Errorf("expected position %v, got %v", tt.expected, h.engine.Position())
			}
		})
	}
}

func TestSeekBeforeReadyIsApplied(t *testing.T) {
	h := newHarness(t)
	gate := h.src.gate("Clowns.wav")

	h.engine.Load("Clowns.wav")
	h.engine.Seek(1)
	if pos := h.engine.Position(); pos != 1 {
		t.Errorf("expected pending position 1, got %v", pos)
	}
	close(gate)

	h.rec.expect(t, "metadata")
	if pos := h.engine.Position(); !near(pos, 1) {
		t.Errorf("expected pending seek applied, position %v", pos)
	}
}

func TestEndedFiresOnceAndPlayRestarts(t *testing.T) {
	h := newHarness(t)

	h.engine.Load("Loud Cloud, Soft Cloud.wav")
	h.engine.Play()
	h.rec.expect(t, "metadata")

	for i := 0; i < 4; i++ {
		h.out.pump(testRate / 2)
	}
	h.rec.expect(t, "ended")
	h.rec.expectNone(t)
	if h.out.active() != 0 {
		t.Errorf("finished source should leave the output, %d left", h.out.active())
	}

	h.engine.updatePosition()
	h.rec.expectNone(t)

	h.engine.Play()
	if pos := h.engine.Position(); pos != 0 {
		t.Errorf("play after end should rewind, position %v", pos)
	}
	if h.out.active() != 1 {
		t.Errorf("restart should hand the source back to the output")
	}

	for i := 0; i < 4; i++ {
		h.out.pump(testRate / 2)
	}
	h.rec.expect(t, "ended")
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	h := newHarness(t)
	gate := h.src.gate("Clowns.wav")

	h.engine.Load("Clowns.wav")
	h.engine.Load("Loud Cloud, Soft Cloud.wav")

	ev := h.rec.expect(t, "metadata")
	if !near(ev.duration, 1) {
		t.Errorf("expected metadata of the second load, got %v", ev.duration)
	}

	close(gate)
	h.engine.loads.Wait()
	h.rec.expectNone(t)

	if h.out.active() != 1 {
		t.Errorf("expected only the current source in the output, got %d", h.out.active())
	}
}

func TestStaleEventDropped(t *testing.T) {
	h := newHarness(t)

	h.engine.Load("Clowns.wav")
	h.rec.expect(t, "metadata")
	old := h.engine.generation.Load()

	h.engine.Load("Loud Cloud, Soft Cloud.wav")
	h.rec.expect(t, "metadata")

	h.engine.emit(old, func(l types.PlaybackListener) { l.OnEnded() })
	h.rec.expectNone(t)

	if h.out.clears != 1 {
		t.Errorf("expected previous source cleared once, got %d", h.out.clears)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		check func(error) bool
	}{
		{"missing", "missing.wav", func(err error) bool { return errors.Is(err, os.ErrNotExist) }},
		{"unsupported", "notes.txt", func(err error) bool { return errors.Is(err, ErrUnsupportedFormat) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			h.engine.Load(tt.path)
			ev := h.rec.expect(t, "failed")
			if ev.path != tt.path {
				t.Errorf("expected path %q, got %q", tt.path, ev.path)
			}
			if !tt.check(ev.err) {
				t.Errorf("unexpected error %v", ev.err)
			}
			if pos := h.engine.Position(); pos != 0 {
				t.Errorf("failed load should leave position 0, got %v", pos)
			}
		})
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.engine.Load("Clowns.wav")
	h.rec.expect(t, "metadata")

	if err := h.engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := h.engine.Close(); err != nil {
		t.Fatal(err)
	}
	if h.out.active() != 0 {
		t.Errorf("close should clear the output")
	}
}

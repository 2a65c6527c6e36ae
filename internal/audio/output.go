package audio

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"
)

// Output is where the engine sends decoded audio. Lock/Unlock guard the
// streamers it is currently pulling from.
type Output interface {
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

var (
	speakerInitialized bool
	speakerRate        beep.SampleRate
	speakerMutex       sync.Mutex
)

type speakerOutput struct{}

// NewSpeakerOutput initializes the process-wide speaker once and returns an
// Output backed by it.
func NewSpeakerOutput(sampleRate beep.SampleRate, buffer time.Duration) (Output, error) {
	speakerMutex.Lock()
	defer speakerMutex.Unlock()

	if speakerInitialized {
		if speakerRate != sampleRate {
			return nil, fmt.Errorf("speaker already running at %d Hz, requested %d Hz", speakerRate, sampleRate)
		}
		log.Debug().Str("component", "audio").Msg("Speaker already initialized")
		return speakerOutput{}, nil
	}

	bufferSize := sampleRate.N(buffer)

	log.Debug().Str("component", "audio").
		Int("sample_rate", int(sampleRate)).
		Int("buffer_size", bufferSize).
		Str("os", runtime.GOOS).
		Msg("Initializing speaker")

	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return nil, fmt.Errorf("speaker initialization failed: %w", err)
	}

	speakerInitialized = true
	speakerRate = sampleRate
	return speakerOutput{}, nil
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Clear()               { speaker.Clear() }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }

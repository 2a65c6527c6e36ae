package transport

import (
	"fmt"

	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

// fakeEngine records every request it receives and lets tests fire engine
// events by hand.
type fakeEngine struct {
	calls    []string
	listener types.PlaybackListener
	position float64
}

func (e *fakeEngine) Load(path string)                     { e.calls = append(e.calls, "load:"+path) }
func (e *fakeEngine) Play()                                { e.calls = append(e.calls, "play") }
func (e *fakeEngine) Pause()                               { e.calls = append(e.calls, "pause") }
func (e *fakeEngine) Seek(seconds float64)                 { e.calls = append(e.calls, fmt.Sprintf("seek:%g", seconds)) }
func (e *fakeEngine) Position() float64                    { return e.position }
func (e *fakeEngine) SetListener(l types.PlaybackListener) { e.listener = l }

func (e *fakeEngine) reset() { e.calls = nil }

func (e *fakeEngine) count(call string) int {
	n := 0
	for _, c := range e.calls {
		if c == call {
			n++
		}
	}
	return n
}

package audio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	gawav "github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

func formatOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func decode(rc io.ReadSeekCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := formatOf(path); ext {
	case ".wav", ".wave":
		return wav.Decode(rc)
	case ".mp3":
		return mp3.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// probeDuration reads the WAV header for the exact duration and rewinds the
// reader. It reports false for anything it cannot read, in which case the
// decoder length is used instead.
func probeDuration(rs io.ReadSeeker, path string) (time.Duration, bool) {
	if ext := formatOf(path); ext != ".wav" && ext != ".wave" {
		return 0, false
	}

	d := gawav.NewDecoder(rs)
	ok := d.IsValidFile()

	var dur time.Duration
	if ok {
		var err error
		dur, err = d.Duration()
		ok = err == nil && dur > 0
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, false
	}
	return dur, ok
}

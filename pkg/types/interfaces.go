package types

import (
	"context"
	"io"
)

// PlaybackListener receives the asynchronous signals of a playback engine.
type PlaybackListener interface {
	OnTimeUpdate(elapsed, duration float64)
	OnMetadataReady(duration float64)
	OnEnded()
	// OnLoadFailed is optional feedback; engines that cannot detect a
	// failed load never call it.
	OnLoadFailed(path string, err error)
}

// PlaybackEngine wraps exactly one playable resource at a time.
// Load, Play, Pause and Seek are fire-and-forget requests.
type PlaybackEngine interface {
	Load(path string)
	Play()
	Pause()
	Seek(seconds float64)
	Position() float64
	SetListener(l PlaybackListener)
}

// AssetSource opens static assets by their verbatim path.
type AssetSource interface {
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)
}

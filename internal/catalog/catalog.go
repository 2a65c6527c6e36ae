// Package catalog holds the fixed, ordered tracklist of a release and its
// split into an A-side and a B-side.
package catalog

import (
	"errors"
	"fmt"

	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

var (
	ErrEmpty       = errors.New("catalog has no tracks")
	ErrDuplicateID = errors.New("duplicate track id")
	ErrMissingID   = errors.New("track id is empty")
	ErrMissingSrc  = errors.New("track source is empty")
	ErrBadSplit    = errors.New("side split out of range")
)

// DefaultSplit is the index of the first B-side track of the built-in release.
const DefaultSplit = 3

var defaultTracks = []types.Track{
	{ID: "wafimb", Title: "What a Feeling it Must Be", DisplayDuration: "3:09", Source: "What a Feeling it Must Be.wav"},
	{ID: "amn", Title: "Ask Me Now", DisplayDuration: "7:38", Source: "Ask Me Now.wav"},
	{ID: "sitc", Title: "Send in the Clowns", DisplayDuration: "4:42", Source: "Send in the Clowns.wav"},
	{ID: "bas", Title: "Body and Soul", DisplayDuration: "3:47", Source: "Body and Soul.wav"},
	{ID: "mi", Title: "My Ideal", DisplayDuration: "6:57", Source: "My Ideal.wav"},
	{ID: "lcsc", Title: "Loud Cloud Soft Cloud", DisplayDuration: "5:56", Source: "Loud Cloud, Soft Cloud.wav"},
}

// Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	tracks []types.Track
	split  int
}

// Entry is a track together with its absolute index in the catalog.
type Entry struct {
	Track types.Track
	Index int
}

func New(tracks []types.Track, split int) (*Catalog, error) {
	if len(tracks) == 0 {
		return nil, ErrEmpty
	}
	if split < 1 || split >= len(tracks) {
		return nil, fmt.Errorf("%w: %d not in [1, %d)", ErrBadSplit, split, len(tracks))
	}

	seen := make(map[string]bool, len(tracks))
	for i, t := range tracks {
		if t.ID == "" {
			return nil, fmt.Errorf("track %d: %w", i, ErrMissingID)
		}
		if t.Source == "" {
			return nil, fmt.Errorf("track %q: %w", t.ID, ErrMissingSrc)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}

	owned := make([]types.Track, len(tracks))
	copy(owned, tracks)

	return &Catalog{tracks: owned, split: split}, nil
}

// Default returns the built-in release.
func Default() *Catalog {
	c, err := New(defaultTracks, DefaultSplit)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) List() []types.Track {
	out := make([]types.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

func (c *Catalog) Len() int { return len(c.tracks) }

func (c *Catalog) Split() int { return c.split }

func (c *Catalog) Track(index int) (types.Track, bool) {
	if index < 0 || index >= len(c.tracks) {
		return types.Track{}, false
	}
	return c.tracks[index], true
}

func (c *Catalog) SideOf(index int) types.Side {
	if index < c.split {
		return types.SideA
	}
	return types.SideB
}

func (c *Catalog) TracksForSide(side types.Side) []Entry {
	start, end := 0, c.split
	if side == types.SideB {
		start, end = c.split, len(c.tracks)
	}

	entries := make([]Entry, 0, end-start)
	for i := start; i < end; i++ {
		entries = append(entries, Entry{Track: c.tracks[i], Index: i})
	}
	return entries
}

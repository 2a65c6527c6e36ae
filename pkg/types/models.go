package types

import (
	"math"
)

// Track is one entry of the release tracklist. Source is an asset path and is
// kept verbatim, spaces and commas included.
type Track struct {
	ID              string `json:"id" yaml:"id"`
	Title           string `json:"title" yaml:"title"`
	DisplayDuration string `json:"duration" yaml:"duration"`
	Source          string `json:"src" yaml:"src"`
}

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	return string(s)
}

// TransportState is the single authoritative UI state of the player.
// Elapsed and Duration are seconds; Duration is NaN until the engine reports it.
type TransportState struct {
	CurrentIndex int
	Playing      bool
	Elapsed      float64
	Duration     float64
	Loading      bool
	ActiveSide   Side
	LoadErr      error
}

func (s TransportState) DurationKnown() bool {
	return !math.IsNaN(s.Duration) && !math.IsInf(s.Duration, 0)
}

// Package view turns transport state and the catalog into a plain Model the
// Fyne widgets apply. Nothing here touches Fyne, so rendering is testable
// without a window.
package view

import (
	"fmt"
	"math"
	"strings"

	"github.com/Alexander-D-Karpov/sides/internal/catalog"
	"github.com/Alexander-D-Karpov/sides/internal/transport"
	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

const (
	GlyphPlay  = "▶"
	GlyphPause = "⏸"

	// SliderFallbackMax is the progress range while the duration is unknown.
	SliderFallbackMax = 100
)

type Options struct {
	Title         string
	ShowRemaining bool
	Query         string
}

type SideTab struct {
	Side   types.Side
	Label  string
	Active bool
}

type Row struct {
	Index    int
	Title    string
	Duration string
	Current  bool
}

type Model struct {
	Title   string
	Sides   []SideTab
	Rows    []Row
	Filter  bool
	Current string

	Elapsed string
	Total   string

	SliderValue float64
	SliderMax   float64

	Playing bool
	Glyph   string
	Loading bool
	Status  string
}

func Render(state types.TransportState, cat *catalog.Catalog, opts Options) Model {
	current, _ := cat.Track(state.CurrentIndex)

	m := Model{
		Title:   opts.Title,
		Current: current.Title,
		Playing: state.Playing,
		Glyph:   GlyphPlay,
		Loading: state.Loading,
	}
	if state.Playing {
		m.Glyph = GlyphPause
	}

	for _, side := range []types.Side{types.SideA, types.SideB} {
		m.Sides = append(m.Sides, SideTab{
			Side:   side,
			Label:  "Side " + string(side),
			Active: side == state.ActiveSide,
		})
	}

	if q := strings.TrimSpace(opts.Query); q != "" {
		m.Filter = true
		for _, i := range cat.Find(q) {
			m.Rows = append(m.Rows, row(cat, i, state.CurrentIndex))
		}
	} else {
		for _, e := range cat.TracksForSide(state.ActiveSide) {
			m.Rows = append(m.Rows, row(cat, e.Index, state.CurrentIndex))
		}
	}

	fallback := current.DisplayDuration
	m.Elapsed = transport.FormatTime(state.Elapsed, fallback)
	if opts.ShowRemaining {
		m.Total = transport.RemainingTime(state.Elapsed, state.Duration, fallback)
	} else {
		m.Total = transport.FormatTime(state.Duration, fallback)
	}

	m.SliderMax = SliderFallbackMax
	if state.DurationKnown() && state.Duration > 0 {
		m.SliderMax = state.Duration
	}
	m.SliderValue = clamp(state.Elapsed, 0, m.SliderMax)

	switch {
	case state.LoadErr != nil:
		m.Status = fmt.Sprintf("Could not load %s", current.Title)
	case state.Loading:
		m.Status = fmt.Sprintf("Loading %s…", current.Title)
	}

	return m
}

func row(cat *catalog.Catalog, index, current int) Row {
	t, _ := cat.Track(index)
	return Row{
		Index:    index,
		Title:    t.Title,
		Duration: t.DisplayDuration,
		Current:  index == current,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

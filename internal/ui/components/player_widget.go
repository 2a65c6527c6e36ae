package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/Alexander-D-Karpov/sides/internal/transport"
	"github.com/Alexander-D-Karpov/sides/internal/ui/view"
	"github.com/Alexander-D-Karpov/sides/pkg/types"
)

// Transport is the set of user actions the widget forwards.
type Transport interface {
	TogglePlayPause()
	SelectTrack(index int) error
	PlayNext()
	PlayPrevious()
	SwitchSide(side types.Side) error
	SeekTo(seconds float64)
}

type PlayerWidget struct {
	transport Transport

	container    *fyne.Container
	titleLabel   *widget.Label
	sideButtons  map[types.Side]*widget.Button
	findEntry    *widget.Entry
	trackList    *TrackList
	seekBar      *widget.Slider
	elapsedLabel *widget.Label
	totalLabel   *widget.Label
	prevBtn      *widget.Button
	playBtn      *widget.Button
	nextBtn      *widget.Button
	statusLabel  *widget.Label

	query          string
	onQueryChanged func(string)

	seekingProgrammatically bool
	userSeeking             bool
}

func NewPlayerWidget(t Transport) *PlayerWidget {
	pw := &PlayerWidget{
		transport:   t,
		sideButtons: make(map[types.Side]*widget.Button, 2),
	}

	pw.setupWidgets()
	pw.setupLayout()

	return pw
}

func (pw *PlayerWidget) setupWidgets() {
	pw.titleLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	pw.titleLabel.Wrapping = fyne.TextWrapWord

	for _, side := range []types.Side{types.SideA, types.SideB} {
		s := side
		btn := widget.NewButton("Side "+string(s), func() { pw.switchSide(s) })
		btn.Importance = widget.LowImportance
		pw.sideButtons[s] = btn
	}

	pw.findEntry = widget.NewEntry()
	pw.findEntry.SetPlaceHolder("Find a track…")
	pw.findEntry.OnChanged = pw.onFindChanged

	pw.trackList = NewTrackList()
	pw.trackList.OnSelect(pw.selectTrack)

	pw.seekBar = widget.NewSlider(0, view.SliderFallbackMax)
	pw.seekBar.Step = 0.1
	pw.seekBar.OnChanged = pw.onSeekChanged
	pw.seekBar.OnChangeEnded = pw.onSeekEnded

	pw.elapsedLabel = widget.NewLabel("0:00")
	pw.elapsedLabel.TextStyle = fyne.TextStyle{Monospace: true}
	pw.totalLabel = widget.NewLabel("0:00")
	pw.totalLabel.TextStyle = fyne.TextStyle{Monospace: true}

	pw.prevBtn = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), pw.transport.PlayPrevious)
	pw.prevBtn.Importance = widget.LowImportance
	pw.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), pw.transport.TogglePlayPause)
	pw.playBtn.Importance = widget.HighImportance
	pw.nextBtn = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), pw.transport.PlayNext)
	pw.nextBtn.Importance = widget.LowImportance

	pw.statusLabel = widget.NewLabel("")
	pw.statusLabel.Alignment = fyne.TextAlignCenter
	pw.statusLabel.Truncation = fyne.TextTruncateEllipsis
}

func (pw *PlayerWidget) setupLayout() {
	sides := container.NewGridWithColumns(2, pw.sideButtons[types.SideA], pw.sideButtons[types.SideB])

	progress := container.NewBorder(
		nil, nil,
		pw.elapsedLabel, pw.totalLabel,
		pw.seekBar,
	)

	controls := container.NewHBox(
		layout.NewSpacer(),
		pw.prevBtn,
		pw.playBtn,
		pw.nextBtn,
		layout.NewSpacer(),
	)

	pw.container = container.NewVBox(
		pw.titleLabel,
		sides,
		pw.findEntry,
		pw.trackList,
		progress,
		controls,
		pw.statusLabel,
	)
}

// Apply shows m. The progress bar is left alone while the user drags it.
func (pw *PlayerWidget) Apply(m view.Model) {
	pw.titleLabel.SetText(m.Title)

	for _, tab := range m.Sides {
		btn, ok := pw.sideButtons[tab.Side]
		if !ok {
			continue
		}
		btn.SetText(tab.Label)
		if tab.Active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.LowImportance
		}
		btn.Refresh()
	}

	pw.trackList.SetRows(m.Rows)

	if m.Playing {
		pw.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		pw.playBtn.SetIcon(theme.MediaPlayIcon())
	}

	pw.totalLabel.SetText(m.Total)
	if !pw.userSeeking {
		pw.elapsedLabel.SetText(m.Elapsed)
		pw.seekingProgrammatically = true
		pw.seekBar.Max = m.SliderMax
		pw.seekBar.SetValue(m.SliderValue)
		pw.seekBar.Refresh()
		pw.seekingProgrammatically = false
	}

	pw.statusLabel.SetText(m.Status)
	if m.Status == "" {
		pw.statusLabel.Hide()
	} else {
		pw.statusLabel.Show()
	}
}

func (pw *PlayerWidget) onSeekChanged(value float64) {
	if pw.seekingProgrammatically {
		return
	}

	pw.userSeeking = true
	pw.elapsedLabel.SetText(transport.FormatTime(value, "0:00"))
}

func (pw *PlayerWidget) onSeekEnded(value float64) {
	pw.userSeeking = false

	if pw.seekingProgrammatically {
		return
	}

	log.Debug().Str("component", "ui").Float64("seconds", value).Msg("Seek requested")
	pw.transport.SeekTo(value)
}

func (pw *PlayerWidget) selectTrack(index int) {
	if err := pw.transport.SelectTrack(index); err != nil {
		log.Warn().Str("component", "ui").Err(err).Int("index", index).Msg("Track selection rejected")
	}
}

func (pw *PlayerWidget) switchSide(side types.Side) {
	if err := pw.transport.SwitchSide(side); err != nil {
		log.Warn().Str("component", "ui").Err(err).Msg("Side switch rejected")
	}
}

func (pw *PlayerWidget) onFindChanged(text string) {
	pw.query = text
	if pw.onQueryChanged != nil {
		pw.onQueryChanged(text)
	}
}

// Query is the current quick-find text.
func (pw *PlayerWidget) Query() string {
	return pw.query
}

// ClearQuery empties the quick-find entry.
func (pw *PlayerWidget) ClearQuery() {
	pw.findEntry.SetText("")
	pw.onFindChanged("")
}

func (pw *PlayerWidget) OnQueryChanged(cb func(string)) {
	pw.onQueryChanged = cb
}

func (pw *PlayerWidget) Container() *fyne.Container {
	return pw.container
}

func (pw *PlayerWidget) Refresh() {
	pw.container.Refresh()
}

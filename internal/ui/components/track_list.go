package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Alexander-D-Karpov/sides/internal/ui/view"
)

// TrackList shows the rows of one side (or quick-find results). Tapping a
// row selects that track by its absolute index.
type TrackList struct {
	widget.BaseWidget

	rows     []view.Row
	onSelect func(index int)

	buttons []*widget.Button
	root    *fyne.Container
}

func NewTrackList() *TrackList {
	tl := &TrackList{root: container.NewVBox()}
	tl.ExtendBaseWidget(tl)
	return tl
}

func (tl *TrackList) CreateRenderer() fyne.WidgetRenderer {
	return &trackListRenderer{tl: tl}
}

func (tl *TrackList) OnSelect(cb func(index int)) { tl.onSelect = cb }

func (tl *TrackList) SetRows(rows []view.Row) {
	tl.rows = rows
	tl.rebuild()
	tl.Refresh()
}

func (tl *TrackList) rebuild() {
	tl.root.Objects = nil
	tl.buttons = tl.buttons[:0]

	if len(tl.rows) == 0 {
		tl.root.Add(widget.NewLabel("No tracks"))
		return
	}

	for _, r := range tl.rows {
		tl.root.Add(tl.makeRow(r))
	}
}

func (tl *TrackList) makeRow(r view.Row) fyne.CanvasObject {
	index := r.Index
	titleBtn := widget.NewButton(r.Title, func() {
		if tl.onSelect != nil {
			tl.onSelect(index)
		}
	})
	titleBtn.Alignment = widget.ButtonAlignLeading
	titleBtn.Importance = widget.LowImportance
	if r.Current {
		titleBtn.Importance = widget.HighImportance
		titleBtn.SetIcon(theme.MediaMusicIcon())
	}
	tl.buttons = append(tl.buttons, titleBtn)

	durLbl := widget.NewLabel(r.Duration)
	durLbl.TextStyle = fyne.TextStyle{Monospace: true}

	return container.NewBorder(nil, nil, nil, durLbl, titleBtn)
}

type trackListRenderer struct {
	tl *TrackList
}

func (r *trackListRenderer) Layout(size fyne.Size) { r.tl.root.Resize(size) }
func (r *trackListRenderer) MinSize() fyne.Size    { return r.tl.root.MinSize() }
func (r *trackListRenderer) Destroy()              {}
func (r *trackListRenderer) Refresh()              { r.tl.root.Refresh() }
func (r *trackListRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.tl.root}
}

package themes

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

const (
	VariantDark  = "dark"
	VariantLight = "light"
)

// ReleaseTheme draws the player as a translucent panel over the release
// background image.
type ReleaseTheme struct {
	variant string
}

var _ fyne.Theme = (*ReleaseTheme)(nil)

// NewTheme returns the theme for variant. Unknown variants fall back to dark.
func NewTheme(variant string) fyne.Theme {
	if variant != VariantLight {
		variant = VariantDark
	}
	return &ReleaseTheme{variant: variant}
}

// PanelColor is the backdrop of the player panel.
func PanelColor(variant string) color.Color {
	if variant == VariantLight {
		return color.NRGBA{R: 243, G: 244, B: 246, A: 200}
	}
	return color.NRGBA{R: 31, G: 41, B: 55, A: 128}
}

var darkColors = map[fyne.ThemeColorName]color.NRGBA{
	theme.ColorNameBackground:        {R: 17, G: 24, B: 39, A: 255},
	theme.ColorNameButton:            {R: 55, G: 65, B: 81, A: 160},
	theme.ColorNameDisabledButton:    {R: 31, G: 41, B: 55, A: 120},
	theme.ColorNameDisabled:          {R: 107, G: 114, B: 128, A: 255},
	theme.ColorNameError:             {R: 248, G: 113, B: 113, A: 255},
	theme.ColorNameFocus:             {R: 255, G: 255, B: 255, A: 90},
	theme.ColorNameForeground:        {R: 255, G: 255, B: 255, A: 255},
	theme.ColorNameHover:             {R: 255, G: 255, B: 255, A: 30},
	theme.ColorNameInputBackground:   {R: 17, G: 24, B: 39, A: 140},
	theme.ColorNameInputBorder:       {R: 55, G: 65, B: 81, A: 255},
	theme.ColorNameOverlayBackground: {R: 17, G: 24, B: 39, A: 220},
	theme.ColorNamePressed:           {R: 255, G: 255, B: 255, A: 60},
	theme.ColorNamePrimary:           {R: 229, G: 231, B: 235, A: 255},
	theme.ColorNameScrollBar:         {R: 75, G: 85, B: 99, A: 255},
	theme.ColorNameSelection:         {R: 255, G: 255, B: 255, A: 50},
	theme.ColorNameSeparator:         {R: 55, G: 65, B: 81, A: 255},
	theme.ColorNamePlaceHolder:       {R: 156, G: 163, B: 175, A: 255},
}

var lightColors = map[fyne.ThemeColorName]color.NRGBA{
	theme.ColorNameBackground:        {R: 249, G: 250, B: 251, A: 255},
	theme.ColorNameButton:            {R: 255, G: 255, B: 255, A: 180},
	theme.ColorNameDisabledButton:    {R: 229, G: 231, B: 235, A: 160},
	theme.ColorNameDisabled:          {R: 156, G: 163, B: 175, A: 255},
	theme.ColorNameError:             {R: 220, G: 38, B: 38, A: 255},
	theme.ColorNameFocus:             {R: 17, G: 24, B: 39, A: 70},
	theme.ColorNameForeground:        {R: 17, G: 24, B: 39, A: 255},
	theme.ColorNameHover:             {R: 17, G: 24, B: 39, A: 20},
	theme.ColorNameInputBackground:   {R: 255, G: 255, B: 255, A: 200},
	theme.ColorNameInputBorder:       {R: 209, G: 213, B: 219, A: 255},
	theme.ColorNameOverlayBackground: {R: 255, G: 255, B: 255, A: 230},
	theme.ColorNamePressed:           {R: 17, G: 24, B: 39, A: 40},
	theme.ColorNamePrimary:           {R: 31, G: 41, B: 55, A: 255},
	theme.ColorNameScrollBar:         {R: 209, G: 213, B: 219, A: 255},
	theme.ColorNameSelection:         {R: 17, G: 24, B: 39, A: 40},
	theme.ColorNameSeparator:         {R: 229, G: 231, B: 235, A: 255},
	theme.ColorNamePlaceHolder:       {R: 107, G: 114, B: 128, A: 255},
}

func (t *ReleaseTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	colors := darkColors
	fallback := theme.VariantDark
	if t.variant == VariantLight {
		colors = lightColors
		fallback = theme.VariantLight
	}

	if c, ok := colors[name]; ok {
		return c
	}
	return theme.DefaultTheme().Color(name, fallback)
}

func (t *ReleaseTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *ReleaseTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *ReleaseTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 8
	case theme.SizeNameInnerPadding:
		return 10
	case theme.SizeNameText:
		return 16
	case theme.SizeNameHeadingText:
		return 30
	case theme.SizeNameCaptionText:
		return 12
	case theme.SizeNameInputRadius, theme.SizeNameSelectionRadius:
		return 6
	case theme.SizeNameSeparatorThickness, theme.SizeNameInputBorder:
		return 1
	default:
		return theme.DefaultTheme().Size(name)
	}
}

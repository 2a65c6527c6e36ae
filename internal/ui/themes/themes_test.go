package themes

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
)

func TestNewThemeVariants(t *testing.T) {
	test.NewApp()

	dark := NewTheme(VariantDark)
	light := NewTheme(VariantLight)
	unknown := NewTheme("sepia")

	if dark.Color(theme.ColorNameForeground, theme.VariantLight) == light.Color(theme.ColorNameForeground, theme.VariantLight) {
		t.Error("dark and light variants should differ in foreground")
	}
	if unknown.Color(theme.ColorNameBackground, theme.VariantLight) != dark.Color(theme.ColorNameBackground, theme.VariantLight) {
		t.Error("unknown variant should fall back to dark")
	}
}

func TestColorFallsBackToDefault(t *testing.T) {
	test.NewApp()

	th := NewTheme(VariantDark)

	got := th.Color(theme.ColorNameSuccess, theme.VariantLight)
	expected := theme.DefaultTheme().Color(theme.ColorNameSuccess, theme.VariantDark)
	if got != expected {
		t.Errorf("expected default dark success color, got %v", got)
	}
}

func TestSizes(t *testing.T) {
	test.NewApp()

	th := NewTheme(VariantDark)

	if th.Size(theme.SizeNameHeadingText) <= th.Size(theme.SizeNameText) {
		t.Error("heading text should be larger than body text")
	}
	if th.Size(theme.SizeNameScrollBar) != theme.DefaultTheme().Size(theme.SizeNameScrollBar) {
		t.Error("unset sizes should come from the default theme")
	}
}

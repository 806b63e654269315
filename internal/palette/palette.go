// Package palette supplies the colour palettes carried as theme payloads:
// the built-in set and user palettes loaded from YAML files.
package palette

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"themekit/internal/theme"
)

// Palette holds the semantic colours of one theme. Every role adapts to
// light and dark terminal backgrounds.
type Palette struct {
	// Base colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Status colors
	Error   lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// Text colors
	Text           lipgloss.AdaptiveColor
	TextMuted      lipgloss.AdaptiveColor
	TextEmphasized lipgloss.AdaptiveColor

	// Background colors
	Background          lipgloss.AdaptiveColor
	BackgroundSecondary lipgloss.AdaptiveColor
	BackgroundDarker    lipgloss.AdaptiveColor

	// Border colors
	BorderNormal  lipgloss.AdaptiveColor
	BorderFocused lipgloss.AdaptiveColor
	BorderDim     lipgloss.AdaptiveColor
}

// Option keys set on themes produced by this package.
const (
	OptionSource = "source"
	OptionPath   = "path"
)

// Sources recorded under OptionSource.
const (
	SourceBuiltin = "builtin"
	SourceFile    = "file"
)

// Of returns the palette carried by t.
func Of(t theme.Theme) (Palette, bool) {
	switch p := t.Payload.(type) {
	case Palette:
		return p, true
	case *Palette:
		if p == nil {
			return Palette{}, false
		}
		return *p, true
	default:
		return Palette{}, false
	}
}

// Swatches returns the accent roles in display order.
func (p Palette) Swatches() []lipgloss.AdaptiveColor {
	return []lipgloss.AdaptiveColor{
		p.Primary, p.Secondary, p.Accent,
		p.Error, p.Warning, p.Success, p.Info,
	}
}

// Swatch renders one coloured block per accent role for the given colour
// profile. It returns an empty string on terminals without colour.
func (p Palette) Swatch(profile termenv.Profile, dark bool) string {
	if profile == termenv.Ascii {
		return ""
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(dark)

	var b strings.Builder
	for _, c := range p.Swatches() {
		b.WriteString(r.NewStyle().Background(c).Render("  "))
	}
	return b.String()
}

// Merge appends extra to base. An entry in extra replaces the base entry
// with the same id in place, so user files can override built-ins.
func Merge(base, extra []theme.Theme) []theme.Theme {
	out := make([]theme.Theme, len(base), len(base)+len(extra))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, t := range out {
		index[t.ID] = i
	}
	for _, t := range extra {
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}

// Package tui renders scramble frames on a terminal.
package tui

import (
	"github.com/aretw0/scramble/pkg/render"
	"github.com/muesli/termenv"
)

// DefaultGlyphColor highlights scrambling glyphs.
const DefaultGlyphColor = "#a78bfa"

// Markup colors scrambling glyphs for the given profile. With the Ascii
// profile the output carries no escape sequences.
type Markup struct {
	profile termenv.Profile
	color   termenv.Color
}

var _ render.Markup = Markup{}

// NewMarkup creates a terminal markup using a hex or ANSI color.
func NewMarkup(profile termenv.Profile, color string) Markup {
	if color == "" {
		color = DefaultGlyphColor
	}
	return Markup{profile: profile, color: profile.Color(color)}
}

// Glyph implements render.Markup.
func (m Markup) Glyph(g string) string {
	return m.profile.String(g).Foreground(m.color).Faint().String()
}

// Plain implements render.Markup.
func (m Markup) Plain(s string) string {
	return m.profile.String(s).Bold().String()
}

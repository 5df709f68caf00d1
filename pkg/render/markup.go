// Package render turns slot output into display markup.
package render

import (
	"html"
	"strings"

	"github.com/aretw0/scramble/pkg/domain"
)

// Markup decorates the characters of a frame.
// Glyph wraps a character that is currently scrambling; Plain formats text
// that is untouched or settled.
type Markup interface {
	Glyph(g string) string
	Plain(s string) string
}

// HTML wraps scrambling glyphs in an inline span and escapes everything,
// so the output can be injected into a document as-is.
type HTML struct {
	// Class is added to the span when non-empty.
	Class string
}

// Glyph implements Markup.
func (h HTML) Glyph(g string) string {
	if h.Class != "" {
		return `<span class="` + html.EscapeString(h.Class) + `">` + html.EscapeString(g) + "</span>"
	}
	return "<span>" + html.EscapeString(g) + "</span>"
}

// Plain implements Markup.
func (h HTML) Plain(s string) string {
	return html.EscapeString(s)
}

// Plain renders frames without any decoration.
type Plain struct{}

// Glyph implements Markup.
func (Plain) Glyph(g string) string { return g }

// Plain implements Markup.
func (Plain) Plain(s string) string { return s }

// Funcs builds a Markup from two functions. A nil function is the identity.
type Funcs struct {
	GlyphFunc func(string) string
	PlainFunc func(string) string
}

// Glyph implements Markup.
func (f Funcs) Glyph(g string) string {
	if f.GlyphFunc == nil {
		return g
	}
	return f.GlyphFunc(g)
}

// Plain implements Markup.
func (f Funcs) Plain(s string) string {
	if f.PlainFunc == nil {
		return s
	}
	return f.PlainFunc(s)
}

// Cells re-renders the cells of a frame with m, grouping adjacent cells of
// the same kind so that decorations wrap runs rather than single runes.
func Cells(cells []domain.Cell, m Markup) string {
	var out, run strings.Builder
	scrambling := false

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if scrambling {
			out.WriteString(m.Glyph(run.String()))
		} else {
			out.WriteString(m.Plain(run.String()))
		}
		run.Reset()
	}

	for _, c := range cells {
		isGlyph := c.State == domain.CellScrambling
		if isGlyph != scrambling {
			flush()
			scrambling = isGlyph
		}
		run.WriteString(c.Char)
	}
	flush()
	return out.String()
}

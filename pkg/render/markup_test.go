package render_test

import (
	"strings"
	"testing"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/render"
	"github.com/stretchr/testify/assert"
)

func TestHTML_EscapesGlyphsAndText(t *testing.T) {
	m := render.HTML{}
	assert.Equal(t, "<span>&lt;</span>", m.Glyph("<"))
	assert.Equal(t, "a&amp;b", m.Plain("a&b"))

	classy := render.HTML{Class: "dud"}
	assert.Equal(t, `<span class="dud">#</span>`, classy.Glyph("#"))
}

func TestCells_GroupsRuns(t *testing.T) {
	cells := []domain.Cell{
		{Char: "H", State: domain.CellSettled},
		{Char: "i", State: domain.CellUntouched},
		{Char: "#", State: domain.CellScrambling},
		{Char: "?", State: domain.CellScrambling},
		{Char: "!", State: domain.CellSettled},
	}
	m := render.Funcs{
		GlyphFunc: func(g string) string { return "[" + g + "]" },
		PlainFunc: strings.ToLower,
	}

	assert.Equal(t, "hi[#?]!", render.Cells(cells, m))
	assert.Equal(t, "Hi#?!", render.Cells(cells, render.Plain{}))
	assert.Empty(t, render.Cells(nil, m))
}

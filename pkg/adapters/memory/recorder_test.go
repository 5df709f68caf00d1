package memory_test

import (
	"testing"

	"github.com/aretw0/scramble/pkg/adapters/memory"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_KeepsFramesInOrder(t *testing.T) {
	rec := memory.NewRecorder(0)
	rec.Render(domain.Frame{Session: "a", Index: 0, Text: "x"})
	rec.Render(domain.Frame{Session: "a", Index: 1, Text: "y"})
	rec.Render(domain.Frame{Session: "b", Index: 0, Text: "z"})

	assert.Equal(t, []string{"x", "y", "z"}, rec.Texts())
	assert.Len(t, rec.Session("a"), 2)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "z", last.Text)

	rec.Reset()
	assert.Zero(t, rec.Len())
	_, ok = rec.Last()
	assert.False(t, ok)
}

func TestRecorder_Limit(t *testing.T) {
	rec := memory.NewRecorder(2)
	for _, s := range []string{"a", "b", "c"} {
		rec.Render(domain.Frame{Text: s})
	}
	assert.Equal(t, []string{"b", "c"}, rec.Texts())
}

func TestRecorder_CopiesCells(t *testing.T) {
	rec := memory.NewRecorder(0)
	cells := []domain.Cell{{Char: "a", State: domain.CellSettled}}
	rec.Render(domain.Frame{Cells: cells})
	cells[0].Char = "b"

	last, _ := rec.Last()
	assert.Equal(t, "a", last.Cells[0].Char)
}

package film_test

import (
	"bytes"
	"image/gif"
	"image/png"
	"testing"
	"time"

	"github.com/aretw0/scramble/internal/presentation/film"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(text string, state domain.CellState) domain.Frame {
	cells := make([]domain.Cell, 0, len(text))
	for _, r := range text {
		cells = append(cells, domain.Cell{Char: string(r), State: state})
	}
	return domain.Frame{Text: text, Cells: cells, Total: len(cells)}
}

func TestWriteGIF_DelaysFollowTimestamps(t *testing.T) {
	stills := []film.Still{
		{Frame: frame("ab", domain.CellUntouched), At: 0},
		{Frame: frame("<>", domain.CellScrambling), At: 0},
		{Frame: frame("cd", domain.CellSettled), At: 50 * time.Millisecond},
		{Frame: frame("cde", domain.CellSettled), At: 250 * time.Millisecond},
	}
	opts := film.DefaultOptions()
	opts.HoldLast = time.Second

	var buf bytes.Buffer
	require.NoError(t, film.WriteGIF(&buf, stills, opts))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 20, 100}, anim.Delay, "same-instant frames are dropped")

	p, err := film.NewPainter(3, opts)
	require.NoError(t, err)
	w, h := p.Size()
	assert.Equal(t, w, anim.Config.Width)
	assert.Equal(t, h, anim.Config.Height)
}

func TestWriteGIF_NoFrames(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, film.WriteGIF(&buf, nil, film.DefaultOptions()), film.ErrNoFrames)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, film.WritePNG(&buf, frame("Hello", domain.CellSettled), film.DefaultOptions()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

func TestTimeline_StampsFrames(t *testing.T) {
	now := time.Duration(0)
	tl := film.NewTimeline(func() time.Duration { return now })

	tl.Render(frame("a", domain.CellSettled))
	now = 40 * time.Millisecond
	tl.Render(frame("b", domain.CellSettled))

	stills := tl.Stills()
	require.Len(t, stills, 2)
	assert.Equal(t, 40*time.Millisecond, stills[1].At)
	assert.Equal(t, "b", stills[1].Frame.Text)
}

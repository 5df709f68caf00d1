// Package film renders recorded frames to animated GIF and PNG images.
package film

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// Still is a frame together with the time it was rendered.
type Still struct {
	Frame domain.Frame
	At    time.Duration
}

// Timeline is a FrameSink that timestamps frames with a clock, typically
// the virtual scheduler's Now.
type Timeline struct {
	mu     sync.Mutex
	now    func() time.Duration
	stills []Still
}

var _ ports.FrameSink = (*Timeline)(nil)

// NewTimeline creates an empty timeline.
func NewTimeline(now func() time.Duration) *Timeline {
	return &Timeline{now: now}
}

// Render implements ports.FrameSink.
func (t *Timeline) Render(frame domain.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	frame.Cells = append([]domain.Cell(nil), frame.Cells...)
	t.stills = append(t.stills, Still{Frame: frame, At: t.now()})
}

// Stills returns the recorded frames.
func (t *Timeline) Stills() []Still {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Still(nil), t.stills...)
}

// Options controls the look of rendered images.
type Options struct {
	FontSize   float64
	Padding    float64
	Background color.Color
	Foreground color.Color
	Glyph      color.Color
	Untouched  color.Color
	// HoldLast is how long the final frame stays before the GIF loops.
	HoldLast time.Duration
}

// DefaultOptions returns a dark theme.
func DefaultOptions() Options {
	return Options{
		FontSize:   28,
		Padding:    24,
		Background: color.RGBA{0x0f, 0x17, 0x2a, 0xff},
		Foreground: color.RGBA{0xf8, 0xfa, 0xfc, 0xff},
		Glyph:      color.RGBA{0x34, 0xd3, 0x99, 0xff},
		Untouched:  color.RGBA{0x94, 0xa3, 0xb8, 0xff},
		HoldLast:   2 * time.Second,
	}
}

// ErrNoFrames is returned when there is nothing to render.
var ErrNoFrames = errors.New("no frames to render")

// Painter draws frames as images sized for the widest frame it was given.
type Painter struct {
	opts       Options
	face       font.Face
	charWidth  float64
	lineHeight float64
	width      int
	height     int
	palette    color.Palette
}

// NewPainter prepares a painter able to fit cols characters per line.
func NewPainter(cols int, opts Options) (*Painter, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	charWidth, _ := measure.MeasureString("M")

	p := &Painter{
		opts:       opts,
		face:       face,
		charWidth:  charWidth,
		lineHeight: opts.FontSize * 1.4,
	}
	p.width = int(math.Ceil(float64(max(cols, 1))*charWidth + 2*opts.Padding))
	p.height = int(math.Ceil(p.lineHeight + 2*opts.Padding))
	p.palette = buildPalette(opts)
	return p, nil
}

// Size returns the image dimensions.
func (p *Painter) Size() (int, int) { return p.width, p.height }

// Paint draws one frame.
func (p *Painter) Paint(frame domain.Frame) image.Image {
	dc := gg.NewContext(p.width, p.height)
	dc.SetColor(p.opts.Background)
	dc.Clear()
	dc.SetFontFace(p.face)

	baseline := p.opts.Padding + p.opts.FontSize
	for i, cell := range frame.Cells {
		if cell.Char == "" {
			continue
		}
		switch cell.State {
		case domain.CellScrambling:
			dc.SetColor(p.opts.Glyph)
		case domain.CellUntouched:
			dc.SetColor(p.opts.Untouched)
		default:
			dc.SetColor(p.opts.Foreground)
		}
		dc.DrawString(cell.Char, p.opts.Padding+float64(i)*p.charWidth, baseline)
	}
	return dc.Image()
}

// Paletted draws one frame on the painter's palette.
func (p *Painter) Paletted(frame domain.Frame) *image.Paletted {
	src := p.Paint(frame)
	dst := image.NewPaletted(src.Bounds(), p.palette)
	draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
	return dst
}

// WriteGIF encodes stills as a looping animated GIF. Each still is shown
// until the next one was rendered.
func WriteGIF(w io.Writer, stills []Still, opts Options) error {
	if len(stills) == 0 {
		return ErrNoFrames
	}
	cols := 0
	for _, s := range stills {
		cols = max(cols, len(s.Frame.Cells))
	}
	p, err := NewPainter(cols, opts)
	if err != nil {
		return err
	}

	anim := &gif.GIF{}
	for i, s := range stills {
		hold := opts.HoldLast
		if i+1 < len(stills) {
			hold = stills[i+1].At - s.At
		}
		if hold <= 0 && i+1 < len(stills) {
			// Frames replaced within the same instant are never visible.
			continue
		}
		anim.Image = append(anim.Image, p.Paletted(s.Frame))
		anim.Delay = append(anim.Delay, centiseconds(hold))
	}
	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}

// WritePNG encodes a single frame.
func WritePNG(w io.Writer, frame domain.Frame, opts Options) error {
	p, err := NewPainter(len(frame.Cells), opts)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(p.Paint(frame))
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func centiseconds(d time.Duration) int {
	return max(1, int(math.Round(float64(d)/float64(10*time.Millisecond))))
}

// buildPalette blends the background into every ink so antialiased edges
// survive quantization.
func buildPalette(opts Options) color.Palette {
	const steps = 16
	pal := color.Palette{opts.Background}
	for _, ink := range []color.Color{opts.Foreground, opts.Glyph, opts.Untouched} {
		for i := 1; i <= steps; i++ {
			pal = append(pal, blend(opts.Background, ink, float64(i)/steps))
		}
	}
	return pal
}

func blend(a, b color.Color, t float64) color.Color {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8((float64(x)*(1-t) + float64(y)*t) / 257)
	}
	return color.RGBA{mix(ar, br), mix(ag, bg), mix(ab, bb), 0xff}
}

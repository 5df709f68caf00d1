package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// LineWriter is a FrameSink that animates frames on a single terminal line.
// When the output is not a terminal only settled frames are written, one
// per line, so logs and pipes stay readable.
type LineWriter struct {
	mu          sync.Mutex
	w           io.Writer
	out         *termenv.Output
	interactive bool
	width       int
	last        string
}

var _ ports.FrameSink = (*LineWriter)(nil)

// LineWriterOption configures a LineWriter.
type LineWriterOption func(*LineWriter)

// WithInteractive forces animated (true) or line-per-text (false) output.
func WithInteractive(interactive bool) LineWriterOption {
	return func(l *LineWriter) {
		l.interactive = interactive
	}
}

// WithWidth overrides the detected terminal width in columns. Zero disables fitting.
func WithWidth(width int) LineWriterOption {
	return func(l *LineWriter) {
		l.width = width
	}
}

// NewLineWriter creates a writer, detecting whether w is a terminal.
func NewLineWriter(w io.Writer, opts ...LineWriterOption) *LineWriter {
	l := &LineWriter{
		w:           w,
		out:         termenv.NewOutput(w),
		interactive: IsTerminal(w),
		width:       Width(w),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Render implements ports.FrameSink.
func (l *LineWriter) Render(frame domain.Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.interactive {
		if frame.Complete() && frame.Text != l.last {
			fmt.Fprintln(l.w, frame.Text)
			l.last = frame.Text
		}
		return
	}

	l.out.ClearLine()
	fmt.Fprint(l.w, "\r"+l.fit(frame))
	l.last = frame.Text
}

// Finish moves the cursor below the animated line.
func (l *LineWriter) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.interactive {
		fmt.Fprintln(l.w)
	}
}

// fit drops the decoration when the text would wrap, since a wrapped line
// cannot be redrawn in place.
// Widths are display columns, so wide runes count twice.
func (l *LineWriter) fit(frame domain.Frame) string {
	if l.width > 0 && lipgloss.Width(frame.Text) >= l.width {
		return truncate(frame.Text, l.width-1)
	}
	return frame.Markup
}

// truncate keeps the longest prefix of s spanning at most cols columns.
func truncate(s string, cols int) string {
	used := 0
	for i, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > cols {
			return s[:i]
		}
		used += w
	}
	return s
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of w, or 0 if unknown.
func Width(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

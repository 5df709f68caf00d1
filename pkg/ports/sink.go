package ports

import "github.com/aretw0/scramble/pkg/domain"

// FrameSink receives every frame the engine renders.
// Render is called on the scheduler's goroutine and must not block.
type FrameSink interface {
	Render(frame domain.Frame)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(frame domain.Frame)

// Render calls f(frame).
func (f FrameSinkFunc) Render(frame domain.Frame) {
	f(frame)
}

// MultiSink fans a frame out to several sinks in order.
type MultiSink []FrameSink

// Render forwards the frame to every non-nil sink.
func (m MultiSink) Render(frame domain.Frame) {
	for _, s := range m {
		if s != nil {
			s.Render(frame)
		}
	}
}

// Flipper toggles the companion element's orientation.
type Flipper interface {
	Flip()
}

// FlipperFunc adapts a function to Flipper.
type FlipperFunc func()

// Flip calls f().
func (f FlipperFunc) Flip() {
	f()
}

// Random is the randomness source used for timing windows and glyph draws.
// *math/rand/v2.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

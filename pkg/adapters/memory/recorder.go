// Package memory provides in-process adapters: a frame recorder and a text store.
package memory

import (
	"sync"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// Recorder is a FrameSink that keeps every frame it receives.
// Safe for concurrent use.
type Recorder struct {
	mu     sync.RWMutex
	frames []domain.Frame
	limit  int
}

var _ ports.FrameSink = (*Recorder)(nil)

// NewRecorder creates a recorder. A positive limit keeps only the most
// recent frames.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Render records the frame.
func (r *Recorder) Render(frame domain.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame.Cells = append([]domain.Cell(nil), frame.Cells...)
	r.frames = append(r.frames, frame)
	if r.limit > 0 && len(r.frames) > r.limit {
		r.frames = append(r.frames[:0:0], r.frames[len(r.frames)-r.limit:]...)
	}
}

// Frames returns a copy of the recorded frames.
func (r *Recorder) Frames() []domain.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Frame(nil), r.frames...)
}

// Texts returns the plain text of every recorded frame.
func (r *Recorder) Texts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	texts := make([]string, len(r.frames))
	for i, f := range r.frames {
		texts[i] = f.Text
	}
	return texts
}

// Session returns the frames produced by one transition.
func (r *Recorder) Session(id string) []domain.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Frame
	for _, f := range r.frames {
		if f.Session == id {
			out = append(out, f)
		}
	}
	return out
}

// Last returns the most recent frame.
func (r *Recorder) Last() (domain.Frame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.frames) == 0 {
		return domain.Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Len returns the number of recorded frames.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// Reset drops every recorded frame.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

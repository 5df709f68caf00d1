// Package interactive hosts the scrambler in a bubbletea program.
package interactive

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// fireMsg delivers a due callback back into the program's Update.
type fireMsg struct {
	tok ports.Token
	fn  func()
}

// TickFunc builds the command that waits d before producing a message.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Scheduler implements ports.Scheduler on top of bubbletea commands.
// Scheduling only records a tick command; the model returns the recorded
// commands from Update and runs the callback when the tick comes back, so
// every callback executes inside Update.
type Scheduler struct {
	mu            sync.Mutex
	seq           uint64
	live          map[ports.Token]struct{}
	pending       []tea.Cmd
	frameInterval time.Duration
	tick          TickFunc
}

var _ ports.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler running fps frames per second.
func NewScheduler(fps int) *Scheduler {
	if fps <= 0 {
		fps = domain.DefaultFrameRate
	}
	return &Scheduler{
		live:          make(map[ports.Token]struct{}),
		frameInterval: time.Second / time.Duration(fps),
		tick:          tea.Tick,
	}
}

// WithTick replaces the tick command constructor.
func (s *Scheduler) WithTick(tick TickFunc) *Scheduler {
	s.tick = tick
	return s
}

// ScheduleFrame implements ports.Scheduler.
func (s *Scheduler) ScheduleFrame(fn func()) ports.Token {
	return s.ScheduleAfter(s.frameInterval, fn)
}

// ScheduleAfter implements ports.Scheduler.
func (s *Scheduler) ScheduleAfter(d time.Duration, fn func()) ports.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	tok := ports.Token(s.seq)
	s.live[tok] = struct{}{}
	s.pending = append(s.pending, s.tick(d, func(time.Time) tea.Msg {
		return fireMsg{tok: tok, fn: fn}
	}))
	return tok
}

// Cancel implements ports.Scheduler. The tick still arrives but is ignored.
func (s *Scheduler) Cancel(tok ports.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, tok)
}

// Pending returns the number of callbacks that have not run yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Drain returns the commands recorded since the last call.
func (s *Scheduler) Drain() tea.Cmd {
	s.mu.Lock()
	cmds := s.pending
	s.pending = nil
	s.mu.Unlock()

	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

func (s *Scheduler) fire(msg fireMsg) {
	s.mu.Lock()
	_, ok := s.live[msg.tok]
	delete(s.live, msg.tok)
	s.mu.Unlock()

	if ok {
		msg.fn()
	}
}

package clock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// DefaultQueueSize is the number of callbacks that can wait for the loop.
const DefaultQueueSize = 256

// Loop is a real-time, single-goroutine event loop.
// Timers and frames fire on runtime timers but their callbacks are queued
// and executed one at a time by Run.
type Loop struct {
	frameInterval time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	seq    uint64
	timers map[ports.Token]*pendingTimer

	queue   chan task
	done    chan struct{}
	exited  chan struct{}
	running atomic.Bool
	stop    sync.Once
}

var _ ports.Scheduler = (*Loop)(nil)

type pendingTimer struct {
	timer *time.Timer
	frame bool
}

type task struct {
	tok ports.Token // zero for posted work
	fn  func()
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithFrameRate sets the number of frames per second.
func WithFrameRate(fps int) LoopOption {
	return func(l *Loop) {
		if fps > 0 {
			l.frameInterval = time.Second / time.Duration(fps)
		}
	}
}

// WithLoopLogger configures the logger used for callback failures.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop creates a stopped loop. Call Run (or Start) to process callbacks.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		frameInterval: time.Second / domain.DefaultFrameRate,
		logger:        logging.NewNop(),
		timers:        make(map[ports.Token]*pendingTimer),
		queue:         make(chan task, DefaultQueueSize),
		done:          make(chan struct{}),
		exited:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FrameInterval returns the duration of one frame.
func (l *Loop) FrameInterval() time.Duration {
	return l.frameInterval
}

// ScheduleFrame runs fn on the loop after one frame interval.
func (l *Loop) ScheduleFrame(fn func()) ports.Token {
	return l.schedule(l.frameInterval, fn, true)
}

// ScheduleAfter runs fn on the loop once d has elapsed.
func (l *Loop) ScheduleAfter(d time.Duration, fn func()) ports.Token {
	if d < 0 {
		d = 0
	}
	return l.schedule(d, fn, false)
}

// Cancel drops a pending callback. A callback already queued but not yet
// started is dropped as well.
func (l *Loop) Cancel(tok ports.Token) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.timers[tok]; ok {
		p.timer.Stop()
		delete(l.timers, tok)
	}
}

// Pending returns the number of callbacks that have not run yet.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

// Do posts fn to run on the loop. It returns false if the loop has stopped.
func (l *Loop) Do(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- task{fn: fn}:
		return true
	case <-l.done:
		return false
	}
}

// Call runs fn on the loop and waits for it to return.
// It must not be called from a loop callback.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Do(func() {
		defer close(finished)
		fn()
	}) {
		return domain.ErrNotRunning
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return domain.ErrNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the loop on a new goroutine.
func (l *Loop) Start(ctx context.Context) {
	go func() {
		_ = l.Run(ctx)
	}()
}

// Run processes callbacks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("loop already running")
	}
	defer close(l.exited)
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case t := <-l.queue:
			if t.tok != 0 && !l.claim(t.tok) {
				continue
			}
			l.safeRun(t.fn)
		}
	}
}

// Stop halts the loop and drops every pending timer.
func (l *Loop) Stop() {
	l.stop.Do(func() {
		close(l.done)
		l.mu.Lock()
		defer l.mu.Unlock()
		for tok, p := range l.timers {
			p.timer.Stop()
			delete(l.timers, tok)
		}
	})
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Exited is closed when Run returns, after the last callback finished.
func (l *Loop) Exited() <-chan struct{} {
	return l.exited
}

func (l *Loop) schedule(d time.Duration, fn func(), frame bool) ports.Token {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	tok := ports.Token(l.seq)
	l.timers[tok] = &pendingTimer{
		frame: frame,
		timer: time.AfterFunc(d, func() {
			select {
			case l.queue <- task{tok: tok, fn: fn}:
			case <-l.done:
			}
		}),
	}
	return tok
}

// claim removes tok from the pending set, reporting whether it was still live.
func (l *Loop) claim(tok ports.Token) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.timers[tok]; !ok {
		return false
	}
	delete(l.timers, tok)
	return true
}

func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panicked", "panic", r)
		}
	}()
	fn()
}

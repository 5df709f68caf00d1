package domain

import (
	"context"
	"sync"
)

// Completion is a one-shot signal handed out for every transition.
// It either settles (the transition finished) or is abandoned (a newer
// transition superseded it); never both, and never more than once.
type Completion struct {
	mu        sync.Mutex
	done      chan struct{}
	abandoned chan struct{}
	callbacks []func()
	finished  bool
}

// NewCompletion creates a pending completion.
func NewCompletion() *Completion {
	return &Completion{
		done:      make(chan struct{}),
		abandoned: make(chan struct{}),
	}
}

// Done is closed when the transition settles.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Abandoned is closed when the transition is superseded or halted.
func (c *Completion) Abandoned() <-chan struct{} {
	return c.abandoned
}

// Then registers fn to run once when the transition settles.
// If it already settled fn runs immediately; if abandoned fn never runs.
func (c *Completion) Then(fn func()) {
	c.mu.Lock()
	if !c.finished {
		c.callbacks = append(c.callbacks, fn)
		c.mu.Unlock()
		return
	}
	settled := isClosed(c.done)
	c.mu.Unlock()

	if settled {
		fn()
	}
}

// Settle fires the completion. It returns false if it had already finished.
func (c *Completion) Settle() bool {
	c.mu.Lock()
	if c.finished {
		c.mu.Unlock()
		return false
	}
	c.finished = true
	callbacks := c.callbacks
	c.callbacks = nil
	close(c.done)
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return true
}

// Abandon drops the completion without firing it.
// It returns false if it had already finished.
func (c *Completion) Abandon() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return false
	}
	c.finished = true
	c.callbacks = nil
	close(c.abandoned)
	return true
}

// Settled reports whether the transition finished naturally.
func (c *Completion) Settled() bool {
	return isClosed(c.done)
}

// Wait blocks until the completion settles, is abandoned, or ctx ends.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	case <-c.abandoned:
		return ErrSuperseded
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventTransitionStart     EventType = "transition_start"
	EventTransitionSettle    EventType = "transition_settle"
	EventTransitionSupersede EventType = "transition_supersede"
	EventFlip                EventType = "flip"
	EventAdvance             EventType = "advance"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// TransitionEvent describes a transition starting, settling or being superseded.
type TransitionEvent struct {
	EventBase
	Session string `json:"session"`
	From    string `json:"from"`
	To      string `json:"to"`
	Slots   int    `json:"slots"`
	Frames  int    `json:"frames"` // Frames rendered so far
}

// AdvanceEvent describes the sequencer moving to another entry.
type AdvanceEvent struct {
	EventBase
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Manual bool   `json:"manual"`
	Wrap   bool   `json:"wrap"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run on the scheduler's goroutine and must not block.
type LifecycleHooks struct {
	OnTransitionStart     func(*TransitionEvent)
	OnTransitionSettle    func(*TransitionEvent)
	OnTransitionSupersede func(*TransitionEvent)
	OnAdvance             func(*AdvanceEvent)
	OnFlip                func(*AdvanceEvent)
}

// Merge combines hooks so that both sets run, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransitionStart:     chain(h.OnTransitionStart, other.OnTransitionStart),
		OnTransitionSettle:    chain(h.OnTransitionSettle, other.OnTransitionSettle),
		OnTransitionSupersede: chain(h.OnTransitionSupersede, other.OnTransitionSupersede),
		OnAdvance:             chain(h.OnAdvance, other.OnAdvance),
		OnFlip:                chain(h.OnFlip, other.OnFlip),
	}
}

func chain[T any](a, b func(T)) func(T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e T) {
		a(e)
		b(e)
	}
}

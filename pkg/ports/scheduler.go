package ports

import "time"

// Token identifies a scheduled callback. The zero Token is never issued.
type Token uint64

// Scheduler is the host's cooperative scheduling mechanism.
// Implementations run callbacks one at a time and never run a callback
// whose token was cancelled before it started.
type Scheduler interface {
	// ScheduleFrame runs fn on the next animation frame.
	ScheduleFrame(fn func()) Token

	// ScheduleAfter runs fn once after d has elapsed.
	ScheduleAfter(d time.Duration, fn func()) Token

	// Cancel drops a pending callback. Unknown or spent tokens are ignored.
	Cancel(tok Token)
}

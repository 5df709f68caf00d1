package clock

import (
	"container/heap"
	"sync"
	"time"

	"github.com/aretw0/scramble/pkg/ports"
)

// Virtual is a scheduler over virtual time.
// Frames are due one frame interval after they are requested.
type Virtual struct {
	mu            sync.Mutex
	now           time.Duration
	frameInterval time.Duration
	seq           uint64
	queue         entryQueue
	live          map[ports.Token]*entry
}

var _ ports.Scheduler = (*Virtual)(nil)

// VirtualOption configures a Virtual scheduler.
type VirtualOption func(*Virtual)

// WithFrameInterval sets the virtual duration of one frame.
func WithFrameInterval(d time.Duration) VirtualOption {
	return func(v *Virtual) {
		if d > 0 {
			v.frameInterval = d
		}
	}
}

// NewVirtual creates a virtual scheduler starting at time zero.
func NewVirtual(opts ...VirtualOption) *Virtual {
	v := &Virtual{
		frameInterval: time.Second / 60,
		live:          make(map[ports.Token]*entry),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ScheduleFrame runs fn one frame interval from now.
func (v *Virtual) ScheduleFrame(fn func()) ports.Token {
	return v.push(v.frameInterval, fn, true)
}

// ScheduleAfter runs fn once d from now.
func (v *Virtual) ScheduleAfter(d time.Duration, fn func()) ports.Token {
	if d < 0 {
		d = 0
	}
	return v.push(d, fn, false)
}

// Cancel drops a pending callback.
func (v *Virtual) Cancel(tok ports.Token) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if e, ok := v.live[tok]; ok {
		heap.Remove(&v.queue, e.index)
		delete(v.live, tok)
	}
}

// Now returns the elapsed virtual time.
func (v *Virtual) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// FrameInterval returns the virtual duration of one frame.
func (v *Virtual) FrameInterval() time.Duration {
	return v.frameInterval
}

// Advance moves virtual time forward by d, running every callback that
// becomes due, including callbacks scheduled while advancing.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	target := v.now + d
	v.mu.Unlock()

	for {
		e := v.popDue(target)
		if e == nil {
			break
		}
		e.fn()
	}

	v.mu.Lock()
	if v.now < target {
		v.now = target
	}
	v.mu.Unlock()
}

// Step jumps to the next pending callback and runs it.
// It returns false when nothing is pending.
func (v *Virtual) Step() bool {
	v.mu.Lock()
	if v.queue.Len() == 0 {
		v.mu.Unlock()
		return false
	}
	e := heap.Pop(&v.queue).(*entry)
	delete(v.live, e.tok)
	v.now = e.due
	v.mu.Unlock()

	e.fn()
	return true
}

// RunUntilIdle steps until nothing is pending or limit callbacks ran.
// It returns the number of callbacks run.
func (v *Virtual) RunUntilIdle(limit int) int {
	n := 0
	for n < limit && v.Step() {
		n++
	}
	return n
}

// Pending returns the number of scheduled callbacks.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queue.Len()
}

// PendingFrames returns the number of scheduled frame callbacks.
func (v *Virtual) PendingFrames() int {
	return v.count(true)
}

// PendingTimers returns the number of scheduled one-shot timers.
func (v *Virtual) PendingTimers() int {
	return v.count(false)
}

func (v *Virtual) count(frames bool) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, e := range v.queue {
		if e.frame == frames {
			n++
		}
	}
	return n
}

func (v *Virtual) push(d time.Duration, fn func(), frame bool) ports.Token {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	e := &entry{
		tok:   ports.Token(v.seq),
		due:   v.now + d,
		fn:    fn,
		frame: frame,
	}
	heap.Push(&v.queue, e)
	v.live[e.tok] = e
	return e.tok
}

func (v *Virtual) popDue(target time.Duration) *entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.queue.Len() == 0 || v.queue[0].due > target {
		return nil
	}
	e := heap.Pop(&v.queue).(*entry)
	delete(v.live, e.tok)
	v.now = e.due
	return e
}

type entry struct {
	tok   ports.Token
	due   time.Duration
	fn    func()
	frame bool
	index int
}

// entryQueue orders entries by due time, then by scheduling order.
type entryQueue []*entry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].tok < q[j].tok
}

func (q entryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *entryQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

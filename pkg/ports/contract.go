package ports

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// SchedulerHarness builds a scheduler for the contract together with an
// advance function that lets at least d of scheduler time pass and runs
// every callback that became due.
type SchedulerHarness func(t *testing.T) (Scheduler, func(d time.Duration))

// RunSchedulerContract runs a suite of tests to verify that a Scheduler
// implementation adheres to the defined interface contract.
func RunSchedulerContract(t *testing.T, harness SchedulerHarness) {
	t.Run("ScheduleAfter runs once", func(t *testing.T) {
		sched, advance := harness(t)
		var rec recorder

		tok := sched.ScheduleAfter(20*time.Millisecond, func() { rec.add("timer") })
		assert.NotZero(t, tok, "tokens must be non-zero")

		advance(5 * time.Millisecond)
		assert.Empty(t, rec.get(), "timer must not run early")

		advance(50 * time.Millisecond)
		assert.Equal(t, []string{"timer"}, rec.get())

		advance(50 * time.Millisecond)
		assert.Equal(t, []string{"timer"}, rec.get(), "timer must run exactly once")
	})

	t.Run("Cancel prevents callback", func(t *testing.T) {
		sched, advance := harness(t)
		var rec recorder

		timer := sched.ScheduleAfter(20*time.Millisecond, func() { rec.add("timer") })
		frame := sched.ScheduleFrame(func() { rec.add("frame") })
		sched.Cancel(timer)
		sched.Cancel(frame)

		advance(100 * time.Millisecond)
		assert.Empty(t, rec.get())
	})

	t.Run("Cancel of spent or unknown token is ignored", func(t *testing.T) {
		sched, advance := harness(t)
		var rec recorder

		tok := sched.ScheduleFrame(func() { rec.add("frame") })
		advance(100 * time.Millisecond)

		assert.NotPanics(t, func() {
			sched.Cancel(tok)
			sched.Cancel(Token(987654321))
		})
		assert.Equal(t, []string{"frame"}, rec.get())
	})

	t.Run("Frames chained from callbacks run in order", func(t *testing.T) {
		sched, advance := harness(t)
		var rec recorder

		var step func(i int) func()
		step = func(i int) func() {
			return func() {
				rec.add(string(rune('a' + i)))
				if i < 3 {
					sched.ScheduleFrame(step(i + 1))
				}
			}
		}
		sched.ScheduleFrame(step(0))

		advance(500 * time.Millisecond)
		assert.Equal(t, []string{"a", "b", "c", "d"}, rec.get())
	})

	t.Run("Timers fire in deadline order", func(t *testing.T) {
		sched, advance := harness(t)
		var rec recorder

		sched.ScheduleAfter(60*time.Millisecond, func() { rec.add("late") })
		sched.ScheduleAfter(10*time.Millisecond, func() { rec.add("early") })

		advance(200 * time.Millisecond)
		assert.Equal(t, []string{"early", "late"}, rec.get())
	})
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

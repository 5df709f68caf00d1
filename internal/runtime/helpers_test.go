package runtime_test

import (
	"math/rand/v2"
	"testing"

	"github.com/aretw0/scramble/internal/runtime"
	"github.com/aretw0/scramble/pkg/adapters/clock"
	"github.com/aretw0/scramble/pkg/adapters/memory"
)

// scriptedRandom returns ints from a cycling script, clamped to the
// requested range, and a constant float.
type scriptedRandom struct {
	ints  []int
	next  int
	float float64
}

func (r *scriptedRandom) IntN(n int) int {
	v := r.ints[r.next%len(r.ints)]
	r.next++
	return min(v, n-1)
}

func (r *scriptedRandom) Float64() float64 { return r.float }

// fixed makes every window start at v and last v frames, and never rerolls.
func fixed(v int) *scriptedRandom {
	return &scriptedRandom{ints: []int{v}, float: 1}
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5eed))
}

type harness struct {
	sched    *clock.Virtual
	engine   *runtime.Engine
	recorder *memory.Recorder
}

func newHarness(t *testing.T, opts ...runtime.EngineOption) *harness {
	t.Helper()
	h := &harness{
		sched:    clock.NewVirtual(),
		recorder: memory.NewRecorder(0),
	}
	opts = append([]runtime.EngineOption{runtime.WithFrameSink(h.recorder)}, opts...)
	h.engine = runtime.NewEngine(h.sched, opts...)
	return h
}

// drain runs every pending callback.
func (h *harness) drain(t *testing.T) {
	t.Helper()
	const limit = 100000
	if n := h.sched.RunUntilIdle(limit); n == limit {
		t.Fatalf("scheduler did not go idle after %d callbacks", limit)
	}
}

package runtime_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/scramble/internal/runtime"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_SlotCountIsLongestText(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		slots    int
	}{
		{"grow", "", "abc", 3},
		{"shrink", "hello", "hi", 5},
		{"same length", "abcd", "wxyz", 4},
		{"runes", "é—x", "ab", 3},
		{"both empty", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, runtime.WithRandom(seeded(1)))
			h.engine.Show(tt.from)
			h.recorder.Reset()

			h.engine.SetText(tt.to)

			frames := h.recorder.Frames()
			require.NotEmpty(t, frames)
			assert.Equal(t, tt.slots, frames[0].Total)
			assert.Len(t, frames[0].Cells, tt.slots)
		})
	}
}

func TestEngine_WindowsUseSpreads(t *testing.T) {
	// Largest possible draws: scrambling from frame 39, settled at frame 78.
	h := newHarness(t, runtime.WithRandom(fixed(1000)), runtime.WithMarkup(render.Plain{}))
	h.engine.Show("ab")
	h.recorder.Reset()

	c := h.engine.SetText("abcd")
	h.drain(t)

	require.True(t, c.Settled())
	frames := h.recorder.Frames()
	require.Len(t, frames, 79)

	assert.Equal(t, "ab", frames[38].Text, "untouched slots keep the old characters")
	for _, cell := range frames[39].Cells {
		assert.Equal(t, domain.CellScrambling, cell.State)
	}
	assert.Equal(t, "____", frames[77].Text, "last glyph of the alphabet")
	assert.Equal(t, "abcd", frames[78].Text)
	assert.True(t, frames[78].Complete())
}

func TestEngine_SmallestWindowsSettleOnFirstFrame(t *testing.T) {
	h := newHarness(t, runtime.WithRandom(fixed(0)))

	c := h.engine.SetText("now")

	assert.True(t, c.Settled(), "frame 0 settles every slot")
	assert.Equal(t, "now", h.engine.Text())
	assert.Zero(t, h.sched.Pending())
}

func TestEngine_SettlesOnExactTarget(t *testing.T) {
	h := newHarness(t, runtime.WithRandom(seeded(42)))
	h.engine.Show("Hello")

	c := h.engine.SetText("World, again!")
	assert.True(t, h.engine.Active())
	assert.NotEmpty(t, h.engine.Session())

	h.drain(t)

	require.True(t, c.Settled())
	assert.NoError(t, c.Wait(context.Background()))
	assert.Equal(t, "World, again!", h.engine.Text())
	assert.Equal(t, "World, again!", h.engine.Markup())
	assert.False(t, h.engine.Active())
	assert.Empty(t, h.engine.Session())

	last, ok := h.recorder.Last()
	require.True(t, ok)
	assert.True(t, last.Complete())
}

func TestEngine_IdenticalTextStillScrambles(t *testing.T) {
	h := newHarness(t, runtime.WithRandom(fixed(3)), runtime.WithMarkup(render.Plain{}))
	h.engine.Show("same")
	h.recorder.Reset()

	c := h.engine.SetText("same")
	h.drain(t)

	require.True(t, c.Settled())
	texts := h.recorder.Texts()
	assert.Len(t, texts, 7)
	assert.Equal(t, "----", texts[3])
	assert.Equal(t, "same", texts[6])
}

func TestEngine_BothEmptySettlesSynchronously(t *testing.T) {
	h := newHarness(t)

	c := h.engine.SetText("")

	assert.True(t, c.Settled())
	assert.False(t, h.engine.Active())
	assert.Zero(t, h.sched.Pending())

	last, ok := h.recorder.Last()
	require.True(t, ok)
	assert.Zero(t, last.Total)
	assert.True(t, last.Complete())
}

func TestEngine_EmptyTargetErases(t *testing.T) {
	h := newHarness(t, runtime.WithRandom(seeded(7)))
	h.engine.Show("gone soon")

	c := h.engine.SetText("")
	h.drain(t)

	assert.True(t, c.Settled())
	assert.Empty(t, h.engine.Text())
}

func TestEngine_SupersedeAbandonsPrevious(t *testing.T) {
	h := newHarness(t, runtime.WithRandom(fixed(10)))

	first := h.engine.SetText("first")
	firstSession := h.engine.Session()
	ranThen := false
	first.Then(func() { ranThen = true })

	for range 3 {
		require.True(t, h.sched.Step())
	}

	second := h.engine.SetText("second")
	assert.Equal(t, 1, h.sched.PendingFrames(), "the superseded frame is cancelled")

	h.drain(t)

	assert.False(t, first.Settled())
	assert.False(t, ranThen)
	assert.ErrorIs(t, first.Wait(context.Background()), domain.ErrSuperseded)
	select {
	case <-first.Abandoned():
	default:
		t.Fatal("superseded completion must be abandoned")
	}

	assert.True(t, second.Settled())
	assert.Equal(t, "second", h.engine.Text())
	assert.Len(t, h.recorder.Session(firstSession), 4, "no frames after supersede")
}

func TestEngine_OldTextIncludesInterruptedGlyphs(t *testing.T) {
	var starts []*domain.TransitionEvent
	hooks := domain.LifecycleHooks{
		OnTransitionStart: func(e *domain.TransitionEvent) { starts = append(starts, e) },
	}
	h := newHarness(t, runtime.WithRandom(fixed(5)), runtime.WithLifecycleHooks(hooks))
	h.engine.Show("aaaa")

	h.engine.SetText("bbbb")
	for range 6 {
		require.True(t, h.sched.Step())
	}
	interrupted := h.engine.Text()
	assert.Equal(t, `\\\\`, interrupted)

	c := h.engine.SetText("cccc")
	h.drain(t)

	require.Len(t, starts, 2)
	assert.Equal(t, "aaaa", starts[0].From)
	assert.Equal(t, interrupted, starts[1].From)
	assert.True(t, c.Settled())
	assert.Equal(t, "cccc", h.engine.Text())
}

func TestEngine_MarkupWrapsGlyphs(t *testing.T) {
	rng := &scriptedRandom{ints: []int{0, 5, 0, 5, 1, 2}, float: 1}
	h := newHarness(t, runtime.WithRandom(rng))

	h.engine.SetText("ab")

	assert.Equal(t, "<>", h.engine.Text())
	assert.Equal(t, "<span>&lt;</span><span>&gt;</span>", h.engine.Markup())
}

func TestEngine_CustomMarkup(t *testing.T) {
	rng := &scriptedRandom{ints: []int{0, 5}, float: 1}
	m := render.Funcs{GlyphFunc: func(g string) string { return "(" + g + ")" }}
	h := newHarness(t, runtime.WithRandom(rng), runtime.WithMarkup(m), runtime.WithGlyphs("*"))

	h.engine.SetText("xy")

	assert.Equal(t, "**", h.engine.Text())
	assert.Equal(t, "(*)(*)", h.engine.Markup())
}

func TestEngine_ZeroRerollKeepsGlyph(t *testing.T) {
	h := newHarness(t,
		runtime.WithRandom(seeded(3)),
		runtime.WithRerollChance(0),
		runtime.WithSpreads(1, 30),
	)

	h.engine.SetText(strings.Repeat("z", 20))
	h.drain(t)

	seen := map[int]string{}
	for _, f := range h.recorder.Frames() {
		for i, cell := range f.Cells {
			if cell.State != domain.CellScrambling {
				continue
			}
			if g, ok := seen[i]; ok {
				assert.Equal(t, g, cell.Char, "slot %d changed glyph", i)
			}
			seen[i] = cell.Char
		}
	}
}

func TestEngine_GlyphDistributionIsUniform(t *testing.T) {
	const slots = 4000
	h := newHarness(t,
		runtime.WithRandom(seeded(99)),
		runtime.WithGlyphs("abcd"),
		runtime.WithSpreads(1, 1000),
	)

	h.engine.SetText(strings.Repeat("x", slots))

	frames := h.recorder.Frames()
	require.NotEmpty(t, frames)
	counts := map[string]int{}
	total := 0
	for _, cell := range frames[0].Cells {
		if cell.State == domain.CellScrambling {
			counts[cell.Char]++
			total++
		}
	}

	require.Greater(t, total, slots*9/10)
	for _, g := range []string{"a", "b", "c", "d"} {
		assert.InDelta(t, float64(total)/4, float64(counts[g]), 150, "glyph %q", g)
	}
}

func TestEngine_FramesRunInOrder(t *testing.T) {
	h := newHarness(t, runtime.WithRandom(seeded(5)))
	h.engine.SetText("ordered")
	h.drain(t)

	for i, f := range h.recorder.Frames() {
		assert.Equal(t, i, f.Index)
	}
}

func TestEngine_Hooks(t *testing.T) {
	var events []domain.EventType
	record := func(e *domain.TransitionEvent) { events = append(events, e.Type) }
	hooks := domain.LifecycleHooks{
		OnTransitionStart:     record,
		OnTransitionSettle:    record,
		OnTransitionSupersede: record,
	}
	h := newHarness(t, runtime.WithRandom(fixed(4)), runtime.WithLifecycleHooks(hooks))

	h.engine.SetText("one")
	h.engine.SetText("two")
	h.drain(t)

	assert.Equal(t, []domain.EventType{
		domain.EventTransitionStart,
		domain.EventTransitionSupersede,
		domain.EventTransitionStart,
		domain.EventTransitionSettle,
	}, events)
}

func TestEngine_HaltAndShow(t *testing.T) {
	h := newHarness(t, runtime.WithRandom(fixed(10)))

	c := h.engine.SetText("halted")
	h.sched.Step()
	h.engine.Halt()

	assert.False(t, h.engine.Active())
	assert.Zero(t, h.sched.Pending())
	assert.ErrorIs(t, c.Wait(context.Background()), domain.ErrSuperseded)

	h.engine.Show("A & B")
	assert.Equal(t, "A & B", h.engine.Text())
	assert.Equal(t, "A &amp; B", h.engine.Markup())

	last, ok := h.recorder.Last()
	require.True(t, ok)
	assert.Empty(t, last.Session)
	assert.True(t, last.Complete())
}

func TestEngine_SinkMayStartNextTransition(t *testing.T) {
	var engine *runtime.Engine
	chained := false
	h := newHarness(t, runtime.WithRandom(fixed(2)))
	engine = h.engine

	c := engine.SetText("one")
	c.Then(func() {
		chained = true
		engine.SetText("two")
	})
	h.drain(t)

	assert.True(t, chained)
	assert.Equal(t, "two", engine.Text())
	assert.False(t, engine.Active())
}

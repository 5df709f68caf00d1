package scramble_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aretw0/scramble"
	"github.com/aretw0/scramble/pkg/adapters/memory"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast keeps real-time transitions short.
func fast(opts ...scramble.Option) []scramble.Option {
	return append([]scramble.Option{
		scramble.WithFrameRate(500),
		scramble.WithSpreads(3, 3),
		scramble.WithRandom(rand.New(rand.NewPCG(1, 2))),
		scramble.WithMarkup(render.Plain{}),
	}, opts...)
}

func start(t *testing.T, opts ...scramble.Option) *scramble.Scrambler {
	t.Helper()
	s, err := scramble.New(fast(opts...)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		s.Stop()
		cancel()
	})
	require.NoError(t, s.Start(ctx))
	return s
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opt  scramble.Option
	}{
		{"negative hold", scramble.WithHold(-time.Second)},
		{"negative delay", scramble.WithInitialDelay(-1)},
		{"zero frame rate", scramble.WithFrameRate(0)},
		{"empty glyphs", scramble.WithGlyphs("")},
		{"zero spread", scramble.WithSpreads(0, 40)},
		{"reroll above one", scramble.WithRerollChance(1.5)},
		{"store without key", scramble.WithTextStore(memory.NewStore(), "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scramble.New(tt.opt)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestScrambler_StartShowsFirstName(t *testing.T) {
	s := start(t, scramble.WithNames("Ada", "Grace"), scramble.WithInitialDelay(time.Hour))

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", snap.Text)
	assert.Equal(t, []string{"Ada", "Grace"}, snap.Names)
	assert.Equal(t, 0, snap.Index)
	assert.False(t, snap.Animating)
	assert.Equal(t, domain.OrientationFront, snap.Orientation)
}

func TestScrambler_SetTextSettles(t *testing.T) {
	rec := memory.NewRecorder(0)
	s := start(t, scramble.WithFrameSink(rec))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := s.SetText(ctx, "Hello, world")
	require.NoError(t, err)
	require.NoError(t, c.Wait(ctx))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", snap.Text)
	assert.False(t, snap.Animating)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.True(t, last.Complete())
}

func TestScrambler_SupersededCompletion(t *testing.T) {
	s := start(t, scramble.WithSpreads(40, 40), scramble.WithRandom(rand.New(rand.NewPCG(9, 9))))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, err := s.SetText(ctx, "first")
	require.NoError(t, err)
	second, err := s.SetText(ctx, "second")
	require.NoError(t, err)

	assert.ErrorIs(t, first.Wait(ctx), domain.ErrSuperseded)
	assert.NoError(t, second.Wait(ctx))
}

func TestScrambler_NextNameFlipsCard(t *testing.T) {
	s := start(t, scramble.WithNames("A", "B", "C"), scramble.WithInitialDelay(time.Hour))
	ctx := context.Background()

	idx, err := s.NextName(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, domain.OrientationBack, s.Card().Orientation())

	require.Eventually(t, func() bool {
		snap, err := s.Snapshot(ctx)
		return err == nil && snap.Text == "B" && !snap.Animating
	}, 5*time.Second, 5*time.Millisecond)
}

func TestScrambler_AutoCycle(t *testing.T) {
	var advanced []string
	hooks := domain.LifecycleHooks{
		OnAdvance: func(e *domain.AdvanceEvent) { advanced = append(advanced, e.Name) },
	}
	s := start(t,
		scramble.WithNames("A", "B", "C"),
		scramble.WithInitialDelay(5*time.Millisecond),
		scramble.WithHold(5*time.Millisecond),
		scramble.WithLifecycleHooks(hooks),
	)
	ctx := context.Background()

	require.Eventually(t, func() bool {
		return s.Card().Flips() == 3
	}, 5*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		snap, err := s.Snapshot(ctx)
		return err == nil && snap.Text == "A" && !snap.Animating
	}, 5*time.Second, 5*time.Millisecond)

	// advanced is written on the loop; Snapshot above synchronized with it.
	assert.Equal(t, []string{"B", "C", "A"}, advanced)
}

func TestScrambler_RestoresAndSavesText(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.SaveText(ctx, "hero", "Restored"))

	s, err := scramble.New(fast(scramble.WithTextStore(store, "hero"))...)
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Restored", snap.Text)
	assert.Equal(t, []string{"Restored"}, snap.Names)

	c, err := s.SetText(ctx, "Saved")
	require.NoError(t, err)
	require.NoError(t, c.Wait(ctx))
	s.Stop()

	text, err := store.LoadText(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "Saved", text)
}

func TestScrambler_SetTextAndWaitSnapshotsSettledText(t *testing.T) {
	var s *scramble.Scrambler
	var raced bool
	// Start a competing transition as soon as the first one settles.
	racer := domain.LifecycleHooks{
		OnTransitionSettle: func(e *domain.TransitionEvent) {
			if e.To == "Grace" && !raced {
				raced = true
				go func() { _, _ = s.SetText(context.Background(), "Edsger") }()
			}
		},
	}
	s = start(t, scramble.WithLifecycleHooks(racer))
	ctx := context.Background()

	snap, err := s.SetTextAndWait(ctx, "Grace")
	require.NoError(t, err)
	assert.Equal(t, "Grace", snap.Text)
	assert.False(t, snap.Animating)
}

func TestScrambler_SetTextAndWaitSuperseded(t *testing.T) {
	s := start(t, scramble.WithSpreads(40, 40))
	ctx := context.Background()

	errs := make(chan error, 1)
	go func() {
		_, err := s.SetTextAndWait(ctx, "slow")
		errs <- err
	}()
	require.Eventually(t, func() bool {
		snap, err := s.Snapshot(ctx)
		return err == nil && snap.Animating
	}, time.Second, time.Millisecond)

	_, err := s.SetText(ctx, "fast")
	require.NoError(t, err)
	assert.ErrorIs(t, <-errs, domain.ErrSuperseded)
}

func TestScrambler_NamesTakePrecedenceOverRestoredText(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.SaveText(ctx, "hero", "Restored"))
	rec := memory.NewRecorder(0)

	s := start(t,
		scramble.WithNames("A", "B"),
		scramble.WithInitialDelay(time.Hour),
		scramble.WithTextStore(store, "hero"),
		scramble.WithFrameSink(rec),
	)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", snap.Text)
	assert.Equal(t, []string{"A", "B"}, snap.Names)
	assert.Equal(t, []string{"A"}, rec.Texts(), "the saved text must not flash before the first name")
}

func TestScrambler_StoppedRejectsCalls(t *testing.T) {
	s, err := scramble.New(fast()...)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	s.Stop()

	_, err = s.SetText(ctx, "late")
	assert.ErrorIs(t, err, domain.ErrNotRunning)
	_, err = s.NextName(ctx)
	assert.ErrorIs(t, err, domain.ErrNotRunning)
	assert.ErrorIs(t, s.Start(ctx), domain.ErrNotRunning)

	select {
	case <-s.Done():
	default:
		t.Fatal("Done must be closed after Stop")
	}
}

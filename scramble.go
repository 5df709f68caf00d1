package scramble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/internal/runtime"
	"github.com/aretw0/scramble/pkg/adapters/clock"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
	"github.com/aretw0/scramble/pkg/render"
)

// Scrambler is the high-level entry point of the library.
// It runs an engine and a sequencer on a private event loop, so every
// method is safe for concurrent use.
type Scrambler struct {
	names        []string
	initialDelay time.Duration
	hold         time.Duration
	frameRate    int
	glyphs       string
	startSpread  int
	settleSpread int
	reroll       float64
	markup       render.Markup
	random       ports.Random
	sinks        ports.MultiSink
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	store        ports.TextStore
	storeKey     string
	card         *domain.Card

	loop   *clock.Loop
	engine *runtime.Engine
	seq    *runtime.Sequencer

	mu      sync.Mutex
	started bool
	saves   chan string
	wg      sync.WaitGroup
}

// Option defines a functional option for configuring the Scrambler.
type Option func(*Scrambler)

// WithNames sets the texts the sequencer cycles through.
func WithNames(names ...string) Option {
	return func(s *Scrambler) {
		s.names = append([]string(nil), names...)
	}
}

// WithInitialDelay sets the pause before the first automatic transition.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Scrambler) {
		s.initialDelay = d
	}
}

// WithHold sets how long each settled name is displayed.
func WithHold(d time.Duration) Option {
	return func(s *Scrambler) {
		s.hold = d
	}
}

// WithFrameRate sets the number of frames rendered per second.
func WithFrameRate(fps int) Option {
	return func(s *Scrambler) {
		s.frameRate = fps
	}
}

// WithGlyphs sets the scramble alphabet.
func WithGlyphs(glyphs string) Option {
	return func(s *Scrambler) {
		s.glyphs = glyphs
	}
}

// WithSpreads sets the random ranges of the per-character timing windows.
func WithSpreads(start, settle int) Option {
	return func(s *Scrambler) {
		s.startSpread = start
		s.settleSpread = settle
	}
}

// WithRerollChance sets the per-frame probability of drawing a new glyph.
func WithRerollChance(p float64) Option {
	return func(s *Scrambler) {
		s.reroll = p
	}
}

// WithMarkup sets how scramble glyphs are decorated in frame markup.
func WithMarkup(m render.Markup) Option {
	return func(s *Scrambler) {
		s.markup = m
	}
}

// WithRandom injects the randomness source, e.g. a seeded *rand.Rand.
func WithRandom(r ports.Random) Option {
	return func(s *Scrambler) {
		s.random = r
	}
}

// WithFrameSink adds a consumer of rendered frames. It may be given more than once.
func WithFrameSink(sink ports.FrameSink) Option {
	return func(s *Scrambler) {
		s.sinks = append(s.sinks, sink)
	}
}

// WithLifecycleHooks registers observability hooks. Hooks from repeated
// calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Scrambler) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scrambler) {
		s.logger = logger
	}
}

// WithTextStore persists every settled text under key and restores it on Start.
func WithTextStore(store ports.TextStore, key string) Option {
	return func(s *Scrambler) {
		s.store = store
		s.storeKey = key
	}
}

// WithCard sets the companion card flipped before every transition.
func WithCard(card *domain.Card) Option {
	return func(s *Scrambler) {
		s.card = card
	}
}

// New validates the options and builds a stopped Scrambler.
func New(opts ...Option) (*Scrambler, error) {
	s := &Scrambler{
		initialDelay: domain.DefaultInitialDelay,
		hold:         domain.DefaultHold,
		frameRate:    domain.DefaultFrameRate,
		glyphs:       domain.DefaultGlyphs,
		startSpread:  domain.DefaultStartSpread,
		settleSpread: domain.DefaultSettleSpread,
		reroll:       domain.DefaultRerollChance,
		markup:       render.HTML{},
		storeKey:     "default",
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.card == nil {
		s.card = domain.NewCard("card")
	}
	if s.store != nil {
		s.saves = make(chan string, 1)
		s.hooks = s.hooks.Merge(domain.LifecycleHooks{OnTransitionSettle: s.queueSave})
	}

	s.loop = clock.NewLoop(clock.WithFrameRate(s.frameRate), clock.WithLoopLogger(s.logger))
	s.engine = runtime.NewEngine(s.loop,
		runtime.WithGlyphs(s.glyphs),
		runtime.WithSpreads(s.startSpread, s.settleSpread),
		runtime.WithRerollChance(s.reroll),
		runtime.WithMarkup(s.markup),
		runtime.WithRandom(s.random),
		runtime.WithFrameSink(s.sinks),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithLogger(s.logger),
	)
	s.seq = runtime.NewSequencer(s.engine, s.loop, s.names,
		runtime.WithInitialDelay(s.initialDelay),
		runtime.WithHold(s.hold),
		runtime.WithFlipper(s.card),
		runtime.WithSequencerHooks(s.hooks),
		runtime.WithSequencerLogger(s.logger),
	)
	return s, nil
}

func (s *Scrambler) validate() error {
	var errs []error
	if s.initialDelay < 0 {
		errs = append(errs, fmt.Errorf("initial delay must not be negative, got %s", s.initialDelay))
	}
	if s.hold < 0 {
		errs = append(errs, fmt.Errorf("hold must not be negative, got %s", s.hold))
	}
	if s.frameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame rate must be positive, got %d", s.frameRate))
	}
	if s.glyphs == "" {
		errs = append(errs, errors.New("glyph alphabet must not be empty"))
	}
	if s.startSpread <= 0 || s.settleSpread <= 0 {
		errs = append(errs, fmt.Errorf("spreads must be positive, got %d/%d", s.startSpread, s.settleSpread))
	}
	if s.reroll < 0 || s.reroll > 1 {
		errs = append(errs, fmt.Errorf("reroll chance must be within [0, 1], got %g", s.reroll))
	}
	if s.store != nil && s.storeKey == "" {
		errs = append(errs, errors.New("text store key must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Start runs the event loop and activates the sequencer. When a text store
// is configured and no names are, the last saved text is displayed and
// becomes the only name. Configured names always take precedence.
// The loop stops when ctx is cancelled. A stopped Scrambler cannot be restarted.
func (s *Scrambler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	select {
	case <-s.loop.Done():
		s.mu.Unlock()
		return domain.ErrNotRunning
	default:
	}
	s.started = true
	s.mu.Unlock()

	var (
		restored    string
		hasRestored bool
	)
	if len(s.seq.Names()) == 0 {
		restored, hasRestored = s.restore(ctx)
	}

	s.loop.Start(ctx)
	if s.saves != nil {
		s.wg.Add(1)
		go s.persist()
	}

	return s.loop.Call(ctx, func() {
		if hasRestored {
			s.engine.Show(restored)
		}
		s.seq.Activate()
		s.logger.Info("scrambler started", "names", len(s.seq.Names()))
	})
}

// Stop deactivates the sequencer and halts the event loop.
// Pending saves are flushed before Stop returns.
func (s *Scrambler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.loop.Call(ctx, s.seq.Deactivate); err != nil && !errors.Is(err, domain.ErrNotRunning) {
		s.logger.Warn("failed to deactivate sequencer", "error", err)
	}
	s.loop.Stop()
	<-s.loop.Exited()

	if s.saves != nil {
		close(s.saves)
		s.wg.Wait()
	}
	s.logger.Info("scrambler stopped")
}

// Done is closed once the event loop has stopped.
func (s *Scrambler) Done() <-chan struct{} {
	return s.loop.Done()
}

// SetText starts a transition to text. The returned completion settles when
// the text is fully displayed, or is abandoned if another transition starts first.
func (s *Scrambler) SetText(ctx context.Context, text string) (*domain.Completion, error) {
	var c *domain.Completion
	if err := s.loop.Call(ctx, func() { c = s.engine.SetText(text) }); err != nil {
		return nil, fmt.Errorf("set text: %w", err)
	}
	return c, nil
}

// SetTextAndWait starts a transition to text and blocks until it settles.
// The snapshot is taken on the event loop as the transition settles, so a
// transition started afterwards cannot show up in it. It returns
// domain.ErrSuperseded when another transition replaces this one first.
func (s *Scrambler) SetTextAndWait(ctx context.Context, text string) (domain.Snapshot, error) {
	settled := make(chan domain.Snapshot, 1)
	var c *domain.Completion
	err := s.loop.Call(ctx, func() {
		c = s.engine.SetText(text)
		c.Then(func() { settled <- s.snapshot() })
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("set text: %w", err)
	}
	if err := c.Wait(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	return <-settled, nil
}

// NextName advances the sequence immediately and returns the new index.
func (s *Scrambler) NextName(ctx context.Context) (int, error) {
	var idx int
	if err := s.loop.Call(ctx, func() { idx = s.seq.NextName() }); err != nil {
		return 0, fmt.Errorf("next name: %w", err)
	}
	return idx, nil
}

// Snapshot returns the displayed text and sequence position.
func (s *Scrambler) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := s.loop.Call(ctx, func() { snap = s.snapshot() }); err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	return snap, nil
}

// snapshot must run on the loop.
func (s *Scrambler) snapshot() domain.Snapshot {
	return domain.Snapshot{
		Text:        s.engine.Text(),
		Markup:      s.engine.Markup(),
		Session:     s.engine.Session(),
		Animating:   s.engine.Active(),
		Index:       s.seq.Index(),
		Names:       s.seq.Names(),
		Orientation: s.card.Orientation(),
	}
}

// Card returns the companion card.
func (s *Scrambler) Card() *domain.Card {
	return s.card
}

func (s *Scrambler) restore(ctx context.Context) (string, bool) {
	if s.store == nil {
		return "", false
	}
	text, err := s.store.LoadText(ctx, s.storeKey)
	if err != nil {
		if !errors.Is(err, domain.ErrTextNotFound) {
			s.logger.Warn("failed to restore text", "key", s.storeKey, "error", err)
		}
		return "", false
	}
	s.logger.Debug("restored text", "key", s.storeKey)
	return text, true
}

// queueSave runs on the loop; it keeps only the latest unsaved text.
func (s *Scrambler) queueSave(e *domain.TransitionEvent) {
	for {
		select {
		case s.saves <- e.To:
			return
		default:
		}
		select {
		case <-s.saves:
		default:
		}
	}
}

func (s *Scrambler) persist() {
	defer s.wg.Done()
	for text := range s.saves {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.SaveText(ctx, s.storeKey, text); err != nil {
			s.logger.Error("failed to save text", "key", s.storeKey, "error", err)
		}
		cancel()
	}
}

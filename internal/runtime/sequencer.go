package runtime

import (
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
)

// SequencerState is the phase of the cycle.
type SequencerState string

const (
	StateIdle                SequencerState = "idle"
	StateWaitingInitialDelay SequencerState = "waiting_initial_delay"
	StateTransitioning       SequencerState = "transitioning"
	StateHolding             SequencerState = "holding"
	StateResting             SequencerState = "resting"
)

// Sequencer cycles an engine through a list of names.
//
// After activation it shows the first name, waits the initial delay, then
// transitions to each following name, holding on each one. When the list is
// exhausted it transitions back to the first name and rests there.
// Like the Engine, it must only be used from the scheduler's goroutine.
type Sequencer struct {
	engine       *Engine
	sched        ports.Scheduler
	names        []string
	index        int
	initialDelay time.Duration
	hold         time.Duration
	flipper      ports.Flipper
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time

	active     bool
	timer      ports.Token
	timerState SequencerState
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithInitialDelay sets the pause between activation and the first transition.
func WithInitialDelay(d time.Duration) SequencerOption {
	return func(s *Sequencer) {
		if d >= 0 {
			s.initialDelay = d
		}
	}
}

// WithHold sets how long each settled name stays before the next transition.
func WithHold(d time.Duration) SequencerOption {
	return func(s *Sequencer) {
		if d >= 0 {
			s.hold = d
		}
	}
}

// WithFlipper sets the companion toggled before every transition.
func WithFlipper(f ports.Flipper) SequencerOption {
	return func(s *Sequencer) {
		s.flipper = f
	}
}

// WithSequencerHooks registers advance and flip hooks.
func WithSequencerHooks(hooks domain.LifecycleHooks) SequencerOption {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// WithSequencerLogger sets a custom structured logger.
func WithSequencerLogger(logger *slog.Logger) SequencerOption {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSequencer creates an idle sequencer over names.
// An empty list is resolved at activation from the engine's displayed text.
func NewSequencer(engine *Engine, sched ports.Scheduler, names []string, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		engine:       engine,
		sched:        sched,
		names:        append([]string(nil), names...),
		initialDelay: domain.DefaultInitialDelay,
		hold:         domain.DefaultHold,
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate shows the first name and, when there is more than one, starts
// the cycle after the initial delay. Activating twice is a no-op.
func (s *Sequencer) Activate() {
	if s.active {
		return
	}
	s.resolveNames()
	s.active = true
	s.index = 0
	s.engine.Show(s.names[0])

	if len(s.names) > 1 {
		s.arm(StateWaitingInitialDelay, s.initialDelay)
	}
	s.logger.Debug("sequencer activated", "names", len(s.names), "delay", s.initialDelay, "hold", s.hold)
}

// Deactivate cancels the pending timer and halts the transition in flight.
func (s *Sequencer) Deactivate() {
	if !s.active {
		return
	}
	s.active = false
	if s.timer != 0 {
		s.sched.Cancel(s.timer)
		s.timer = 0
	}
	s.engine.Halt()
	s.logger.Debug("sequencer deactivated", "index", s.index)
}

// NextName moves to the following name immediately, wrapping to the first.
// A pending hold timer is left in place and still fires.
// It returns the new index.
func (s *Sequencer) NextName() int {
	s.resolveNames()
	s.index = (s.index + 1) % len(s.names)
	s.advance(true, s.index == 0)
	return s.index
}

// State reports the current phase.
func (s *Sequencer) State() SequencerState {
	switch {
	case !s.active:
		return StateIdle
	case s.timer != 0:
		return s.timerState
	case s.engine.Active():
		return StateTransitioning
	default:
		return StateResting
	}
}

// Index returns the position of the current name.
func (s *Sequencer) Index() int { return s.index }

// Names returns a copy of the names list.
func (s *Sequencer) Names() []string {
	return append([]string(nil), s.names...)
}

// Current returns the name at the current index, or "" before activation.
func (s *Sequencer) Current() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[s.index]
}

func (s *Sequencer) resolveNames() {
	if len(s.names) == 0 {
		s.names = []string{strings.TrimSpace(s.engine.Text())}
	}
}

// cycle is the timer callback for both the initial delay and holds.
func (s *Sequencer) cycle() {
	s.timer = 0
	if !s.active {
		return
	}

	s.index++
	if s.index >= len(s.names) {
		s.index = 0
		s.advance(false, true)
		return
	}

	s.advance(false, false).Then(func() {
		if !s.active {
			return
		}
		s.arm(StateHolding, s.hold)
	})
}

// advance flips the companion and starts the transition to the current name.
func (s *Sequencer) advance(manual, wrap bool) *domain.Completion {
	name := s.names[s.index]
	ev := &domain.AdvanceEvent{
		EventBase: domain.EventBase{Timestamp: s.now(), Type: domain.EventFlip},
		Index:     s.index,
		Name:      name,
		Manual:    manual,
		Wrap:      wrap,
	}

	if s.flipper != nil {
		s.flipper.Flip()
	}
	if s.hooks.OnFlip != nil {
		s.hooks.OnFlip(ev)
	}

	s.logger.Debug("advancing", "index", s.index, "name", name, "manual", manual, "wrap", wrap)
	if s.hooks.OnAdvance != nil {
		adv := *ev
		adv.Type = domain.EventAdvance
		s.hooks.OnAdvance(&adv)
	}

	return s.engine.SetText(name)
}

func (s *Sequencer) arm(state SequencerState, d time.Duration) {
	s.timerState = state
	s.timer = s.sched.ScheduleAfter(d, s.cycle)
}

package runtime

import (
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/aretw0/scramble/internal/logging"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
	"github.com/aretw0/scramble/pkg/render"
	"github.com/google/uuid"
)

// Engine animates the displayed text from one string to another.
//
// Every method must be called from the scheduler's goroutine: the engine
// holds no locks and relies on the scheduler to serialize frame callbacks
// with external calls.
type Engine struct {
	sched        ports.Scheduler
	rng          ports.Random
	glyphs       []string
	startSpread  int
	settleSpread int
	reroll       float64
	markup       render.Markup
	sink         ports.FrameSink
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time

	text    string
	marked  string
	session *session
}

// session is one transition from the text displayed at SetText time to a target.
type session struct {
	id         string
	from, to   string
	frame      int
	slots      []domain.Slot
	completion *domain.Completion
	token      ports.Token
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRandom sets the source used for timing windows and glyph choices.
func WithRandom(r ports.Random) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithGlyphs sets the scramble alphabet. Empty alphabets are ignored.
func WithGlyphs(glyphs string) EngineOption {
	return func(e *Engine) {
		if glyphs != "" {
			e.glyphs = strings.Split(glyphs, "")
		}
	}
}

// WithSpreads sets the random ranges for the frame a slot starts scrambling
// and for how many frames it keeps scrambling. Non-positive values are ignored.
func WithSpreads(start, settle int) EngineOption {
	return func(e *Engine) {
		if start > 0 {
			e.startSpread = start
		}
		if settle > 0 {
			e.settleSpread = settle
		}
	}
}

// WithRerollChance sets the per-frame probability of a scrambling slot
// drawing a fresh glyph.
func WithRerollChance(p float64) EngineOption {
	return func(e *Engine) {
		if p >= 0 && p <= 1 {
			e.reroll = p
		}
	}
}

// WithMarkup sets the decoration applied to frame markup.
func WithMarkup(m render.Markup) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.markup = m
		}
	}
}

// WithFrameSink sets the consumer of rendered frames.
// Use ports.MultiSink to fan out to several consumers.
func WithFrameSink(s ports.FrameSink) EngineOption {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine that schedules its frames on sched.
func NewEngine(sched ports.Scheduler, opts ...EngineOption) *Engine {
	e := &Engine{
		sched:        sched,
		rng:          globalRandom{},
		glyphs:       strings.Split(domain.DefaultGlyphs, ""),
		startSpread:  domain.DefaultStartSpread,
		settleSpread: domain.DefaultSettleSpread,
		reroll:       domain.DefaultRerollChance,
		markup:       render.HTML{},
		logger:       logging.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetText starts a transition from the currently displayed text to target.
// Any transition in flight is superseded and its completion abandoned.
// Frame 0 is rendered before SetText returns.
func (e *Engine) SetText(target string) *domain.Completion {
	e.supersede()

	from := e.text
	oldRunes, newRunes := []rune(from), []rune(target)
	slots := make([]domain.Slot, max(len(oldRunes), len(newRunes)))
	for i := range slots {
		if i < len(oldRunes) {
			slots[i].From = string(oldRunes[i])
		}
		if i < len(newRunes) {
			slots[i].To = string(newRunes[i])
		}
		slots[i].Start = e.rng.IntN(e.startSpread)
		slots[i].End = slots[i].Start + e.rng.IntN(e.settleSpread)
	}

	s := &session{
		id:         uuid.NewString(),
		from:       from,
		to:         target,
		slots:      slots,
		completion: domain.NewCompletion(),
	}
	e.session = s

	e.logger.Debug("transition started", "session", s.id, "slots", len(slots))
	if e.hooks.OnTransitionStart != nil {
		e.hooks.OnTransitionStart(e.event(domain.EventTransitionStart, s, 0))
	}

	completion := s.completion
	e.update(s)
	return completion
}

// Show replaces the displayed text without animating.
func (e *Engine) Show(text string) {
	e.supersede()
	e.text = text
	e.marked = e.markup.Plain(text)

	if e.sink == nil {
		return
	}
	cells := make([]domain.Cell, 0, len(text))
	for _, r := range text {
		cells = append(cells, domain.Cell{Char: string(r), State: domain.CellSettled})
	}
	e.sink.Render(domain.Frame{
		Text:    e.text,
		Markup:  e.marked,
		Cells:   cells,
		Settled: len(cells),
		Total:   len(cells),
	})
}

// Halt stops the transition in flight, leaving its last frame displayed.
func (e *Engine) Halt() {
	e.supersede()
}

// Text returns the displayed plain text.
func (e *Engine) Text() string { return e.text }

// Markup returns the displayed text with scramble glyphs decorated.
func (e *Engine) Markup() string { return e.marked }

// Active reports whether a transition is in flight.
func (e *Engine) Active() bool { return e.session != nil }

// Session returns the ID of the transition in flight, or "".
func (e *Engine) Session() string {
	if e.session == nil {
		return ""
	}
	return e.session.id
}

func (e *Engine) update(s *session) {
	if e.session != s {
		return
	}
	s.token = 0

	var plain, marked strings.Builder
	cells := make([]domain.Cell, len(s.slots))
	settled := 0

	for i := range s.slots {
		slot := &s.slots[i]
		state := slot.StateAt(s.frame)
		switch state {
		case domain.CellSettled:
			settled++
			plain.WriteString(slot.To)
			marked.WriteString(e.markup.Plain(slot.To))
			cells[i] = domain.Cell{Char: slot.To, State: state}
		case domain.CellScrambling:
			if slot.Glyph == "" || e.rng.Float64() < e.reroll {
				slot.Glyph = e.glyphs[e.rng.IntN(len(e.glyphs))]
			}
			plain.WriteString(slot.Glyph)
			marked.WriteString(e.markup.Glyph(slot.Glyph))
			cells[i] = domain.Cell{Char: slot.Glyph, State: state}
		default:
			plain.WriteString(slot.From)
			marked.WriteString(e.markup.Plain(slot.From))
			cells[i] = domain.Cell{Char: slot.From, State: state}
		}
	}

	e.text = plain.String()
	e.marked = marked.String()

	if e.sink != nil {
		e.sink.Render(domain.Frame{
			Session: s.id,
			Index:   s.frame,
			Text:    e.text,
			Markup:  e.marked,
			Cells:   cells,
			Settled: settled,
			Total:   len(s.slots),
		})
		// A sink may have started another transition.
		if e.session != s {
			return
		}
	}

	if settled == len(s.slots) {
		e.session = nil
		completion := s.completion
		s.completion = nil

		e.logger.Debug("transition settled", "session", s.id, "frames", s.frame+1)
		if e.hooks.OnTransitionSettle != nil {
			e.hooks.OnTransitionSettle(e.event(domain.EventTransitionSettle, s, s.frame+1))
		}
		completion.Settle()
		return
	}

	s.frame++
	s.token = e.sched.ScheduleFrame(func() { e.update(s) })
}

func (e *Engine) supersede() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil
	if s.token != 0 {
		e.sched.Cancel(s.token)
		s.token = 0
	}
	if s.completion != nil {
		s.completion.Abandon()
		s.completion = nil
	}

	e.logger.Debug("transition superseded", "session", s.id, "frames", s.frame)
	if e.hooks.OnTransitionSupersede != nil {
		e.hooks.OnTransitionSupersede(e.event(domain.EventTransitionSupersede, s, s.frame))
	}
}

func (e *Engine) event(typ domain.EventType, s *session, frames int) *domain.TransitionEvent {
	return &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: typ},
		Session:   s.id,
		From:      s.from,
		To:        s.to,
		Slots:     len(s.slots),
		Frames:    frames,
	}
}

// globalRandom draws from the package-level math/rand/v2 source.
type globalRandom struct{}

func (globalRandom) IntN(n int) int   { return rand.IntN(n) }
func (globalRandom) Float64() float64 { return rand.Float64() }

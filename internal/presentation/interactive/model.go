package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/scramble/internal/runtime"
	"github.com/aretw0/scramble/pkg/domain"
	"github.com/aretw0/scramble/pkg/ports"
	"github.com/aretw0/scramble/pkg/render"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa"))
	glyphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d399")).Faint(true)
	textStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	inputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6366f1")).
			Padding(1, 4)
	backBoxStyle = boxStyle.BorderForeground(lipgloss.Color("#f472b6"))
)

// Markup styles scrambling glyphs with lipgloss.
func Markup() render.Markup {
	return render.Funcs{
		GlyphFunc: func(g string) string { return glyphStyle.Render(g) },
		PlainFunc: func(s string) string {
			if s == "" {
				return ""
			}
			return textStyle.Render(s)
		},
	}
}

// Options configures a Model.
type Options struct {
	Names     []string
	FrameRate int
	Engine    []runtime.EngineOption
	Sequencer []runtime.SequencerOption
	// Sink receives every frame in addition to the view.
	Sink ports.FrameSink
	// Clipboard defaults to the system clipboard.
	Clipboard Clipboard
}

// Model is the bubbletea model of the interactive host.
type Model struct {
	sched  *Scheduler
	engine *runtime.Engine
	seq    *runtime.Sequencer
	card   *domain.Card
	clip   Clipboard

	notice   string
	frame    domain.Frame
	width    int
	height   int
	editing  bool
	input    []rune
	quitting bool
}

// New builds a model; the sequencer activates in Init.
func New(opts Options) *Model {
	return NewWithScheduler(NewScheduler(opts.FrameRate), opts)
}

// NewWithScheduler builds a model on an existing scheduler.
func NewWithScheduler(sched *Scheduler, opts Options) *Model {
	m := &Model{
		sched: sched,
		card:  domain.NewCard("tui"),
		clip:  opts.Clipboard,
	}
	if m.clip == nil {
		m.clip = systemClipboard{}
	}
	sink := ports.MultiSink{ports.FrameSinkFunc(func(f domain.Frame) { m.frame = f }), opts.Sink}

	engineOpts := append([]runtime.EngineOption{runtime.WithMarkup(Markup())}, opts.Engine...)
	engineOpts = append(engineOpts, runtime.WithFrameSink(sink))
	m.engine = runtime.NewEngine(sched, engineOpts...)

	seqOpts := append([]runtime.SequencerOption{}, opts.Sequencer...)
	seqOpts = append(seqOpts, runtime.WithFlipper(m.card))
	m.seq = runtime.NewSequencer(m.engine, sched, opts.Names, seqOpts...)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.seq.Activate()
	return m.sched.Drain()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fireMsg:
		m.sched.fire(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if m.editing {
			m.edit(msg)
			break
		}
		m.notice = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.seq.Deactivate()
			return m, tea.Quit
		case "n", " ", "right", "l":
			m.seq.NextName()
		case "r":
			m.seq.Deactivate()
			m.seq.Activate()
		case "e", "enter":
			m.editing = true
			m.input = m.input[:0]
		case "y":
			if err := m.clip.WriteAll(m.engine.Text()); err != nil {
				m.notice = "copy failed: " + err.Error()
			} else {
				m.notice = "copied"
			}
		}
	}
	return m, m.sched.Drain()
}

func (m *Model) edit(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEscape:
		m.editing = false
	case tea.KeyEnter:
		m.editing = false
		m.engine.SetText(string(m.input))
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyCtrlV:
		if text, err := m.clip.ReadAll(); err == nil {
			// Only the first line: the reveal runs on a single line.
			text, _, _ = strings.Cut(text, "\n")
			m.input = append(m.input, []rune(strings.TrimRight(text, "\r"))...)
		}
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	box := boxStyle
	if m.card.Orientation() == domain.OrientationBack {
		box = backBoxStyle
	}
	text := m.engine.Markup()
	if text == "" {
		text = " "
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("scramble"))
	b.WriteString("\n\n")
	b.WriteString(box.Render(text))
	b.WriteString("\n\n")

	names := m.seq.Names()
	status := fmt.Sprintf("%d/%d · %s · card %s · frame %d",
		m.seq.Index()+1, max(len(names), 1), m.seq.State(), m.card.Orientation(), m.frame.Index)
	b.WriteString(dimStyle.Render(status))
	b.WriteString("\n")

	if m.editing {
		b.WriteString(inputStyle.Render("text> " + string(m.input) + "█"))
	} else {
		help := "n next · e edit · y copy · r restart · q quit"
		if m.notice != "" {
			help = m.notice
		}
		b.WriteString(dimStyle.Render(help))
	}

	view := b.String()
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

// Text returns the displayed plain text.
func (m *Model) Text() string { return m.engine.Text() }

// Card returns the companion card.
func (m *Model) Card() *domain.Card { return m.card }

// Run starts a full-screen program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run interactive: %w", err)
	}
	return nil
}

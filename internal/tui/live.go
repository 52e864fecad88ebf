// Package tui is the live terminal viewer: it steps a simulation on a timer
// and redraws the record probe as it evolves.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mnasim/internal/linalg"
	"github.com/san-kum/mnasim/internal/sim"
	"github.com/san-kum/mnasim/internal/viz"
)

const (
	historyCapacity = 600
	maxSpeed        = 64
)

type Model struct {
	sim    *sim.Simulator
	cfg    sim.Config
	styles viz.Styles

	x       *linalg.Vector[float64]
	step    int
	history []float64
	series  []float64

	paused bool
	done   bool
	speed  int
	err    error

	width  int
	height int
}

// New sets s up with cfg and returns a viewer positioned at the cold start.
func New(s *sim.Simulator, cfg sim.Config, theme string) (Model, error) {
	if err := s.Setup(cfg); err != nil {
		return Model{}, err
	}
	return Model{
		sim:    s,
		cfg:    cfg,
		styles: viz.DefaultStyles(viz.GetTheme(theme)),
		x:      s.InitialState(),
		speed:  1,
		width:  80,
		height: 24,
	}, nil
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && !m.done {
			for i := 0; i < m.speed && !m.done; i++ {
				m.advance()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.reset()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	}
	return m, nil
}

func (m *Model) reset() {
	m.x = m.sim.InitialState()
	m.step = 0
	m.history = nil
	m.series = nil
	m.done = false
	m.err = nil
}

func (m Model) simTime() float64 { return float64(m.step) * m.cfg.H }

// advance records the current state and solves for the next, mirroring one
// iteration of the batch loop.
func (m *Model) advance() {
	if m.simTime() >= m.cfg.TMax {
		m.done = true
		return
	}

	c := m.sim.Circuit()
	state := sim.State(m.x.Data())
	m.history = appendCapped(m.history, state[c.Record.Index])
	if len(c.Plot) > 0 {
		m.series = appendCapped(m.series, state[c.Plot[0].Index])
	}

	next, err := m.sim.Step(m.x)
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	if m.cfg.ValidateState && !sim.State(next.Data()).IsValid() {
		m.err = sim.ErrInvalidState
		m.done = true
		return
	}
	m.x = next
	m.step++
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[len(h)-historyCapacity:]
	}
	return h
}

func (m Model) View() string {
	s := m.styles
	c := m.sim.Circuit()
	var b strings.Builder

	status := s.Running.Render("● running")
	switch {
	case m.err != nil:
		status = s.Error.Render("✗ " + m.err.Error())
	case m.done:
		status = s.Muted.Render("■ done")
	case m.paused:
		status = s.Paused.Render("○ paused")
	}
	b.WriteString(fmt.Sprintf("\n %s  %s  %s\n", s.Title.Render(c.Name), status, s.Muted.Render(fmt.Sprintf("x%d", m.speed))))

	progress := m.simTime() / m.cfg.TMax
	b.WriteString(fmt.Sprintf(" %s %s\n\n",
		s.Graph.Render(viz.ProgressBar(progress, 36)),
		s.Muted.Render(fmt.Sprintf("%.3fs/%.3fs", m.simTime(), m.cfg.TMax))))

	if len(m.history) > 1 {
		gw := max(m.width-20, 30)
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(max(m.height-16, 6)),
			asciigraph.Width(gw),
			asciigraph.Caption(c.Label(c.Record.Index)),
		)
		b.WriteString(s.Graph.Render(chart) + "\n\n")
	}

	if len(m.series) > 1 {
		b.WriteString(fmt.Sprintf(" %s %s\n", s.Label.Render(c.Plot[0].Label), s.Graph.Render(viz.Sparkline(m.series, 40))))
	}

	for i, v := range m.x.Data() {
		b.WriteString(s.Label.Render(" "+c.Label(i)) + s.Value.Render(linalg.FormatScalar(v)) + "\n")
	}

	b.WriteString("\n" + s.Muted.Render(" space pause  +/- speed  r reset  q quit") + "\n")
	return b.String()
}

// Run shows the viewer until the user quits.
func Run(s *sim.Simulator, cfg sim.Config, theme string) error {
	m, err := New(s, cfg, theme)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/sim"
)

func newModel(t *testing.T) Model {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.TMax = 0.01
	m, err := New(sim.New(circuit.DCMotor(circuit.DefaultMotorParams(), cfg.H)), cfg, "minimal")
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTickAdvances(t *testing.T) {
	m := newModel(t)
	m, cmd := update(t, m, tickMsg(time.Now()))
	if cmd == nil {
		t.Error("expected another tick")
	}
	if m.step != 1 {
		t.Errorf("expected step 1, got %d", m.step)
	}
	if len(m.history) != 1 || m.history[0] != 0 {
		t.Errorf("expected cold start in history, got %v", m.history)
	}
}

func TestRunsToCompletion(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 20; i++ {
		m, _ = update(t, m, tickMsg(time.Now()))
	}
	if !m.done {
		t.Error("expected run to finish")
	}
	if m.step != 10 {
		t.Errorf("expected 10 steps, got %d", m.step)
	}
	if len(m.history) != 10 {
		t.Errorf("expected 10 history points, got %d", len(m.history))
	}
	if m.err != nil {
		t.Errorf("unexpected error %v", m.err)
	}
}

func TestPauseAndReset(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, key(" "))
	if !m.paused {
		t.Fatal("expected paused")
	}
	m, _ = update(t, m, tickMsg(time.Now()))
	if m.step != 0 {
		t.Errorf("paused model advanced to step %d", m.step)
	}

	m, _ = update(t, m, key(" "))
	m, _ = update(t, m, tickMsg(time.Now()))
	m, _ = update(t, m, key("r"))
	if m.step != 0 || m.history != nil {
		t.Errorf("reset left step %d, history %v", m.step, m.history)
	}
}

func TestSpeed(t *testing.T) {
	m := newModel(t)
	m, _ = update(t, m, key("+"))
	m, _ = update(t, m, key("+"))
	if m.speed != 4 {
		t.Fatalf("expected speed 4, got %d", m.speed)
	}
	m, _ = update(t, m, tickMsg(time.Now()))
	if m.step != 4 {
		t.Errorf("expected 4 steps per tick, got %d", m.step)
	}
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, key("-"))
	}
	if m.speed != 1 {
		t.Errorf("expected speed floor 1, got %d", m.speed)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, tickMsg(time.Now()))
	}
	out := m.View()
	for _, want := range []string{"dc_motor", "wr", "ia", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryMatchesBatchRun(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, tickMsg(time.Now()))
	}

	cfg := sim.DefaultConfig()
	cfg.TMax = 0.01
	res, err := sim.New(circuit.DCMotor(circuit.DefaultMotorParams(), cfg.H)).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("batch run: %v", err)
	}

	if len(m.history) != len(res.Samples) || len(m.series) != len(res.Samples) {
		t.Fatalf("expected %d points, got %d and %d", len(res.Samples), len(m.history), len(m.series))
	}
	for i, smp := range res.Samples {
		if m.history[i] != smp.Record || m.series[i] != smp.Series[0] {
			t.Errorf("sample %d: live (%g, %g), batch (%g, %g)", i, m.history[i], m.series[i], smp.Record, smp.Series[0])
		}
	}
}

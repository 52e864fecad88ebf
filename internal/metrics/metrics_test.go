package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/sim"
)

func samples(values ...float64) []sim.Sample {
	out := make([]sim.Sample, len(values))
	for i, v := range values {
		out[i] = sim.Sample{Step: i, Time: float64(i) * 0.5, Record: v, State: sim.State{v}}
	}
	return out
}

func feed(m sim.Metric, ss []sim.Sample) {
	for _, s := range ss {
		m.Observe(s)
	}
}

func TestPeak(t *testing.T) {
	m := NewPeak()
	feed(m, samples(0, 1, -3, 2))
	if m.Value() != 3 {
		t.Errorf("expected peak 3, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero peak after reset")
	}
}

func TestFinal(t *testing.T) {
	m := NewFinal()
	feed(m, samples(1, 2, 4))
	if m.Value() != 4 {
		t.Errorf("expected final 4, got %f", m.Value())
	}
}

func TestMean(t *testing.T) {
	m := NewMean()
	if m.Value() != 0 {
		t.Error("expected zero mean with no samples")
	}
	feed(m, samples(1, -3, 2))
	if math.Abs(m.Value()-2) > 1e-12 {
		t.Errorf("expected mean 2, got %f", m.Value())
	}
}

func TestSettlingTime(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"no samples", nil, -1},
		{"constant", []float64{5, 5, 5}, 0},
		{"rise then hold", []float64{0, 0.5, 0.99, 1, 1}, 1.0},
		{"overshoot", []float64{0, 1.5, 0.9, 1.01, 1}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSettlingTime(0.02)
			feed(m, samples(tt.values...))
			if got := m.Value(); got != tt.want {
				t.Errorf("expected settling time %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCopperLoss(t *testing.T) {
	m := NewCopperLoss(0.5, 0)
	// 2 A through 0.5 Ω for two 0.5 s intervals
	feed(m, samples(2, 2, 2))
	if math.Abs(m.Value()-2.0) > 1e-12 {
		t.Errorf("expected 2 J, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestInputEnergyIgnoresMissingIndex(t *testing.T) {
	m := NewInputEnergy(10, 3)
	feed(m, samples(1, 1))
	if m.Value() != 0 {
		t.Errorf("expected 0, got %f", m.Value())
	}
}

func TestBounded(t *testing.T) {
	m := NewBounded(1)
	if m.Value() != 1 || m.FirstEscape() != -1 {
		t.Error("expected fully bounded with no samples")
	}
	feed(m, samples(0.5, 2, 0.1, -5))
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
	if m.FirstEscape() != 0.5 {
		t.Errorf("expected first escape at 0.5, got %f", m.FirstEscape())
	}

	m.Reset()
	feed(m, samples(math.NaN(), math.Inf(-1), 0))
	if math.Abs(m.Value()-1.0/3) > 1e-12 {
		t.Errorf("NaN and Inf should be out of bounds, got %f", m.Value())
	}
}

func TestForMotorNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range ForMotor(circuit.DefaultMotorParams()) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	for _, name := range []string{"peak", "final", "settling_time", "copper_loss"} {
		if !seen[name] {
			t.Errorf("missing metric %s", name)
		}
	}
	if len(Default()) >= len(seen) {
		t.Error("default set should be smaller than the motor set")
	}
}

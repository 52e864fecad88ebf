package sim

import (
	"math"

	"github.com/san-kum/mnasim/internal/linalg"
)

// State is a snapshot of the MNA unknowns.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sample is what the driver emits once per step, before solving.
type Sample struct {
	Step   int
	Time   float64
	Record float64   // value of the circuit's record probe
	Series []float64 // values of the plot probes, by series id
	State  State
}

// Observer receives the assembled system once and every emitted sample.
type Observer interface {
	OnSetup(g *linalg.Matrix[float64]) error
	OnSample(s Sample) error
	OnFinish() error
}

// Plotter is the plotting sink: labels once, rows during the run, one
// render at the end.
type Plotter interface {
	SetLabels(xLabel, yLabel string)
	AddRow(x float64, series int, y float64)
	Plot() error
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Config struct {
	H               float64
	TMax            float64
	Solver          string
	LenientSingular bool
	ValidateState   bool
	XLabel          string
	YLabel          string
}

func DefaultConfig() Config {
	return Config{
		H:             0.001,
		TMax:          1.0,
		Solver:        "cached",
		ValidateState: true,
		XLabel:        "Wr(Angular Frequency)",
		YLabel:        "ia (A)",
	}
}

type Result struct {
	Times      []float64
	States     []State
	Samples    []Sample
	Final      State
	Metrics    map[string]float64
	StepsTaken int
	Solver     string
}

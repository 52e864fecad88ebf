package metrics

import (
	"github.com/san-kum/mnasim/internal/sim"
)

// Energy integrates a power signal derived from the state over time with the
// rectangle rule, using the spacing between successive samples.
type Energy struct {
	name    string
	power   func(x sim.State) float64
	total   float64
	lastT   float64
	samples int
}

// NewCopperLoss integrates ia²·Ra, the heat dissipated in the armature.
func NewCopperLoss(ra float64, current int) *Energy {
	return &Energy{
		name: "copper_loss",
		power: func(x sim.State) float64 {
			if current >= len(x) {
				return 0
			}
			return x[current] * x[current] * ra
		},
	}
}

// NewInputEnergy integrates v·i, the energy drawn from a supply.
func NewInputEnergy(v float64, current int) *Energy {
	return &Energy{
		name: "input_energy",
		power: func(x sim.State) float64 {
			if current >= len(x) {
				return 0
			}
			return v * x[current]
		},
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s sim.Sample) {
	if e.samples > 0 {
		e.total += e.power(s.State) * (s.Time - e.lastT)
	}
	e.lastT = s.Time
	e.samples++
}

func (e *Energy) Value() float64 { return e.total }

func (e *Energy) Reset() {
	e.total = 0
	e.lastT = 0
	e.samples = 0
}

package metrics

import (
	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/sim"
)

// ForMotor returns the metric set reported for DC motor runs.
func ForMotor(p circuit.MotorParams) []sim.Metric {
	return []sim.Metric{
		NewPeak(),
		NewFinal(),
		NewMean(),
		NewSettlingTime(0.02),
		NewCopperLoss(p.Ra, circuit.MotorCurrent),
		NewInputEnergy(p.Va, circuit.MotorCurrent),
		NewBounded(1e6),
	}
}

// Default returns the metrics that only depend on the record probe.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPeak(),
		NewFinal(),
		NewMean(),
		NewSettlingTime(0.02),
		NewBounded(1e6),
	}
}

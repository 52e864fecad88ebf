package viz

import (
	"errors"

	"github.com/san-kum/mnasim/internal/sim"
)

var _ sim.Plotter = Multi(nil)

// Multi forwards every call to each plotter in order.
type Multi []sim.Plotter

func (m Multi) SetLabels(xLabel, yLabel string) {
	for _, p := range m {
		p.SetLabels(xLabel, yLabel)
	}
}

func (m Multi) AddRow(x float64, series int, y float64) {
	for _, p := range m {
		p.AddRow(x, series, y)
	}
}

// Plot renders every plotter and joins their errors.
func (m Multi) Plot() error {
	var errs []error
	for _, p := range m {
		if err := p.Plot(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

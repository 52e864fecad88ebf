package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a non-positive step or horizon.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrNotSetup indicates Step was called before Setup.
	ErrNotSetup = errors.New("sim: simulator not set up")

	// ErrInvalidState indicates a solution containing NaN or Inf.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
)

// SimulationError wraps a failure with the step it occurred in.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("sim: step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

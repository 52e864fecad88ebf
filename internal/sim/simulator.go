package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/linalg"
	"github.com/san-kum/mnasim/internal/solve"
)

// Simulator drives the fixed-step MNA loop for one circuit.
type Simulator struct {
	circuit   *circuit.Circuit
	metrics   []Metric
	observers []Observer
	plotters  []Plotter

	g      *linalg.Matrix[float64]
	solver solve.Solver
	b      *linalg.Vector[float64]
}

func New(c *circuit.Circuit) *Simulator {
	return &Simulator{
		circuit:   c,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		plotters:  make([]Plotter, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) AddPlotter(p Plotter)   { s.plotters = append(s.plotters, p) }

func (s *Simulator) Circuit() *circuit.Circuit { return s.circuit }

// Matrix returns a copy of the assembled system matrix, or nil before Setup.
func (s *Simulator) Matrix() *linalg.Matrix[float64] {
	if s.g == nil {
		return nil
	}
	return s.g.Clone()
}

// Solver returns the solver chosen by Setup.
func (s *Simulator) Solver() solve.Solver { return s.solver }

// MaxSteps bounds the number of steps one run may take.
const MaxSteps = 1 << 30

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func validateConfig(cfg Config) error {
	if !finitePositive(cfg.H) {
		return fmt.Errorf("%w: h must be positive and finite, got %g", ErrInvalidConfig, cfg.H)
	}
	if !finitePositive(cfg.TMax) {
		return fmt.Errorf("%w: tmax must be positive and finite, got %g", ErrInvalidConfig, cfg.TMax)
	}
	if cfg.TMax/cfg.H > MaxSteps {
		return fmt.Errorf("%w: tmax/h exceeds %d steps", ErrInvalidConfig, MaxSteps)
	}
	return nil
}

// Setup assembles G, builds the solver and notifies observers and plotters.
// It runs once per simulation.
func (s *Simulator) Setup(cfg Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	g, err := s.circuit.Assemble()
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	kind := cfg.Solver
	if kind == "" {
		kind = solve.KindCached
	}
	solver, err := solve.New(kind, g, solve.Options{LenientSingular: cfg.LenientSingular})
	if err != nil {
		return fmt.Errorf("solver %s: %w", kind, err)
	}

	s.g = g
	s.solver = solver
	s.b = linalg.NewVector[float64](s.circuit.Dim)

	for _, obs := range s.observers {
		if err := obs.OnSetup(g.Clone()); err != nil {
			return err
		}
	}
	for _, p := range s.plotters {
		p.SetLabels(cfg.XLabel, cfg.YLabel)
	}
	return nil
}

// InitialState returns the all-zero cold-start state.
func (s *Simulator) InitialState() *linalg.Vector[float64] {
	return linalg.NewVector[float64](s.circuit.Dim)
}

// Step rebuilds b from prev and solves for the next state.
func (s *Simulator) Step(prev *linalg.Vector[float64]) (*linalg.Vector[float64], error) {
	if s.solver == nil {
		return nil, ErrNotSetup
	}
	if err := s.circuit.RHS(prev, s.b); err != nil {
		return nil, err
	}
	return s.solver.Solve(s.b)
}

func (s *Simulator) sample(step int, t float64, x *linalg.Vector[float64]) Sample {
	state := State(x.Data())
	series := make([]float64, len(s.circuit.Plot))
	for k, p := range s.circuit.Plot {
		series[k] = state[p.Index]
	}
	return Sample{
		Step:   step,
		Time:   t,
		Record: state[s.circuit.Record.Index],
		Series: series,
		State:  state,
	}
}

func (s *Simulator) emit(smp Sample) error {
	for _, p := range s.plotters {
		for k, y := range smp.Series {
			p.AddRow(smp.Time, k, y)
		}
	}
	for _, m := range s.metrics {
		m.Observe(smp)
	}
	for _, obs := range s.observers {
		if err := obs.OnSample(smp); err != nil {
			return err
		}
	}
	return nil
}

// Run sets up the system and steps from a cold start while t < TMax. Each
// step emits the current state before solving for the next one, so the
// first sample is all zero. t is i·h rather than an accumulated sum.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.Setup(cfg); err != nil {
		return nil, err
	}

	steps := stepCount(cfg.H, cfg.TMax)
	result := &Result{
		Times:   make([]float64, 0, steps),
		States:  make([]State, 0, steps),
		Samples: make([]Sample, 0, steps),
		Metrics: make(map[string]float64),
		Solver:  s.solver.Name(),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.InitialState()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		t := float64(i) * cfg.H
		smp := s.sample(i, t, x)
		result.Times = append(result.Times, t)
		result.States = append(result.States, smp.State)
		result.Samples = append(result.Samples, smp)

		if err := s.emit(smp); err != nil {
			return result, &SimulationError{Step: i, Time: t, Wrapped: err}
		}

		next, err := s.Step(x)
		if err != nil {
			return result, &SimulationError{Step: i, Time: t, Wrapped: err}
		}
		if cfg.ValidateState && !State(next.Data()).IsValid() {
			return result, &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		x = next
		result.StepsTaken++
	}

	result.Final = State(x.Data())

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	for _, p := range s.plotters {
		if err := p.Plot(); err != nil {
			return result, fmt.Errorf("plot: %w", err)
		}
	}
	for _, obs := range s.observers {
		if err := obs.OnFinish(); err != nil {
			return result, err
		}
	}

	return result, nil
}

// stepCount returns how many i ≥ 0 satisfy i·h < tmax.
func stepCount(h, tmax float64) int {
	n := int(math.Ceil(tmax / h))
	for n > 0 && float64(n-1)*h >= tmax {
		n--
	}
	for float64(n)*h < tmax {
		n++
	}
	return n
}

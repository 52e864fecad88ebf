// Package automation runs batches of simulations: scripted scenarios,
// one-parameter sweeps and the objective used by grid search.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mnasim/internal/config"
	"github.com/san-kum/mnasim/internal/metrics"
	"github.com/san-kum/mnasim/internal/optim"
	"github.com/san-kum/mnasim/internal/sim"
)

// Scenario is a scripted sequence of runs read from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base config for one run. Zero values keep the
// base setting.
type ScenarioStep struct {
	Name   string             `yaml:"name"`
	Preset string             `yaml:"preset"`
	H      float64            `yaml:"h"`
	TMax   float64            `yaml:"tmax"`
	Solver string             `yaml:"solver"`
	Params map[string]float64 `yaml:"params"`
}

// Outcome is the result of one scenario step or sweep point.
type Outcome struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}

	return &scenario, nil
}

// Simulate runs cfg to completion with the standard metric set and no
// observers.
func Simulate(ctx context.Context, cfg *config.Config) (*sim.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := cfg.ToCircuit()
	if err != nil {
		return nil, err
	}

	s := sim.New(c)
	ms := metrics.Default()
	if cfg.Circuit == nil {
		ms = metrics.ForMotor(cfg.Motor)
	}
	for _, m := range ms {
		s.AddMetric(m)
	}
	return s.Run(ctx, cfg.ToSim())
}

func (st ScenarioStep) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	if st.Preset != "" {
		p := config.GetPreset(st.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", st.Preset)
		}
		cfg = *p
		cfg.Output = base.Output
	}
	if st.H != 0 {
		cfg.H = st.H
	}
	if st.TMax != 0 {
		cfg.TMax = st.TMax
	}
	if st.Solver != "" {
		cfg.Solver = st.Solver
	}
	for k, v := range st.Params {
		if err := cfg.Motor.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// RunScenario executes every step in order and stops at the first failure,
// returning the outcomes so far. Progress lines go to w.
func RunScenario(ctx context.Context, w io.Writer, scenario *Scenario, base *config.Config) ([]Outcome, error) {
	results := make([]Outcome, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		fmt.Fprintf(w, "running step %d/%d: %s\n", i+1, len(scenario.Steps), name)

		cfg, err := step.apply(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := Simulate(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, Outcome{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

// ParameterSweep varies one motor parameter over NumSteps evenly spaced
// values.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds one sweep point. Final is the recorded unknown after
// the last solve.
type SweepResult struct {
	ParamValue float64
	Final      float64
	Metrics    map[string]float64
}

func RunSweep(ctx context.Context, w io.Writer, sweep *ParameterSweep, base *config.Config) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	values := optim.Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		r, err := sweepPoint(ctx, base, sweep.ParamName, v)
		if err != nil {
			return results, err
		}
		results = append(results, r)

		fmt.Fprintf(w, "sweep %d/%d: %s=%.4g\n", i+1, len(values), sweep.ParamName, v)
	}

	return results, nil
}

func sweepPoint(ctx context.Context, base *config.Config, name string, v float64) (SweepResult, error) {
	cfg := *base
	if err := cfg.Motor.SetParam(name, v); err != nil {
		return SweepResult{}, err
	}

	result, err := Simulate(ctx, &cfg)
	if err != nil {
		return SweepResult{}, fmt.Errorf("%s=%g: %w", name, v, err)
	}

	c, err := cfg.ToCircuit()
	if err != nil {
		return SweepResult{}, err
	}
	final := 0.0
	if c.Record.Index < len(result.Final) {
		final = result.Final[c.Record.Index]
	}
	return SweepResult{
		ParamValue: v,
		Final:      final,
		Metrics:    result.Metrics,
	}, nil
}

// Objective returns a grid search objective that runs base with the grid
// point applied to the motor parameters and reports metric.
func Objective(base *config.Config, metric string) optim.Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := *base
		for k, v := range params {
			if err := cfg.Motor.SetParam(k, v); err != nil {
				return 0, err
			}
		}
		result, err := Simulate(ctx, &cfg)
		if err != nil {
			return 0, err
		}
		val, ok := result.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("unknown metric %q", metric)
		}
		return val, nil
	}
}

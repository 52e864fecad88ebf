package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/mnasim/internal/circuit"
	"github.com/san-kum/mnasim/internal/sim"
	"github.com/san-kum/mnasim/internal/solve"
	"github.com/san-kum/mnasim/internal/storage"
)

const (
	DefaultH       = 0.001
	DefaultTMax    = 1.0
	DefaultSolver  = solve.KindCached
	DefaultXLabel  = "Wr(Angular Frequency)"
	DefaultYLabel  = "ia (A)"
	DefaultDataDir = "data"
	DefaultTheme   = "ocean"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Preset          string              `yaml:"preset,omitempty"`
	H               float64             `yaml:"h"`
	TMax            float64             `yaml:"tmax"`
	Solver          string              `yaml:"solver"`
	LenientSingular bool                `yaml:"lenient_singular"`
	ValidateState   bool                `yaml:"validate_state"`
	Motor           circuit.MotorParams `yaml:"motor"`
	Output          OutputConfig        `yaml:"output"`

	// Circuit replaces the built-in motor with an explicit stamp list.
	Circuit *circuit.Circuit `yaml:"circuit,omitempty"`
}

type OutputConfig struct {
	Record     string `yaml:"record"`
	Header     string `yaml:"header"`
	Image      string `yaml:"image,omitempty"`
	Terminal   bool   `yaml:"terminal"`
	Trace      bool   `yaml:"trace"`
	TraceEvery int    `yaml:"trace_every"`
	Theme      string `yaml:"theme"`
	XLabel     string `yaml:"x_label"`
	YLabel     string `yaml:"y_label"`
	DataDir    string `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		H:             DefaultH,
		TMax:          DefaultTMax,
		Solver:        DefaultSolver,
		ValidateState: true,
		Motor:         circuit.DefaultMotorParams(),
		Output: OutputConfig{
			Record:     storage.DefaultRecordPath,
			Header:     storage.DefaultRecordHeader,
			Terminal:   true,
			Trace:      true,
			TraceEvery: 1,
			Theme:      DefaultTheme,
			XLabel:     DefaultXLabel,
			YLabel:     DefaultYLabel,
			DataDir:    DefaultDataDir,
		},
	}
}

// Load reads a YAML config over the defaults. A preset named in the file is
// applied first and the remaining keys override it.
func Load(path string) (*Config, error) {
	return LoadWith(path, DefaultConfig())
}

// LoadWith is Load with base in place of the defaults. base is ignored when
// the file names its own preset.
func LoadWith(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := base
	if head.Preset != "" {
		cfg = GetPreset(head.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, head.Preset)
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.H > 0) || math.IsInf(c.H, 0) {
		return fmt.Errorf("%w: h must be positive and finite, got %g", ErrInvalidConfig, c.H)
	}
	if !(c.TMax > 0) || math.IsInf(c.TMax, 0) {
		return fmt.Errorf("%w: tmax must be positive and finite, got %g", ErrInvalidConfig, c.TMax)
	}
	if c.TMax/c.H > sim.MaxSteps {
		return fmt.Errorf("%w: tmax/h exceeds %d steps", ErrInvalidConfig, sim.MaxSteps)
	}
	if !slices.Contains(solve.Kinds(), c.Solver) {
		return fmt.Errorf("%w: solver %q not in %v", ErrInvalidConfig, c.Solver, solve.Kinds())
	}
	if c.Output.TraceEvery < 0 {
		return fmt.Errorf("%w: trace_every must not be negative", ErrInvalidConfig)
	}
	if c.Circuit != nil {
		return c.Circuit.Validate()
	}
	return c.Motor.Validate()
}

// ToCircuit builds the circuit for step H, from the explicit stamp list
// when one is configured and from the motor parameters otherwise.
func (c *Config) ToCircuit() (*circuit.Circuit, error) {
	if c.Circuit != nil {
		if err := c.Circuit.Validate(); err != nil {
			return nil, err
		}
		return c.Circuit, nil
	}
	if err := c.Motor.Validate(); err != nil {
		return nil, err
	}
	return circuit.DCMotor(c.Motor, c.H), nil
}

// Params returns the parameters recorded with a stored run.
func (c *Config) Params() map[string]float64 {
	if c.Circuit != nil {
		return nil
	}
	return c.Motor.GetParams()
}

func (c *Config) ToSim() sim.Config {
	return sim.Config{
		H:               c.H,
		TMax:            c.TMax,
		Solver:          c.Solver,
		LenientSingular: c.LenientSingular,
		ValidateState:   c.ValidateState,
		XLabel:          c.Output.XLabel,
		YLabel:          c.Output.YLabel,
	}
}

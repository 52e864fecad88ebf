package circuit

import (
	"fmt"

	"github.com/san-kum/mnasim/internal/linalg"
)

// Stamp adds Value to G(Row, Col) when the system is assembled.
type Stamp struct {
	Row   int     `yaml:"row" json:"row"`
	Col   int     `yaml:"col" json:"col"`
	Value float64 `yaml:"value" json:"value"`
}

// Source adds Value + Gain·x[State] to b[Row] on every step, where x is the
// state from the previous step. A zero Gain makes it a constant source.
type Source struct {
	Row   int     `yaml:"row" json:"row"`
	Value float64 `yaml:"value,omitempty" json:"value,omitempty"`
	State int     `yaml:"state,omitempty" json:"state,omitempty"`
	Gain  float64 `yaml:"gain,omitempty" json:"gain,omitempty"`
	Label string  `yaml:"label,omitempty" json:"label,omitempty"`
}

// Probe names an entry of the state vector forwarded to the outputs.
type Probe struct {
	Index int    `yaml:"index" json:"index"`
	Label string `yaml:"label" json:"label"`
}

// Circuit is a dense MNA system of dimension Dim.
type Circuit struct {
	Name     string   `yaml:"name" json:"name"`
	Dim      int      `yaml:"dim" json:"dim"`
	Unknowns []string `yaml:"unknowns,omitempty" json:"unknowns,omitempty"`
	Stamps   []Stamp  `yaml:"stamps" json:"stamps"`
	Sources  []Source `yaml:"sources" json:"sources"`

	// Record is persisted and echoed to the console each step.
	Record Probe `yaml:"record" json:"record"`
	// Plot lists the plotted series; the series id is the slice position.
	Plot []Probe `yaml:"plot,omitempty" json:"plot,omitempty"`
}

func (c *Circuit) String() string {
	return fmt.Sprintf("%s (dim=%d, stamps=%d, sources=%d)", c.Name, c.Dim, len(c.Stamps), len(c.Sources))
}

func (c *Circuit) inRange(i int) bool { return i >= 0 && i < c.Dim }

// Validate checks that every index refers to an unknown of the system.
func (c *Circuit) Validate() error {
	if c.Dim <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidCircuit, c.Dim)
	}
	if len(c.Unknowns) != 0 && len(c.Unknowns) != c.Dim {
		return fmt.Errorf("%w: %d unknown labels for dimension %d", ErrInvalidCircuit, len(c.Unknowns), c.Dim)
	}
	for i, s := range c.Stamps {
		if !c.inRange(s.Row) || !c.inRange(s.Col) {
			return fmt.Errorf("%w: stamp %d at (%d,%d) outside %dx%d", ErrInvalidCircuit, i, s.Row, s.Col, c.Dim, c.Dim)
		}
	}
	for i, s := range c.Sources {
		if !c.inRange(s.Row) {
			return fmt.Errorf("%w: source %d row %d outside [0,%d)", ErrInvalidCircuit, i, s.Row, c.Dim)
		}
		if s.Gain != 0 && !c.inRange(s.State) {
			return fmt.Errorf("%w: source %d reads state %d outside [0,%d)", ErrInvalidCircuit, i, s.State, c.Dim)
		}
	}
	if !c.inRange(c.Record.Index) {
		return fmt.Errorf("%w: record probe %d outside [0,%d)", ErrInvalidCircuit, c.Record.Index, c.Dim)
	}
	for _, p := range c.Plot {
		if !c.inRange(p.Index) {
			return fmt.Errorf("%w: plot probe %q index %d outside [0,%d)", ErrInvalidCircuit, p.Label, p.Index, c.Dim)
		}
	}
	return nil
}

// Assemble builds G from the static stamps, in declaration order.
func (c *Circuit) Assemble() (*linalg.Matrix[float64], error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	g, err := linalg.NewMatrix[float64](c.Dim, c.Dim)
	if err != nil {
		return nil, err
	}
	for i, s := range c.Stamps {
		if err := g.AddAt(s.Row, s.Col, s.Value); err != nil {
			return nil, fmt.Errorf("stamp %d: %w", i, err)
		}
	}
	return g, nil
}

// RHS clears dst and applies every source using prev as the previous state.
func (c *Circuit) RHS(prev, dst *linalg.Vector[float64]) error {
	if prev.Len() != c.Dim {
		return fmt.Errorf("previous state: %w: want %d, got %d", linalg.ErrSizeMismatch, c.Dim, prev.Len())
	}
	if dst.Len() != c.Dim {
		return fmt.Errorf("rhs: %w: want %d, got %d", linalg.ErrSizeMismatch, c.Dim, dst.Len())
	}

	dst.Fill(0)
	for i, s := range c.Sources {
		v := s.Value
		if s.Gain != 0 {
			x, err := prev.At(s.State)
			if err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
			v += s.Gain * x
		}
		if err := dst.AddAt(s.Row, v); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}
	return nil
}

// Label returns the name of unknown i, or "x<i>" when none was declared.
func (c *Circuit) Label(i int) string {
	if i >= 0 && i < len(c.Unknowns) {
		return c.Unknowns[i]
	}
	return fmt.Sprintf("x%d", i)
}

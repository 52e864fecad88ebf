// Package trace echoes a running simulation to a human-readable stream.
package trace

import (
	"fmt"
	"io"

	"github.com/san-kum/mnasim/internal/linalg"
	"github.com/san-kum/mnasim/internal/sim"
	"github.com/san-kum/mnasim/internal/viz"
)

var _ sim.Observer = (*Console)(nil)

// Console prints the assembled system once, then one "t,value" line per
// sample. Every can thin the per-sample lines; 1 prints them all.
type Console struct {
	w      io.Writer
	styles viz.Styles
	label  string
	every  int
	count  int
}

type Option func(*Console)

// WithEvery prints only every n-th sample.
func WithEvery(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.every = n
		}
	}
}

// WithTheme selects the color theme by name.
func WithTheme(name string) Option {
	return func(c *Console) {
		c.styles = viz.NewStyles(c.w, viz.GetTheme(name))
	}
}

// New returns a console trace for the probe named label.
func New(w io.Writer, label string, opts ...Option) *Console {
	c := &Console{
		w:      w,
		styles: viz.NewStyles(w, viz.ThemeOcean),
		label:  label,
		every:  1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) OnSetup(g *linalg.Matrix[float64]) error {
	c.count = 0
	title := c.styles.Title.Render(fmt.Sprintf("G (%dx%d)", g.Rows(), g.Cols()))
	if _, err := fmt.Fprintln(c.w, title); err != nil {
		return err
	}
	if _, err := fmt.Fprint(c.w, g.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(c.w, c.styles.Muted.Render("t,"+c.label))
	return err
}

func (c *Console) OnSample(s sim.Sample) error {
	c.count++
	if (c.count-1)%c.every != 0 {
		return nil
	}
	_, err := fmt.Fprintf(c.w, "%s,%s\n", linalg.FormatScalar(s.Time), linalg.FormatScalar(s.Record))
	return err
}

func (c *Console) OnFinish() error {
	_, err := fmt.Fprintln(c.w, c.styles.Running.Render(fmt.Sprintf("done: %d samples", c.count)))
	return err
}

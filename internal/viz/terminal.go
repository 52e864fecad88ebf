package viz

import (
	"fmt"
	"io"
	"sort"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mnasim/internal/sim"
)

var _ sim.Plotter = (*Terminal)(nil)

// Terminal collects plotted rows and prints them as one asciigraph chart.
type Terminal struct {
	w      io.Writer
	height int
	width  int
	names  []string

	xLabel, yLabel string
	series         map[int][]float64
}

// NewTerminal returns a plotter writing to w. names labels series ids in
// order and may be shorter than the number of series.
func NewTerminal(w io.Writer, names []string) *Terminal {
	return &Terminal{
		w:      w,
		height: 15,
		width:  80,
		names:  names,
		series: make(map[int][]float64),
	}
}

// SetSize overrides the chart height and width in terminal cells.
func (t *Terminal) SetSize(height, width int) {
	t.height, t.width = height, width
}

func (t *Terminal) SetLabels(xLabel, yLabel string) {
	t.xLabel, t.yLabel = xLabel, yLabel
}

func (t *Terminal) AddRow(_ float64, series int, y float64) {
	t.series[series] = append(t.series[series], y)
}

func (t *Terminal) ids() []int {
	ids := make([]int, 0, len(t.series))
	for id := range t.series {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (t *Terminal) caption() string {
	c := t.yLabel
	if t.xLabel != "" {
		c = fmt.Sprintf("%s vs %s", t.yLabel, t.xLabel)
	}
	for i, id := range t.ids() {
		name := fmt.Sprintf("series %d", id)
		if id < len(t.names) {
			name = t.names[id]
		}
		if i == 0 {
			c += " ["
		} else {
			c += ", "
		}
		c += name
	}
	if len(t.series) > 0 {
		c += "]"
	}
	return c
}

func (t *Terminal) Plot() error {
	if len(t.series) == 0 {
		_, err := fmt.Fprintln(t.w, "no data to plot")
		return err
	}

	data := make([][]float64, 0, len(t.series))
	for _, id := range t.ids() {
		data = append(data, t.series[id])
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(t.height),
		asciigraph.Width(t.width),
		asciigraph.Caption(t.caption()),
	)
	_, err := fmt.Fprintf(t.w, "%s\n\n", graph)
	return err
}

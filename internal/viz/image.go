package viz

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/mnasim/internal/sim"
)

var _ sim.Plotter = (*Image)(nil)

// ErrUnsupportedFormat indicates an image path with an unknown extension.
var ErrUnsupportedFormat = errors.New("viz: unsupported image format")

var imageFormats = map[string]bool{".png": true, ".svg": true, ".pdf": true}

// Image collects plotted rows and saves them as a line plot. The format
// follows the file extension.
type Image struct {
	path   string
	title  string
	names  []string
	width  vg.Length
	height vg.Length

	xLabel, yLabel string
	series         map[int]plotter.XYs
}

func NewImage(path, title string, names []string) (*Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !imageFormats[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &Image{
		path:   path,
		title:  title,
		names:  names,
		width:  8 * vg.Inch,
		height: 5 * vg.Inch,
		series: make(map[int]plotter.XYs),
	}, nil
}

func (im *Image) Path() string { return im.path }

func (im *Image) SetLabels(xLabel, yLabel string) {
	im.xLabel, im.yLabel = xLabel, yLabel
}

func (im *Image) AddRow(x float64, series int, y float64) {
	im.series[series] = append(im.series[series], plotter.XY{X: x, Y: y})
}

func (im *Image) Plot() error {
	p := plot.New()
	p.Title.Text = im.title
	p.X.Label.Text = im.xLabel
	p.Y.Label.Text = im.yLabel
	p.Add(plotter.NewGrid())

	ids := make([]int, 0, len(im.series))
	for id := range im.series {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for i, id := range ids {
		line, err := plotter.NewLine(im.series[id])
		if err != nil {
			return fmt.Errorf("series %d: %w", id, err)
		}
		line.Color = plotutil.Color(i)

		name := fmt.Sprintf("series %d", id)
		if id < len(im.names) {
			name = im.names[id]
		}
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if err := p.Save(im.width, im.height, im.path); err != nil {
		return fmt.Errorf("save %s: %w", im.path, err)
	}
	return nil
}

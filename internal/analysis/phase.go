package analysis

import (
	"fmt"
	"strings"
)

type Point struct{ X, Y float64 }

// Trajectory is one unknown plotted against another over a run.
type Trajectory struct {
	XIndex, YIndex int
	Points         []Point
}

// NewTrajectory extracts columns xIdx and yIdx of states.
func NewTrajectory(states [][]float64, xIdx, yIdx int) (*Trajectory, error) {
	if len(states) == 0 {
		return nil, ErrNoSamples
	}
	tr := &Trajectory{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, len(states))}
	for i, x := range states {
		if xIdx < 0 || yIdx < 0 || xIdx >= len(x) || yIdx >= len(x) {
			return nil, fmt.Errorf("analysis: sample %d has %d unknowns, need %d and %d", i, len(x), xIdx, yIdx)
		}
		tr.Points[i] = Point{X: x[xIdx], Y: x[yIdx]}
	}
	return tr, nil
}

// Bounds returns the smallest box holding every point.
func (tr *Trajectory) Bounds() (lo, hi Point) {
	lo, hi = tr.Points[0], tr.Points[0]
	for _, p := range tr.Points[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
	}
	return lo, hi
}

// Render draws the trajectory on a width×height character grid with a 10%
// margin. The start is marked 'o', the end '●' and every other sample '•'.
// Axes are drawn where zero is visible.
func (tr *Trajectory) Render(width, height int) string {
	if tr == nil || len(tr.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := tr.Bounds()
	span := Point{X: hi.X - lo.X, Y: hi.Y - lo.Y}
	if span.X == 0 {
		span.X = 1
	}
	if span.Y == 0 {
		span.Y = 1
	}
	lo.X -= span.X * 0.1
	lo.Y -= span.Y * 0.1
	span.X *= 1.2
	span.Y *= 1.2

	col := func(x float64) int { return int((x - lo.X) / span.X * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-lo.Y)/span.Y*float64(height-1)) }

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}

	if c := col(0); lo.X <= 0 && c >= 0 && c < width {
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if r := row(0); lo.Y <= 0 && r >= 0 && r < height {
		for c := range grid[r] {
			if grid[r][c] == '│' {
				grid[r][c] = '┼'
			} else {
				grid[r][c] = '─'
			}
		}
	}

	last := len(tr.Points) - 1
	for i, p := range tr.Points {
		r, c := row(p.Y), col(p.X)
		if r < 0 || r >= height || c < 0 || c >= width {
			continue
		}
		switch {
		case i == last:
			grid[r][c] = '●'
		case i == 0:
			grid[r][c] = 'o'
		case grid[r][c] != 'o':
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

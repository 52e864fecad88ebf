package viz

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles used for console and TUI output.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Running lipgloss.Style
	Paused  lipgloss.Style
	Error   lipgloss.Style
	Panel   lipgloss.Style
	Graph   lipgloss.Style
}

// NewStyles binds theme t to a renderer for w. A writer that is not a
// terminal, or NO_COLOR in the environment, yields plain text.
func NewStyles(w io.Writer, t Theme) Styles {
	return newStyles(lipgloss.NewRenderer(w), t)
}

// DefaultStyles binds theme t to the process-wide renderer on stdout.
func DefaultStyles(t Theme) Styles {
	return newStyles(lipgloss.DefaultRenderer(), t)
}

func newStyles(r *lipgloss.Renderer, t Theme) Styles {
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			MarginBottom(1),
		Label: r.NewStyle().
			Foreground(t.Muted).
			Width(10),
		Value: r.NewStyle().
			Foreground(t.Text),
		Muted: r.NewStyle().
			Foreground(t.Muted),
		Running: r.NewStyle().
			Bold(true).
			Foreground(t.Success),
		Paused: r.NewStyle().
			Bold(true).
			Foreground(t.Warning),
		Error: r.NewStyle().
			Bold(true).
			Foreground(t.Error),
		Panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Graph: r.NewStyle().
			Foreground(t.Accent),
	}
}

// ProgressBar renders a bar filled to percent of width.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Sparkline renders values as a one-line bar chart, sampled to fit width.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var sb strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

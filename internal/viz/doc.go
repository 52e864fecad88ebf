// Package viz renders simulation output.
//
//   - [Terminal]: asciigraph chart of every plotted series, printed once the
//     run finishes
//   - [Image]: PNG, SVG or PDF line plot written through gonum/plot
//   - [Multi]: fans rows out to several plotters
//
// The lipgloss [Styles] built from a [Theme] are shared by the console trace
// and the live viewer. Styles are bound to a renderer, so output written to
// a file or buffer carries no escape sequences.
package viz

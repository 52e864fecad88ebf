package solve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/mnasim/internal/linalg"
)

// Solver kinds accepted by New.
const (
	KindInverse = "inverse"
	KindCached  = "cached"
	KindLU      = "lu"
)

// ErrUnknownSolver indicates a solver kind that New does not recognise.
var ErrUnknownSolver = errors.New("solve: unknown solver")

// Solver computes x = G⁻¹·b for the system matrix it was built with.
type Solver interface {
	Name() string
	Solve(b *linalg.Vector[float64]) (*linalg.Vector[float64], error)
}

// Options tunes how a solver treats its system matrix.
type Options struct {
	// LenientSingular keeps the silent-skip elimination for rank-deficient
	// matrices instead of failing with linalg.ErrSingular. The LU solver
	// ignores it.
	LenientSingular bool
}

func (o Options) inverseOpts() []linalg.InverseOption {
	if o.LenientSingular {
		return []linalg.InverseOption{linalg.WithSingularSkip()}
	}
	return nil
}

var factories = map[string]func(*linalg.Matrix[float64], Options) (Solver, error){
	KindInverse: func(g *linalg.Matrix[float64], o Options) (Solver, error) { return NewInverse(g, o) },
	KindCached:  func(g *linalg.Matrix[float64], o Options) (Solver, error) { return NewCached(g, o) },
	KindLU:      func(g *linalg.Matrix[float64], o Options) (Solver, error) { return NewLU(g) },
}

// New builds the solver registered under kind for g.
func New(kind string, g *linalg.Matrix[float64], opts Options) (Solver, error) {
	fn, ok := factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownSolver, kind, Kinds())
	}
	return fn(g, opts)
}

// Kinds lists the registered solver kinds in sorted order.
func Kinds() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func requireSquare(g *linalg.Matrix[float64]) error {
	if g.Rows() != g.Cols() {
		return fmt.Errorf("%w: %dx%d", linalg.ErrNotSquare, g.Rows(), g.Cols())
	}
	if g.Rows() == 0 {
		return fmt.Errorf("%w: empty system", linalg.ErrBadShape)
	}
	return nil
}

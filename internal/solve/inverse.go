package solve

import "github.com/san-kum/mnasim/internal/linalg"

// Inverse re-inverts G on every Solve. It does O(n³) work per call and is
// kept as the reference the other solvers are checked against.
type Inverse struct {
	g    *linalg.Matrix[float64]
	opts Options
}

func NewInverse(g *linalg.Matrix[float64], opts Options) (*Inverse, error) {
	if err := requireSquare(g); err != nil {
		return nil, err
	}
	return &Inverse{g: g.Clone(), opts: opts}, nil
}

func (s *Inverse) Name() string { return KindInverse }

func (s *Inverse) Solve(b *linalg.Vector[float64]) (*linalg.Vector[float64], error) {
	inv, err := s.g.Inverse(s.opts.inverseOpts()...)
	if err != nil {
		return nil, err
	}
	return inv.MulVec(b)
}

// Cached inverts G once and reuses the inverse. Inversion is deterministic,
// so results are bit-identical to Inverse.
type Cached struct {
	inv *linalg.Matrix[float64]
}

func NewCached(g *linalg.Matrix[float64], opts Options) (*Cached, error) {
	if err := requireSquare(g); err != nil {
		return nil, err
	}
	inv, err := g.Inverse(opts.inverseOpts()...)
	if err != nil {
		return nil, err
	}
	return &Cached{inv: inv}, nil
}

func (s *Cached) Name() string { return KindCached }

func (s *Cached) Solve(b *linalg.Vector[float64]) (*linalg.Vector[float64], error) {
	return s.inv.MulVec(b)
}

// InverseMatrix returns a copy of the cached inverse.
func (s *Cached) InverseMatrix() *linalg.Matrix[float64] {
	return s.inv.Clone()
}

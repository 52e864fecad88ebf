package solve

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/mnasim/internal/linalg"
	"gonum.org/v1/gonum/mat"
)

// LU factors G once with partial pivoting and back-substitutes per Solve.
// Results agree with the inversion solvers to rounding, not bit for bit.
type LU struct {
	n  int
	lu mat.LU
	x  *mat.VecDense
}

func NewLU(g *linalg.Matrix[float64]) (*LU, error) {
	if err := requireSquare(g); err != nil {
		return nil, err
	}
	n := g.Rows()
	data := make([]float64, 0, n*n)
	for _, row := range g.RowsData() {
		data = append(data, row...)
	}

	s := &LU{n: n, x: mat.NewVecDense(n, nil)}
	s.lu.Factorize(mat.NewDense(n, n, data))
	if math.IsInf(s.lu.Cond(), 1) {
		return nil, fmt.Errorf("lu factorization: %w", linalg.ErrSingular)
	}
	return s, nil
}

func (s *LU) Name() string { return KindLU }

// Cond returns the condition number estimate of the factorized matrix.
func (s *LU) Cond() float64 { return s.lu.Cond() }

func (s *LU) Solve(b *linalg.Vector[float64]) (*linalg.Vector[float64], error) {
	if b.Len() != s.n {
		return nil, fmt.Errorf("%w: system has %d unknowns, rhs has %d", linalg.ErrDimensionMismatch, s.n, b.Len())
	}
	err := s.lu.SolveVecTo(s.x, false, mat.NewVecDense(s.n, b.Data()))
	if err != nil {
		// mat.Condition only warns about conditioning; the solution is still valid.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, fmt.Errorf("lu solve: %w", err)
		}
	}
	return linalg.VectorOf(s.x.RawVector().Data...), nil
}

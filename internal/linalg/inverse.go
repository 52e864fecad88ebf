package linalg

import "fmt"

type inverseConfig struct {
	skipSingular bool
}

// InverseOption configures Matrix.Inverse.
type InverseOption func(*inverseConfig)

// WithSingularSkip makes Inverse tolerate rank-deficient input: a column
// with no nonzero pivot is skipped instead of reported, and the result keeps
// whatever the identity seed holds for it. The returned matrix is then not a
// true inverse and no error says so.
func WithSingularSkip() InverseOption {
	return func(c *inverseConfig) { c.skipSingular = true }
}

// Inverse returns the inverse of a square matrix using Gauss-Jordan
// elimination over the augmented workspace [m | I].
//
// Pivots are chosen by scanning down from the current row for the first entry
// that is exactly nonzero. There is no epsilon, so tiny pivots are accepted.
// Without WithSingularSkip a column with no pivot yields a *SingularError.
// The receiver is not modified.
func (m *Matrix[T]) Inverse(opts ...InverseOption) (*Matrix[T], error) {
	var cfg inverseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	n := m.rows
	if n != m.cols {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, m.rows, m.cols)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: cannot invert an empty matrix", ErrBadShape)
	}

	w := newWorkspace(m)
	if err := w.reduce(cfg.skipSingular); err != nil {
		return nil, err
	}
	return w.right(), nil
}

// workspace is the n×2n augmented matrix used by a single inversion.
type workspace[T Scalar] struct {
	n, width int
	data     []T
}

func newWorkspace[T Scalar](m *Matrix[T]) *workspace[T] {
	n := m.rows
	w := &workspace[T]{n: n, width: 2 * n, data: make([]T, n*2*n)}
	for r := 0; r < n; r++ {
		copy(w.data[r*w.width:r*w.width+n], m.data[r*n:(r+1)*n])
		w.data[r*w.width+n+r] = 1
	}
	return w
}

func (w *workspace[T]) at(r, c int) T { return w.data[r*w.width+c] }

func (w *workspace[T]) row(r int) []T { return w.data[r*w.width : (r+1)*w.width] }

func (w *workspace[T]) swap(a, b int) {
	if a == b {
		return
	}
	ra, rb := w.row(a), w.row(b)
	for c := range ra {
		ra[c], rb[c] = rb[c], ra[c]
	}
}

// reduce runs Gauss-Jordan elimination. The pivot column lead normally moves
// in lockstep with row; when skipping a singular column it advances alone.
func (w *workspace[T]) reduce(skipSingular bool) error {
	var zero T
	for row, lead := 0, 0; row < w.n && lead < w.width; row, lead = row+1, lead+1 {
		i := row
		for w.at(i, lead) == zero {
			i++
			if i < w.n {
				continue
			}
			if !skipSingular {
				return &SingularError{Column: lead}
			}
			i = row
			lead++
			if lead == w.width {
				return nil
			}
		}

		w.swap(i, row)

		pr := w.row(row)
		if f := pr[lead]; f != zero {
			for c := range pr {
				pr[c] /= f
			}
		}

		for j := 0; j < w.n; j++ {
			if j == row {
				continue
			}
			rj := w.row(j)
			f := rj[lead]
			for c := range rj {
				rj[c] -= f * pr[c]
			}
		}
	}
	return nil
}

func (w *workspace[T]) right() *Matrix[T] {
	inv := &Matrix[T]{rows: w.n, cols: w.n, data: make([]T, w.n*w.n)}
	for r := 0; r < w.n; r++ {
		copy(inv.data[r*w.n:(r+1)*w.n], w.data[r*w.width+w.n:(r+1)*w.width])
	}
	return inv
}

// Determinant computes det(m) in float64 by elimination with the same pivot
// rule as Inverse. A matrix with a pivotless column has determinant 0.
func (m *Matrix[T]) Determinant() (float64, error) {
	n := m.rows
	if n != m.cols {
		return 0, fmt.Errorf("%w: %dx%d", ErrNotSquare, m.rows, m.cols)
	}
	if n == 0 {
		return 1, nil
	}

	a := make([]float64, n*n)
	for i, x := range m.data {
		a[i] = float64(x)
	}

	det := 1.0
	for k := 0; k < n; k++ {
		p := k
		for p < n && a[p*n+k] == 0 {
			p++
		}
		if p == n {
			return 0, nil
		}
		if p != k {
			for c := 0; c < n; c++ {
				a[k*n+c], a[p*n+c] = a[p*n+c], a[k*n+c]
			}
			det = -det
		}
		pivot := a[k*n+k]
		det *= pivot
		for r := k + 1; r < n; r++ {
			f := a[r*n+k] / pivot
			if f == 0 {
				continue
			}
			for c := k; c < n; c++ {
				a[r*n+c] -= f * a[k*n+c]
			}
		}
	}
	return det, nil
}

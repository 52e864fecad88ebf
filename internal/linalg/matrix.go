package linalg

import (
	"fmt"
	"strings"
)

// Matrix is a dense rows×cols grid of T stored row-major.
type Matrix[T Scalar] struct {
	rows, cols int
	data       []T
}

// NewMatrix allocates a rows×cols matrix set to fill, or to the zero value
// when fill is omitted.
func NewMatrix[T Scalar](rows, cols int, fill ...T) (*Matrix[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, rows, cols)
	}
	m := &Matrix[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
	if len(fill) > 0 {
		m.Fill(fill[0])
	}
	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity[T Scalar](n int) (*Matrix[T], error) {
	m, err := NewMatrix[T](n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m, nil
}

// MatrixOf copies a slice of rows into a new matrix. All rows must have the
// same length.
func MatrixOf[T Scalar](rows [][]T) (*Matrix[T], error) {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m, err := NewMatrix[T](len(rows), cols)
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d: %w", r, sizeMismatch(cols, len(row)))
		}
		copy(m.data[r*cols:(r+1)*cols], row)
	}
	return m, nil
}

func (m *Matrix[T]) Rows() int { return m.rows }
func (m *Matrix[T]) Cols() int { return m.cols }

// Fill sets every element to value.
func (m *Matrix[T]) Fill(value T) {
	for i := range m.data {
		m.data[i] = value
	}
}

func (m *Matrix[T]) check(r, c int) error {
	if r < 0 || r >= m.rows {
		return outOfRange("row", r, m.rows)
	}
	if c < 0 || c >= m.cols {
		return outOfRange("column", c, m.cols)
	}
	return nil
}

func (m *Matrix[T]) At(r, c int) (T, error) {
	if err := m.check(r, c); err != nil {
		var zero T
		return zero, err
	}
	return m.data[r*m.cols+c], nil
}

func (m *Matrix[T]) Set(r, c int, value T) error {
	if err := m.check(r, c); err != nil {
		return err
	}
	m.data[r*m.cols+c] = value
	return nil
}

// AddAt accumulates value into (r, c). Stamping a circuit element is a
// sequence of AddAt calls.
func (m *Matrix[T]) AddAt(r, c int, value T) error {
	if err := m.check(r, c); err != nil {
		return err
	}
	m.data[r*m.cols+c] += value
	return nil
}

// Row returns a copy of row r.
func (m *Matrix[T]) Row(r int) (*Vector[T], error) {
	if r < 0 || r >= m.rows {
		return nil, outOfRange("row", r, m.rows)
	}
	return VectorOf(m.data[r*m.cols : (r+1)*m.cols]...), nil
}

// Col returns a copy of column c.
func (m *Matrix[T]) Col(c int) (*Vector[T], error) {
	if c < 0 || c >= m.cols {
		return nil, outOfRange("column", c, m.cols)
	}
	v := NewVector[T](m.rows)
	for r := 0; r < m.rows; r++ {
		v.data[r] = m.data[r*m.cols+c]
	}
	return v, nil
}

func (m *Matrix[T]) SetRow(r int, v *Vector[T]) error {
	if r < 0 || r >= m.rows {
		return outOfRange("row", r, m.rows)
	}
	if v.Len() != m.cols {
		return sizeMismatch(m.cols, v.Len())
	}
	copy(m.data[r*m.cols:(r+1)*m.cols], v.data)
	return nil
}

func (m *Matrix[T]) SetCol(c int, v *Vector[T]) error {
	if c < 0 || c >= m.cols {
		return outOfRange("column", c, m.cols)
	}
	if v.Len() != m.rows {
		return sizeMismatch(m.rows, v.Len())
	}
	for r := 0; r < m.rows; r++ {
		m.data[r*m.cols+c] = v.data[r]
	}
	return nil
}

// Clone returns an independent copy.
func (m *Matrix[T]) Clone() *Matrix[T] {
	out := &Matrix[T]{rows: m.rows, cols: m.cols, data: make([]T, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Move transfers the buffer to a new matrix and leaves m as 0×0.
func (m *Matrix[T]) Move() *Matrix[T] {
	out := &Matrix[T]{rows: m.rows, cols: m.cols, data: m.data}
	m.rows, m.cols, m.data = 0, 0, nil
	return out
}

func (m *Matrix[T]) sameShape(o *Matrix[T]) error {
	if m.rows != o.rows || m.cols != o.cols {
		return fmt.Errorf("%w: %dx%d != %dx%d", ErrSizeMismatch, m.rows, m.cols, o.rows, o.cols)
	}
	return nil
}

func (m *Matrix[T]) Add(o *Matrix[T]) (*Matrix[T], error) {
	out := m.Clone()
	if err := out.AddInPlace(o); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Matrix[T]) Sub(o *Matrix[T]) (*Matrix[T], error) {
	out := m.Clone()
	if err := out.SubInPlace(o); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Matrix[T]) AddInPlace(o *Matrix[T]) error {
	if err := m.sameShape(o); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] += o.data[i]
	}
	return nil
}

func (m *Matrix[T]) SubInPlace(o *Matrix[T]) error {
	if err := m.sameShape(o); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] -= o.data[i]
	}
	return nil
}

func (m *Matrix[T]) Scale(s T) *Matrix[T] {
	out := m.Clone()
	out.ScaleInPlace(s)
	return out
}

func (m *Matrix[T]) Div(s T) *Matrix[T] {
	out := m.Clone()
	out.DivInPlace(s)
	return out
}

func (m *Matrix[T]) ScaleInPlace(s T) {
	for i := range m.data {
		m.data[i] *= s
	}
}

func (m *Matrix[T]) DivInPlace(s T) {
	for i := range m.data {
		m.data[i] /= s
	}
}

func (m *Matrix[T]) Neg() *Matrix[T] {
	out := m.Clone()
	for i := range out.data {
		out.data[i] = -out.data[i]
	}
	return out
}

// Mul returns m·rhs. Entry (i, j) is the dot product of row i of m and
// column j of rhs.
func (m *Matrix[T]) Mul(rhs *Matrix[T]) (*Matrix[T], error) {
	if m.cols != rhs.rows {
		return nil, fmt.Errorf("%w: lhs has %d columns, rhs has %d rows", ErrDimensionMismatch, m.cols, rhs.rows)
	}
	out := &Matrix[T]{rows: m.rows, cols: rhs.cols, data: make([]T, m.rows*rhs.cols)}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < rhs.cols; j++ {
			var sum T
			for k := 0; k < m.cols; k++ {
				sum += m.data[i*m.cols+k] * rhs.data[k*rhs.cols+j]
			}
			out.data[i*out.cols+j] = sum
		}
	}
	return out, nil
}

// MulVec returns m·v, a vector of length m.Rows().
func (m *Matrix[T]) MulVec(v *Vector[T]) (*Vector[T], error) {
	if m.cols != v.Len() {
		return nil, fmt.Errorf("%w: matrix has %d columns, vector has %d elements", ErrDimensionMismatch, m.cols, v.Len())
	}
	out := NewVector[T](m.rows)
	for i := 0; i < m.rows; i++ {
		var sum T
		row := m.data[i*m.cols : (i+1)*m.cols]
		for k, a := range row {
			sum += a * v.data[k]
		}
		out.data[i] = sum
	}
	return out, nil
}

// Equal reports whether shapes match and every element compares equal.
func (m *Matrix[T]) Equal(o *Matrix[T]) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// String prints one bracketed row per line.
func (m *Matrix[T]) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		sb.WriteString("[ ")
		for _, x := range m.data[r*m.cols : (r+1)*m.cols] {
			sb.WriteString(FormatScalar(x))
			sb.WriteByte(' ')
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// RowsData returns a copy of the matrix as a slice of rows.
func (m *Matrix[T]) RowsData() [][]T {
	out := make([][]T, m.rows)
	for r := range out {
		out[r] = make([]T, m.cols)
		copy(out[r], m.data[r*m.cols:(r+1)*m.cols])
	}
	return out
}

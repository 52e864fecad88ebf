package linalg

import (
	"strconv"
	"strings"
)

// Scalar is the element type of vectors and matrices.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Vector is a fixed-length dense sequence of T.
type Vector[T Scalar] struct {
	data []T
}

// NewVector allocates n elements set to fill, or to the zero value when
// fill is omitted.
func NewVector[T Scalar](n int, fill ...T) *Vector[T] {
	if n < 0 {
		n = 0
	}
	v := &Vector[T]{data: make([]T, n)}
	if len(fill) > 0 {
		v.Fill(fill[0])
	}
	return v
}

// VectorOf copies values into a new vector.
func VectorOf[T Scalar](values ...T) *Vector[T] {
	v := &Vector[T]{data: make([]T, len(values))}
	copy(v.data, values)
	return v
}

func (v *Vector[T]) Len() int { return len(v.data) }

// Fill sets every element to value.
func (v *Vector[T]) Fill(value T) {
	for i := range v.data {
		v.data[i] = value
	}
}

func (v *Vector[T]) check(i int) error {
	if i < 0 || i >= len(v.data) {
		return outOfRange("index", i, len(v.data))
	}
	return nil
}

func (v *Vector[T]) At(i int) (T, error) {
	if err := v.check(i); err != nil {
		var zero T
		return zero, err
	}
	return v.data[i], nil
}

func (v *Vector[T]) Set(i int, value T) error {
	if err := v.check(i); err != nil {
		return err
	}
	v.data[i] = value
	return nil
}

// AddAt accumulates value into element i.
func (v *Vector[T]) AddAt(i int, value T) error {
	if err := v.check(i); err != nil {
		return err
	}
	v.data[i] += value
	return nil
}

// Data returns a copy of the elements.
func (v *Vector[T]) Data() []T {
	out := make([]T, len(v.data))
	copy(out, v.data)
	return out
}

// Clone returns an independent copy.
func (v *Vector[T]) Clone() *Vector[T] {
	return VectorOf(v.data...)
}

// Move transfers the buffer to a new vector and leaves v empty.
func (v *Vector[T]) Move() *Vector[T] {
	out := &Vector[T]{data: v.data}
	v.data = nil
	return out
}

func (v *Vector[T]) sameLen(o *Vector[T]) error {
	if len(v.data) != len(o.data) {
		return sizeMismatch(len(v.data), len(o.data))
	}
	return nil
}

// Dot returns the sum of elementwise products, accumulated in T.
func (v *Vector[T]) Dot(o *Vector[T]) (T, error) {
	var sum T
	if err := v.sameLen(o); err != nil {
		return sum, err
	}
	for i := range v.data {
		sum += v.data[i] * o.data[i]
	}
	return sum, nil
}

func (v *Vector[T]) Add(o *Vector[T]) (*Vector[T], error) {
	out := v.Clone()
	if err := out.AddInPlace(o); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Vector[T]) Sub(o *Vector[T]) (*Vector[T], error) {
	out := v.Clone()
	if err := out.SubInPlace(o); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *Vector[T]) AddInPlace(o *Vector[T]) error {
	if err := v.sameLen(o); err != nil {
		return err
	}
	for i := range v.data {
		v.data[i] += o.data[i]
	}
	return nil
}

func (v *Vector[T]) SubInPlace(o *Vector[T]) error {
	if err := v.sameLen(o); err != nil {
		return err
	}
	for i := range v.data {
		v.data[i] -= o.data[i]
	}
	return nil
}

func (v *Vector[T]) Scale(s T) *Vector[T] {
	out := v.Clone()
	out.ScaleInPlace(s)
	return out
}

func (v *Vector[T]) Div(s T) *Vector[T] {
	out := v.Clone()
	out.DivInPlace(s)
	return out
}

func (v *Vector[T]) ScaleInPlace(s T) {
	for i := range v.data {
		v.data[i] *= s
	}
}

func (v *Vector[T]) DivInPlace(s T) {
	for i := range v.data {
		v.data[i] /= s
	}
}

func (v *Vector[T]) Neg() *Vector[T] {
	out := NewVector[T](len(v.data))
	for i, x := range v.data {
		out.data[i] = -x
	}
	return out
}

// Equal reports whether lengths match and every element compares equal.
func (v *Vector[T]) Equal(o *Vector[T]) bool {
	if len(v.data) != len(o.data) {
		return false
	}
	for i := range v.data {
		if v.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

func (v *Vector[T]) String() string {
	var sb strings.Builder
	sb.WriteString("[ ")
	for _, x := range v.data {
		sb.WriteString(FormatScalar(x))
		sb.WriteByte(' ')
	}
	sb.WriteString("]")
	return sb.String()
}

// FormatScalar renders x with six significant digits, the way a C-style
// stream prints doubles by default. Integer kinds print in full.
func FormatScalar[T Scalar](x T) string {
	if isFloat[T]() {
		return strconv.FormatFloat(float64(x), 'g', 6, 64)
	}
	return strconv.FormatInt(int64(x), 10)
}

func isFloat[T Scalar]() bool {
	var half T = 1
	half /= 2
	return half != 0
}

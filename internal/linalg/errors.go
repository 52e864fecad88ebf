package linalg

import (
	"errors"
	"fmt"
)

// Domain errors for vector and matrix operations.
var (
	// ErrOutOfRange indicates an element, row or column index outside the container.
	ErrOutOfRange = errors.New("linalg: index out of range")

	// ErrSizeMismatch indicates operands of unequal length or shape for an
	// elementwise operation, or a row/column of the wrong length.
	ErrSizeMismatch = errors.New("linalg: size mismatch")

	// ErrDimensionMismatch indicates non-conformable product operands.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrNotSquare indicates that a square matrix was required.
	ErrNotSquare = errors.New("linalg: matrix is not square")

	// ErrBadShape indicates negative dimensions, or an empty matrix where
	// at least one element is required.
	ErrBadShape = errors.New("linalg: invalid shape")

	// ErrSingular indicates that elimination found a column with no nonzero pivot.
	ErrSingular = errors.New("linalg: singular matrix")
)

// SingularError reports the workspace column whose pivot search failed.
type SingularError struct {
	Column int
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("linalg: singular matrix (no pivot in column %d)", e.Column)
}

func (e *SingularError) Unwrap() error {
	return ErrSingular
}

func outOfRange(what string, idx, n int) error {
	return fmt.Errorf("%w: %s %d not in [0, %d)", ErrOutOfRange, what, idx, n)
}

func sizeMismatch(want, got int) error {
	return fmt.Errorf("%w: %d != %d", ErrSizeMismatch, want, got)
}

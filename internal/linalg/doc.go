// Package linalg provides fixed-size dense vectors and matrices over a
// generic scalar type.
//
// The package is the numeric core of the simulator:
//
//   - [Vector]: fixed-length owned buffer with arithmetic and dot product
//   - [Matrix]: row-major grid with row/column access, products and
//     Gauss-Jordan inversion ([Matrix.Inverse])
//
// Lengths and shapes never change after construction. Every operation that
// can fail returns one of the package sentinels, matched with errors.Is:
// [ErrOutOfRange] for bad indices, [ErrSizeMismatch] and
// [ErrDimensionMismatch] for incompatible operands, [ErrNotSquare] and
// [ErrSingular] from inversion.
//
// # Ownership
//
// Clone returns an independent deep copy. Move hands the buffer to a new
// value and leaves the source empty:
//
//	x := linalg.NewVector[float64](7)
//	y := x.Move() // x.Len() == 0
//
// Equality is exact. Floating-point callers that need a tolerance should
// compare elements themselves.
package linalg

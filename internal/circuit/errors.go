package circuit

import "errors"

var (
	// ErrInvalidCircuit indicates a circuit description that cannot be assembled.
	ErrInvalidCircuit = errors.New("circuit: invalid circuit")

	// ErrUnknownParam indicates a parameter name the model does not define.
	ErrUnknownParam = errors.New("circuit: unknown parameter")
)

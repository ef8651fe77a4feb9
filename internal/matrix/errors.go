package matrix

import "errors"

// Sentinel errors returned by this package. Callers match them with
// errors.Is; wrapped variants carry position details.
var (
	// ErrInvalidDimension is returned when a constructor is asked for a
	// matrix with a non-positive dimension.
	ErrInvalidDimension = errors.New("matrix: dimension must be positive")

	// ErrDimensionMismatch is returned when operand shapes do not agree.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNegativePower is returned by Pow for a negative exponent.
	ErrNegativePower = errors.New("matrix: negative power")
)

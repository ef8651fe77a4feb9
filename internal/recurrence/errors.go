package recurrence

import "errors"

// Sentinel errors for sequence construction and term evaluation. Callers
// match them with errors.Is; evaluation errors may arrive wrapped with
// position information.
var (
	// ErrLengthMismatch is returned by New when the initial terms and the
	// coefficients have different lengths. It is checked before any other
	// validation.
	ErrLengthMismatch = errors.New("recurrence: initial terms and coefficients differ in length")

	// ErrUnsupportedOrder is returned by New for orders below 2, where no
	// recurrence of this shape exists.
	ErrUnsupportedOrder = errors.New("recurrence: order must be at least 2")

	// ErrBinaryRecurrence is returned by New for order exactly 2. Binary
	// recurrences have dedicated fast-doubling engines and are deliberately
	// not served by the general order-d machinery.
	ErrBinaryRecurrence = errors.New("recurrence: order 2 sequences have a dedicated binary engine")

	// ErrNegativeIndex is returned when a term index is negative.
	ErrNegativeIndex = errors.New("recurrence: term index must be non-negative")

	// ErrInvalidModulus is returned for negative moduli. Zero (or nil) is
	// not an error: it is the sentinel for exact, unreduced evaluation.
	ErrInvalidModulus = errors.New("recurrence: modulus must be non-negative")

	// ErrResultTooLarge is returned when the estimated bit length of an
	// exact result exceeds the limit configured in Options.MaxResultBits.
	ErrResultTooLarge = errors.New("recurrence: estimated result exceeds the configured size limit")
)

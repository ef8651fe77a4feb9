package matrix

import (
	"fmt"
	"math/big"

	"github.com/agbru/reccalc/internal/ring"
)

// Companion builds the bottom-form companion matrix of the recurrence with
// coefficients a_0..a_{d-1}, where a_0 multiplies the most recent prior
// term. Rows 0..d-2 carry a single 1 on the superdiagonal, shifting the
// state window; the bottom row holds the coefficients oldest-first:
//
//	[      0       1  ...       0]
//	[      0       0  ...       1]
//	[a_{d-1} a_{d-2}  ...     a_0]
//
// Applied to a state vector (u_k, ..., u_{k+d-1}) it yields
// (u_{k+1}, ..., u_{k+d}), so the d-th power advances the window d steps.
//
// Returns ErrInvalidDimension for an empty coefficient slice.
func Companion[E any](r ring.Ring[E], coeffs []*big.Int) (*Dense[E], error) {
	d := len(coeffs)
	if d == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrInvalidDimension)
	}
	m, err := New(r, d)
	if err != nil {
		return nil, err
	}
	for i := 0; i < d-1; i++ {
		m.Set(i, i+1, r.One())
	}
	for j := 0; j < d; j++ {
		m.Set(d-1, j, r.FromInt(coeffs[d-1-j]))
	}
	return m, nil
}

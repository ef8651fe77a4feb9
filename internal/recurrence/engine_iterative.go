package recurrence

import (
	"context"
	"fmt"
	"math/big"

	"github.com/agbru/reccalc/internal/ring"
)

// IterativeEvaluator slides the d-term state window forward one step at a
// time: O(n*d) ring operations and O(d) memory. It is the straightforward
// reference implementation the logarithmic engines are checked against,
// and the natural choice when consecutive terms are needed anyway.
type IterativeEvaluator struct{}

// Name returns the name of the algorithm.
func (e *IterativeEvaluator) Name() string {
	return "iterative"
}

// EvaluateCore selects the coefficient ring for the requested modulus and
// walks the recurrence forward over it.
func (e *IterativeEvaluator) EvaluateCore(ctx context.Context, reporter ProgressReporter, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error) {
	switch {
	case !modulusActive(modulus):
		return iterativeTerm[*big.Int](ctx, reporter, ring.Integers{}, seq, n)
	case modulus.IsUint64():
		r, err := ring.NewMod64(modulus.Uint64())
		if err != nil {
			return nil, err
		}
		return iterativeTerm[uint64](ctx, reporter, r, seq, n)
	default:
		r, err := ring.NewModular(modulus)
		if err != nil {
			return nil, err
		}
		return iterativeTerm[*big.Int](ctx, reporter, r, seq, n)
	}
}

// iterativeTerm advances the window (u_k, ..., u_{k+d-1}) until it ends at
// u_n. Cancellation and progress are checked every iterativeCancelStride
// steps to keep the hot loop branch-light.
func iterativeTerm[E any](ctx context.Context, reporter ProgressReporter, r ring.Ring[E], seq *Sequence, n int64) (*big.Int, error) {
	d := seq.order

	window := make([]E, d)
	for i, u := range seq.initial {
		window[i] = r.FromInt(u)
	}
	coeffs := make([]E, d)
	for i, a := range seq.coeffs {
		coeffs[i] = r.FromInt(a)
	}

	steps := n - int64(d) + 1
	for k := int64(0); k < steps; k++ {
		if k&(iterativeCancelStride-1) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("iteration canceled at step %d/%d: %w", k, steps, err)
			}
			if reporter != nil {
				reporter(float64(k) / float64(steps))
			}
		}

		// u_{k+d} = a_0*u_{k+d-1} + ... + a_{d-1}*u_k
		next := r.Zero()
		for j := 0; j < d; j++ {
			next = r.AddMul(next, coeffs[j], window[d-1-j])
		}
		copy(window, window[1:])
		window[d-1] = next
	}
	return r.ToInt(window[d-1]), nil
}

package recurrence

import (
	"context"
	"math/big"
	"math/bits"

	"github.com/agbru/reccalc/internal/matrix"
	"github.com/agbru/reccalc/internal/ring"
)

// MatrixEvaluator computes u_n as the first coordinate of C^n applied to
// the initial state window, where C is the companion matrix of the
// recurrence. Binary exponentiation takes O(log n) matrix products of
// O(d^3) ring operations each, with row-parallel products once entries
// grow past the configured threshold.
//
// This is the default engine: exact over the integers when no modulus is
// given, over the word-size or big modular ring otherwise.
type MatrixEvaluator struct{}

// Name returns the name of the algorithm.
func (e *MatrixEvaluator) Name() string {
	return "matrix"
}

// EvaluateCore selects the coefficient ring for the requested modulus and
// runs the shared power loop over it. The ring choice is the only place
// exact and modular evaluation diverge.
func (e *MatrixEvaluator) EvaluateCore(ctx context.Context, reporter ProgressReporter, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error) {
	switch {
	case !modulusActive(modulus):
		return matrixTerm[*big.Int](ctx, reporter, ring.Integers{}, seq, n, opts, false)
	case modulus.IsUint64():
		r, err := ring.NewMod64(modulus.Uint64())
		if err != nil {
			return nil, err
		}
		return matrixTerm[uint64](ctx, reporter, r, seq, n, opts, true)
	default:
		r, err := ring.NewModular(modulus)
		if err != nil {
			return nil, err
		}
		return matrixTerm[*big.Int](ctx, reporter, r, seq, n, opts, true)
	}
}

// matrixTerm raises the companion matrix over r to the n-th power and
// reads u_n off the product with the initial state vector. uniformWork
// selects the progress model: modular entries stay word-sized so every
// exponent bit costs the same, while exact entries double per squaring.
func matrixTerm[E any](ctx context.Context, reporter ProgressReporter, r ring.Ring[E], seq *Sequence, n int64, opts Options, uniformWork bool) (*big.Int, error) {
	companion, err := matrix.Companion(r, seq.coeffs)
	if err != nil {
		return nil, err
	}

	numBits := bits.Len64(uint64(n))
	power, err := companion.Pow(ctx, n, matrix.PowOptions{
		ParallelThreshold: opts.ParallelThreshold,
		ParallelRows:      opts.ParallelOrder,
		OnBit:             bitProgress(reporter, numBits, uniformWork),
	})
	if err != nil {
		return nil, err
	}

	state := make([]E, seq.order)
	for i, u := range seq.initial {
		state[i] = r.FromInt(u)
	}
	advanced, err := power.MulVec(state)
	if err != nil {
		return nil, err
	}
	return r.ToInt(advanced[0]), nil
}

package recurrence

import (
	"context"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/agbru/reccalc/internal/ring"
)

// PolyEvaluator computes u_n through the quotient ring R[x]/(p(x)) with p
// the characteristic polynomial: raise x to the n-th power modulo p by
// square-and-multiply, then combine the residue q with the initial terms,
// u_n = q_0*u_0 + ... + q_{d-1}*u_{d-1}.
//
// Each exponent bit costs O(d^2) ring operations against the matrix
// engine's O(d^3), at the price of less parallelism; it tends to win for
// higher orders and modular evaluation.
type PolyEvaluator struct{}

// Name returns the name of the algorithm.
func (e *PolyEvaluator) Name() string {
	return "poly"
}

// EvaluateCore selects the coefficient ring for the requested modulus and
// runs the shared residue power loop over it.
func (e *PolyEvaluator) EvaluateCore(ctx context.Context, reporter ProgressReporter, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error) {
	switch {
	case !modulusActive(modulus):
		return polyTerm[*big.Int](ctx, reporter, ring.Integers{}, seq, n, false)
	case modulus.IsUint64():
		r, err := ring.NewMod64(modulus.Uint64())
		if err != nil {
			return nil, err
		}
		return polyTerm[uint64](ctx, reporter, r, seq, n, true)
	default:
		r, err := ring.NewModular(modulus)
		if err != nil {
			return nil, err
		}
		return polyTerm[*big.Int](ctx, reporter, r, seq, n, true)
	}
}

// polyTerm computes x^n mod the characteristic polynomial over r and
// bends the residue back onto the initial terms. Residues are dense
// degree-(d-1) coefficient slices; the reduction rule
//
//	x^d = a_{d-1} + a_{d-2}*x + ... + a_0*x^{d-1}
//
// is the recurrence itself read as a polynomial identity.
func polyTerm[E any](ctx context.Context, reporter ProgressReporter, r ring.Ring[E], seq *Sequence, n int64, uniformWork bool) (*big.Int, error) {
	d := seq.order

	reduction := make([]E, d)
	for j := 0; j < d; j++ {
		reduction[j] = r.FromInt(seq.coeffs[d-1-j])
	}

	// res = 1, base = x; d >= 3 guarantees x is already reduced.
	res := zeroPoly(r, d)
	res[0] = r.One()
	base := zeroPoly(r, d)
	base[1] = r.One()

	numBits := bits.Len64(uint64(n))
	onBit := bitProgress(reporter, numBits, uniformWork)
	for i := 0; i < numBits; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("residue power canceled at bit %d/%d: %w", i, numBits-1, err)
		}

		if (n>>uint(i))&1 == 1 {
			res = polyMulMod(r, res, base, reduction)
		}
		if i < numBits-1 {
			base = polyMulMod(r, base, base, reduction)
		}

		if onBit != nil {
			onBit(i, numBits)
		}
	}

	acc := r.Zero()
	for j := 0; j < d; j++ {
		acc = r.AddMul(acc, res[j], r.FromInt(seq.initial[j]))
	}
	return r.ToInt(acc), nil
}

// polyMulMod returns a*b reduced modulo the characteristic polynomial,
// folding the upper half of the schoolbook product down through the
// reduction rule, highest degree first.
func polyMulMod[E any](r ring.Ring[E], a, b, reduction []E) []E {
	d := len(reduction)
	conv := make([]E, 2*d-1)
	for i := range conv {
		conv[i] = r.Zero()
	}
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			conv[i+j] = r.AddMul(conv[i+j], a[i], b[j])
		}
	}
	for k := 2*d - 2; k >= d; k-- {
		c := conv[k]
		for j := 0; j < d; j++ {
			conv[k-d+j] = r.AddMul(conv[k-d+j], c, reduction[j])
		}
	}
	return conv[:d]
}

func zeroPoly[E any](r ring.Ring[E], d int) []E {
	p := make([]E, d)
	for i := range p {
		p[i] = r.Zero()
	}
	return p
}

// Package berlekamp finds the shortest linear recurrence satisfied by a
// finite integer sample, via the Berlekamp-Massey algorithm run over the
// rationals. The engine uses it to compute minimal polynomials: feed in the
// first 2d terms of an order-d sequence and the result is the monic minimal
// polynomial of the whole sequence, which divides the characteristic
// polynomial and equals it unless the recurrence is degenerate.
//
// Arithmetic is exact (math/big.Rat), so there is no modulus to choose and
// no probability of failure; the classic length-doubling argument makes 2L
// terms sufficient to pin down a complexity-L sequence.
//
// Reference: Massey, "Shift-register synthesis and BCH decoding" (1969).
package berlekamp

import (
	"errors"
	"math/big"

	"github.com/agbru/reccalc/internal/intpoly"
)

// ErrNotIntegral is returned when the shortest recurrence for the sample
// has rational coefficients, e.g. the geometric sample 2, 1 with ratio 1/2.
// Samples produced by a monic integer recurrence never hit this: a monic
// rational divisor of a monic integer polynomial is itself integral.
var ErrNotIntegral = errors.New("berlekamp: minimal polynomial has non-integer coefficients")

// MinimalPolynomial returns the monic minimal polynomial of the shortest
// linear recurrence generating sample. The all-zero (or empty) sample is
// annihilated by the empty recurrence and yields the constant polynomial 1.
//
// For the result to be the minimal polynomial of an infinite sequence, the
// sample must contain at least twice as many terms as the sequence's true
// linear complexity; callers evaluating an order-d recurrence pass its
// first 2d terms.
func MinimalPolynomial(sample []*big.Int) (*intpoly.Polynomial, error) {
	conn, complexity := connection(sample)

	// The minimal polynomial is the degree-L reversal of the connection
	// polynomial: p(x) = x^L * C(1/x).
	coeffs := make([]*big.Int, complexity+1)
	for i := 0; i <= complexity; i++ {
		c := ratCoeff(conn, complexity-i)
		if !c.IsInt() {
			return nil, ErrNotIntegral
		}
		coeffs[i] = new(big.Int).Set(c.Num())
	}
	return intpoly.New(coeffs), nil
}

// connection runs Berlekamp-Massey over the rationals and returns the
// connection polynomial C(x) = 1 + c_1*x + ... + c_L*x^L together with the
// linear complexity L, such that
//
//	s[n] + c_1*s[n-1] + ... + c_L*s[n-L] = 0  for L <= n < len(s).
func connection(sample []*big.Int) ([]*big.Rat, int) {
	s := make([]*big.Rat, len(sample))
	for i, v := range sample {
		s[i] = new(big.Rat).SetInt(v)
	}

	// Current connection polynomial and the last one before the most
	// recent length change, with the discrepancy that caused it.
	conn := []*big.Rat{ratOne()}
	prev := []*big.Rat{ratOne()}
	prevDelta := ratOne()
	complexity := 0
	shift := 1

	var t big.Rat
	for n := range s {
		// Discrepancy: how far the current register is from predicting s[n].
		delta := new(big.Rat).Set(s[n])
		for i := 1; i <= complexity && i <= n; i++ {
			t.Mul(ratCoeff(conn, i), s[n-i])
			delta.Add(delta, &t)
		}

		switch {
		case delta.Sign() == 0:
			shift++
		case 2*complexity <= n:
			// The register is too short; lengthen it and remember the
			// outgoing polynomial for future corrections.
			saved := cloneRats(conn)
			conn = correct(conn, prev, delta, prevDelta, shift)
			complexity = n + 1 - complexity
			prev = saved
			prevDelta = delta
			shift = 1
		default:
			conn = correct(conn, prev, delta, prevDelta, shift)
			shift++
		}
	}
	return conn, complexity
}

// correct returns conn - (delta/prevDelta) * x^shift * prev.
func correct(conn, prev []*big.Rat, delta, prevDelta *big.Rat, shift int) []*big.Rat {
	coef := new(big.Rat).Quo(delta, prevDelta)
	n := shift + len(prev)
	if len(conn) > n {
		n = len(conn)
	}
	out := make([]*big.Rat, n)
	for i := range out {
		out[i] = new(big.Rat).Set(ratCoeff(conn, i))
	}
	var t big.Rat
	for i, p := range prev {
		t.Mul(coef, p)
		out[shift+i].Sub(out[shift+i], &t)
	}
	return out
}

func ratCoeff(p []*big.Rat, i int) *big.Rat {
	if i < 0 || i >= len(p) {
		return new(big.Rat)
	}
	return p[i]
}

func cloneRats(p []*big.Rat) []*big.Rat {
	out := make([]*big.Rat, len(p))
	for i, v := range p {
		out[i] = new(big.Rat).Set(v)
	}
	return out
}

func ratOne() *big.Rat { return big.NewRat(1, 1) }

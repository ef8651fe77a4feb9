// Package recurrence implements integer linear recurrence sequences of
// order d >= 3: sequences defined by d initial terms u_0..u_{d-1} and the
// relation
//
//	u_{n+d} = a_0*u_{n+d-1} + a_1*u_{n+d-2} + ... + a_{d-1}*u_n.
//
// The package exposes an `Evaluator` interface that abstracts the
// underlying term evaluation algorithm, allowing different strategies
// (companion-matrix exponentiation, modular-polynomial exponentiation,
// plain iteration) to be used interchangeably, plus derived algebraic
// queries: characteristic and minimal polynomials, the companion
// transformation matrix, and exact or modular term evaluation at arbitrary
// indices.
package recurrence

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/agbru/reccalc/internal/berlekamp"
	"github.com/agbru/reccalc/internal/intpoly"
	"github.com/agbru/reccalc/internal/matrix"
	"github.com/agbru/reccalc/internal/ring"
)

// Sequence is an immutable integer linear recurrence of order d >= 3.
// Coefficient a_0 multiplies the most recent term u_{n+d-1} and a_{d-1}
// the oldest term u_n. Both defining slices are copied on construction and
// on every accessor, so a Sequence is safe for concurrent use.
type Sequence struct {
	initial []*big.Int // u_0..u_{d-1}
	coeffs  []*big.Int // a_0..a_{d-1}
	order   int
}

// New validates the defining data and constructs a Sequence.
//
// Validation happens in a fixed order:
//  1. len(u) != len(a) → ErrLengthMismatch,
//  2. order below 2 → ErrUnsupportedOrder,
//  3. order exactly 2 → ErrBinaryRecurrence (fast-doubling engines own
//     the binary case).
//
// Zero coefficients are kept as given; the order is never normalized down.
//
// Parameters:
//   - u: The initial terms u_0..u_{d-1}.
//   - a: The recurrence coefficients, a_0 applying to the newest term.
//
// Returns:
//   - *Sequence: The validated, immutable sequence.
//   - error: One of the sentinel construction errors above.
func New(u, a []*big.Int) (*Sequence, error) {
	if len(u) != len(a) {
		return nil, fmt.Errorf("%w: %d initial terms, %d coefficients",
			ErrLengthMismatch, len(u), len(a))
	}
	d := len(u)
	if d < 2 {
		return nil, fmt.Errorf("%w: got order %d", ErrUnsupportedOrder, d)
	}
	if d == 2 {
		return nil, ErrBinaryRecurrence
	}
	return &Sequence{
		initial: copyBigs(u),
		coeffs:  copyBigs(a),
		order:   d,
	}, nil
}

// MustNew is New for statically known-good definitions; it panics on error.
// Intended for tests and package-level examples.
func MustNew(u, a []*big.Int) *Sequence {
	s, err := New(u, a)
	if err != nil {
		panic(fmt.Sprintf("recurrence: MustNew: %v", err))
	}
	return s
}

// Order returns d, the common length of the initial terms and coefficients.
func (s *Sequence) Order() int { return s.order }

// Initial returns a copy of the initial terms u_0..u_{d-1}.
func (s *Sequence) Initial() []*big.Int { return copyBigs(s.initial) }

// Coefficients returns a copy of the coefficients a_0..a_{d-1}.
func (s *Sequence) Coefficients() []*big.Int { return copyBigs(s.coeffs) }

// Equal reports whether both sequences have identical initial terms and
// coefficients. Sequences of different order are never equal, even when
// one embeds the other (compare minimal polynomials for that question).
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil || s.order != other.order {
		return false
	}
	for i := 0; i < s.order; i++ {
		if s.initial[i].Cmp(other.initial[i]) != 0 || s.coeffs[i].Cmp(other.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// Term evaluates u_n with the default engine. A nil or zero modulus means
// exact evaluation over the integers; a positive modulus reduces the result
// to the canonical representative in [0, modulus). See Evaluator.Evaluate
// for the error contract.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - n: The term index, n >= 0.
//   - modulus: Optional modulus; nil or 0 disables reduction.
//
// Returns:
//   - *big.Int: The value of u_n, possibly reduced.
//   - error: ErrNegativeIndex, ErrInvalidModulus, or a wrapped context
//     error on cancellation.
func (s *Sequence) Term(ctx context.Context, n int64, modulus *big.Int) (*big.Int, error) {
	eval, err := GlobalFactory().Get(DefaultEngine)
	if err != nil {
		return nil, err
	}
	return eval.Evaluate(ctx, nil, 0, s, n, modulus, Options{})
}

// TermAt is Term without reduction: the exact integer u_n.
func (s *Sequence) TermAt(ctx context.Context, n int64) (*big.Int, error) {
	return s.Term(ctx, n, nil)
}

// CharacteristicPolynomial returns
//
//	x^d - a_0*x^{d-1} - a_1*x^{d-2} - ... - a_{d-1},
//
// the monic degree-d polynomial whose companion matrix drives the
// recurrence. It depends on the coefficients only.
func (s *Sequence) CharacteristicPolynomial() *intpoly.Polynomial {
	coeffs := make([]*big.Int, s.order+1)
	for i := 0; i < s.order; i++ {
		coeffs[i] = new(big.Int).Neg(s.coeffs[s.order-1-i])
	}
	coeffs[s.order] = big.NewInt(1)
	return intpoly.New(coeffs)
}

// MinimalPolynomial returns the monic minimal polynomial of the sequence:
// the lowest-degree monic polynomial whose recurrence the terms satisfy.
// It divides the characteristic polynomial and equals it unless the
// sequence is degenerate (e.g. Fibonacci data embedded in an order-3
// definition). The all-zero sequence yields the constant polynomial 1.
//
// The computation samples the first 2d terms and runs Berlekamp-Massey
// over the rationals; it is a pure derived query and is not memoized.
func (s *Sequence) MinimalPolynomial(ctx context.Context) (*intpoly.Polynomial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sample := s.sample(2 * s.order)
	p, err := berlekamp.MinimalPolynomial(sample)
	if err != nil {
		// Unreachable for integer recurrences; surfaced for diagnostics.
		return nil, fmt.Errorf("recurrence: minimal polynomial: %w", err)
	}
	return p, nil
}

// TransformationMatrix returns the d x d companion matrix C over the
// integers, in bottom form: superdiagonal ones, last row
// a_{d-1}, ..., a_0, so that C advances the state window
// (u_k, ..., u_{k+d-1}) to (u_{k+1}, ..., u_{k+d}).
func (s *Sequence) TransformationMatrix() *matrix.Dense[*big.Int] {
	m, err := matrix.Companion[*big.Int](ring.Integers{}, s.coeffs)
	if err != nil {
		// New guarantees d >= 3, so Companion cannot reject the input.
		panic(fmt.Sprintf("recurrence: companion construction: %v", err))
	}
	return m
}

// String renders the defining recurrence and initial conditions:
//
//	Linear recurrence sequence defined by: u_{n+3} = -2*u_{n+2} + 1*u_{n+1} + 2*u_{n+0};
//	With initial conditions: u_0 = 0, u_1 = 1, u_2 = 2
//
// The format is deterministic; coefficients print signed and the terms are
// always joined by " + ".
func (s *Sequence) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Linear recurrence sequence defined by: u_{n+%d} = ", s.order)
	for i := 0; i < s.order; i++ {
		if i > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%s*u_{n+%d}", s.coeffs[i], s.order-i-1)
	}
	b.WriteString(";\nWith initial conditions: ")
	for i := 0; i < s.order; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "u_%d = %s", i, s.initial[i])
	}
	return b.String()
}

// sample returns the first count terms by direct iteration. Used for
// minimal polynomial extraction and by tests as a cheap oracle.
func (s *Sequence) sample(count int) []*big.Int {
	out := make([]*big.Int, count)
	for i := 0; i < count && i < s.order; i++ {
		out[i] = new(big.Int).Set(s.initial[i])
	}
	var t big.Int
	for i := s.order; i < count; i++ {
		next := new(big.Int)
		for j := 0; j < s.order; j++ {
			// a_j pairs with the term j steps below the newest.
			t.Mul(s.coeffs[j], out[i-1-j])
			next.Add(next, &t)
		}
		out[i] = next
	}
	return out
}

func copyBigs(src []*big.Int) []*big.Int {
	out := make([]*big.Int, len(src))
	for i, v := range src {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

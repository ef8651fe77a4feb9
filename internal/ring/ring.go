// Package ring provides the coefficient rings that term evaluation runs
// over: the exact integers, integers modulo a big modulus, integers modulo
// a machine-word modulus, and (behind the gmp build tag) GMP-backed exact
// integers.
//
// The point of the abstraction is that the companion-matrix exponentiation
// is written once, generically over a Ring, instead of as separate exact
// and modular code paths. Evaluators pick the concrete ring from the
// modulus and instantiate the shared routine with it.
package ring

import (
	"errors"
	"math/big"
)

// ErrNonPositiveModulus is returned by modular ring constructors when the
// modulus is zero or negative. The "no reduction" sentinel is handled by
// callers before a ring is constructed, never inside this package.
var ErrNonPositiveModulus = errors.New("ring: modulus must be positive")

// Ring is a commutative ring with identity, parameterized by its element
// representation. Implementations must be safe for concurrent use; all
// methods except AddMul must treat their arguments as immutable and return
// fresh or value-copied elements.
type Ring[E any] interface {
	// Zero returns the additive identity.
	Zero() E

	// One returns the multiplicative identity.
	One() E

	// FromInt returns the canonical image of v in the ring. v is not
	// retained or modified.
	FromInt(v *big.Int) E

	// Add returns x + y.
	Add(x, y E) E

	// Mul returns x * y.
	Mul(x, y E) E

	// AddMul returns acc + x*y. Implementations may reuse acc's storage;
	// the caller must own acc and must not alias it with x or y. This is
	// the inner-loop operation of matrix products.
	AddMul(acc, x, y E) E

	// Equal reports whether x and y are the same ring element.
	Equal(x, y E) bool

	// BitLen reports the size of x in bits. The matrix layer uses it to
	// decide when operands are large enough for row-parallel products and
	// to weight progress estimates.
	BitLen(x E) int

	// ToInt lifts x back to an integer representative. For modular rings
	// this is the canonical representative in [0, m). The result is owned
	// by the caller.
	ToInt(x E) *big.Int

	// Name identifies the ring in logs and error messages.
	Name() string
}

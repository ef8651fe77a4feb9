//go:build gmp

package ring

import (
	"math/big"

	"github.com/ncw/gmp"
)

// GMP is the ring of exact integers backed by the GNU MP library. It is
// only available with the "gmp" build tag and libgmp installed; the engine
// registered on top of it is opt-in for the same reason. Entries convert to
// and from math/big at the ring boundary so the rest of the system never
// sees a gmp.Int.
type GMP struct{}

var _ Ring[*gmp.Int] = GMP{}

// Zero returns a fresh gmp.Int holding 0.
func (GMP) Zero() *gmp.Int { return gmp.NewInt(0) }

// One returns a fresh gmp.Int holding 1.
func (GMP) One() *gmp.Int { return gmp.NewInt(1) }

// FromInt converts v to a gmp.Int. The byte round-trip drops the sign, so
// it is restored explicitly.
func (GMP) FromInt(v *big.Int) *gmp.Int {
	t := new(gmp.Int).SetBytes(v.Bytes())
	if v.Sign() < 0 {
		t.Neg(t)
	}
	return t
}

// Add returns x + y.
func (GMP) Add(x, y *gmp.Int) *gmp.Int { return new(gmp.Int).Add(x, y) }

// Mul returns x * y.
func (GMP) Mul(x, y *gmp.Int) *gmp.Int { return new(gmp.Int).Mul(x, y) }

// AddMul returns acc + x*y, reusing acc's storage.
func (GMP) AddMul(acc, x, y *gmp.Int) *gmp.Int {
	var t gmp.Int
	t.Mul(x, y)
	return acc.Add(acc, &t)
}

// Equal reports whether x == y.
func (GMP) Equal(x, y *gmp.Int) bool { return x.Cmp(y) == 0 }

// ToInt converts x back to a math/big integer, restoring the sign dropped
// by the byte round-trip.
func (GMP) ToInt(x *gmp.Int) *big.Int {
	t := new(big.Int).SetBytes(x.Bytes())
	if x.Sign() < 0 {
		t.Neg(t)
	}
	return t
}

// BitLen reports the bit length of x.
func (GMP) BitLen(x *gmp.Int) int { return x.BitLen() }

// Name identifies the ring.
func (GMP) Name() string { return "integers (gmp)" }

package ring

import (
	"math/big"
	"math/bits"
	"strconv"

	"lukechampine.com/uint128"
)

// Mod64 is the ring of integers modulo a modulus that fits in a machine
// word. Elements are reduced uint64 representatives; products go through a
// full 128-bit intermediate, so any modulus up to 2^64-1 is exact. For the
// moduli typical of competitive number theory (for example 1e9+7) this path
// avoids big.Int allocation entirely inside the exponentiation loop.
type Mod64 struct {
	m uint64
}

var _ Ring[uint64] = Mod64{}

// NewMod64 constructs the ring of integers modulo m. Returns
// ErrNonPositiveModulus when m == 0; m == 1 is legal and yields the zero
// ring.
func NewMod64(m uint64) (Mod64, error) {
	if m == 0 {
		return Mod64{}, ErrNonPositiveModulus
	}
	return Mod64{m: m}, nil
}

// Modulus returns the modulus.
func (r Mod64) Modulus() uint64 { return r.m }

// Zero returns 0.
func (r Mod64) Zero() uint64 { return 0 }

// One returns 1 mod m (0 when m == 1).
func (r Mod64) One() uint64 { return 1 % r.m }

// FromInt returns v mod m as a reduced representative. Negative v reduces
// to the canonical non-negative residue.
func (r Mod64) FromInt(v *big.Int) uint64 {
	var t big.Int
	t.Mod(v, new(big.Int).SetUint64(r.m))
	return t.Uint64()
}

// Add returns x + y mod m. Operands must already be reduced; the sum can
// still wrap uint64 when m is close to 2^64, hence the explicit carry.
func (r Mod64) Add(x, y uint64) uint64 {
	sum, carry := bits.Add64(x, y, 0)
	if carry != 0 || sum >= r.m {
		sum -= r.m
	}
	return sum
}

// Mul returns x * y mod m via a 128-bit product.
func (r Mod64) Mul(x, y uint64) uint64 {
	return uint128.From64(x).Mul64(y).Mod64(r.m)
}

// AddMul returns acc + x*y mod m.
func (r Mod64) AddMul(acc, x, y uint64) uint64 {
	return r.Add(acc, r.Mul(x, y))
}

// Equal reports whether x == y.
func (r Mod64) Equal(x, y uint64) bool { return x == y }

// ToInt lifts x into a big.Int.
func (r Mod64) ToInt(x uint64) *big.Int { return new(big.Int).SetUint64(x) }

// BitLen reports the bit length of x.
func (r Mod64) BitLen(x uint64) int { return bits.Len64(x) }

// Name identifies the ring.
func (r Mod64) Name() string {
	return "integers modulo " + strconv.FormatUint(r.m, 10)
}

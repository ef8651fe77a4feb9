package ring

import "math/big"

// Integers is the ring of exact arbitrary-precision integers. The zero
// value is ready to use.
type Integers struct{}

var _ Ring[*big.Int] = Integers{}

// Zero returns a fresh big.Int holding 0.
func (Integers) Zero() *big.Int { return new(big.Int) }

// One returns a fresh big.Int holding 1.
func (Integers) One() *big.Int { return big.NewInt(1) }

// FromInt returns a copy of v.
func (Integers) FromInt(v *big.Int) *big.Int { return new(big.Int).Set(v) }

// Add returns x + y without modifying either operand.
func (Integers) Add(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) }

// Mul returns x * y without modifying either operand.
func (Integers) Mul(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) }

// AddMul returns acc + x*y, reusing acc's storage.
func (Integers) AddMul(acc, x, y *big.Int) *big.Int {
	var t big.Int
	t.Mul(x, y)
	return acc.Add(acc, &t)
}

// Equal reports whether x == y.
func (Integers) Equal(x, y *big.Int) bool { return x.Cmp(y) == 0 }

// ToInt returns a copy of x.
func (Integers) ToInt(x *big.Int) *big.Int { return new(big.Int).Set(x) }

// BitLen reports the bit length of x.
func (Integers) BitLen(x *big.Int) int { return x.BitLen() }

// Name identifies the ring.
func (Integers) Name() string { return "integers" }

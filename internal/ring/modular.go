package ring

import "math/big"

// Modular is the ring of integers modulo an arbitrary positive modulus.
// Elements are canonical representatives in [0, m); big.Int.Mod already
// yields the non-negative representative, which is what keeps negative
// recurrence coefficients well-behaved after reduction.
type Modular struct {
	m *big.Int
}

var _ Ring[*big.Int] = Modular{}

// NewModular constructs the ring of integers modulo m. The modulus is
// copied. Returns ErrNonPositiveModulus unless m >= 1; m == 1 is legal and
// yields the zero ring.
func NewModular(m *big.Int) (Modular, error) {
	if m == nil || m.Sign() <= 0 {
		return Modular{}, ErrNonPositiveModulus
	}
	return Modular{m: new(big.Int).Set(m)}, nil
}

// Modulus returns a copy of the modulus.
func (r Modular) Modulus() *big.Int { return new(big.Int).Set(r.m) }

// Zero returns a fresh big.Int holding 0.
func (r Modular) Zero() *big.Int { return new(big.Int) }

// One returns 1 mod m (0 when m == 1).
func (r Modular) One() *big.Int {
	return new(big.Int).Mod(big.NewInt(1), r.m)
}

// FromInt returns v mod m as a canonical representative.
func (r Modular) FromInt(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, r.m)
}

// Add returns x + y mod m.
func (r Modular) Add(x, y *big.Int) *big.Int {
	t := new(big.Int).Add(x, y)
	return t.Mod(t, r.m)
}

// Mul returns x * y mod m.
func (r Modular) Mul(x, y *big.Int) *big.Int {
	t := new(big.Int).Mul(x, y)
	return t.Mod(t, r.m)
}

// AddMul returns acc + x*y mod m, reusing acc's storage.
func (r Modular) AddMul(acc, x, y *big.Int) *big.Int {
	var t big.Int
	t.Mul(x, y)
	acc.Add(acc, &t)
	return acc.Mod(acc, r.m)
}

// Equal reports whether x == y. Elements are canonical, so this is a plain
// comparison.
func (r Modular) Equal(x, y *big.Int) bool { return x.Cmp(y) == 0 }

// ToInt returns a copy of the canonical representative.
func (r Modular) ToInt(x *big.Int) *big.Int { return new(big.Int).Set(x) }

// BitLen reports the bit length of x. Entries are canonical, so this is
// bounded by the modulus size.
func (r Modular) BitLen(x *big.Int) int { return x.BitLen() }

// Name identifies the ring.
func (r Modular) Name() string { return "integers modulo " + r.m.String() }

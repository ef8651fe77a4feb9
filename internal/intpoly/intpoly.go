// Package intpoly implements univariate polynomials over the integers.
// Coefficients are stored in ascending order of degree and trimmed, so the
// representation of a polynomial is canonical and structural equality is
// element-wise. All operations are immutable: inputs are copied in, results
// are fresh values, and accessors hand back copies.
//
// The engine uses it for characteristic and minimal polynomials, where the
// divisor in every division that matters is monic; exact division by a
// monic polynomial stays inside the integers, which is all this package
// offers (no rational or field coefficients).
package intpoly

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

// ErrDivisorNotMonic is returned by Div when the divisor's leading
// coefficient is not 1. Division by a monic polynomial is the only form
// guaranteed to stay in integer coefficients.
var ErrDivisorNotMonic = errors.New("intpoly: divisor must be monic")

// Polynomial is an immutable polynomial over the integers. The zero value
// is the zero polynomial.
type Polynomial struct {
	// coeffs[i] is the coefficient of x^i; trailing zeros are trimmed, so
	// the slice is empty exactly for the zero polynomial.
	coeffs []*big.Int
}

// New constructs a polynomial from ascending coefficients. The input is
// copied and high-degree zeros are trimmed.
func New(coeffs []*big.Int) *Polynomial {
	end := len(coeffs)
	for end > 0 && coeffs[end-1].Sign() == 0 {
		end--
	}
	out := make([]*big.Int, end)
	for i := 0; i < end; i++ {
		out[i] = new(big.Int).Set(coeffs[i])
	}
	return &Polynomial{coeffs: out}
}

// FromInt64s constructs a polynomial from ascending int64 coefficients.
func FromInt64s(coeffs ...int64) *Polynomial {
	bigs := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		bigs[i] = big.NewInt(c)
	}
	return New(bigs)
}

// Zero returns the zero polynomial.
func Zero() *Polynomial { return &Polynomial{} }

// One returns the constant polynomial 1.
func One() *Polynomial { return FromInt64s(1) }

// Degree returns the degree, with -1 for the zero polynomial.
func (p *Polynomial) Degree() int { return len(p.coeffs) - 1 }

// IsZero reports whether p is the zero polynomial.
func (p *Polynomial) IsZero() bool { return len(p.coeffs) == 0 }

// IsMonic reports whether the leading coefficient is 1. The zero
// polynomial is not monic.
func (p *Polynomial) IsMonic() bool {
	return len(p.coeffs) > 0 && p.coeffs[len(p.coeffs)-1].Cmp(oneInt) == 0
}

// Coeff returns a copy of the coefficient of x^i, which is zero beyond the
// degree.
func (p *Polynomial) Coeff(i int) *big.Int {
	if i < 0 || i >= len(p.coeffs) {
		return new(big.Int)
	}
	return new(big.Int).Set(p.coeffs[i])
}

// Coeffs returns a copy of the ascending coefficient slice. It is empty
// for the zero polynomial.
func (p *Polynomial) Coeffs() []*big.Int {
	out := make([]*big.Int, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

// LeadingCoefficient returns a copy of the highest-degree coefficient, or
// zero for the zero polynomial.
func (p *Polynomial) LeadingCoefficient() *big.Int {
	if len(p.coeffs) == 0 {
		return new(big.Int)
	}
	return new(big.Int).Set(p.coeffs[len(p.coeffs)-1])
}

// Equal reports whether p and q have identical coefficients.
func (p *Polynomial) Equal(q *Polynomial) bool {
	if q == nil || len(p.coeffs) != len(q.coeffs) {
		return false
	}
	for i := range p.coeffs {
		if p.coeffs[i].Cmp(q.coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// Add returns p + q.
func (p *Polynomial) Add(q *Polynomial) *Polynomial {
	n := len(p.coeffs)
	if len(q.coeffs) > n {
		n = len(q.coeffs)
	}
	sum := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		sum[i] = new(big.Int).Add(p.rawCoeff(i), q.rawCoeff(i))
	}
	return New(sum)
}

// Sub returns p - q.
func (p *Polynomial) Sub(q *Polynomial) *Polynomial {
	n := len(p.coeffs)
	if len(q.coeffs) > n {
		n = len(q.coeffs)
	}
	diff := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		diff[i] = new(big.Int).Sub(p.rawCoeff(i), q.rawCoeff(i))
	}
	return New(diff)
}

// Mul returns p * q by schoolbook convolution; operands stay small enough
// here that nothing fancier pays off.
func (p *Polynomial) Mul(q *Polynomial) *Polynomial {
	if p.IsZero() || q.IsZero() {
		return Zero()
	}
	prod := make([]*big.Int, len(p.coeffs)+len(q.coeffs)-1)
	for i := range prod {
		prod[i] = new(big.Int)
	}
	var t big.Int
	for i, pc := range p.coeffs {
		if pc.Sign() == 0 {
			continue
		}
		for j, qc := range q.coeffs {
			t.Mul(pc, qc)
			prod[i+j].Add(prod[i+j], &t)
		}
	}
	return New(prod)
}

// Div performs polynomial long division p = quot*q + rem with
// deg(rem) < deg(q). The divisor must be monic, which keeps every
// intermediate coefficient an integer.
//
// Returns ErrDivisorNotMonic otherwise.
func (p *Polynomial) Div(q *Polynomial) (quot, rem *Polynomial, err error) {
	if !q.IsMonic() {
		return nil, nil, ErrDivisorNotMonic
	}
	dq := q.Degree()
	if p.Degree() < dq {
		return Zero(), New(p.coeffs), nil
	}

	remC := make([]*big.Int, len(p.coeffs))
	for i, c := range p.coeffs {
		remC[i] = new(big.Int).Set(c)
	}
	quotC := make([]*big.Int, p.Degree()-dq+1)
	for i := range quotC {
		quotC[i] = new(big.Int)
	}

	var t big.Int
	for k := p.Degree() - dq; k >= 0; k-- {
		c := remC[k+dq]
		if c.Sign() == 0 {
			continue
		}
		quotC[k].Set(c)
		for i := 0; i <= dq; i++ {
			t.Mul(c, q.coeffs[i])
			remC[k+i].Sub(remC[k+i], &t)
		}
	}
	return New(quotC), New(remC), nil
}

// DividedBy reports whether q divides p exactly. The divisor must be
// monic; a non-monic divisor reports false.
func (p *Polynomial) DividedBy(q *Polynomial) bool {
	_, rem, err := p.Div(q)
	return err == nil && rem.IsZero()
}

// Eval returns p(x) by Horner's rule.
func (p *Polynomial) Eval(x *big.Int) *big.Int {
	acc := new(big.Int)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p.coeffs[i])
	}
	return acc
}

// EvalMod returns p(x) mod m as a canonical representative in [0, |m|),
// reducing after every Horner step so intermediates stay bounded. The
// modulus must be non-zero.
func (p *Polynomial) EvalMod(x, m *big.Int) *big.Int {
	acc := new(big.Int)
	xr := new(big.Int).Mod(x, m)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, xr)
		acc.Add(acc, p.coeffs[i])
		acc.Mod(acc, m)
	}
	return acc
}

// String renders the polynomial with descending powers in the usual
// human-readable form: "x^3 + 2*x^2 - x - 2", "-x + 1", "0".
func (p *Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	var b strings.Builder
	first := true
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		c := p.coeffs[i]
		if c.Sign() == 0 {
			continue
		}
		abs := new(big.Int).Abs(c)
		if first {
			if c.Sign() < 0 {
				b.WriteByte('-')
			}
			first = false
		} else if c.Sign() < 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(" + ")
		}
		writeTerm(&b, abs, i)
	}
	return b.String()
}

func writeTerm(b *strings.Builder, abs *big.Int, exp int) {
	switch {
	case exp == 0:
		b.WriteString(abs.String())
	case abs.Cmp(oneInt) == 0:
		writeMonomial(b, exp)
	default:
		b.WriteString(abs.String())
		b.WriteByte('*')
		writeMonomial(b, exp)
	}
}

func writeMonomial(b *strings.Builder, exp int) {
	b.WriteByte('x')
	if exp > 1 {
		b.WriteByte('^')
		b.WriteString(strconv.Itoa(exp))
	}
}

func (p *Polynomial) rawCoeff(i int) *big.Int {
	if i < 0 || i >= len(p.coeffs) {
		return zeroInt
	}
	return p.coeffs[i]
}

var (
	zeroInt = new(big.Int)
	oneInt  = big.NewInt(1)
)

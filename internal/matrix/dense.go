// Package matrix provides square dense matrices over a generic coefficient
// ring, sized for companion matrices of linear recurrences: small dimension,
// potentially enormous entries. Storage is a flat row-major slice; the ring
// supplies all arithmetic, so one implementation serves exact integers,
// modular integers, and the GMP-backed ring alike.
package matrix

import (
	"fmt"
	"strings"

	"github.com/agbru/reccalc/internal/ring"
)

// Dense is a square matrix over the ring R. The zero value is not usable;
// construct instances with New, Identity, or Companion.
type Dense[E any] struct {
	r    ring.Ring[E]
	n    int
	data []E
}

// New returns the n by n zero matrix over r.
//
// Returns ErrInvalidDimension when n <= 0.
func New[E any](r ring.Ring[E], n int) (*Dense[E], error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, n)
	}
	data := make([]E, n*n)
	for i := range data {
		data[i] = r.Zero()
	}
	return &Dense[E]{r: r, n: n, data: data}, nil
}

// Identity returns the n by n identity matrix over r.
func Identity[E any](r ring.Ring[E], n int) (*Dense[E], error) {
	m, err := New(r, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = r.One()
	}
	return m, nil
}

// Dim returns the matrix dimension.
func (m *Dense[E]) Dim() int { return m.n }

// Ring returns the coefficient ring the matrix lives over.
func (m *Dense[E]) Ring() ring.Ring[E] { return m.r }

// At returns the entry at row i, column j. Indexes are 0-based; out-of-range
// access is a programming error and panics.
func (m *Dense[E]) At(i, j int) E {
	return m.data[m.index(i, j)]
}

// Set stores v at row i, column j. The matrix takes ownership of v.
func (m *Dense[E]) Set(i, j int, v E) {
	m.data[m.index(i, j)] = v
}

func (m *Dense[E]) index(i, j int) int {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range for dimension %d", i, j, m.n))
	}
	return i*m.n + j
}

// Clone returns a deep copy; entries are re-imaged through the ring so the
// copy shares no storage with the original.
func (m *Dense[E]) Clone() *Dense[E] {
	data := make([]E, len(m.data))
	for i, v := range m.data {
		data[i] = m.r.FromInt(m.r.ToInt(v))
	}
	return &Dense[E]{r: m.r, n: m.n, data: data}
}

// Equal reports whether the two matrices have the same dimension and
// element-wise equal entries.
func (m *Dense[E]) Equal(other *Dense[E]) bool {
	if other == nil || m.n != other.n {
		return false
	}
	for i := range m.data {
		if !m.r.Equal(m.data[i], other.data[i]) {
			return false
		}
	}
	return true
}

// MulVec returns the matrix-vector product m*v.
//
// Returns ErrDimensionMismatch when len(v) differs from the dimension.
func (m *Dense[E]) MulVec(v []E) ([]E, error) {
	if len(v) != m.n {
		return nil, fmt.Errorf("%w: matrix dimension %d, vector length %d", ErrDimensionMismatch, m.n, len(v))
	}
	out := make([]E, m.n)
	for i := 0; i < m.n; i++ {
		acc := m.r.Zero()
		for j := 0; j < m.n; j++ {
			acc = m.r.AddMul(acc, m.data[i*m.n+j], v[j])
		}
		out[i] = acc
	}
	return out, nil
}

// maxBitLen returns the largest entry size in bits. It steers the
// parallelism decision in the exponentiation loop.
func (m *Dense[E]) maxBitLen() int {
	maxLen := 0
	for _, v := range m.data {
		if l := m.r.BitLen(v); l > maxLen {
			maxLen = l
		}
	}
	return maxLen
}

// String renders the matrix with globally aligned, right-justified columns,
// one bracketed row per line:
//
//	[ 0  1  0]
//	[ 0  0  1]
//	[ 2  1 -2]
func (m *Dense[E]) String() string {
	cells := make([]string, len(m.data))
	width := 0
	for i, v := range m.data {
		cells[i] = m.r.ToInt(v).String()
		if len(cells[i]) > width {
			width = len(cells[i])
		}
	}
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		b.WriteByte('[')
		for j := 0; j < m.n; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%*s", width, cells[i*m.n+j])
		}
		b.WriteByte(']')
		if i < m.n-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

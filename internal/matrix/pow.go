package matrix

import (
	"context"
	"fmt"
	"math/bits"
	"runtime"
	"sync"

	"github.com/agbru/reccalc/internal/parallel"
)

// PowOptions tunes the exponentiation loop. The zero value disables
// parallelism and progress reporting.
type PowOptions struct {
	// ParallelThreshold is the entry size in bits above which row products
	// are computed by parallel workers. Exact evaluation crosses it once
	// entries grow large; modular rings never do. Zero or negative disables
	// the size trigger.
	ParallelThreshold int

	// ParallelRows is the dimension at or above which row products are
	// always parallelized, regardless of entry size. High-order recurrences
	// hit this trigger even over small modular entries. Zero or negative
	// disables it.
	ParallelRows int

	// OnBit, when non-nil, is invoked after each exponent bit is processed
	// with the 0-based bit index and the total number of bits. Progress
	// weighting is the caller's concern; the loop only reports position.
	OnBit func(bit, total int)
}

// Mul returns the product m*other as a fresh matrix.
//
// Returns ErrDimensionMismatch when the dimensions differ.
func (m *Dense[E]) Mul(other *Dense[E]) (*Dense[E], error) {
	if m.n != other.n {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, m.n, other.n)
	}
	dst, err := New(m.r, m.n)
	if err != nil {
		return nil, err
	}
	if err := mulInto(context.Background(), dst, m, other, false); err != nil {
		return nil, err
	}
	return dst, nil
}

// Pow returns m raised to exp via binary exponentiation: O(log exp) matrix
// products, squaring the running base after each bit, least significant
// first. The receiver is not modified.
//
// The context is checked once per exponent bit; cancellation surfaces as a
// wrapped context error naming the bit reached. Returns ErrNegativePower
// for exp < 0.
func (m *Dense[E]) Pow(ctx context.Context, exp int64, opts PowOptions) (*Dense[E], error) {
	if exp < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePower, exp)
	}
	res, err := Identity(m.r, m.n)
	if err != nil {
		return nil, err
	}
	if exp == 0 {
		return res, nil
	}

	base := m.Clone()
	tmp, err := New(m.r, m.n)
	if err != nil {
		return nil, err
	}

	numBits := bits.Len64(uint64(exp))
	useParallel := runtime.NumCPU() > 1 && (opts.ParallelThreshold > 0 || opts.ParallelRows > 0)

	for i := 0; i < numBits; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("matrix power canceled at bit %d/%d: %w", i, numBits-1, err)
		}

		if (exp>>uint(i))&1 == 1 {
			inParallel := useParallel && parallelWorthwhile(base, opts)
			if err := mulInto(ctx, tmp, res, base, inParallel); err != nil {
				return nil, fmt.Errorf("matrix multiplication failed at bit %d/%d: %w", i, numBits-1, err)
			}
			res, tmp = tmp, res
		}

		if i < numBits-1 {
			inParallel := useParallel && parallelWorthwhile(base, opts)
			if err := mulInto(ctx, tmp, base, base, inParallel); err != nil {
				return nil, fmt.Errorf("matrix squaring failed at bit %d/%d: %w", i, numBits-1, err)
			}
			base, tmp = tmp, base
		}

		if opts.OnBit != nil {
			opts.OnBit(i, numBits)
		}
	}
	return res, nil
}

// parallelWorthwhile applies the two parallelism triggers to the current
// base operand, whose entries dominate the cost of the next product.
func parallelWorthwhile[E any](base *Dense[E], opts PowOptions) bool {
	if opts.ParallelRows > 0 && base.n >= opts.ParallelRows {
		return true
	}
	return opts.ParallelThreshold > 0 && base.maxBitLen() > opts.ParallelThreshold
}

// mulInto computes dst = a*b, overwriting every entry of dst. dst must not
// alias a or b; a and b may alias each other (squaring). The parallel path
// runs one worker per row and funnels the first error, which can only be a
// context cancellation, through a shared collector.
func mulInto[E any](ctx context.Context, dst, a, b *Dense[E], inParallel bool) error {
	if !inParallel {
		for i := 0; i < a.n; i++ {
			multiplyRow(dst, a, b, i)
		}
		return nil
	}

	var wg sync.WaitGroup
	var ec parallel.ErrorCollector
	for i := 0; i < a.n; i++ {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				ec.SetError(err)
				return
			}
			multiplyRow(dst, a, b, row)
		}(i)
	}
	wg.Wait()
	return ec.Err()
}

func multiplyRow[E any](dst, a, b *Dense[E], i int) {
	n := a.n
	r := a.r
	for j := 0; j < n; j++ {
		acc := r.Zero()
		for k := 0; k < n; k++ {
			acc = r.AddMul(acc, a.data[i*n+k], b.data[k*n+j])
		}
		dst.data[i*n+j] = acc
	}
}

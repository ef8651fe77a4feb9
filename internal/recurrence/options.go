// This file contains configuration options for term evaluation.
package recurrence

import (
	"math"
	"math/big"
)

// Options configures a term evaluation.
type Options struct {
	// ParallelThreshold is the matrix entry bit length above which row
	// products are computed in parallel. If 0, DefaultParallelThreshold
	// is used.
	ParallelThreshold int
	// ParallelOrder is the matrix dimension at or above which row products
	// are always parallelized, regardless of entry size. If 0,
	// DefaultParallelOrder is used.
	ParallelOrder int
	// MaxResultBits caps the estimated bit length of an exact result;
	// evaluations whose estimate exceeds it fail fast with
	// ErrResultTooLarge instead of computing for minutes. 0 means no cap.
	// Modular evaluations are never capped.
	MaxResultBits int64
}

// normalizeOptions returns a copy of opts with default values filled in
// for zero values, so threshold handling is consistent across engines.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.ParallelThreshold == 0 {
		normalized.ParallelThreshold = DefaultParallelThreshold
	}
	if normalized.ParallelOrder == 0 {
		normalized.ParallelOrder = DefaultParallelOrder
	}
	return normalized
}

// EstimateTermBits bounds the bit length of the exact term u_n from above.
// One recurrence step multiplies the window maximum by at most the sum of
// the coefficient magnitudes, so
//
//	bits(u_n) <= n*bits(sum|a_i|) + max bits(u_i) + 1.
//
// The estimate is what Options.MaxResultBits is compared against; callers
// sizing buffers or rejecting oversized requests can use it directly.
//
// Parameters:
//   - seq: The sequence being evaluated.
//   - n: The term index.
//
// Returns:
//   - int64: The upper bound in bits (math.MaxInt64 on overflow).
func EstimateTermBits(seq *Sequence, n int64) int64 {
	sum := new(big.Int)
	var t big.Int
	for _, a := range seq.coeffs {
		sum.Add(sum, t.Abs(a))
	}
	growth := int64(sum.BitLen())

	base := int64(1)
	for _, u := range seq.initial {
		if b := int64(u.BitLen()); b > base {
			base = b
		}
	}

	if growth > 0 && n > (math.MaxInt64-base-1)/growth {
		return math.MaxInt64
	}
	return n*growth + base + 1
}

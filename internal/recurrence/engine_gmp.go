//go:build gmp

// This file provides a GMP-backed evaluation engine, conditionally compiled
// with the "gmp" build tag. The build tag architecture ensures that:
//   - Projects can build without GMP (the default, using math/big)
//   - GMP support is opt-in, requiring: go build -tags=gmp
//   - The codebase remains portable across systems without libgmp installed
//
// System Requirements for GMP:
//   - Linux: sudo apt-get install libgmp-dev (Debian/Ubuntu)
//   - macOS: brew install gmp
//   - Windows: Requires MinGW or WSL with libgmp

package recurrence

import (
	"context"
	"math/big"

	"github.com/agbru/reccalc/internal/ring"
)

func init() {
	_ = RegisterEvaluator("gmp", func() coreEvaluator { return &GMPEvaluator{} })
}

// GMPEvaluator is the matrix engine with exact arithmetic delegated to the
// GMP library through the ring abstraction. GMP's assembly multiplication
// routines overtake math/big once entries reach a few hundred thousand
// bits, which exact evaluation hits quickly; below that the CGo call
// overhead can make the portable engine faster.
//
// Modular evaluation keeps every operand word-sized or modulus-sized, so
// it gains nothing from GMP and reuses the portable modular rings.
type GMPEvaluator struct{}

// Name returns the name of the algorithm.
func (e *GMPEvaluator) Name() string {
	return "gmp"
}

// EvaluateCore runs the shared matrix power loop over the GMP ring for
// exact evaluation, and over the portable modular rings otherwise.
func (e *GMPEvaluator) EvaluateCore(ctx context.Context, reporter ProgressReporter, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error) {
	if !modulusActive(modulus) {
		return matrixTerm(ctx, reporter, ring.GMP{}, seq, n, opts, false)
	}
	portable := &MatrixEvaluator{}
	return portable.EvaluateCore(ctx, reporter, seq, n, modulus, opts)
}

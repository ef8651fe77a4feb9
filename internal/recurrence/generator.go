// This file defines the SequenceGenerator interface for iterative,
// streaming generation of sequence terms, and its sliding-window
// implementation.
package recurrence

import (
	"context"
	"fmt"
	"math/big"
	"sync"
)

// SequenceGenerator defines the interface for producing consecutive terms.
// Unlike Evaluator, which computes a single u_n, a generator streams the
// sequence term by term, keeping O(d) state between calls.
//
// Example usage:
//
//	gen := recurrence.NewWindowGenerator(seq)
//	for i := 0; i < 100; i++ {
//	    val, err := gen.Next(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    // Use val
//	}
type SequenceGenerator interface {
	// Next advances the generator and returns the next term. The first
	// call returns u_0, the second u_1, and so on.
	Next(ctx context.Context) (*big.Int, error)

	// Current returns the current term without advancing, or nil if Next
	// has never been called.
	Current() *big.Int

	// Index returns the index of the current term, 0 before the first
	// Next call.
	Index() int64

	// Reset restarts the generator; the next call to Next returns u_0.
	Reset()

	// Skip advances the generator directly to u_n. More efficient than
	// calling Next n times for large jumps, which are delegated to a
	// logarithmic evaluator.
	Skip(ctx context.Context, n int64) (*big.Int, error)
}

// skipIterativeThreshold is the largest forward jump Skip serves by plain
// iteration before switching to the logarithmic evaluator.
const skipIterativeThreshold = 1000

// WindowGenerator implements SequenceGenerator with a sliding window of
// the d most recent terms: each advance costs d multiplications and the
// memory footprint never grows with the index.
//
// A WindowGenerator is safe for concurrent use; every method holds an
// internal mutex.
type WindowGenerator struct {
	seq *Sequence
	// window holds u_index .. u_{index+d-1}.
	window  []*big.Int
	index   int64
	started bool
	// evaluator handles large Skip jumps; lazily resolved from the global
	// factory when nil.
	evaluator Evaluator
	mu        sync.Mutex
}

// NewWindowGenerator creates a generator positioned before u_0. The first
// call to Next returns u_0.
func NewWindowGenerator(seq *Sequence) *WindowGenerator {
	g := &WindowGenerator{seq: seq}
	g.resetLocked()
	return g
}

// NewWindowGeneratorWithEvaluator creates a generator whose Skip jumps use
// the given evaluator instead of the global default engine.
func NewWindowGeneratorWithEvaluator(seq *Sequence, eval Evaluator) *WindowGenerator {
	g := NewWindowGenerator(seq)
	g.evaluator = eval
	return g
}

// Next advances the generator and returns the next term. The returned
// value is a copy and safe to modify.
func (g *WindowGenerator) Next(ctx context.Context) (*big.Int, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextLocked(), nil
}

// Current returns a copy of the current term, or nil if the generator has
// not started.
func (g *WindowGenerator) Current() *big.Int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started {
		return nil
	}
	return new(big.Int).Set(g.window[0])
}

// Index returns the index of the current term.
func (g *WindowGenerator) Index() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.index
}

// Reset restarts the generator from u_0.
func (g *WindowGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

// Skip advances the generator to u_n without returning intermediate
// values. Short forward jumps iterate; long or backward jumps recompute
// the window with the evaluator's logarithmic algorithm.
//
// Parameters:
//   - ctx: The context for managing cancellation.
//   - n: The index to skip to, n >= 0.
//
// Returns:
//   - *big.Int: The term u_n.
//   - error: ErrNegativeIndex, an evaluator error, or a context error.
func (g *WindowGenerator) Skip(ctx context.Context, n int64) (*big.Int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n = %d", ErrNegativeIndex, n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if n == 0 {
		g.resetLocked()
		g.started = true
		return new(big.Int).Set(g.window[0]), nil
	}

	current := g.index
	if !g.started {
		current = -1
	}
	if n > current && n-current < skipIterativeThreshold {
		for g.index < n || !g.started {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			g.nextLocked()
		}
		return new(big.Int).Set(g.window[0]), nil
	}

	if g.evaluator == nil {
		eval, err := GlobalFactory().Get(DefaultEngine)
		if err != nil {
			return nil, err
		}
		g.evaluator = eval
	}

	// Rebuild the whole window at the target position so iteration can
	// resume from there.
	fresh := make([]*big.Int, g.seq.order)
	for i := range fresh {
		term, err := g.evaluator.Evaluate(ctx, nil, 0, g.seq, n+int64(i), nil, Options{})
		if err != nil {
			return nil, err
		}
		fresh[i] = term
	}
	g.window = fresh
	g.index = n
	g.started = true
	return new(big.Int).Set(g.window[0]), nil
}

// nextLocked emits the next term; the caller holds the mutex. The first
// call emits u_0 without advancing.
func (g *WindowGenerator) nextLocked() *big.Int {
	if !g.started {
		g.started = true
		return new(big.Int).Set(g.window[0])
	}

	d := g.seq.order
	next := new(big.Int)
	var t big.Int
	for j := 0; j < d; j++ {
		t.Mul(g.seq.coeffs[j], g.window[d-1-j])
		next.Add(next, &t)
	}
	copy(g.window, g.window[1:])
	g.window[d-1] = next
	g.index++
	return new(big.Int).Set(g.window[0])
}

func (g *WindowGenerator) resetLocked() {
	g.window = copyBigs(g.seq.initial)
	g.index = 0
	g.started = false
}

// compile-time interface check
var _ SequenceGenerator = (*WindowGenerator)(nil)

package recurrence

import (
	"context"
	"math/big"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomSequence derives a valid order-3..5 recurrence from a seed. Small
// coefficients keep exact terms at feasible sizes for the tested indices.
func randomSequence(seed uint64) *Sequence {
	rng := rand.New(rand.NewSource(int64(seed)))
	order := 3 + rng.Intn(3)

	initial := make([]*big.Int, order)
	for i := range initial {
		initial[i] = big.NewInt(int64(rng.Intn(11) - 5))
	}
	coeffs := make([]*big.Int, order)
	for i := range coeffs {
		coeffs[i] = big.NewInt(int64(rng.Intn(7) - 3))
	}
	// Guarantee the recurrence genuinely has the full order.
	if coeffs[order-1].Sign() == 0 {
		coeffs[order-1] = big.NewInt(1)
	}
	return MustNew(initial, coeffs)
}

// TestEngineAgreement_PropertyBased checks that the logarithmic engines
// agree with plain iteration on random recurrences. Any divergence in the
// companion-matrix or polynomial arithmetic shows up as a counterexample.
func TestEngineAgreement_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	ctx := context.Background()
	oracle := NewEvaluator(&IterativeEvaluator{})

	for _, engineName := range []string{"matrix", "poly"} {
		eval := GlobalFactory().MustGet(engineName)
		properties.Property(engineName+" agrees with iteration on random recurrences", prop.ForAll(
			func(seed uint64, n uint64) bool {
				seq := randomSequence(seed)

				want, err := oracle.Evaluate(ctx, nil, 0, seq, int64(n), nil, Options{})
				if err != nil {
					t.Logf("Oracle failed for seed %d, n=%d: %v", seed, n, err)
					return false
				}
				got, err := eval.Evaluate(ctx, nil, 0, seq, int64(n), nil, Options{})
				if err != nil {
					t.Logf("%s failed for seed %d, n=%d: %v", engineName, seed, n, err)
					return false
				}
				return got.Cmp(want) == 0
			},
			gen.UInt64Range(0, 1<<62),
			gen.UInt64Range(0, 400),
		))
	}

	properties.TestingRun(t)
}

// TestModularConsistency_PropertyBased checks the defining property of
// modular evaluation: it must equal the exact term reduced into [0, m).
func TestModularConsistency_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	ctx := context.Background()

	for _, engineName := range []string{"matrix", "poly", "iterative"} {
		eval := GlobalFactory().MustGet(engineName)
		properties.Property(engineName+" modular result is the reduced exact term", prop.ForAll(
			func(seed uint64, n uint64, m uint64) bool {
				seq := randomSequence(seed)
				modulus := new(big.Int).SetUint64(m)

				exact, err := eval.Evaluate(ctx, nil, 0, seq, int64(n), nil, Options{})
				if err != nil {
					t.Logf("Exact evaluation failed for seed %d, n=%d: %v", seed, n, err)
					return false
				}
				got, err := eval.Evaluate(ctx, nil, 0, seq, int64(n), modulus, Options{})
				if err != nil {
					t.Logf("Modular evaluation failed for seed %d, n=%d, m=%d: %v", seed, n, m, err)
					return false
				}

				want := new(big.Int).Mod(exact, modulus)
				if got.Cmp(want) != 0 {
					return false
				}
				return got.Sign() >= 0 && got.Cmp(modulus) < 0
			},
			gen.UInt64Range(0, 1<<62),
			gen.UInt64Range(0, 300),
			gen.UInt64Range(2, 1<<40),
		))
	}

	properties.TestingRun(t)
}

// TestGeneratorMatchesEvaluator_PropertyBased checks that streaming
// generation and direct evaluation describe the same sequence.
func TestGeneratorMatchesEvaluator_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	ctx := context.Background()
	eval := GlobalFactory().MustGet(DefaultEngine)

	properties.Property("generator stream matches direct evaluation", prop.ForAll(
		func(seed uint64, n uint64) bool {
			seq := randomSequence(seed)
			g := NewWindowGenerator(seq)

			var streamed *big.Int
			for i := uint64(0); i <= n; i++ {
				val, err := g.Next(ctx)
				if err != nil {
					t.Logf("Next failed at i=%d: %v", i, err)
					return false
				}
				streamed = val
			}

			direct, err := eval.Evaluate(ctx, nil, 0, seq, int64(n), nil, Options{})
			if err != nil {
				t.Logf("Evaluate failed for seed %d, n=%d: %v", seed, n, err)
				return false
			}
			return streamed.Cmp(direct) == 0
		},
		gen.UInt64Range(0, 1<<62),
		gen.UInt64Range(0, 200),
	))

	properties.TestingRun(t)
}

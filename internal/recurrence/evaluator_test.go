package recurrence

import (
	"context"
	"errors"
	"math/big"
	"testing"
)

// recordingObserver captures every update it receives.
type recordingObserver struct {
	indices []int
	values  []float64
}

func (o *recordingObserver) Update(evalIndex int, progress float64) {
	o.indices = append(o.indices, evalIndex)
	o.values = append(o.values, progress)
}

func matrixEvaluator() Evaluator {
	return NewEvaluator(&MatrixEvaluator{})
}

func TestNewEvaluatorNilPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("NewEvaluator(nil) should panic")
		}
	}()
	NewEvaluator(nil)
}

func TestEvaluatorName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		core coreEvaluator
		want string
	}{
		{&MatrixEvaluator{}, "matrix"},
		{&PolyEvaluator{}, "poly"},
		{&IterativeEvaluator{}, "iterative"},
	}
	for _, tt := range tests {
		if got := NewEvaluator(tt.core).Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestEvaluateArgumentContract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seq := tribonacci(t)
	eval := matrixEvaluator()

	t.Run("negative index", func(t *testing.T) {
		t.Parallel()
		_, err := eval.Evaluate(ctx, nil, 0, seq, -5, nil, Options{})
		if !errors.Is(err, ErrNegativeIndex) {
			t.Errorf("Expected ErrNegativeIndex, got %v", err)
		}
	})

	t.Run("negative modulus", func(t *testing.T) {
		t.Parallel()
		_, err := eval.Evaluate(ctx, nil, 0, seq, 10, big.NewInt(-7), Options{})
		if !errors.Is(err, ErrInvalidModulus) {
			t.Errorf("Expected ErrInvalidModulus, got %v", err)
		}
	})

	t.Run("negative index checked before modulus", func(t *testing.T) {
		t.Parallel()
		_, err := eval.Evaluate(ctx, nil, 0, seq, -1, big.NewInt(-7), Options{})
		if !errors.Is(err, ErrNegativeIndex) {
			t.Errorf("Expected ErrNegativeIndex, got %v", err)
		}
	})

	t.Run("modulus one is the zero ring", func(t *testing.T) {
		t.Parallel()
		got, err := eval.Evaluate(ctx, nil, 0, seq, 100, big.NewInt(1), Options{})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if got.Sign() != 0 {
			t.Errorf("u(100) mod 1 = %s, want 0", got)
		}
	})

	t.Run("nil modulus means exact", func(t *testing.T) {
		t.Parallel()
		got, err := eval.Evaluate(ctx, nil, 0, seq, 10, nil, Options{})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if got.Cmp(big.NewInt(149)) != 0 {
			t.Errorf("u(10) = %s, want 149", got)
		}
	})

	t.Run("zero modulus means exact", func(t *testing.T) {
		t.Parallel()
		got, err := eval.Evaluate(ctx, nil, 0, seq, 10, new(big.Int), Options{})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if got.Cmp(big.NewInt(149)) != 0 {
			t.Errorf("u(10) with zero modulus = %s, want 149", got)
		}
	})
}

func TestEvaluateInitialTerms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eval := matrixEvaluator()

	// Negative initial terms must reduce into [0, m)
	seq := MustNew(bigs(-5, 3, 7), bigs(1, 1, 1))

	tests := []struct {
		name    string
		n       int64
		modulus *big.Int
		want    int64
	}{
		{"u(0) exact", 0, nil, -5},
		{"u(1) exact", 1, nil, 3},
		{"u(2) exact", 2, nil, 7},
		{"u(0) mod 4 canonical", 0, big.NewInt(4), 3},
		{"u(2) mod 4", 2, big.NewInt(4), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Evaluate(ctx, nil, 0, seq, tt.n, tt.modulus, Options{})
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if got.Cmp(big.NewInt(tt.want)) != 0 {
				t.Errorf("got %s, want %d", got, tt.want)
			}
			if tt.modulus != nil && got.Sign() < 0 {
				t.Errorf("Modular result %s is not canonical", got)
			}
		})
	}
}

func TestEvaluateResultSizeGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seq := tribonacci(t)
	eval := matrixEvaluator()

	t.Run("oversized exact result rejected", func(t *testing.T) {
		t.Parallel()
		_, err := eval.Evaluate(ctx, nil, 0, seq, 1_000_000, nil, Options{MaxResultBits: 64})
		if !errors.Is(err, ErrResultTooLarge) {
			t.Errorf("Expected ErrResultTooLarge, got %v", err)
		}
	})

	t.Run("modular evaluation never capped", func(t *testing.T) {
		t.Parallel()
		got, err := eval.Evaluate(ctx, nil, 0, seq, 1_000_000, big.NewInt(97), Options{MaxResultBits: 64})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if got.Cmp(big.NewInt(97)) >= 0 || got.Sign() < 0 {
			t.Errorf("Result %s outside [0, 97)", got)
		}
	})

	t.Run("zero cap means unlimited", func(t *testing.T) {
		t.Parallel()
		if _, err := eval.Evaluate(ctx, nil, 0, seq, 1000, nil, Options{}); err != nil {
			t.Errorf("Evaluate failed: %v", err)
		}
	})
}

func TestEvaluateProgressChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seq := tribonacci(t)
	eval := matrixEvaluator()

	progressChan := make(chan ProgressUpdate, 256)
	_, err := eval.Evaluate(ctx, progressChan, 3, seq, 10_000, nil, Options{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	close(progressChan)

	var last ProgressUpdate
	count := 0
	for update := range progressChan {
		if update.EvaluatorIndex != 3 {
			t.Errorf("EvaluatorIndex = %d, want 3", update.EvaluatorIndex)
		}
		if update.Value < last.Value {
			t.Errorf("Progress went backwards: %f after %f", update.Value, last.Value)
		}
		last = update
		count++
	}
	if count == 0 {
		t.Fatal("Expected at least one progress update")
	}
	if last.Value != 1.0 {
		t.Errorf("Final progress = %f, want 1.0", last.Value)
	}
}

func TestEvaluateWithObservers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seq := tribonacci(t)
	eval := matrixEvaluator().(*SeqEvaluator)

	t.Run("observers notified", func(t *testing.T) {
		t.Parallel()
		subject := NewProgressSubject()
		first := &recordingObserver{}
		second := &recordingObserver{}
		subject.Register(first)
		subject.Register(second)

		got, err := eval.EvaluateWithObservers(ctx, subject, 7, seq, 1000, nil, Options{})
		if err != nil {
			t.Fatalf("EvaluateWithObservers failed: %v", err)
		}
		if got.Sign() <= 0 {
			t.Errorf("u(1000) should be positive, got %s", got)
		}
		for _, obs := range []*recordingObserver{first, second} {
			if len(obs.values) == 0 {
				t.Fatal("Observer received no updates")
			}
			if obs.values[len(obs.values)-1] != 1.0 {
				t.Errorf("Final observed progress = %f, want 1.0", obs.values[len(obs.values)-1])
			}
			for _, idx := range obs.indices {
				if idx != 7 {
					t.Errorf("Observed evaluator index %d, want 7", idx)
				}
			}
		}
	})

	t.Run("nil subject tolerated", func(t *testing.T) {
		t.Parallel()
		got, err := eval.EvaluateWithObservers(ctx, nil, 0, seq, 10, nil, Options{})
		if err != nil {
			t.Fatalf("EvaluateWithObservers failed: %v", err)
		}
		if got.Cmp(big.NewInt(149)) != 0 {
			t.Errorf("u(10) = %s, want 149", got)
		}
	})

	t.Run("small index reports completion", func(t *testing.T) {
		t.Parallel()
		subject := NewProgressSubject()
		obs := &recordingObserver{}
		subject.Register(obs)

		if _, err := eval.EvaluateWithObservers(ctx, subject, 0, seq, 1, nil, Options{}); err != nil {
			t.Fatalf("EvaluateWithObservers failed: %v", err)
		}
		if len(obs.values) != 1 || obs.values[0] != 1.0 {
			t.Errorf("Small-index path should report exactly one 1.0 update, got %v", obs.values)
		}
	})
}

func TestEvaluateCancellation(t *testing.T) {
	t.Parallel()
	seq := tribonacci(t)

	for name, eval := range map[string]Evaluator{
		"matrix":    NewEvaluator(&MatrixEvaluator{}),
		"poly":      NewEvaluator(&PolyEvaluator{}),
		"iterative": NewEvaluator(&IterativeEvaluator{}),
	} {
		eval := eval
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := eval.Evaluate(ctx, nil, 0, seq, 5_000_000, nil, Options{})
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Expected context.Canceled, got %v", err)
			}
		})
	}
}

func TestModulusActive(t *testing.T) {
	t.Parallel()
	if modulusActive(nil) {
		t.Error("nil modulus should be inactive")
	}
	if modulusActive(new(big.Int)) {
		t.Error("zero modulus should be inactive")
	}
	if !modulusActive(big.NewInt(7)) {
		t.Error("positive modulus should be active")
	}
	if !modulusActive(big.NewInt(-7)) {
		t.Error("negative modulus is active (and rejected later)")
	}
}

package recurrence

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

var (
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recurrence_evaluations_total",
			Help: "The total number of recurrence term evaluations processed",
		},
		[]string{"engine", "status"},
	)
	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "recurrence_evaluation_duration_seconds",
			Help: "The duration of recurrence term evaluations in seconds",
		},
		[]string{"engine"},
	)
)

// Evaluator defines the public interface for a recurrence term evaluator.
// It is the primary abstraction used by the application's orchestration
// layer to interact with the different evaluation engines.
type Evaluator interface {
	// Evaluate computes the term u_n of seq, exactly or modulo a positive
	// modulus. It is designed for safe concurrent execution and supports
	// cancellation through the provided context. Progress updates are sent
	// asynchronously to progressChan.
	//
	// Parameters:
	//   - ctx: The context for managing cancellation and deadlines.
	//   - progressChan: The channel for sending progress updates; may be nil.
	//   - evalIndex: A unique index for the evaluator instance.
	//   - seq: The sequence whose term is evaluated.
	//   - n: The term index, n >= 0.
	//   - modulus: Optional modulus; nil or 0 means exact evaluation,
	//     positive values reduce into [0, modulus), negative values are
	//     rejected with ErrInvalidModulus.
	//   - opts: Configuration options for the evaluation.
	//
	// Returns:
	//   - *big.Int: The evaluated term.
	//   - error: An error if one occurred (e.g. context cancellation).
	Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, evalIndex int, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error)

	// Name returns the display name of the engine (e.g. "matrix").
	Name() string
}

// coreEvaluator defines the internal interface for a pure evaluation
// algorithm. Cores receive validated input: n >= seq.Order() and a modulus
// that is nil or at least 2.
type coreEvaluator interface {
	EvaluateCore(ctx context.Context, reporter ProgressReporter, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error)
	Name() string
}

// SeqEvaluator is an implementation of the Evaluator interface using the
// Decorator design pattern. It wraps a coreEvaluator to add the
// cross-cutting concerns every engine shares: argument validation, the
// small-index fast path, result-size guarding, observability (metrics,
// tracing, debug logs) and progress fan-out.
type SeqEvaluator struct {
	core coreEvaluator
}

// NewEvaluator is a factory function that constructs a SeqEvaluator around
// the given core engine. It panics if core is nil.
//
// Parameters:
//   - core: The core engine to be wrapped.
//
// Returns:
//   - Evaluator: A new SeqEvaluator instance implementing Evaluator.
func NewEvaluator(core coreEvaluator) Evaluator {
	if core == nil {
		panic("recurrence: the coreEvaluator implementation cannot be nil")
	}
	return &SeqEvaluator{core: core}
}

// Name returns the name of the wrapped engine.
func (e *SeqEvaluator) Name() string {
	return e.core.Name()
}

// Evaluate adapts channel-based progress reporting onto
// EvaluateWithObservers. For observer-based reporting with multiple
// consumers, use EvaluateWithObservers directly.
func (e *SeqEvaluator) Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, evalIndex int, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return e.EvaluateWithObservers(ctx, subject, evalIndex, seq, n, modulus, opts)
}

// EvaluateWithObservers executes the evaluation with observer-based
// progress reporting, allowing dynamic registration of multiple progress
// observers for UI, logging and metrics.
//
// The method owns the full argument contract:
//   - n < 0 → ErrNegativeIndex,
//   - modulus < 0 → ErrInvalidModulus,
//   - modulus == 1 → 0 immediately (the zero ring),
//   - n < d → the initial term u_n, reduced when a modulus is active,
//   - exact results whose size estimate exceeds opts.MaxResultBits →
//     ErrResultTooLarge,
//   - otherwise the wrapped core engine runs with a reporter that notifies
//     all observers.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - subject: The progress subject with registered observers. If nil,
//     progress is ignored.
//   - evalIndex: A unique index for the evaluator instance.
//   - seq: The sequence whose term is evaluated.
//   - n: The term index.
//   - modulus: Optional modulus (see Evaluate).
//   - opts: Configuration options for the evaluation.
//
// Returns:
//   - *big.Int: The evaluated term.
//   - error: An error if one occurred.
func (e *SeqEvaluator) EvaluateWithObservers(ctx context.Context, subject *ProgressSubject, evalIndex int, seq *Sequence, n int64, modulus *big.Int, opts Options) (result *big.Int, err error) {
	tracer := otel.Tracer("recurrence")
	ctx, span := tracer.Start(ctx, "Evaluate")
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
		}
		engine := e.core.Name()
		evaluationsTotal.WithLabelValues(engine, status).Inc()
		evaluationDuration.WithLabelValues(engine).Observe(duration)

		log.Debug().
			Str("engine", engine).
			Int64("n", n).
			Bool("modular", modulusActive(modulus)).
			Float64("duration", duration).
			Str("status", status).
			Msg("evaluation completed")
	}()

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(evalIndex)
	} else {
		reporter = func(float64) {}
	}

	if n < 0 {
		return nil, fmt.Errorf("%w: n = %d", ErrNegativeIndex, n)
	}
	if modulus != nil && modulus.Sign() < 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidModulus, modulus)
	}

	if modulusActive(modulus) && modulus.Cmp(bigOne) == 0 {
		reporter(1.0)
		return big.NewInt(0), nil
	}

	if n < int64(seq.order) {
		reporter(1.0)
		return initialTerm(seq, n, modulus), nil
	}

	if !modulusActive(modulus) && opts.MaxResultBits > 0 {
		if estimate := EstimateTermBits(seq, n); estimate > opts.MaxResultBits {
			return nil, fmt.Errorf("%w: estimated %d bits, limit %d",
				ErrResultTooLarge, estimate, opts.MaxResultBits)
		}
	}

	result, err = e.core.EvaluateCore(ctx, reporter, seq, n, modulus, normalizeOptions(opts))
	if err == nil && result != nil {
		reporter(1.0)
	}
	return result, err
}

// modulusActive reports whether reduction is requested: nil and zero are
// the "exact evaluation" sentinel, everything else is a live modulus.
func modulusActive(modulus *big.Int) bool {
	return modulus != nil && modulus.Sign() != 0
}

// initialTerm serves indices below the order straight from the stored
// window, reduced into [0, m) when a modulus is active.
func initialTerm(seq *Sequence, n int64, modulus *big.Int) *big.Int {
	term := new(big.Int).Set(seq.initial[n])
	if modulusActive(modulus) {
		term.Mod(term, modulus)
	}
	return term
}

var bigOne = big.NewInt(1)

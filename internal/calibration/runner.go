package calibration

import (
	"context"
	"time"

	"github.com/agbru/reccalc/internal/recurrence"
)

// calibrationRunner encapsulates the trial run logic for calibration.
type calibrationRunner struct {
	ctx      context.Context
	perTrial time.Duration
}

// newCalibrationRunner creates a new calibration runner.
func newCalibrationRunner(ctx context.Context, timeout time.Duration) *calibrationRunner {
	perTrial := timeout / 6
	if perTrial < 2*time.Second {
		perTrial = 2 * time.Second
	}
	return &calibrationRunner{ctx: ctx, perTrial: perTrial}
}

// runTrial executes a single calibration trial with the given evaluator and options.
//
// Parameters:
//   - eval: The evaluator to use for the trial.
//   - seq: The benchmark sequence to evaluate.
//   - opts: The options for the evaluation.
//
// Returns:
//   - time.Duration: The duration of the evaluation.
//   - error: An error if the evaluation failed or timed out.
func (r *calibrationRunner) runTrial(eval recurrence.Evaluator, seq *recurrence.Sequence, opts recurrence.Options) (duration time.Duration, err error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()
	start := time.Now()
	_, err = eval.Evaluate(ctx, nil, 0, seq, CalibrationN, nil, opts)
	return time.Since(start), err
}

// findBestParallelThreshold finds the optimal parallel threshold.
//
// Parameters:
//   - eval: The evaluator to use for testing.
//   - seq: The benchmark sequence to evaluate.
//   - defaultThreshold: The default threshold to use if no better one is found.
//
// Returns:
//   - int: The best parallel threshold found.
//   - time.Duration: The duration achieved with the best threshold.
func (r *calibrationRunner) findBestParallelThreshold(eval recurrence.Evaluator, seq *recurrence.Sequence, defaultThreshold int) (threshold int, duration time.Duration) {
	candidates := GenerateQuickParallelThresholds()
	best := defaultThreshold
	bestDur := time.Duration(1<<63 - 1)

	for _, cand := range candidates {
		dur, err := r.runTrial(eval, seq, recurrence.Options{ParallelThreshold: cand})
		if err != nil {
			continue
		}
		if dur < bestDur {
			bestDur, best = dur, cand
		}
	}
	return best, bestDur
}

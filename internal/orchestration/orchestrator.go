package orchestration

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/reccalc/internal/cli"
	"github.com/agbru/reccalc/internal/config"
	apperrors "github.com/agbru/reccalc/internal/errors"
	"github.com/agbru/reccalc/internal/recurrence"
	"github.com/agbru/reccalc/internal/ui"
)

// EvaluationResult encapsulates the outcome of a single term evaluation.
// It serves as a standardized container for results from different engines,
// facilitating comparison and reporting.
type EvaluationResult struct {
	// Name is the identifier of the engine used (e.g., "matrix").
	Name string
	// Result is the evaluated term. It is nil if an error occurred.
	Result *big.Int
	// Duration is the time taken to complete the evaluation.
	Duration time.Duration
	// Err contains any error that occurred during the evaluation.
	Err error
}

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of blocking evaluation
// goroutines when the UI is slow to consume updates.
const ProgressBufferMultiplier = 5

// ExecuteEvaluations orchestrates the concurrent execution of one or more
// term evaluations.
//
// It manages the lifecycle of evaluation goroutines, collects their results,
// and coordinates the display of progress updates. This function is the core of
// the application's concurrency model.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - evaluators: A slice of evaluators to execute.
//   - seq: The sequence whose term is evaluated.
//   - cfg: The application configuration (N, modulus, thresholds, etc.).
//   - out: The io.Writer for displaying progress updates.
//
// Returns:
//   - []EvaluationResult: A slice containing the results of each evaluation.
func ExecuteEvaluations(ctx context.Context, evaluators []recurrence.Evaluator, seq *recurrence.Sequence, cfg config.AppConfig, out io.Writer) []EvaluationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]EvaluationResult, len(evaluators))
	progressChan := make(chan recurrence.ProgressUpdate, len(evaluators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(evaluators), out)

	for i, eval := range evaluators {
		idx, evaluator := i, eval
		g.Go(func() error {
			startTime := time.Now()
			res, err := evaluator.Evaluate(ctx, progressChan, idx, seq, cfg.N, cfg.Modulus, cfg.ToEvaluationOptions())
			results[idx] = EvaluationResult{
				Name: evaluator.Name(), Result: res, Duration: time.Since(startTime), Err: err,
			}
			return nil
		})
	}

	g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults processes the results from multiple engines and
// generates a summary report.
//
// It sorts the results by execution time, validates consistency across
// successful evaluations, and displays a comparative table. It handles the
// logic for determining global success or failure based on the individual
// outcomes.
//
// Parameters:
//   - results: The slice of evaluation results to analyze.
//   - cfg: The application configuration.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []EvaluationResult, cfg config.AppConfig, out io.Writer) int {
	sort.Slice(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var firstValidResult *big.Int
	var firstValidResultDuration time.Duration
	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sEngine%s\t%sDuration%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())

	for _, res := range results {
		var status string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			successCount++
			if firstValidResult == nil {
				firstValidResult = res.Result
				firstValidResultDuration = res.Duration
			}
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), duration, ui.ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No engine could complete the evaluation.\n")
		return apperrors.HandleEvaluationError(firstError, 0, out, cli.CLIColorProvider{})
	}

	mismatch := false
	for _, res := range results {
		if res.Err == nil && res.Result.Cmp(firstValidResult) != 0 {
			mismatch = true
			break
		}
	}
	if mismatch {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the results of the engines.")
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.")
	cli.DisplayResult(firstValidResult, cfg.N, cfg.Modulus, firstValidResultDuration, cfg.Verbose, cfg.TruncateDigits, out)
	return apperrors.ExitSuccess
}

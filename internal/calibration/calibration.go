package calibration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"runtime"
	"sync"
	"time"

	"github.com/agbru/reccalc/internal/cli"
	"github.com/agbru/reccalc/internal/config"
	apperrors "github.com/agbru/reccalc/internal/errors"
	"github.com/agbru/reccalc/internal/recurrence"
)

// CalibrationN is the term index evaluated during calibration trials. It is
// large enough that exact Tribonacci entries cross every realistic
// parallelism threshold.
const CalibrationN int64 = 2_000_000

// CalibrationOptions configures the calibration process.
type CalibrationOptions struct {
	// ProfilePath is the path to save/load the calibration profile.
	// If empty, uses the default path.
	ProfilePath string
	// SaveProfile indicates whether to save the calibration results.
	SaveProfile bool
	// LoadProfile indicates whether to try loading an existing profile.
	LoadProfile bool
}

// calibrationResult holds the result of a single threshold test.
type calibrationResult struct {
	Threshold int
	Duration  time.Duration
	Err       error
}

// calibrationSequence returns the benchmark recurrence used for trials: the
// Tribonacci sequence, the smallest order the evaluators accept.
func calibrationSequence() (*recurrence.Sequence, error) {
	u := []*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(1)}
	a := []*big.Int{big.NewInt(1), big.NewInt(1), big.NewInt(1)}
	return recurrence.New(u, a)
}

// RunCalibration executes a comprehensive benchmark to determine the optimal
// parallelism threshold for the current hardware.
//
// It uses adaptive threshold generation based on CPU characteristics and
// iterates through the generated thresholds, executing a standard Tribonacci
// evaluation (n=2,000,000) for each. The execution times are recorded and
// compared to identify the threshold that yields the fastest performance.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - out: The io.Writer to which progress and results will be written.
//   - registry: A map of available evaluators, which must include the
//     matrix engine.
//
// Returns:
//   - int: The exit code (0 for success, non-zero for errors).
func RunCalibration(ctx context.Context, out io.Writer, registry map[string]recurrence.Evaluator) int {
	return RunCalibrationWithOptions(ctx, out, registry, CalibrationOptions{
		SaveProfile: true,
		LoadProfile: false, // Full calibration should run fresh
	})
}

// RunCalibrationWithOptions executes calibration with the specified options.
func RunCalibrationWithOptions(ctx context.Context, out io.Writer, registry map[string]recurrence.Evaluator, opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the Optimal Parallelism Threshold ---\n")

	// Try to load existing profile if requested
	if opts.LoadProfile {
		profile, loaded := LoadOrCreateProfile(opts.ProfilePath)
		if loaded && profile.IsValid() {
			fmt.Fprintf(out, "%sLoaded existing calibration profile from %s%s\n",
				cli.ColorGreen(), GetDefaultProfilePath(), cli.ColorReset())
			fmt.Fprintf(out, "Profile: %s\n", profile.String())
			fmt.Fprintf(out, "\n%s✅ Using cached calibration: %s--parallel-threshold %d%s\n",
				cli.ColorGreen(), cli.ColorYellow(), profile.OptimalParallelThreshold, cli.ColorReset())
			return apperrors.ExitSuccess
		}
	}

	evaluator := registry[recurrence.DefaultEngine]
	if evaluator == nil {
		fmt.Fprintf(out, "%sCritical error: the '%s' engine is required for calibration but was not found.%s\n",
			cli.ColorRed(), recurrence.DefaultEngine, cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	seq, err := calibrationSequence()
	if err != nil {
		fmt.Fprintf(out, "%sCritical error: failed to build the benchmark sequence: %v%s\n",
			cli.ColorRed(), err, cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	// Use adaptive thresholds based on CPU characteristics
	thresholdsToTest := GenerateParallelThresholds()
	fmt.Fprintf(out, "%sUsing adaptive thresholds for %d CPU cores%s\n",
		cli.ColorCyan(), runtime.NumCPU(), cli.ColorReset())

	results := make([]calibrationResult, 0, len(thresholdsToTest))
	bestDuration := time.Duration(1<<63 - 1)
	bestThreshold := 0
	calibrationStart := time.Now()

	var wg sync.WaitGroup
	progressChan := make(chan recurrence.ProgressUpdate, 5)
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, 1, out)

	for _, threshold := range thresholdsToTest {
		if ctx.Err() != nil {
			fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", cli.ColorYellow(), cli.ColorReset())
			close(progressChan)
			wg.Wait()
			return apperrors.ExitErrorCanceled
		}

		startTime := time.Now()
		_, err := evaluator.Evaluate(ctx, progressChan, 0, seq, CalibrationN, nil,
			recurrence.Options{ParallelThreshold: threshold})
		duration := time.Since(startTime)

		if err != nil {
			fmt.Fprintf(out, "%s❌ Failure (%v)%s\n", cli.ColorRed(), err, cli.ColorReset())
			results = append(results, calibrationResult{threshold, 0, err})
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				close(progressChan)
				wg.Wait()
				return apperrors.HandleEvaluationError(err, duration, out, cli.CLIColorProvider{})
			}
			continue
		}

		results = append(results, calibrationResult{threshold, duration, nil})
		if duration < bestDuration {
			bestDuration, bestThreshold = duration, threshold
		}
	}
	close(progressChan)
	wg.Wait()

	// Check if we found any valid result
	if bestDuration == time.Duration(1<<63-1) {
		fmt.Fprintf(out, "\n%sCalibration failed: no valid results obtained.%s\n", cli.ColorRed(), cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	calibrationDuration := time.Since(calibrationStart)

	// Print results table
	printCalibrationResults(out, results, bestThreshold)

	if cpuTime, peakRSS, ok := resourceUsage(); ok {
		fmt.Fprintf(out, "\nProcess usage: cpu=%v, peak_rss=%.1f MiB\n",
			cpuTime.Round(time.Millisecond), float64(peakRSS)/(1<<20))
	}

	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine: %s--parallel-threshold %d%s\n",
		cli.ColorGreen(), cli.ColorYellow(), bestThreshold, cli.ColorReset())

	// Save profile if requested
	if opts.SaveProfile {
		profile := NewProfile()
		profile.OptimalParallelThreshold = bestThreshold
		profile.CalibrationN = CalibrationN
		profile.CalibrationOrder = seq.Order()
		profile.CalibrationTime = calibrationDuration.String()

		if err := profile.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n",
				cli.ColorYellow(), err, cli.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n",
				cli.ColorGreen(), GetDefaultProfilePath(), cli.ColorReset())
		}
	}

	return apperrors.ExitSuccess
}

// AutoCalibrate runs a quick startup calibration to fine-tune the
// parallelism threshold.
//
// Unlike the full RunCalibration, this function performs a heuristic search
// using micro-benchmarks and a reduced candidate set, and is designed to be
// fast enough to run at application startup without significant delay.
//
// The function first checks for an existing valid calibration profile. If
// found and valid for the current hardware, it uses the cached value instead
// of running benchmarks.
//
// Parameters:
//   - parentCtx: The context used to manage the calibration timeout.
//   - cfg: The initial application configuration, providing starting values.
//   - out: The io.Writer for logging calibration results.
//   - registry: The map of available evaluators.
//
// Returns:
//   - config.AppConfig: The updated configuration with an optimized threshold.
//   - bool: True if calibration was successful, false otherwise.
func AutoCalibrate(parentCtx context.Context, cfg config.AppConfig, out io.Writer, registry map[string]recurrence.Evaluator) (updated config.AppConfig, ok bool) {
	return AutoCalibrateWithProfile(parentCtx, cfg, out, registry, cfg.CalibrationFile)
}

// AutoCalibrateWithProfile runs auto-calibration with a specific profile path.
// It first tries to load a cached profile, then falls back to quick
// micro-benchmarks, and finally to full evaluation trials if needed.
func AutoCalibrateWithProfile(parentCtx context.Context, cfg config.AppConfig, out io.Writer, registry map[string]recurrence.Evaluator, profilePath string) (updated config.AppConfig, ok bool) {
	// Check that the matrix engine is available before attempting calibration
	matrixEval := registry[recurrence.DefaultEngine]
	if matrixEval == nil {
		return cfg, false
	}

	// Try to load existing profile first
	if profile, loaded := LoadOrCreateProfile(profilePath); loaded && profile.IsValid() {
		// Use cached calibration
		updated := cfg
		updated.Threshold = profile.OptimalParallelThreshold

		fmt.Fprintf(out, "%sUsing cached calibration%s: parallelism=%s%d%s bits\n",
			cli.ColorGreen(), cli.ColorReset(),
			cli.ColorYellow(), updated.Threshold, cli.ColorReset())
		return updated, true
	}

	// Try quick micro-benchmarks first (~100ms)
	microResults, err := QuickCalibrate(parentCtx)
	if err == nil && microResults.Confidence >= 0.5 {
		updated := cfg
		updated.Threshold = ValidateThreshold(microResults.ParallelThreshold)

		fmt.Fprintf(out, "%sQuick calibration%s (%v): parallelism=%s%d%s bits (confidence: %.0f%%)\n",
			cli.ColorGreen(), cli.ColorReset(),
			microResults.Duration.Round(time.Millisecond),
			cli.ColorYellow(), updated.Threshold, cli.ColorReset(),
			microResults.Confidence*100)

		// Save profile for future use
		saveCalibrationProfile(updated, profilePath, out)
		return updated, true
	}

	// Fall back to full evaluation trials if quick calibration failed or
	// has low confidence

	seq, seqErr := calibrationSequence()
	if seqErr != nil {
		return cfg, false
	}

	runner := newCalibrationRunner(parentCtx, cfg.Timeout)
	bestPar, bestParDur := runner.findBestParallelThreshold(matrixEval, seq, cfg.Threshold)
	if bestParDur == time.Duration(1<<63-1) {
		return cfg, false
	}

	updated = cfg
	updated.Threshold = bestPar

	// Save profile and print output
	saveCalibrationProfile(updated, profilePath, out)
	printCalibrationOutput(updated, out)

	return updated, true
}

// LoadCachedCalibration attempts to load a cached calibration profile and
// apply it to the configuration. Returns the updated config and true if
// a valid cached profile was found.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (updated config.AppConfig, ok bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded || !profile.IsValid() {
		return cfg, false
	}

	updated = cfg
	updated.Threshold = profile.OptimalParallelThreshold
	return updated, true
}

// saveCalibrationProfile saves the calibration results to a profile.
//
// Parameters:
//   - cfg: The updated configuration with calibration results.
//   - profilePath: The path to save the profile.
//   - out: The writer for warning messages.
func saveCalibrationProfile(cfg config.AppConfig, profilePath string, out io.Writer) {
	profile := NewProfile()
	profile.OptimalParallelThreshold = cfg.Threshold
	profile.CalibrationN = CalibrationN

	if err := profile.SaveProfile(profilePath); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n",
			cli.ColorYellow(), err, cli.ColorReset())
	}
}

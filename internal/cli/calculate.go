package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/reccalc/internal/config"
	"github.com/agbru/reccalc/internal/recurrence"
)

// GetEvaluatorsToRun determines which evaluation engines should be executed
// based on the configuration. Returns engines in alphabetically sorted order
// for consistent, reproducible behavior.
//
// Parameters:
//   - cfg: The application configuration containing the engine selection.
//   - factory: The evaluator factory to retrieve implementations from.
//
// Returns:
//   - []recurrence.Evaluator: A slice of evaluators to execute.
func GetEvaluatorsToRun(cfg config.AppConfig, factory recurrence.EvaluatorFactory) []recurrence.Evaluator {
	if cfg.AllEngines {
		keys := factory.List() // List() returns sorted keys
		evaluators := make([]recurrence.Evaluator, 0, len(keys))
		for _, k := range keys {
			if eval, err := factory.Get(k); err == nil {
				evaluators = append(evaluators, eval)
			}
		}
		return evaluators
	}
	if eval, err := factory.Get(cfg.Engine); err == nil {
		return []recurrence.Evaluator{eval}
	}
	return nil
}

// PrintExecutionConfig displays the current execution configuration to the
// user. It shows the recurrence being evaluated, the target index, timeout,
// environment details, and optimization thresholds.
//
// Parameters:
//   - seq: The recurrence sequence being evaluated.
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(seq *recurrence.Sequence, cfg config.AppConfig, out io.Writer) {
	writeOut(out, "--- Execution Configuration ---\n")
	writeOut(out, "%s%s%s\n", ColorCyan(), seq, ColorReset())
	target := fmt.Sprintf("u(%d)", cfg.N)
	if cfg.Modulus != nil {
		target = fmt.Sprintf("u(%d) mod %s", cfg.N, cfg.Modulus)
	}
	writeOut(out, "Evaluating %s%s%s with a timeout of %s%s%s.\n",
		ColorMagenta(), target, ColorReset(), ColorYellow(), cfg.Timeout, ColorReset())
	writeOut(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ColorCyan(), runtime.NumCPU(), ColorReset(), ColorCyan(), runtime.Version(), ColorReset())
	writeOut(out, "Optimization thresholds: Parallelism=%s%d%s bits.\n",
		ColorCyan(), cfg.Threshold, ColorReset())
}

// PrintExecutionMode displays the execution mode (single engine vs comparison).
//
// Parameters:
//   - evaluators: The slice of evaluators that will be executed.
//   - out: The writer for standard output.
func PrintExecutionMode(evaluators []recurrence.Evaluator, out io.Writer) {
	var modeDesc string
	if len(evaluators) > 1 {
		modeDesc = "Parallel comparison of all engines"
	} else {
		modeDesc = fmt.Sprintf("Single evaluation with the %s%s%s engine",
			ColorGreen(), evaluators[0].Name(), ColorReset())
	}
	writeOut(out, "Execution mode: %s.\n", modeDesc)
	writeOut(out, "\n--- Starting Execution ---\n")
}

// DisplayAnalyses prints the algebraic analyses requested by the
// configuration: the characteristic polynomial, the minimal polynomial and
// the companion transformation matrix.
//
// Parameters:
//   - ctx: The context for the minimal polynomial derivation.
//   - seq: The recurrence sequence to analyze.
//   - cfg: The application configuration (CharPoly/MinPoly/ShowMatrix flags).
//   - out: The writer for standard output.
//
// Returns:
//   - error: An error if the minimal polynomial derivation fails.
func DisplayAnalyses(ctx context.Context, seq *recurrence.Sequence, cfg config.AppConfig, out io.Writer) error {
	if !cfg.CharPoly && !cfg.MinPoly && !cfg.ShowMatrix {
		return nil
	}
	writeOut(out, "\n%s--- Sequence Analysis ---%s\n", ColorBold(), ColorReset())
	if cfg.CharPoly {
		writeOut(out, "Characteristic polynomial: %s%s%s\n", ColorCyan(), seq.CharacteristicPolynomial(), ColorReset())
	}
	if cfg.MinPoly {
		minPoly, err := seq.MinimalPolynomial(ctx)
		if err != nil {
			return err
		}
		degenerate := ""
		if minPoly.Degree() < seq.Order() {
			degenerate = fmt.Sprintf(" %s(degenerate: degree %d < order %d)%s",
				ColorYellow(), minPoly.Degree(), seq.Order(), ColorReset())
		}
		writeOut(out, "Minimal polynomial:        %s%s%s%s\n", ColorCyan(), minPoly, ColorReset(), degenerate)
	}
	if cfg.ShowMatrix {
		writeOut(out, "Transformation matrix:\n%s%s%s\n", ColorCyan(), seq.TransformationMatrix(), ColorReset())
	}
	return nil
}

// writeOut writes a formatted string to the output writer.
//
// Parameters:
//   - out: The destination writer.
//   - format: The format string (see fmt.Printf).
//   - a: Arguments for the format string.
func writeOut(out io.Writer, format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}

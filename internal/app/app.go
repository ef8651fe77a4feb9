package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/agbru/reccalc/internal/calibration"
	"github.com/agbru/reccalc/internal/cli"
	"github.com/agbru/reccalc/internal/config"
	apperrors "github.com/agbru/reccalc/internal/errors"
	"github.com/agbru/reccalc/internal/orchestration"
	"github.com/agbru/reccalc/internal/recurrence"
	"github.com/agbru/reccalc/internal/server"
	"github.com/agbru/reccalc/internal/ui"
)

// Application represents the reccalc application instance.
// It encapsulates the configuration and provides methods to run
// the application in various modes (CLI, server, REPL).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the evaluation engine implementations.
	// Uses the interface type for better testability and dependency injection.
	Factory recurrence.EvaluatorFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := recurrence.GlobalFactory()
	availableEngines := factory.List()

	// args[0] is program name, args[1:] are the actual arguments
	programName := "reccalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, availableEngines)
	if err != nil {
		return nil, err
	}

	// Try to load cached calibration profile first
	// This allows the application to use optimal thresholds found in previous runs
	if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationFile); loaded {
		cfg = cfgWithProfile
	} else {
		// Fallback to an adaptive threshold based on hardware characteristics
		// This provides automatic optimization without requiring --auto-calibrate
		cfg = applyAdaptiveThreshold(cfg)
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// applyAdaptiveThreshold adjusts the parallelism threshold based on hardware
// characteristics (CPU core count) when the default value is detected. This
// provides automatic performance optimization without explicit calibration.
//
// The function only modifies the threshold when it is still at the static
// default, preserving any user-specified override via --parallel-threshold.
//
// Parameters:
//   - cfg: The initial configuration with a potentially default threshold.
//
// Returns:
//   - config.AppConfig: The configuration with the adaptive threshold applied.
func applyAdaptiveThreshold(cfg config.AppConfig) config.AppConfig {
	if cfg.Threshold == recurrence.DefaultParallelThreshold {
		cfg.Threshold = calibration.EstimateOptimalParallelThreshold()
	}
	return cfg
}

// Run executes the application based on the configured mode.
// It dispatches to the appropriate handler (completion, server, REPL, or CLI).
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	// Handle version display
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	// Handle completion script generation
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	// Initialize CLI theme (respects --no-color flag and NO_COLOR env var)
	ui.InitTheme(a.Config.NoColor)
	if a.Config.Theme != "" && ui.GetCurrentTheme().Name != "none" {
		ui.SetTheme(a.Config.Theme)
	}

	// Server mode
	if a.Config.ServerMode {
		return a.runServer()
	}

	// Interactive REPL mode
	if a.Config.Interactive {
		return a.runREPL()
	}

	// Calibration mode
	if a.Config.Calibrate {
		return a.runCalibration(ctx, out)
	}

	// Run auto-calibration if enabled
	a.Config = a.runAutoCalibrationIfEnabled(ctx, out)

	// Standard CLI evaluation mode
	return a.runEvaluate(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	availableEngines := a.Factory.List()
	if err := cli.GenerateCompletion(out, a.Config.Completion, availableEngines); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer starts the HTTP server mode.
func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive REPL mode, seeded with the recurrence from
// the command line.
func (a *Application) runREPL() int {
	seq, err := a.Config.Sequence()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Invalid recurrence: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	repl := cli.NewREPL(a.Factory.GetAll(), seq, cli.REPLConfig{
		DefaultEngine:  a.Config.Engine,
		Timeout:        a.Config.Timeout,
		Threshold:      a.Config.Threshold,
		TruncateDigits: a.Config.TruncateDigits,
	})
	repl.Start()
	return apperrors.ExitSuccess
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	return calibration.RunCalibration(ctx, out, a.Factory.GetAll())
}

// runAutoCalibrationIfEnabled runs auto-calibration if enabled in the configuration.
// Returns the potentially updated configuration with a calibrated threshold value.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if a.Config.AutoCalibrate {
		if updated, ok := calibration.AutoCalibrate(ctx, a.Config, out, a.Factory.GetAll()); ok {
			return updated
		}
	}
	return a.Config
}

// runEvaluate orchestrates the execution of the CLI evaluation command.
func (a *Application) runEvaluate(ctx context.Context, out io.Writer) int {
	seq, err := a.Config.Sequence()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Invalid recurrence: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	// Setup lifecycle (timeout + signals)
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()

	// Get evaluation engines to run
	evaluatorsToRun := cli.GetEvaluatorsToRun(a.Config, a.Factory)
	if len(evaluatorsToRun) == 0 {
		fmt.Fprintf(a.ErrWriter, "No evaluation engine available for '%s'.\n", a.Config.Engine)
		return apperrors.ExitErrorConfig
	}

	// Skip verbose output in quiet mode
	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(seq, a.Config, out)
		cli.PrintExecutionMode(evaluatorsToRun, out)
	}

	// Algebraic analyses (characteristic/minimal polynomial, matrix)
	if !a.Config.JSONOutput {
		if err := cli.DisplayAnalyses(ctx, seq, a.Config, out); err != nil {
			fmt.Fprintf(a.ErrWriter, "Analysis error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}

	// In quiet mode, use a discard writer for progress display
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
	}

	// Execute evaluations
	results := orchestration.ExecuteEvaluations(ctx, evaluatorsToRun, seq, a.Config, progressOut)

	// Handle JSON output
	if a.Config.JSONOutput {
		return printJSONResults(results, out)
	}

	// Build output config for the CLI options
	outputCfg := cli.OutputConfig{
		OutputFile:     a.Config.OutputFile,
		Quiet:          a.Config.Quiet,
		Verbose:        a.Config.Verbose,
		TruncateDigits: a.Config.TruncateDigits,
	}

	return a.analyzeResultsWithOutput(results, outputCfg, out)
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.EvaluationResult, outputCfg cli.OutputConfig, out io.Writer) int {
	bestResult := findBestResult(results)

	// Handle quiet mode for single result
	if outputCfg.Quiet && bestResult != nil {
		cli.DisplayQuietResult(out, bestResult.Result)

		// Save to file if requested
		if err := a.saveResultIfNeeded(bestResult, outputCfg); err != nil {
			return apperrors.ExitErrorGeneric
		}

		return apperrors.ExitSuccess
	}

	// Use standard analysis for non-quiet mode
	exitCode := orchestration.AnalyzeComparisonResults(results, a.Config, out)

	// Handle file output for non-quiet mode
	if bestResult != nil && exitCode == apperrors.ExitSuccess {
		if err := a.saveResultIfNeeded(bestResult, outputCfg); err != nil {
			return apperrors.ExitErrorGeneric
		}
		if outputCfg.OutputFile != "" {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				cli.ColorGreen(), cli.ColorCyan(), outputCfg.OutputFile, cli.ColorReset())
		}
	}

	return exitCode
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func findBestResult(results []orchestration.EvaluationResult) *orchestration.EvaluationResult {
	var bestResult *orchestration.EvaluationResult
	for i := range results {
		if results[i].Err == nil {
			if bestResult == nil || results[i].Duration < bestResult.Duration {
				bestResult = &results[i]
			}
		}
	}
	return bestResult
}

func (a *Application) saveResultIfNeeded(res *orchestration.EvaluationResult, cfg cli.OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(res.Result, a.Config.N, a.Config.Modulus, res.Duration, res.Name, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving result: %v\n", err)
		return err
	}
	return nil
}

// jsonResult represents a single evaluation result in JSON format.
type jsonResult struct {
	Engine   string `json:"engine"`
	Duration string `json:"duration"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// printJSONResults formats the evaluation results as a JSON array and writes
// them to the output. This is useful for programmatic consumption of the results.
func printJSONResults(results []orchestration.EvaluationResult, out io.Writer) int {
	output := make([]jsonResult, len(results))
	for i, res := range results {
		jr := jsonResult{
			Engine:   res.Name,
			Duration: res.Duration.String(),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			jr.Result = res.Result.String()
		}
		output[i] = jr
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

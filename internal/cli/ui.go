// The cli package provides functions for building a command-line interface
// (CLI) for the linear recurrence calculator. It handles the asynchronous
// display of evaluation progress and formats the results for a clear and
// readable presentation.
package cli

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/agbru/reccalc/internal/recurrence"
	"github.com/agbru/reccalc/internal/ui"
	"github.com/briandowns/spinner"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
// This approach provides a more human-readable output for short durations.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// TruncationLimit is the digit threshold from which a result is truncated
	// in standard output to avoid cluttering the terminal.
	TruncationLimit = 100
	// DefaultDisplayEdges specifies the number of digits to display at the
	// beginning and end of a truncated number when no explicit truncation
	// width is configured.
	DefaultDisplayEdges = 25
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	// Optimized to 200ms to reduce updates and improve performance.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Color functions return ANSI escape codes from the current theme.
// These provide backward compatibility while allowing theme switching.
// They delegate to the ui package to reduce coupling.

// ColorReset returns the reset escape code from the current theme.
func ColorReset() string { return ui.GetCurrentTheme().Reset }

// ColorRed returns the error color from the current theme.
func ColorRed() string { return ui.GetCurrentTheme().Error }

// ColorGreen returns the success color from the current theme.
func ColorGreen() string { return ui.GetCurrentTheme().Success }

// ColorYellow returns the warning color from the current theme.
func ColorYellow() string { return ui.GetCurrentTheme().Warning }

// ColorBlue returns the primary color from the current theme.
func ColorBlue() string { return ui.GetCurrentTheme().Primary }

// ColorMagenta returns the info color from the current theme.
func ColorMagenta() string { return ui.GetCurrentTheme().Info }

// ColorCyan returns the secondary color from the current theme.
func ColorCyan() string { return ui.GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code from the current theme.
func ColorBold() string { return ui.GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code from the current theme.
func ColorUnderline() string { return ui.GetCurrentTheme().Underline }

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
// It defines the essential controls for a spinner: starting, stopping, and
// updating its status message.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	//
	// Parameters:
	//   - suffix: The text string to display.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface. This adapter allows the `spinner` library to be used
// within the application's CLI framework.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
//
// Parameters:
//   - suffix: The string to display.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState encapsulates the aggregated progress of concurrent
// evaluations. It maintains the individual progress of each evaluator and
// computes the average, which is essential for providing a consolidated
// progress view when multiple engines are running in parallel.
type ProgressState struct {
	progresses    []float64
	numEvaluators int
}

// NewProgressState creates and initializes a new ProgressState.
// It sets up the internal storage for tracking the progress of a specified
// number of evaluators.
//
// Parameters:
//   - numEvaluators: The number of evaluators to track.
//
// Returns:
//   - *ProgressState: A pointer to the new progress state object.
func NewProgressState(numEvaluators int) *ProgressState {
	return &ProgressState{
		progresses:    make([]float64, numEvaluators),
		numEvaluators: numEvaluators,
	}
}

// Update records a new progress value for a specific evaluator.
// It is designed to be safe for concurrent use, although in the current
// implementation it is called sequentially. The method ensures that updates
// are only applied for valid evaluator indices.
//
// Parameters:
//   - index: The index of the evaluator (0 to numEvaluators-1).
//   - value: The progress value (0.0 to 1.0).
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage computes the average progress across all tracked
// evaluators. This is used to display a single, consolidated progress bar to
// the user, representing the overall progress of the application.
//
// Returns:
//   - float64: The average progress (0.0 to 1.0).
func (ps *ProgressState) CalculateAverage() float64 {
	var totalProgress float64
	for _, p := range ps.progresses {
		totalProgress += p
	}
	if ps.numEvaluators == 0 {
		return 0.0
	}
	return totalProgress / float64(ps.numEvaluators)
}

// progressBar generates a string representing a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
//
// Returns:
//   - string: A string representation of the progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress manages the asynchronous display of a spinner and progress bar.
// It is designed to run in a dedicated goroutine and orchestrates the UI updates
// for the duration of the evaluations.
//
// The function's responsibilities include:
//   - Receiving progress updates from a channel.
//   - Aggregating these updates to calculate the average progress.
//   - Calculating and displaying the estimated time remaining (ETA).
//   - Periodically refreshing the spinner and progress bar.
//   - Gracefully shutting down when the progress channel is closed.
//
// Parameters:
//   - wg: A WaitGroup to signal when the display routine is complete.
//   - progressChan: The channel receiving progress updates.
//   - numEvaluators: The number of evaluators contributing to the progress.
//   - out: The io.Writer to which the progress bar is rendered.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan recurrence.ProgressUpdate, numEvaluators int, out io.Writer) {
	defer wg.Done()
	if numEvaluators <= 0 {
		for range progressChan { // Drain the channel
		}
		return
	}

	state := NewProgressWithETA(numEvaluators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				// Stop the spinner first to free the line
				if !spinnerStopped {
					s.Stop()
					spinnerStopped = true
				}

				// Display final 100% progress permanently by printing directly to output
				bar := progressBar(1.0, ProgressBarWidth)
				label := "Progress"
				if numEvaluators > 1 {
					label = "Avg progress"
				}
				// Print the final progress line with a newline so it persists
				fmt.Fprintf(out, "%s: %6.2f%% [%s] ETA: %s\n", label, 100.0, bar, "< 1s")
				return
			}
			state.UpdateWithETA(update.EvaluatorIndex, update.Value)
		case <-ticker.C:
			avgProgress := state.CalculateAverage()
			eta := state.GetETA()
			bar := progressBar(avgProgress, ProgressBarWidth)
			label := "Progress"
			if numEvaluators > 1 {
				label = "Avg progress"
			}
			etaStr := FormatETA(eta)
			s.UpdateSuffix(fmt.Sprintf(" %s: %6.2f%% [%s] ETA: %s", label, avgProgress*100, bar, etaStr))
		}
	}
}

// DisplayResult formats and prints the final evaluated term.
// It includes metadata like binary size and number of digits, and truncates
// the output for very large numbers unless verbose is true.
//
// Parameters:
//   - result: The evaluated term.
//   - n: The term index.
//   - modulus: The modulus used, nil for exact evaluation.
//   - duration: The time taken for the evaluation.
//   - verbose: If true, prints the full number regardless of size.
//   - truncate: The number of head/tail digits for truncated display;
//     0 falls back to DefaultDisplayEdges.
//   - out: The io.Writer for the output.
func DisplayResult(result *big.Int, n int64, modulus *big.Int, duration time.Duration, verbose bool, truncate int, out io.Writer) {
	bitLen := result.BitLen()
	fmt.Fprintf(out, "Result binary size: %s%s%s bits.\n", ColorCyan(), formatNumberString(fmt.Sprintf("%d", bitLen)), ColorReset())

	durationStr := FormatExecutionDuration(duration)
	if duration == 0 {
		durationStr = "< 1µs"
	}
	fmt.Fprintf(out, "Evaluation time: %s%s%s\n", ColorGreen(), durationStr, ColorReset())

	resultStr := result.String()
	numDigits := len(resultStr)
	fmt.Fprintf(out, "Number of digits: %s%s%s\n", ColorCyan(), formatNumberString(fmt.Sprintf("%d", numDigits)), ColorReset())

	label := termLabel(n, modulus)
	edges := truncate
	if edges <= 0 {
		edges = DefaultDisplayEdges
	}

	fmt.Fprintf(out, "\n%s--- Evaluated term ---%s\n", ColorBold(), ColorReset())
	if verbose || numDigits <= TruncationLimit || numDigits <= 2*edges {
		fmt.Fprintf(out, "%s = %s%s%s\n", label, ColorGreen(), formatNumberString(resultStr), ColorReset())
	} else {
		fmt.Fprintf(out, "%s (truncated) = %s%s...%s%s\n",
			label,
			ColorGreen(), resultStr[:edges], resultStr[numDigits-edges:], ColorReset())
		fmt.Fprintf(out, "(Tip: use the %s-v%s option to display the full value)\n", ColorYellow(), ColorReset())
	}
}

// termLabel renders "u(n)" or "u(n) mod m" for result display.
func termLabel(n int64, modulus *big.Int) string {
	if modulus != nil && modulus.Sign() != 0 {
		return fmt.Sprintf("u(%s%d%s) mod %s", ColorMagenta(), n, ColorReset(), modulus)
	}
	return fmt.Sprintf("u(%s%d%s)", ColorMagenta(), n, ColorReset())
}

// formatNumberString inserts thousand separators into a numeric string.
// Optimized to reduce memory allocations
//
// Parameters:
//   - s: The numeric string to format.
//
// Returns:
//   - string: The formatted string with comma separators.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	// Precise calculation of the required capacity to avoid reallocations
	numSeparators := (n - 1) / 3
	capacity := len(prefix) + n + numSeparators
	var builder strings.Builder
	builder.Grow(capacity)
	builder.WriteString(prefix)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])

	// Optimized loop with fewer function calls
	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}

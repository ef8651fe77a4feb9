// Package cli provides output utilities for exporting evaluation results.
package cli

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"time"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// Quiet mode suppresses verbose output.
	Quiet bool
	// Verbose shows the full result value.
	Verbose bool
	// TruncateDigits is the head/tail digit count for truncated display.
	TruncateDigits int
}

// WriteResultToFile writes an evaluation result to a file.
//
// Parameters:
//   - result: The evaluated term.
//   - n: The term index.
//   - modulus: The modulus used, nil for exact evaluation.
//   - duration: The evaluation duration.
//   - engine: The engine name used.
//   - config: Output configuration.
//
// Returns:
//   - error: An error if the file cannot be written.
func WriteResultToFile(result *big.Int, n int64, modulus *big.Int, duration time.Duration, engine string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	// Write header
	fmt.Fprintf(file, "# Linear Recurrence Evaluation Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Engine: %s\n", engine)
	fmt.Fprintf(file, "# Duration: %s\n", duration)
	fmt.Fprintf(file, "# N: %d\n", n)
	if modulus != nil && modulus.Sign() != 0 {
		fmt.Fprintf(file, "# Modulus: %s\n", modulus)
	}
	fmt.Fprintf(file, "# Bits: %d\n", result.BitLen())
	fmt.Fprintf(file, "# Digits: %d\n", len(result.String()))
	fmt.Fprintf(file, "\n")

	// Write result
	if modulus != nil && modulus.Sign() != 0 {
		fmt.Fprintf(file, "u(%d) mod %s =\n%s\n", n, modulus, result.String())
	} else {
		fmt.Fprintf(file, "u(%d) =\n%s\n", n, result.String())
	}

	return nil
}

// FormatQuietResult formats a result for quiet mode output.
// Returns a single-line result suitable for scripting.
//
// Parameters:
//   - result: The evaluated term.
//
// Returns:
//   - string: The formatted result string.
func FormatQuietResult(result *big.Int) string {
	return result.String()
}

// DisplayQuietResult outputs a result in quiet mode (minimal output).
//
// Parameters:
//   - out: The output writer.
//   - result: The evaluated term.
func DisplayQuietResult(out io.Writer, result *big.Int) {
	fmt.Fprintln(out, FormatQuietResult(result))
}

// DisplayResultWithConfig displays a result with the given output
// configuration. This is a unified function that handles all output modes.
//
// Parameters:
//   - out: The output writer.
//   - result: The evaluated term.
//   - n: The term index.
//   - modulus: The modulus used, nil for exact evaluation.
//   - duration: The evaluation duration.
//   - engine: The engine name.
//   - config: Output configuration.
//
// Returns:
//   - error: An error if file output fails.
func DisplayResultWithConfig(out io.Writer, result *big.Int, n int64, modulus *big.Int, duration time.Duration, engine string, config OutputConfig) error {
	// Handle quiet mode
	if config.Quiet {
		DisplayQuietResult(out, result)
	} else {
		// Use standard display
		DisplayResult(result, n, modulus, duration, config.Verbose, config.TruncateDigits, out)
	}

	// Save to file if requested
	if config.OutputFile != "" {
		if err := WriteResultToFile(result, n, modulus, duration, engine, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ColorGreen(), ColorCyan(), config.OutputFile, ColorReset())
		}
	}

	return nil
}

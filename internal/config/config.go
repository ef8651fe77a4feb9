// Package config provides the configuration management for the reccalc
// application. It defines the data structure for the configuration, handles
// the parsing of command-line arguments, and performs validation on the
// configuration values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	apperrors "github.com/agbru/reccalc/internal/errors"
	"github.com/agbru/reccalc/internal/recurrence"
)

const (
	// EnvPrefix is the prefix for all environment variables used by reccalc.
	// Environment variables provide an alternative to CLI flags for
	// configuration, following the 12-Factor App methodology.
	EnvPrefix = "RECCALC_"
)

// Default configuration values.
// These can be overridden via command-line flags or environment variables.
const (
	// DefaultN is the default term index to evaluate.
	DefaultN int64 = 100
	// DefaultInitial is the default initial-term list (Tribonacci).
	DefaultInitial = "0,0,1"
	// DefaultCoefficients is the default coefficient list (Tribonacci).
	DefaultCoefficients = "1,1,1"
	// DefaultTimeout is the default evaluation timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"
	// DefaultEngine is the default engine selection.
	DefaultEngine = recurrence.DefaultEngine
	// DefaultThreshold is the default parallelism threshold in bits.
	DefaultThreshold = recurrence.DefaultParallelThreshold
	// DefaultTruncateDigits is the number of leading and trailing digits
	// shown for huge results when full output is not requested.
	DefaultTruncateDigits = 20
	// DefaultRateLimit is the default server rate limit in requests/second.
	DefaultRateLimit = 10.0
	// DefaultRateBurst is the default server rate-limit burst size.
	DefaultRateBurst = 20
)

// AppConfig aggregates the application's configuration parameters, parsed
// from command-line flags. It encapsulates all settings that control the
// execution, from the recurrence definition and term index to evaluate, to
// performance-tuning parameters.
type AppConfig struct {
	// InitialSpec is the comma-separated list of initial terms u_0..u_{d-1}.
	InitialSpec string
	// CoefficientSpec is the comma-separated list of recurrence
	// coefficients a_0..a_{d-1}, a_0 applying to the newest prior term.
	CoefficientSpec string
	// Initial holds the parsed initial terms.
	Initial []*big.Int
	// Coefficients holds the parsed recurrence coefficients.
	Coefficients []*big.Int
	// N is the index of the term to be evaluated.
	N int64
	// ModulusSpec is the textual modulus; empty or "0" means exact
	// evaluation over the integers.
	ModulusSpec string
	// Modulus is the parsed modulus, nil when reduction is disabled.
	Modulus *big.Int
	// Engine specifies the evaluation engine to use ("matrix", "poly", ...).
	Engine string
	// AllEngines, if true, runs every registered engine and compares results.
	AllEngines bool
	// CharPoly, if true, prints the characteristic polynomial.
	CharPoly bool
	// MinPoly, if true, prints the minimal polynomial.
	MinPoly bool
	// ShowMatrix, if true, prints the companion transformation matrix.
	ShowMatrix bool
	// Verbose, if true, instructs the application to display the full
	// evaluated term, however long.
	Verbose bool
	// Timeout sets the maximum duration for the evaluation.
	Timeout time.Duration
	// Threshold determines the bit size at which matrix row products are
	// parallelized.
	Threshold int
	// Calibrate, if true, runs the application in calibration mode to find
	// the optimal parallelism threshold.
	Calibrate bool
	// AutoCalibrate, if true, runs a quick startup calibration to fine-tune
	// the parallelism threshold before evaluation.
	AutoCalibrate bool
	// CalibrationFile is the path to a calibration profile file. If set,
	// the application will load/save calibration results from/to this file.
	// If empty, uses the default path (~/.reccalc_calibration.json).
	CalibrationFile string
	// JSONOutput, if true, outputs the result in JSON format.
	JSONOutput bool
	// ServerMode, if true, starts the application as an HTTP server.
	ServerMode bool
	// Addr specifies the address to listen on in server mode.
	Addr string
	// RateLimit is the server rate limit in requests per second.
	RateLimit float64
	// RateBurst is the server rate-limit burst size.
	RateBurst int
	// NoColor, if true, disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool
	// Theme selects the CLI color theme ("dark", "light", "none").
	Theme string
	// TruncateDigits is the number of head and tail digits displayed for
	// large results; 0 disables truncation.
	TruncateDigits int

	// OutputFile, if specified, saves the result to this file path.
	OutputFile string
	// Quiet mode - minimal output for scripting purposes.
	// Suppresses progress bars, banners, and informational messages.
	Quiet bool
	// Interactive, if true, starts the application in REPL mode.
	Interactive bool
	// Completion, if set, generates shell completion script for the
	// specified shell. Valid values are: "bash", "zsh", "fish".
	Completion string
	// ShowVersion, if true, prints version information and exits.
	ShowVersion bool
}

// ToEvaluationOptions converts the application configuration into
// recurrence.Options for use by the evaluation engines.
func (c AppConfig) ToEvaluationOptions() recurrence.Options {
	return recurrence.Options{
		ParallelThreshold: c.Threshold,
	}
}

// Sequence constructs the recurrence sequence defined by the configuration.
// Construction errors (length mismatch, unsupported order, binary order)
// surface unchanged so callers can match the recurrence sentinels.
func (c AppConfig) Sequence() (*recurrence.Sequence, error) {
	return recurrence.New(c.Initial, c.Coefficients)
}

// Validate checks the semantic consistency of the configuration parameters.
// It ensures that numerical values are within valid ranges and that the
// chosen engine is supported.
//
// Parameters:
//   - availableEngines: A slice of strings listing the valid engine names
//     (e.g., ["iterative", "matrix", "poly"]).
//
// Returns:
//   - error: An error of type ConfigError if the configuration is invalid,
//     nil otherwise.
func (c AppConfig) Validate(availableEngines []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	// -1 is the sequential sentinel; anything below is a typo.
	if c.Threshold < -1 {
		return apperrors.NewConfigError("parallelism threshold cannot be below -1: %d", c.Threshold)
	}
	if c.N < 0 {
		return apperrors.NewConfigError("term index cannot be negative: %d", c.N)
	}
	if c.TruncateDigits < 0 {
		return apperrors.NewConfigError("truncation digit count cannot be negative: %d", c.TruncateDigits)
	}
	if c.RateLimit <= 0 {
		return apperrors.NewConfigError("rate limit must be strictly positive: %g", c.RateLimit)
	}
	if c.RateBurst < 1 {
		return apperrors.NewConfigError("rate-limit burst must be at least 1: %d", c.RateBurst)
	}
	switch c.Theme {
	case "dark", "light", "none":
	default:
		return apperrors.NewConfigError("unrecognized theme: '%s'. Valid themes are: dark, light, none", c.Theme)
	}
	isEngineAvailable := false
	for _, e := range availableEngines {
		if e == c.Engine {
			isEngineAvailable = true
			break
		}
	}
	if !c.AllEngines && !isEngineAvailable {
		return apperrors.NewConfigError("unrecognized engine: '%s'. Valid engines are: [%s] (or use -all)", c.Engine, strings.Join(availableEngines, ", "))
	}
	return nil
}

// ParseIntList parses a comma-separated list of integers into big integers.
// Spaces around entries are tolerated; an empty string yields an empty list.
//
// Parameters:
//   - spec: The textual list, e.g. "0, 1, 2" or "-2,1,2".
//
// Returns:
//   - []*big.Int: The parsed values in order.
//   - error: A ConfigError naming the offending entry.
func ParseIntList(spec string) ([]*big.Int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	values := make([]*big.Int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		v, ok := new(big.Int).SetString(part, 10)
		if !ok {
			return nil, apperrors.NewConfigError("invalid integer '%s' in list '%s'", part, spec)
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseModulus parses the modulus flag. Empty and "0" are the sentinel for
// exact evaluation and yield nil; negative values are rejected here so the
// error reaches the user at configuration time rather than mid-evaluation.
func ParseModulus(spec string) (*big.Int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "0" {
		return nil, nil
	}
	m, ok := new(big.Int).SetString(spec, 10)
	if !ok {
		return nil, apperrors.NewConfigError("invalid modulus: '%s'", spec)
	}
	if m.Sign() < 0 {
		return nil, apperrors.NewConfigError("modulus cannot be negative: %s", spec)
	}
	return m, nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig
// struct. It defines all the command-line flags, sets their default values,
// and handles the parsing process. After parsing, it performs validation on
// the resulting configuration.
//
// The function is designed to be testable by allowing the input arguments
// and output writer to be specified.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: A slice of strings representing the command-line arguments
//     (typically os.Args[1:]).
//   - errorWriter: An io.Writer where parsing errors and usage information
//     will be printed.
//   - availableEngines: A slice of valid engine names for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing fails or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableEngines []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	engineHelp := fmt.Sprintf("Evaluation engine: one of [%s].", strings.Join(availableEngines, ", "))

	config := AppConfig{}
	fs.StringVar(&config.InitialSpec, "u", DefaultInitial, "Comma-separated initial terms u_0..u_{d-1}.")
	fs.StringVar(&config.CoefficientSpec, "a", DefaultCoefficients, "Comma-separated recurrence coefficients a_0..a_{d-1} (a_0 multiplies the newest prior term).")
	fs.Int64Var(&config.N, "n", DefaultN, "Index n of the term to evaluate.")
	fs.StringVar(&config.ModulusSpec, "modulus", "", "Reduce the result modulo this positive integer (0 or empty: exact evaluation).")
	fs.StringVar(&config.Engine, "engine", DefaultEngine, engineHelp)
	fs.BoolVar(&config.AllEngines, "all", false, "Run every registered engine and compare results.")
	fs.BoolVar(&config.CharPoly, "charpoly", false, "Print the characteristic polynomial of the recurrence.")
	fs.BoolVar(&config.MinPoly, "minpoly", false, "Print the minimal polynomial of the sequence.")
	fs.BoolVar(&config.ShowMatrix, "show-matrix", false, "Print the companion transformation matrix.")
	fs.BoolVar(&config.Verbose, "v", false, "Display the full value of the result (can be very long).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the evaluation.")
	fs.IntVar(&config.Threshold, "parallel-threshold", DefaultThreshold, "Threshold (in bits) for activating parallelism in matrix row products (-1 forces sequential).")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Runs calibration mode to determine the optimal parallelism threshold.")
	fs.BoolVar(&config.AutoCalibrate, "auto-calibrate", false, "Run a quick startup calibration before evaluating.")
	fs.StringVar(&config.CalibrationFile, "calibration-file", "", "Path to calibration profile file (default: ~/.reccalc_calibration.json).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Addr, "addr", DefaultAddr, "Address to listen on in server mode.")
	fs.Float64Var(&config.RateLimit, "rate-limit", DefaultRateLimit, "Server rate limit in requests per second.")
	fs.IntVar(&config.RateBurst, "burst", DefaultRateBurst, "Server rate-limit burst size.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.Theme, "theme", "dark", "CLI color theme: dark, light or none.")
	fs.IntVar(&config.TruncateDigits, "truncate", DefaultTruncateDigits, "Head/tail digits shown for huge results (0 disables truncation).")

	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Interactive, "repl", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish).")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version information and exit.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	// Apply environment variable overrides for flags not explicitly set
	applyEnvOverrides(&config, fs)

	config.Engine = strings.ToLower(config.Engine)
	config.Theme = strings.ToLower(config.Theme)

	var err error
	if config.Initial, err = ParseIntList(config.InitialSpec); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, errors.New("invalid configuration")
	}
	if config.Coefficients, err = ParseIntList(config.CoefficientSpec); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, errors.New("invalid configuration")
	}
	if config.Modulus, err = ParseModulus(config.ModulusSpec); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		return AppConfig{}, errors.New("invalid configuration")
	}

	if err := config.Validate(availableEngines); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}

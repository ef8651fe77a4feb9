// Package config provides the configuration management for the reccalc application.
// This file contains environment variable utilities for configuration override.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt64 returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int64, or the default value if not set
// or invalid.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvInt returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int, or the default value if not set
// or invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvFloat64 returns the value of the environment variable with the given
// key (prefixed with EnvPrefix) parsed as float64, or the default value if
// not set or invalid.
func getEnvFloat64(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as time.Duration, or the default value if not
// set or invalid. Accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Supported environment variables:
//   - RECCALC_U: Comma-separated initial terms (string)
//   - RECCALC_A: Comma-separated recurrence coefficients (string)
//   - RECCALC_N: Index of the term to evaluate (int64)
//   - RECCALC_MODULUS: Modulus for reduced evaluation (string, "0" disables)
//   - RECCALC_ENGINE: Evaluation engine (string: matrix, poly, iterative)
//   - RECCALC_ADDR: Listen address for server mode (string)
//   - RECCALC_TIMEOUT: Evaluation timeout (duration: "5m", "30s")
//   - RECCALC_PARALLEL_THRESHOLD: Parallelism threshold in bits (int)
//   - RECCALC_RATE_LIMIT: Server rate limit in requests/second (float)
//   - RECCALC_BURST: Server rate-limit burst size (int)
//   - RECCALC_SERVER: Enable server mode (bool: true/false, 1/0, yes/no)
//   - RECCALC_JSON: Enable JSON output (bool)
//   - RECCALC_VERBOSE: Enable verbose output (bool)
//   - RECCALC_QUIET: Enable quiet mode (bool)
//   - RECCALC_REPL: Enable interactive REPL mode (bool)
//   - RECCALC_NO_COLOR: Disable colored output (bool)
//   - RECCALC_THEME: CLI color theme (string)
//   - RECCALC_OUTPUT: Output file path (string)
//   - RECCALC_CALIBRATION_FILE: Path to calibration profile (string)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyDurationOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "n") {
		config.N = getEnvInt64("N", config.N)
	}
	if !isFlagSet(fs, "parallel-threshold") {
		config.Threshold = getEnvInt("PARALLEL_THRESHOLD", config.Threshold)
	}
	if !isFlagSet(fs, "rate-limit") {
		config.RateLimit = getEnvFloat64("RATE_LIMIT", config.RateLimit)
	}
	if !isFlagSet(fs, "burst") {
		config.RateBurst = getEnvInt("BURST", config.RateBurst)
	}
	if !isFlagSet(fs, "truncate") {
		config.TruncateDigits = getEnvInt("TRUNCATE", config.TruncateDigits)
	}
}

func applyDurationOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "u") {
		config.InitialSpec = getEnvString("U", config.InitialSpec)
	}
	if !isFlagSet(fs, "a") {
		config.CoefficientSpec = getEnvString("A", config.CoefficientSpec)
	}
	if !isFlagSet(fs, "modulus") {
		config.ModulusSpec = getEnvString("MODULUS", config.ModulusSpec)
	}
	if !isFlagSet(fs, "engine") {
		config.Engine = getEnvString("ENGINE", config.Engine)
	}
	if !isFlagSet(fs, "addr") {
		config.Addr = getEnvString("ADDR", config.Addr)
	}
	if !isFlagSet(fs, "theme") {
		config.Theme = getEnvString("THEME", config.Theme)
	}
	if !isFlagSet(fs, "output") && !isFlagSet(fs, "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
	if !isFlagSet(fs, "calibration-file") {
		config.CalibrationFile = getEnvString("CALIBRATION_FILE", config.CalibrationFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "all") {
		config.AllEngines = getEnvBool("ALL", config.AllEngines)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "v") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "charpoly") {
		config.CharPoly = getEnvBool("CHARPOLY", config.CharPoly)
	}
	if !isFlagSet(fs, "minpoly") {
		config.MinPoly = getEnvBool("MINPOLY", config.MinPoly)
	}
	if !isFlagSet(fs, "show-matrix") {
		config.ShowMatrix = getEnvBool("SHOW_MATRIX", config.ShowMatrix)
	}
	if !isFlagSet(fs, "quiet") && !isFlagSet(fs, "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "repl") {
		config.Interactive = getEnvBool("REPL", config.Interactive)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
	if !isFlagSet(fs, "calibrate") {
		config.Calibrate = getEnvBool("CALIBRATE", config.Calibrate)
	}
	if !isFlagSet(fs, "auto-calibrate") {
		config.AutoCalibrate = getEnvBool("AUTO_CALIBRATE", config.AutoCalibrate)
	}
}

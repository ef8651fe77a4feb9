package config

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/agbru/reccalc/internal/recurrence"
)

// ─────────────────────────────────────────────────────────────────────────────
// Exhaustive Validation Tests
// ─────────────────────────────────────────────────────────────────────────────

// TestValidateTimeout tests all timeout validation scenarios.
func TestValidateTimeout(t *testing.T) {
	t.Parallel()
	engines := []string{"iterative", "matrix"}

	testCases := []struct {
		name        string
		timeout     time.Duration
		expectError bool
	}{
		{"ZeroTimeout", 0, true},
		{"NegativeTimeout", -1 * time.Second, true},
		{"MinPositiveTimeout", 1 * time.Nanosecond, false},
		{"OneSecondTimeout", 1 * time.Second, false},
		{"OneMinuteTimeout", 1 * time.Minute, false},
		{"OneHourTimeout", 1 * time.Hour, false},
		{"VeryLargeTimeout", 24 * time.Hour, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := AppConfig{
				Timeout:   tc.timeout,
				Engine:    "matrix",
				Theme:     "dark",
				RateLimit: DefaultRateLimit,
				RateBurst: DefaultRateBurst,
			}
			err := cfg.Validate(engines)
			if tc.expectError && err == nil {
				t.Errorf("Expected error for timeout %v", tc.timeout)
			}
			if !tc.expectError && err != nil {
				t.Errorf("Unexpected error for timeout %v: %v", tc.timeout, err)
			}
		})
	}
}

// TestValidateEngineNames covers the engine-name check including case
// handling and the -all escape hatch.
func TestValidateEngineNames(t *testing.T) {
	t.Parallel()
	engines := []string{"iterative", "matrix", "poly"}

	testCases := []struct {
		name        string
		engine      string
		allEngines  bool
		expectError bool
	}{
		{"KnownMatrix", "matrix", false, false},
		{"KnownPoly", "poly", false, false},
		{"KnownIterative", "iterative", false, false},
		{"Unknown", "strassen", false, true},
		{"Empty", "", false, true},
		{"UnknownButAll", "strassen", true, false},
		{"EmptyButAll", "", true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := AppConfig{
				Timeout:    time.Second,
				Engine:     tc.engine,
				AllEngines: tc.allEngines,
				Theme:      "dark",
				RateLimit:  DefaultRateLimit,
				RateBurst:  DefaultRateBurst,
			}
			err := cfg.Validate(engines)
			if tc.expectError && err == nil {
				t.Errorf("Expected error for engine %q", tc.engine)
			}
			if !tc.expectError && err != nil {
				t.Errorf("Unexpected error for engine %q: %v", tc.engine, err)
			}
		})
	}
}

// TestParseIntList covers list parsing edge cases.
func TestParseIntList(t *testing.T) {
	t.Parallel()

	t.Run("Simple", func(t *testing.T) {
		t.Parallel()
		vals, err := ParseIntList("0,1,2")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(vals) != 3 || vals[2].Int64() != 2 {
			t.Errorf("Expected [0 1 2], got %v", vals)
		}
	})

	t.Run("SpacesAndNegatives", func(t *testing.T) {
		t.Parallel()
		vals, err := ParseIntList(" -2 , 1 , 2 ")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if vals[0].Int64() != -2 {
			t.Errorf("Expected -2, got %s", vals[0])
		}
	})

	t.Run("HugeValues", func(t *testing.T) {
		t.Parallel()
		vals, err := ParseIntList("123456789012345678901234567890,1,1")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if vals[0].String() != "123456789012345678901234567890" {
			t.Errorf("Big value mangled: %s", vals[0])
		}
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		vals, err := ParseIntList("")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(vals) != 0 {
			t.Errorf("Expected empty list, got %v", vals)
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseIntList("1,two,3"); err == nil {
			t.Error("Expected error for non-numeric entry")
		}
	})

	t.Run("TrailingComma", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseIntList("1,2,"); err == nil {
			t.Error("Expected error for trailing comma")
		}
	})
}

// TestParseModulus covers the sentinel convention: empty and "0" disable
// reduction, positive values are parsed, negatives are rejected.
func TestParseModulus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		spec      string
		wantNil   bool
		wantValue string
		wantErr   bool
	}{
		{"Empty", "", true, "", false},
		{"ZeroSentinel", "0", true, "", false},
		{"One", "1", false, "1", false},
		{"Twelve", "12", false, "12", false},
		{"Huge", "340282366920938463463374607431768211456", false, "340282366920938463463374607431768211456", false},
		{"Negative", "-7", false, "", true},
		{"Garbage", "twelve", false, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m, err := ParseModulus(tc.spec)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tc.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tc.wantNil {
				if m != nil {
					t.Errorf("Expected nil modulus for %q, got %v", tc.spec, m)
				}
				return
			}
			if m == nil || m.String() != tc.wantValue {
				t.Errorf("Expected modulus %s, got %v", tc.wantValue, m)
			}
		})
	}
}

// TestSequenceConstruction checks that the config surfaces the recurrence
// package's sentinel errors unchanged.
func TestSequenceConstruction(t *testing.T) {
	t.Parallel()

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("reccalc", []string{"-u", "0,1,2", "-a", "-2,1,2"}, io.Discard, []string{"matrix"})
		if err != nil {
			t.Fatalf("Unexpected parse error: %v", err)
		}
		seq, err := cfg.Sequence()
		if err != nil {
			t.Fatalf("Unexpected construction error: %v", err)
		}
		if seq.Order() != 3 {
			t.Errorf("Expected order 3, got %d", seq.Order())
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("reccalc", []string{"-u", "0,1,1,2", "-a", "-2,1,2"}, io.Discard, []string{"matrix"})
		if err != nil {
			t.Fatalf("Unexpected parse error: %v", err)
		}
		if _, err := cfg.Sequence(); !errors.Is(err, recurrence.ErrLengthMismatch) {
			t.Errorf("Expected ErrLengthMismatch, got %v", err)
		}
	})

	t.Run("BinaryOrder", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("reccalc", []string{"-u", "0,1", "-a", "1,1"}, io.Discard, []string{"matrix"})
		if err != nil {
			t.Fatalf("Unexpected parse error: %v", err)
		}
		if _, err := cfg.Sequence(); !errors.Is(err, recurrence.ErrBinaryRecurrence) {
			t.Errorf("Expected ErrBinaryRecurrence, got %v", err)
		}
	})
}

// TestToEvaluationOptions verifies the config-to-options mapping.
func TestToEvaluationOptions(t *testing.T) {
	t.Parallel()
	cfg := AppConfig{Threshold: 2048}
	opts := cfg.ToEvaluationOptions()
	if opts.ParallelThreshold != 2048 {
		t.Errorf("Expected ParallelThreshold 2048, got %d", opts.ParallelThreshold)
	}
}

// TestUsageOutput ensures the custom usage function prints every flag.
func TestUsageOutput(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	_, err := ParseConfig("reccalc", []string{"-h"}, &buf, []string{"matrix"})
	if err == nil {
		t.Fatal("Expected flag.ErrHelp from -h")
	}
	out := buf.String()
	for _, flagName := range []string{"-u", "-a", "-n", "-modulus", "-engine", "-charpoly", "-minpoly", "-show-matrix", "-server", "-repl"} {
		if !strings.Contains(out, flagName) {
			t.Errorf("Usage output missing %s", flagName)
		}
	}
}

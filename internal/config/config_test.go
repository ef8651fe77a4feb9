package config

import (
	"io"
	"os"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	availableEngines := []string{"iterative", "matrix", "poly"}

	t.Run("DefaultValues", func(t *testing.T) {
		t.Parallel()
		args := []string{}
		cfg, err := ParseConfig("reccalc", args, io.Discard, availableEngines)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.N != DefaultN {
			t.Errorf("Expected default N %d, got %d", DefaultN, cfg.N)
		}
		if cfg.Engine != "matrix" {
			t.Errorf("Expected default Engine 'matrix', got %s", cfg.Engine)
		}
		if cfg.Timeout != 5*time.Minute {
			t.Errorf("Expected default Timeout 5m, got %v", cfg.Timeout)
		}
		if len(cfg.Initial) != 3 || len(cfg.Coefficients) != 3 {
			t.Errorf("Expected default Tribonacci definition, got u=%v a=%v", cfg.Initial, cfg.Coefficients)
		}
		if cfg.Modulus != nil {
			t.Errorf("Expected nil default modulus, got %v", cfg.Modulus)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-u", "0,1,2",
			"-a", "-2,1,2",
			"-n", "100",
			"-modulus", "12",
			"-engine", "poly",
			"-v",
			"-timeout", "10s",
			"-parallel-threshold", "5000",
			"-server",
			"-addr", ":9090",
		}
		cfg, err := ParseConfig("reccalc", args, io.Discard, availableEngines)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.N != 100 {
			t.Errorf("Expected N 100, got %d", cfg.N)
		}
		if cfg.Engine != "poly" {
			t.Errorf("Expected Engine 'poly', got %s", cfg.Engine)
		}
		if !cfg.Verbose {
			t.Error("Expected Verbose true")
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("Expected Timeout 10s, got %v", cfg.Timeout)
		}
		if cfg.Threshold != 5000 {
			t.Errorf("Expected Threshold 5000, got %d", cfg.Threshold)
		}
		if !cfg.ServerMode {
			t.Error("Expected ServerMode true")
		}
		if cfg.Addr != ":9090" {
			t.Errorf("Expected Addr :9090, got %s", cfg.Addr)
		}
		if cfg.Modulus == nil || cfg.Modulus.Int64() != 12 {
			t.Errorf("Expected Modulus 12, got %v", cfg.Modulus)
		}
		if got := len(cfg.Initial); got != 3 {
			t.Errorf("Expected 3 initial terms, got %d", got)
		}
		if cfg.Coefficients[0].Int64() != -2 {
			t.Errorf("Expected a_0 = -2, got %s", cfg.Coefficients[0])
		}
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		env := map[string]string{
			"RECCALC_U":                "0,0,0,0,1",
			"RECCALC_A":                "1,1,1,1,1",
			"RECCALC_N":                "200",
			"RECCALC_MODULUS":          "97",
			"RECCALC_ENGINE":           "iterative",
			"RECCALC_SERVER":           "true",
			"RECCALC_ADDR":             ":3000",
			"RECCALC_TIMEOUT":          "2m",
			"RECCALC_PARALLEL_THRESHOLD": "1024",
			"RECCALC_VERBOSE":          "true",
			"RECCALC_QUIET":            "true",
			"RECCALC_REPL":             "true",
			"RECCALC_NO_COLOR":         "true",
			"RECCALC_CALIBRATE":        "true",
			"RECCALC_CHARPOLY":         "true",
			"RECCALC_MINPOLY":          "true",
			"RECCALC_OUTPUT":           "out.txt",
			"RECCALC_CALIBRATION_FILE": "prof.json",
			"RECCALC_JSON":             "true",
		}

		for k, v := range env {
			os.Setenv(k, v)
		}
		defer func() {
			for k := range env {
				os.Unsetenv(k)
			}
		}()

		// No flags set, should take from env
		cfg, err := ParseConfig("reccalc", []string{}, io.Discard, availableEngines)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.N != 200 {
			t.Errorf("Expected N 200 from env, got %d", cfg.N)
		}
		if cfg.Engine != "iterative" {
			t.Errorf("Expected Engine 'iterative' from env, got %s", cfg.Engine)
		}
		if len(cfg.Initial) != 5 {
			t.Errorf("Expected 5 initial terms from env, got %d", len(cfg.Initial))
		}
		if cfg.Modulus == nil || cfg.Modulus.Int64() != 97 {
			t.Errorf("Expected Modulus 97 from env, got %v", cfg.Modulus)
		}
		if !cfg.ServerMode {
			t.Error("Expected ServerMode true from env")
		}
		if cfg.Addr != ":3000" {
			t.Errorf("Expected Addr :3000, got %s", cfg.Addr)
		}
		if cfg.Timeout != 2*time.Minute {
			t.Errorf("Expected Timeout 2m, got %v", cfg.Timeout)
		}
		if cfg.Threshold != 1024 {
			t.Errorf("Expected Threshold 1024, got %d", cfg.Threshold)
		}
		if !cfg.Verbose {
			t.Error("Expected Verbose true")
		}
		if !cfg.Quiet {
			t.Error("Expected Quiet true")
		}
		if !cfg.Interactive {
			t.Error("Expected Interactive true")
		}
		if !cfg.NoColor {
			t.Error("Expected NoColor true")
		}
		if !cfg.Calibrate {
			t.Error("Expected Calibrate true")
		}
		if !cfg.CharPoly || !cfg.MinPoly {
			t.Error("Expected CharPoly and MinPoly true")
		}
		if cfg.OutputFile != "out.txt" {
			t.Errorf("Expected OutputFile out.txt, got %s", cfg.OutputFile)
		}
		if cfg.CalibrationFile != "prof.json" {
			t.Errorf("Expected CalibrationFile prof.json, got %s", cfg.CalibrationFile)
		}
		if !cfg.JSONOutput {
			t.Error("Expected JSONOutput true")
		}
	})

	t.Run("FlagPrecedenceOverEnv", func(t *testing.T) {
		os.Setenv("RECCALC_N", "200")
		defer os.Unsetenv("RECCALC_N")

		// Flag set explicitly
		cfg, err := ParseConfig("reccalc", []string{"-n", "300"}, io.Discard, availableEngines)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.N != 300 {
			t.Errorf("Expected N 300 from flag, got %d", cfg.N)
		}
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		t.Parallel()
		// Unknown flag
		_, err := ParseConfig("reccalc", []string{"-unknown"}, io.Discard, availableEngines)
		if err == nil {
			t.Error("Expected error for unknown flag")
		}
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		t.Parallel()
		// Invalid engine
		_, err := ParseConfig("reccalc", []string{"-engine", "invalid"}, io.Discard, availableEngines)
		if err == nil {
			t.Error("Expected error for invalid engine")
		}
	})

	t.Run("BadInitialTerms", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("reccalc", []string{"-u", "0,x,1"}, io.Discard, availableEngines)
		if err == nil {
			t.Error("Expected error for unparseable initial term")
		}
	})

	t.Run("BadModulus", func(t *testing.T) {
		t.Parallel()
		_, err := ParseConfig("reccalc", []string{"-modulus", "-5"}, io.Discard, availableEngines)
		if err == nil {
			t.Error("Expected error for negative modulus")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	availableEngines := []string{"iterative", "matrix"}

	valid := func() AppConfig {
		return AppConfig{
			Timeout:   1 * time.Second,
			Threshold: 10,
			Engine:    "matrix",
			Theme:     "dark",
			RateLimit: DefaultRateLimit,
			RateBurst: DefaultRateBurst,
		}
	}

	t.Run("Valid", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(availableEngines); err != nil {
			t.Errorf("Unexpected validation error: %v", err)
		}
	})

	t.Run("InvalidTimeout", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.Timeout = 0
		if err := c.Validate(availableEngines); err == nil {
			t.Error("Expected error for zero timeout")
		}
	})

	t.Run("InvalidThreshold", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.Threshold = -1
		if err := c.Validate(availableEngines); err == nil {
			t.Error("Expected error for negative threshold")
		}
	})

	t.Run("NegativeIndex", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.N = -1
		if err := c.Validate(availableEngines); err == nil {
			t.Error("Expected error for negative index")
		}
	})

	t.Run("InvalidEngine", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.Engine = "unknown"
		if err := c.Validate(availableEngines); err == nil {
			t.Error("Expected error for unknown engine")
		}
	})

	t.Run("AllEnginesSkipsEngineCheck", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.Engine = "unknown"
		c.AllEngines = true
		if err := c.Validate(availableEngines); err != nil {
			t.Errorf("-all should not require a known engine name: %v", err)
		}
	})

	t.Run("InvalidTheme", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.Theme = "solarized"
		if err := c.Validate(availableEngines); err == nil {
			t.Error("Expected error for unknown theme")
		}
	})

	t.Run("InvalidRateLimit", func(t *testing.T) {
		t.Parallel()
		c := valid()
		c.RateLimit = 0
		if err := c.Validate(availableEngines); err == nil {
			t.Error("Expected error for zero rate limit")
		}
	})
}

func TestEnvHelpers(t *testing.T) {
	prefix := EnvPrefix

	t.Run("getEnvString", func(t *testing.T) {
		key := "TEST_STRING"
		os.Setenv(prefix+key, "value")
		defer os.Unsetenv(prefix + key)
		if val := getEnvString(key, "default"); val != "value" {
			t.Errorf("Expected 'value', got '%s'", val)
		}
		if val := getEnvString("NONEXISTENT", "default"); val != "default" {
			t.Errorf("Expected 'default', got '%s'", val)
		}
	})

	t.Run("getEnvInt64", func(t *testing.T) {
		key := "TEST_INT64"
		os.Setenv(prefix+key, "123")
		defer os.Unsetenv(prefix + key)
		if val := getEnvInt64(key, 0); val != 123 {
			t.Errorf("Expected 123, got %d", val)
		}
		// Invalid
		os.Setenv(prefix+"INVALID", "abc")
		defer os.Unsetenv(prefix + "INVALID")
		if val := getEnvInt64("INVALID", 999); val != 999 {
			t.Errorf("Expected default 999 for invalid input, got %d", val)
		}
	})

	t.Run("getEnvInt", func(t *testing.T) {
		key := "TEST_INT"
		os.Setenv(prefix+key, "-123")
		defer os.Unsetenv(prefix + key)
		if val := getEnvInt(key, 0); val != -123 {
			t.Errorf("Expected -123, got %d", val)
		}
	})

	t.Run("getEnvFloat64", func(t *testing.T) {
		key := "TEST_FLOAT"
		os.Setenv(prefix+key, "2.5")
		defer os.Unsetenv(prefix + key)
		if val := getEnvFloat64(key, 0); val != 2.5 {
			t.Errorf("Expected 2.5, got %g", val)
		}
	})

	t.Run("getEnvBool", func(t *testing.T) {
		key := "TEST_BOOL"
		os.Setenv(prefix+key, "true")
		defer os.Unsetenv(prefix + key)
		if val := getEnvBool(key, false); !val {
			t.Error("Expected true")
		}

		os.Setenv(prefix+key, "0")
		if val := getEnvBool(key, true); val {
			t.Error("Expected false for '0'")
		}

		os.Setenv(prefix+key, "invalid")
		if val := getEnvBool(key, true); !val {
			t.Error("Expected default true for invalid input")
		}
	})

	t.Run("getEnvDuration", func(t *testing.T) {
		key := "TEST_DURATION"
		os.Setenv(prefix+key, "1h")
		defer os.Unsetenv(prefix + key)
		if val := getEnvDuration(key, 0); val != time.Hour {
			t.Errorf("Expected 1h, got %v", val)
		}
	})
}

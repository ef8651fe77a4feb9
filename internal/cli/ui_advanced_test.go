package cli

import (
	"bytes"
	"io"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/agbru/reccalc/internal/recurrence"
	"github.com/briandowns/spinner"
)

// TestDisplayProgress_LoopCoverage ensures the ticker and updates are processed
func TestDisplayProgress_LoopCoverage(t *testing.T) {
	// Setup mock spinner
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner {
		return mockS
	}

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan recurrence.ProgressUpdate)
	out := io.Discard

	go func() {
		// Send updates
		for i := 0; i < 5; i++ {
			progressChan <- recurrence.ProgressUpdate{
				EvaluatorIndex: 0,
				Value:          float64(i) * 0.2,
			}
			time.Sleep(50 * time.Millisecond) // enough to trigger ticker potentially
		}
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 1, out)
	wg.Wait()

	if !mockS.started {
		t.Error("Spinner should have started")
	}
}

// TestFormatExecutionDuration_MoreCases covers microsecond formatting
func TestFormatExecutionDuration_MoreCases(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0µs"},
		{1500 * time.Nanosecond, "1µs"},
		{999 * time.Microsecond, "999µs"},
		{1001 * time.Microsecond, "1ms"},
	}
	for _, c := range cases {
		got := FormatExecutionDuration(c.in)
		if got != c.want {
			t.Errorf("FormatExecutionDuration(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

// TestDisplayResult_VerySmallDuration covers "< 1µs" case in DisplayResult
func TestDisplayResult_VerySmallDuration(t *testing.T) {
	var buf bytes.Buffer
	// Test the case where duration is exactly 0, which triggers the "< 1µs" display logic
	DisplayResult(big.NewInt(1), 1, nil, 0, false, 0, &buf)
	if !bytes.Contains(buf.Bytes(), []byte("< 1µs")) {
		t.Errorf("Expected output to contain '< 1µs', got %s", buf.String())
	}
}

// TestWriteResultToFile_Advanced calls WriteResultToFile with correct args
func TestWriteResultToFile_Advanced(t *testing.T) {
	tmpDir := t.TempDir()
	path := tmpDir + "/result.txt"

	res := big.NewInt(123456789)
	n := int64(10)
	dur := time.Second
	engine := "test"
	cfg := OutputConfig{OutputFile: path}

	err := WriteResultToFile(res, n, nil, dur, engine, cfg)
	if err != nil {
		t.Fatalf("WriteResultToFile failed: %v", err)
	}
}

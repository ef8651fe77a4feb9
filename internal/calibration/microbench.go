// Package calibration tunes the parallelism threshold of the recurrence
// evaluators for the current hardware.
// This file implements fast micro-benchmarks for quick threshold estimation (~100ms).
package calibration

import (
	"context"
	"math/big"
	"runtime"
	"sync"
	"time"

	"github.com/agbru/reccalc/internal/matrix"
	"github.com/agbru/reccalc/internal/ring"
)

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Configuration
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MicroBenchIterations is the number of iterations per test for averaging.
	MicroBenchIterations = 3

	// MicroBenchTimeout is the maximum time for the entire micro-benchmark suite.
	MicroBenchTimeout = 150 * time.Millisecond

	// MicroBenchOrder is the dimension of the companion-style matrices used
	// for the timing probes. Order 3 is the lowest order the evaluators
	// accept, so row products at this size are the worst case for
	// parallelization overhead.
	MicroBenchOrder = 3
)

// MicroBenchTestSizes defines the entry word sizes to test for threshold
// estimation. These sizes span the range where row-parallel matrix products
// start to pay for the goroutine overhead.
var MicroBenchTestSizes = []int{
	500,   // ~32K bits - small, definitely sequential
	2000,  // ~128K bits - medium, near the parallel threshold
	8000,  // ~512K bits - large, parallel territory on most hardware
	16000, // ~1M bits - very large
}

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Types
// ─────────────────────────────────────────────────────────────────────────────

// MicroBenchmark performs fast matrix-product tests to estimate the optimal
// parallelism threshold.
type MicroBenchmark struct {
	// TestSizes are the entry word sizes to test (default: MicroBenchTestSizes)
	TestSizes []int
	// Iterations is the number of iterations per test (default: MicroBenchIterations)
	Iterations int
	// Timeout is the maximum duration for the entire benchmark
	Timeout time.Duration
}

// ThresholdResults contains the estimated optimal threshold from micro-benchmarks.
type ThresholdResults struct {
	// ParallelThreshold is the estimated optimal parallel threshold in bits
	ParallelThreshold int
	// Confidence is a score from 0-1 indicating result reliability
	Confidence float64
	// Duration is how long the micro-benchmark took
	Duration time.Duration
}

// testResult holds timing data for a single configuration test.
type testResult struct {
	wordSize int
	parallel bool
	duration time.Duration
	err      error
}

// ─────────────────────────────────────────────────────────────────────────────
// Micro-benchmark Implementation
// ─────────────────────────────────────────────────────────────────────────────

// NewMicroBenchmark creates a new MicroBenchmark with default settings.
func NewMicroBenchmark() *MicroBenchmark {
	return &MicroBenchmark{
		TestSizes:  MicroBenchTestSizes,
		Iterations: MicroBenchIterations,
		Timeout:    MicroBenchTimeout,
	}
}

// RunQuick performs rapid micro-benchmarks to estimate the optimal threshold.
// It times dense matrix products with sequential and row-parallel execution
// and uses the results to estimate where parallelism becomes beneficial.
//
// Returns:
//   - ThresholdResults: The estimated optimal threshold
//   - error: An error if the benchmark failed critically
func (mb *MicroBenchmark) RunQuick(ctx context.Context) (ThresholdResults, error) {
	start := time.Now()

	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, mb.Timeout)
	defer cancel()

	// Run tests in parallel for speed
	results := mb.runParallelTests(ctx)

	// Analyze results to determine the optimal threshold
	thresholds := mb.analyzeResults(results)
	thresholds.Duration = time.Since(start)

	return thresholds, nil
}

// runParallelTests executes matrix-product tests in parallel.
func (mb *MicroBenchmark) runParallelTests(ctx context.Context) []testResult {
	var results []testResult
	var mu sync.Mutex
	var wg sync.WaitGroup

	// Test configurations: (size, parallel)
	type testConfig struct {
		wordSize int
		parallel bool
	}

	configs := make([]testConfig, 0, len(mb.TestSizes)*2)
	for _, size := range mb.TestSizes {
		// For each size, test sequential and row-parallel products
		configs = append(configs,
			testConfig{size, false},
			testConfig{size, true},
		)
	}

	// Limit concurrency to avoid overwhelming the system
	semaphore := make(chan struct{}, runtime.NumCPU())

	for _, cfg := range configs {
		wg.Add(1)
		go func(c testConfig) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			}

			dur, err := mb.runSingleTest(ctx, c.wordSize, c.parallel)

			mu.Lock()
			results = append(results, testResult{
				wordSize: c.wordSize,
				parallel: c.parallel,
				duration: dur,
				err:      err,
			})
			mu.Unlock()
		}(cfg)
	}

	wg.Wait()
	return results
}

// runSingleTest times matrix products at the given entry size.
func (mb *MicroBenchmark) runSingleTest(ctx context.Context, wordSize int, parallel bool) (time.Duration, error) {
	m, err := benchMatrix(wordSize)
	if err != nil {
		return 0, err
	}

	// ParallelThreshold 1 forces the row-parallel path since every entry
	// is far larger than one bit; 0 disables it.
	opts := matrix.PowOptions{}
	if parallel {
		opts.ParallelThreshold = 1
	}

	// Warm up
	if _, err := m.Pow(ctx, 2, opts); err != nil {
		return 0, err
	}

	// Run timed iterations
	var totalDuration time.Duration
	for i := 0; i < mb.Iterations; i++ {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		start := time.Now()
		if _, err := m.Pow(ctx, 2, opts); err != nil {
			return 0, err
		}
		totalDuration += time.Since(start)
	}

	return totalDuration / time.Duration(mb.Iterations), nil
}

// benchMatrix builds a dense integer matrix whose entries have the specified
// word count.
func benchMatrix(words int) (*matrix.Dense[*big.Int], error) {
	m, err := matrix.New[*big.Int](ring.Integers{}, MicroBenchOrder)
	if err != nil {
		return nil, err
	}
	for i := 0; i < MicroBenchOrder; i++ {
		for j := 0; j < MicroBenchOrder; j++ {
			m.Set(i, j, generateTestNumber(words+i+j))
		}
	}
	return m, nil
}

// generateTestNumber creates a random-ish big.Int with the specified word count.
func generateTestNumber(words int) *big.Int {
	// Use a deterministic pattern for reproducibility
	bits := make([]big.Word, words)
	for i := range bits {
		// Pattern that exercises all bits without being uniform
		bits[i] = big.Word(0xAAAAAAAAAAAAAAAA ^ uint64(i*0x1234567))
	}
	z := new(big.Int)
	z.SetBits(bits)
	return z
}

// analyzeResults examines test results to determine the optimal threshold.
func (mb *MicroBenchmark) analyzeResults(results []testResult) ThresholdResults {
	tr := ThresholdResults{
		// Start with a conservative default
		ParallelThreshold: 4096,
		Confidence:        0.5,
	}

	if len(results) == 0 {
		// If no results obtained (e.g. timeout), set confidence to zero
		tr.Confidence = 0.0
		return tr
	}

	// Group results by word size
	bySize := make(map[int][]testResult)
	for _, r := range results {
		if r.err == nil {
			bySize[r.wordSize] = append(bySize[r.wordSize], r)
		}
	}

	// Analyze parallel crossover point
	parallelCrossover := mb.findParallelCrossover(bySize)
	if parallelCrossover != 0 {
		tr.ParallelThreshold = parallelCrossover
		tr.Confidence += 0.3
	}

	// Cap confidence at 1.0
	if tr.Confidence > 1.0 {
		tr.Confidence = 1.0
	}

	return tr
}

// findParallelCrossover determines the entry bit size where row-parallel
// products become faster than sequential ones.
func (mb *MicroBenchmark) findParallelCrossover(bySize map[int][]testResult) int {
	if runtime.NumCPU() <= 1 {
		return -1 // Parallelism never pays on a single core
	}

	wordBits := 32 << (^uint(0) >> 63)
	var crossoverSize int

	for size, results := range bySize {
		var seqDur, parDur time.Duration
		var seqCount, parCount int

		for _, r := range results {
			if r.parallel {
				parDur += r.duration
				parCount++
			} else {
				seqDur += r.duration
				seqCount++
			}
		}

		if seqCount > 0 && parCount > 0 {
			avgSeq := seqDur / time.Duration(seqCount)
			avgPar := parDur / time.Duration(parCount)

			// Parallel is faster at this size (require at least 10% improvement)
			if avgPar < avgSeq*9/10 {
				bitSize := size * wordBits
				if crossoverSize == 0 || bitSize < crossoverSize {
					crossoverSize = bitSize
				}
			}
		}
	}

	// If no crossover found, use default
	if crossoverSize == 0 {
		return 4096
	}

	return crossoverSize
}

// ─────────────────────────────────────────────────────────────────────────────
// Quick Calibration Function
// ─────────────────────────────────────────────────────────────────────────────

// QuickCalibrate performs a fast calibration using micro-benchmarks.
// This is designed to run in ~100ms and provide a reasonable threshold estimate.
//
// Parameters:
//   - ctx: The context for cancellation
//
// Returns:
//   - ThresholdResults: The estimated optimal threshold
//   - error: An error if calibration failed
func QuickCalibrate(ctx context.Context) (ThresholdResults, error) {
	mb := NewMicroBenchmark()
	return mb.RunQuick(ctx)
}

// QuickCalibrateWithDefault performs quick calibration and returns a value
// that can be directly used as a configuration default.
//
// Parameters:
//   - ctx: The context for cancellation
//   - defaultParallel: The default parallel threshold to use if calibration fails
//
// Returns:
//   - int: The calibrated or default parallel threshold
func QuickCalibrateWithDefault(ctx context.Context, defaultParallel int) int {
	results, err := QuickCalibrate(ctx)
	if err != nil || results.Confidence < 0.3 {
		return defaultParallel
	}
	return results.ParallelThreshold
}

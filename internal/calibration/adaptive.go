// Package calibration tunes the parallelism threshold of the recurrence
// evaluators for the current hardware.
// This file implements adaptive threshold generation based on hardware characteristics.
package calibration

import (
	"runtime"
	"sort"
)

// ─────────────────────────────────────────────────────────────────────────────
// Adaptive Parallel Threshold Generation
// ─────────────────────────────────────────────────────────────────────────────

// GenerateParallelThresholds generates a list of parallel thresholds to test
// based on the number of available CPU cores.
//
// A negative threshold disables the bit-size trigger entirely, so -1 stands
// for fully sequential row products.
//
// The rationale:
// - Single-core: Only test sequential (-1) as parallelism has no benefit
// - 2-4 cores: Test lower thresholds as parallelism overhead is relatively high
// - 8+ cores: Include higher thresholds as more parallelism can be beneficial
// - 16+ cores: Add even higher thresholds for very fine-grained parallelism
func GenerateParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	// Base thresholds always tested
	thresholds := []int{-1} // Sequential (no parallelism)

	switch {
	case numCPU == 1:
		// Single core: only sequential makes sense
		return thresholds

	case numCPU <= 4:
		// Few cores: test moderate thresholds
		thresholds = append(thresholds, 512, 1024, 2048, 4096)

	case numCPU <= 8:
		// Medium core count: broader range
		thresholds = append(thresholds, 256, 512, 1024, 2048, 4096, 8192)

	case numCPU <= 16:
		// Many cores: include higher thresholds
		thresholds = append(thresholds, 256, 512, 1024, 2048, 4096, 8192, 16384)

	default:
		// High core count (16+): full range including very high thresholds
		thresholds = append(thresholds, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768)
	}

	return thresholds
}

// GenerateQuickParallelThresholds generates a smaller set of thresholds for
// quick auto-calibration at startup.
func GenerateQuickParallelThresholds() []int {
	numCPU := runtime.NumCPU()

	if numCPU == 1 {
		return []int{-1}
	}

	// Reduced set for quick calibration
	switch {
	case numCPU <= 4:
		return []int{-1, 2048, 4096}
	case numCPU <= 8:
		return []int{-1, 2048, 4096, 8192}
	default:
		return []int{-1, 2048, 4096, 8192, 16384}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold Estimation (without benchmarking)
// ─────────────────────────────────────────────────────────────────────────────

// EstimateOptimalParallelThreshold provides a heuristic estimate of the optimal
// parallel threshold without running benchmarks.
// This can be used as a fallback or starting point.
func EstimateOptimalParallelThreshold() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		return -1 // No parallelism
	case numCPU <= 2:
		return 8192 // High threshold - parallelism overhead is significant
	case numCPU <= 4:
		return 4096 // Default
	case numCPU <= 8:
		return 2048 // Can use more parallelism
	case numCPU <= 16:
		return 1024 // Many cores available
	default:
		return 512 // High core count - aggressive parallelism
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold Validation
// ─────────────────────────────────────────────────────────────────────────────

// ValidateThreshold clamps a parallel threshold to reasonable bounds.
// Negative values are preserved as -1, the sequential sentinel.
func ValidateThreshold(parallel int) int {
	if parallel < 0 {
		return -1
	}
	if parallel > 65536 {
		parallel = 65536
	}
	return parallel
}

// SortThresholds sorts a threshold slice in ascending order.
func SortThresholds(thresholds []int) {
	sort.Ints(thresholds)
}

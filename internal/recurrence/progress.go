// This file contains progress reporting types and utilities used by the
// evaluation engines.
package recurrence

import "math"

// ProgressUpdate is a data transfer object that encapsulates the progress
// state of one evaluation. It is sent over a channel from the evaluator to
// the user interface to provide asynchronous progress updates.
type ProgressUpdate struct {
	// EvaluatorIndex identifies the evaluator instance, allowing the UI to
	// distinguish between multiple concurrent evaluations.
	EvaluatorIndex int
	// Value is the normalized progress of the evaluation, 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the functional type for a progress reporting
// callback. Core engines report through it without being coupled to the
// channel- or observer-based communication of the broader application.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
type ProgressReporter func(progress float64)

// CalcTotalWork estimates the total work for exact binary exponentiation.
// Entry bit lengths roughly double at each squaring, and multiplication
// cost grows quadratically with operand size, so the work of bit i is
// modeled as 4^i and the total as a geometric sum.
//
// Parameters:
//   - numBits: The number of bits in the term index n.
//
// Returns:
//   - float64: The estimated total work units, (4^numBits - 1) / 3.
func CalcTotalWork(numBits int) float64 {
	if numBits == 0 {
		return 0
	}
	return (math.Pow(4, float64(numBits)) - 1) / 3
}

// Lookup table for powers of 4. Term indices are int64, so at most 63 bits
// are ever processed.
var powersOf4 [64]float64

func init() {
	powersOf4[0] = 1.0
	for i := 1; i < len(powersOf4); i++ {
		powersOf4[i] = powersOf4[i-1] * 4.0
	}
}

// PrecomputePowers4 returns a slice where powers[i] = 4^i, for O(1) lookup
// inside the progress loop instead of a math.Pow call per bit.
//
// Parameters:
//   - numBits: The number of powers needed (0 to numBits-1).
//
// Returns:
//   - []float64: A view of the precomputed table, or a fresh slice in the
//     (unreachable for int64 indices) case numBits > 64.
func PrecomputePowers4(numBits int) []float64 {
	if numBits <= 0 {
		return nil
	}
	if numBits > len(powersOf4) {
		powers := make([]float64, numBits)
		copy(powers, powersOf4[:])
		for i := len(powersOf4); i < numBits; i++ {
			powers[i] = powers[i-1] * 4.0
		}
		return powers
	}
	return powersOf4[:numBits]
}

// ReportStepProgress handles harmonized progress reporting for the exact
// evaluation loop, which walks exponent bits from least to most
// significant: the work of bit i is powers[i] in the geometric model. It
// reports through the callback only when the change exceeds
// ProgressReportThreshold or a boundary bit completes.
//
// Parameters:
//   - reporter: The callback to report progress through.
//   - lastReported: Pointer to the last reported value, to suppress
//     redundant updates.
//   - totalWork: The estimated total work units.
//   - workDone: Work units completed before this step.
//   - bit: The exponent bit just processed (ascending).
//   - numBits: The total number of exponent bits.
//   - powers: Precomputed powers of 4 from PrecomputePowers4.
//
// Returns:
//   - float64: The updated cumulative work done.
func ReportStepProgress(reporter ProgressReporter, lastReported *float64, totalWork, workDone float64, bit, numBits int, powers []float64) float64 {
	currentTotalDone := workDone + powers[bit]
	if totalWork > 0 {
		currentProgress := currentTotalDone / totalWork
		if currentProgress-*lastReported >= ProgressReportThreshold || bit == 0 || bit == numBits-1 {
			reporter(currentProgress)
			*lastReported = currentProgress
		}
	}
	return currentTotalDone
}

// bitProgress adapts a ProgressReporter into the per-bit callback the
// matrix and polynomial power loops invoke. Exact evaluation uses the
// geometric work model; modular evaluation has constant per-bit cost and
// uses the uniform model.
func bitProgress(reporter ProgressReporter, numBits int, uniform bool) func(bit, total int) {
	if reporter == nil {
		return nil
	}
	if uniform {
		lastReported := -1.0
		return func(bit, total int) {
			progress := float64(bit+1) / float64(total)
			if progress-lastReported >= ProgressReportThreshold || bit == total-1 {
				reporter(progress)
				lastReported = progress
			}
		}
	}
	totalWork := CalcTotalWork(numBits)
	powers := PrecomputePowers4(numBits)
	workDone := 0.0
	lastReported := 0.0
	return func(bit, total int) {
		workDone = ReportStepProgress(reporter, &lastReported, totalWork, workDone, bit, total, powers)
	}
}

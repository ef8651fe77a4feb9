package recurrence

// Performance and reporting constants. The parallelism values mirror the
// thresholds used by the matrix layer; they can be overridden per call
// through Options and recalibrated with the calibration profile.

const (
	// DefaultEngine is the evaluator used when no explicit engine is
	// requested: companion-matrix exponentiation.
	DefaultEngine = "matrix"

	// DefaultParallelThreshold is the matrix entry bit length above which
	// row-parallel multiplication pays for the goroutine overhead.
	// Empirically 4096 bits on modern multi-core hardware.
	DefaultParallelThreshold = 4096

	// DefaultParallelOrder is the matrix dimension at which row-parallel
	// multiplication pays regardless of entry size. Only high-order
	// recurrences reach it; below, the entry bit-length threshold decides.
	DefaultParallelOrder = 64

	// iterativeCancelStride is how many iterative steps run between
	// context checks. A power of two so the check compiles to a mask.
	iterativeCancelStride = 1024

	// ProgressReportThreshold is the minimum progress delta (0.0 to 1.0)
	// between reports. 1% keeps UI updates smooth without slowing the
	// evaluation loop.
	ProgressReportThreshold = 0.01
)

//go:build !unix

package calibration

import "time"

// resourceUsage is unavailable on non-Unix platforms.
func resourceUsage() (cpuTime time.Duration, peakRSSBytes int64, ok bool) {
	return 0, 0, false
}

//go:build unix

package calibration

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// resourceUsage reports process-wide resource consumption, used to annotate
// calibration runs so a slow result can be told apart from a loaded machine.
func resourceUsage() (cpuTime time.Duration, peakRSSBytes int64, ok bool) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, 0, false
	}

	cpuTime = time.Duration(ru.Utime.Sec+ru.Stime.Sec)*time.Second +
		time.Duration(ru.Utime.Usec+ru.Stime.Usec)*time.Microsecond

	// ru_maxrss is kilobytes on Linux, bytes on Darwin.
	peakRSSBytes = ru.Maxrss
	if runtime.GOOS != "darwin" {
		peakRSSBytes *= 1024
	}
	return cpuTime, peakRSSBytes, true
}

// This file contains concrete observer implementations for the Observer
// pattern.
package recurrence

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Channel Observer
// ─────────────────────────────────────────────────────────────────────────────

// ChannelObserver adapts the Observer pattern to channel-based
// communication, for UI code that consumes progress updates from a channel.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends updates to a channel.
// The channel should have sufficient buffer capacity; a full channel drops
// updates rather than blocking the evaluation.
//
// Parameters:
//   - ch: The channel to send progress updates to. If nil, updates are discarded.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver by sending to the channel. The send
// is non-blocking to avoid deadlocks when the channel is full.
func (o *ChannelObserver) Update(evalIndex int, progress float64) {
	if o.channel == nil {
		return
	}

	if progress > 1.0 {
		progress = 1.0
	}

	update := ProgressUpdate{EvaluatorIndex: evalIndex, Value: progress}

	select {
	case o.channel <- update:
	default:
		// Channel full, drop update (UI will catch up on the next one)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver logs progress updates using zerolog, throttled by a
// threshold to avoid log spam.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64         // Minimum progress change to log
	lastLog   map[int]float64 // Last logged progress per evaluator
	mu        sync.Mutex
}

// NewLoggingObserver creates an observer that logs progress whenever it
// changes by at least threshold.
//
// Parameters:
//   - logger: The zerolog logger to use.
//   - threshold: Minimum progress change to trigger a log (e.g. 0.1 for 10%).
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &LoggingObserver{
		logger:    logger,
		threshold: threshold,
		lastLog:   make(map[int]float64),
	}
}

// Update implements ProgressObserver by logging significant progress changes.
func (o *LoggingObserver) Update(evalIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	lastProgress := o.lastLog[evalIndex]

	shouldLog := progress >= 1.0 ||
		lastProgress == 0 && progress > 0 ||
		progress-lastProgress >= o.threshold

	if shouldLog {
		o.logger.Debug().
			Int("evaluator", evalIndex).
			Float64("progress", progress).
			Str("percent", fmt.Sprintf("%.1f%%", progress*100)).
			Msg("evaluation progress")
		o.lastLog[evalIndex] = progress
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

var (
	// progressGauge tracks evaluation progress. Registered once globally to
	// avoid duplicate registration errors.
	progressGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recurrence_term_progress",
			Help: "Current progress of recurrence term evaluations (0.0 to 1.0)",
		},
		[]string{"evaluator_index"},
	)
)

// MetricsObserver exports progress to Prometheus by updating a gauge with
// the current progress value.
type MetricsObserver struct {
	gauge *prometheus.GaugeVec
}

// NewMetricsObserver creates an observer that updates Prometheus metrics.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		gauge: progressGauge,
	}
}

// Update implements ProgressObserver by updating the Prometheus gauge.
func (o *MetricsObserver) Update(evalIndex int, progress float64) {
	o.gauge.WithLabelValues(fmt.Sprintf("%d", evalIndex)).Set(progress)
}

// ResetMetrics resets the progress metrics for all evaluators. Call at the
// start of a new evaluation batch.
func (o *MetricsObserver) ResetMetrics() {
	o.gauge.Reset()
}

// ─────────────────────────────────────────────────────────────────────────────
// No-Op Observer (Null Object Pattern)
// ─────────────────────────────────────────────────────────────────────────────

// NoOpObserver is a null object that discards all progress updates. Useful
// for testing or when progress tracking is not needed.
type NoOpObserver struct{}

// NewNoOpObserver creates a no-op observer that discards updates.
func NewNoOpObserver() *NoOpObserver {
	return &NoOpObserver{}
}

// Update implements ProgressObserver by doing nothing.
func (o *NoOpObserver) Update(evalIndex int, progress float64) {
	// Intentionally empty
}

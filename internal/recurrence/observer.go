// This file contains the Observer pattern implementation for progress
// reporting.
package recurrence

import (
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Observer Pattern Interfaces
// ─────────────────────────────────────────────────────────────────────────────

// ProgressObserver defines the interface for observing progress events.
// Implementations receive notifications when evaluation progress changes,
// enabling decoupled handling of progress updates for UI, logging, metrics, etc.
type ProgressObserver interface {
	// Update is called when progress changes.
	//
	// Parameters:
	//   - evalIndex: The evaluator instance identifier (for concurrent evaluations)
	//   - progress: The normalized progress value (0.0 to 1.0)
	Update(evalIndex int, progress float64)
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress Subject (Observable)
// ─────────────────────────────────────────────────────────────────────────────

// ProgressSubject manages observer registration and notification for
// progress events. It implements the Subject part of the Observer pattern,
// allowing multiple observers to be notified of progress updates without
// tight coupling between the evaluator and its consumers.
//
// ProgressSubject is safe for concurrent use.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject creates a new subject for managing progress observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{
		observers: make([]ProgressObserver, 0),
	}
}

// Register adds an observer to receive progress updates. Observers are
// notified in the order they are registered. A nil observer is ignored.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Unregister removes an observer from receiving updates. If the observer
// is not found, this call is a no-op.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify sends a progress update to all registered observers, synchronously
// and in registration order.
//
// Parameters:
//   - evalIndex: The evaluator instance identifier.
//   - progress: The normalized progress value (0.0 to 1.0).
func (s *ProgressSubject) Notify(evalIndex int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, observer := range s.observers {
		observer.Update(evalIndex, progress)
	}
}

// ObserverCount returns the number of registered observers. Primarily
// useful for testing and diagnostics.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// AsProgressReporter returns a ProgressReporter function that notifies all
// observers, bridging the functional reporting used by core engines to the
// observer fan-out.
//
// Parameters:
//   - evalIndex: The evaluator instance identifier to include in notifications.
//
// Returns:
//   - ProgressReporter: A function that can be passed to core engines.
func (s *ProgressSubject) AsProgressReporter(evalIndex int) ProgressReporter {
	return func(progress float64) {
		s.Notify(evalIndex, progress)
	}
}

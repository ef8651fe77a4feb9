package recurrence

import (
	"context"
	"math/big"
)

// MockEvaluator is a mock implementation of the Evaluator interface.
// It is exported to allow external packages (like cmd/reccalc) to use it for testing.
type MockEvaluator struct {
	Result *big.Int
	Err    error
	Fn     func(ctx context.Context, seq *Sequence, n int64, modulus *big.Int) (*big.Int, error)
}

// Name returns the evaluator name.
func (m *MockEvaluator) Name() string {
	return "mock"
}

// Evaluate returns the pre-configured Result and Err, or calls Fn if provided.
func (m *MockEvaluator) Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, evalIndex int, seq *Sequence, n int64, modulus *big.Int, opts Options) (*big.Int, error) {
	if m.Fn != nil {
		return m.Fn(ctx, seq, n, modulus)
	}
	if progressChan != nil {
		progressChan <- ProgressUpdate{EvaluatorIndex: evalIndex, Value: 1.0}
	}
	return m.Result, m.Err
}

// TestFactory is an EvaluatorFactory implementation designed for testing.
// It allows tests in other packages to create factories with mock evaluators.
type TestFactory struct {
	evaluators map[string]Evaluator
}

// NewTestFactory creates a factory pre-populated with the given evaluators.
// This is intended for use in tests where mock evaluators are needed.
//
// Parameters:
//   - evaluators: A map of engine names to Evaluator instances.
//
// Returns:
//   - *TestFactory: A factory that can be used in place of DefaultFactory in tests.
func NewTestFactory(evaluators map[string]Evaluator) *TestFactory {
	if evaluators == nil {
		evaluators = make(map[string]Evaluator)
	}
	return &TestFactory{evaluators: evaluators}
}

// Create returns the evaluator by name.
func (f *TestFactory) Create(name string) (Evaluator, error) {
	return f.Get(name)
}

// Get returns the evaluator by name.
func (f *TestFactory) Get(name string) (Evaluator, error) {
	eval, ok := f.evaluators[name]
	if !ok {
		return nil, &UnknownEngineError{Name: name}
	}
	return eval, nil
}

// List returns all registered engine names.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.evaluators))
	for name := range f.evaluators {
		names = append(names, name)
	}
	return names
}

// Register is a no-op for TestFactory as evaluators are provided at construction.
func (f *TestFactory) Register(name string, creator func() coreEvaluator) error {
	// No-op: evaluators are set at construction time
	return nil
}

// GetAll returns all evaluators.
func (f *TestFactory) GetAll() map[string]Evaluator {
	result := make(map[string]Evaluator, len(f.evaluators))
	for k, v := range f.evaluators {
		result[k] = v
	}
	return result
}

// UnknownEngineError is returned when an engine name is not found.
type UnknownEngineError struct {
	Name string
}

func (e *UnknownEngineError) Error() string {
	return "unknown engine: " + e.Name
}

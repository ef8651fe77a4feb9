package recurrence

// Note: EvaluatorFactory's Register method uses the unexported
// coreEvaluator type, so external packages register engines through the
// package-level RegisterEvaluator helper; the build-tagged gmp engine does
// exactly that from an init function.

import (
	"fmt"
	"sort"
	"sync"
)

// EvaluatorFactory is an interface for creating Evaluator instances. It
// allows flexible engine instantiation and registration, enabling
// dependency injection and easier testing.
type EvaluatorFactory interface {
	// Create creates a new Evaluator instance by name.
	// Returns an error if the engine is not registered.
	Create(name string) (Evaluator, error)

	// Get returns an existing Evaluator instance by name.
	// Returns an error if the engine is not registered.
	Get(name string) (Evaluator, error)

	// List returns a sorted list of registered engine names.
	List() []string

	// Register adds a new engine to the factory.
	Register(name string, creator func() coreEvaluator) error

	// GetAll returns a map of all registered evaluators.
	GetAll() map[string]Evaluator
}

// DefaultFactory is the default implementation of EvaluatorFactory. It
// maintains a thread-safe registry of engine creators and caches
// Evaluator instances for reuse.
type DefaultFactory struct {
	mu         sync.RWMutex
	creators   map[string]func() coreEvaluator
	evaluators map[string]Evaluator
}

// NewDefaultFactory creates a new DefaultFactory with the standard
// evaluation engines pre-registered.
//
// Pre-registered engines:
//   - "matrix": companion-matrix exponentiation (O(d^3 log n) ring ops)
//   - "poly": modular-polynomial exponentiation (O(d^2 log n) ring ops)
//   - "iterative": sliding-window iteration (O(n*d) ring ops)
//
// Returns:
//   - *DefaultFactory: A new factory with the default engines registered.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:   make(map[string]func() coreEvaluator),
		evaluators: make(map[string]Evaluator),
	}

	_ = f.Register("matrix", func() coreEvaluator { return &MatrixEvaluator{} })
	_ = f.Register("poly", func() coreEvaluator { return &PolyEvaluator{} })
	_ = f.Register("iterative", func() coreEvaluator { return &IterativeEvaluator{} })

	return f
}

// Register adds a new engine to the factory. The creator function is
// called lazily when the engine is first requested. Registering a name
// again replaces the previous engine and drops its cached instance.
//
// Parameters:
//   - name: The unique identifier for the engine.
//   - creator: A function that creates a new coreEvaluator instance.
func (f *DefaultFactory) Register(name string, creator func() coreEvaluator) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.evaluators, name)
	return nil
}

// Create creates a new Evaluator instance by name. Unlike Get, this always
// creates a fresh instance without caching.
//
// Parameters:
//   - name: The name of the engine to create.
//
// Returns:
//   - Evaluator: A new Evaluator instance.
//   - error: An error if the engine is not registered.
func (f *DefaultFactory) Create(name string) (Evaluator, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown engine: %s", name)
	}
	return NewEvaluator(creator()), nil
}

// Get returns an Evaluator instance by name. Instances are cached and
// reused for subsequent calls with the same name; this is the preferred
// method for most use cases.
//
// Parameters:
//   - name: The name of the engine to retrieve.
//
// Returns:
//   - Evaluator: The Evaluator instance.
//   - error: An error if the engine is not registered.
func (f *DefaultFactory) Get(name string) (Evaluator, error) {
	f.mu.RLock()
	if eval, exists := f.evaluators[name]; exists {
		f.mu.RUnlock()
		return eval, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring the write lock
	if eval, exists := f.evaluators[name]; exists {
		return eval, nil
	}

	creator, ok := f.creators[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine: %s", name)
	}

	eval := NewEvaluator(creator())
	f.evaluators[name] = eval
	return eval, nil
}

// List returns the registered engine names, sorted alphabetically for
// consistent ordering.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns a map of all registered evaluators, lazily initializing
// any that have not been created yet. The returned map is a copy.
func (f *DefaultFactory) GetAll() map[string]Evaluator {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.evaluators[name]; !exists {
			f.evaluators[name] = NewEvaluator(creator())
		}
	}

	result := make(map[string]Evaluator, len(f.evaluators))
	for name, eval := range f.evaluators {
		result[name] = eval
	}
	return result
}

// MustGet is like Get but panics if the engine is not found. Useful in
// initialization code where a missing engine is a programming error.
func (f *DefaultFactory) MustGet(name string) Evaluator {
	eval, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("recurrence: required engine not found: %s", name))
	}
	return eval
}

// Has checks whether an engine with the given name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

// globalFactory is the default global factory instance.
var globalFactory = NewDefaultFactory()

// GlobalFactory returns the global factory instance, a convenience for
// applications that don't need multiple factories.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// RegisterEvaluator registers an engine in the global factory. This is the
// hook build-tagged engines use to make themselves available.
//
// Parameters:
//   - name: The unique identifier for the engine.
//   - creator: A function that creates a new coreEvaluator instance.
func RegisterEvaluator(name string, creator func() coreEvaluator) error {
	return globalFactory.Register(name, creator)
}

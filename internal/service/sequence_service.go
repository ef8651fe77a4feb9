package service

//go:generate mockgen -source=sequence_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"math/big"

	"github.com/agbru/reccalc/internal/config"
	"github.com/agbru/reccalc/internal/recurrence"
)

var (
	// ErrMaxValueExceeded is returned when n exceeds the configured maximum limit.
	ErrMaxValueExceeded = errors.New("maximum n value exceeded")
)

// Service defines the interface for recurrence evaluation services.
// This abstraction enables dependency injection and easier testing/mocking.
type Service interface {
	// EvaluateTerm computes the term u_n of the given sequence with the
	// requested engine.
	//
	// Parameters:
	//   - ctx: The context for cancellation.
	//   - engineName: The name of the engine to use.
	//   - seq: The sequence whose term is evaluated.
	//   - n: The term index to evaluate.
	//   - modulus: Optional modulus; nil for exact evaluation.
	//
	// Returns:
	//   - *big.Int: The result.
	//   - error: An error if validation or evaluation fails.
	EvaluateTerm(ctx context.Context, engineName string, seq *recurrence.Sequence, n int64, modulus *big.Int) (*big.Int, error)
}

// SequenceService handles the core logic for evaluating recurrence terms.
// It centralizes validation, engine retrieval, and execution options.
// Implements the Service interface.
type SequenceService struct {
	factory recurrence.EvaluatorFactory
	config  config.AppConfig
	maxN    int64
}

// Ensure SequenceService implements Service interface.
var _ Service = (*SequenceService)(nil)

// NewSequenceService creates a new instance of SequenceService.
//
// Parameters:
//   - factory: The factory to retrieve evaluators from.
//   - cfg: The application configuration.
//   - maxN: The maximum allowed value for n (0 for no limit).
func NewSequenceService(factory recurrence.EvaluatorFactory, cfg config.AppConfig, maxN int64) *SequenceService {
	return &SequenceService{
		factory: factory,
		config:  cfg,
		maxN:    maxN,
	}
}

// EvaluateTerm retrieves the requested evaluator and executes the evaluation
// with the configured options. It also performs validation on the input n.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - engineName: The name of the engine to use.
//   - seq: The sequence whose term is evaluated.
//   - n: The term index to evaluate.
//   - modulus: Optional modulus; nil for exact evaluation.
//
// Returns:
//   - *big.Int: The result.
//   - error: An error if validation or evaluation fails.
func (s *SequenceService) EvaluateTerm(ctx context.Context, engineName string, seq *recurrence.Sequence, n int64, modulus *big.Int) (*big.Int, error) {
	// Validation
	if s.maxN > 0 && n > s.maxN {
		return nil, ErrMaxValueExceeded
	}

	// Retrieve Engine
	eval, err := s.factory.Get(engineName)
	if err != nil {
		return nil, err
	}

	// Evaluate with centralized options
	// Note: We pass nil for progressChan as this is intended for synchronous/service usage
	// where progress updates might not be needed or handled differently.
	return eval.Evaluate(ctx, nil, 0, seq, n, modulus, s.config.ToEvaluationOptions())
}

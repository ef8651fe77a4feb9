package server

import (
	"math/big"
)

// TermResponse represents the standardized JSON response for a term
// evaluation request.
type TermResponse struct {
	// N is the index of the term requested.
	N int64 `json:"n"`
	// Result is the evaluated term. It is omitted if an error occurred.
	Result *big.Int `json:"result,omitempty"`
	// Modulus echoes the modulus used, omitted for exact evaluation.
	Modulus *big.Int `json:"modulus,omitempty"`
	// Duration is the formatted execution time string.
	Duration string `json:"duration"`
	// Error contains the error message if the evaluation failed.
	Error string `json:"error,omitempty"`
	// Engine is the name of the engine used for the evaluation.
	Engine string `json:"engine"`
}

// AnalysisResponse represents the JSON response for a sequence analysis
// request: the algebraic invariants of the recurrence.
type AnalysisResponse struct {
	// Order is the order d of the recurrence.
	Order int `json:"order"`
	// Description is the canonical human-readable sequence description.
	Description string `json:"description"`
	// CharacteristicPolynomial is the rendered characteristic polynomial.
	CharacteristicPolynomial string `json:"characteristic_polynomial"`
	// MinimalPolynomial is the rendered minimal polynomial.
	MinimalPolynomial string `json:"minimal_polynomial,omitempty"`
	// Degenerate is true when the minimal polynomial degree is below the order.
	Degenerate bool `json:"degenerate"`
	// TransformationMatrix is the rendered companion matrix.
	TransformationMatrix string `json:"transformation_matrix"`
	// Error contains the error message if the analysis failed.
	Error string `json:"error,omitempty"`
}

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// TermParseError represents a parameter parsing error with HTTP status.
type TermParseError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e TermParseError) Error() string {
	return e.Message
}

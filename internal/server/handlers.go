package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/reccalc/internal/config"
	"github.com/agbru/reccalc/internal/recurrence"
	"github.com/agbru/reccalc/internal/service"
)

// handleHealth responds to health check requests.
// It returns a 200 OK status with a JSON payload indicating the service is healthy.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleEngines returns the list of available evaluation engines.
// It queries the internal registry and returns the keys as a JSON array.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	engines := s.factory.List()

	response := map[string]any{
		"engines": engines,
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleTerm processes requests to evaluate recurrence terms.
// It parses the query parameters 'u' and 'a' (the sequence definition),
// 'n' (the index), 'modulus' and 'engine', executes the evaluation, and
// returns the result in JSON format.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleTerm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// Parse and validate parameters using helpers
	seq, parseErr := s.parseSequenceParams(r)
	if parseErr != nil {
		s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		return
	}

	n, modulus, engine, parseErr := parseTermParams(r)
	if parseErr != nil {
		s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		return
	}

	// Create a context with timeout for the evaluation
	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	// Perform the evaluation
	start := time.Now()
	result, err := s.service.EvaluateTerm(ctx, engine, seq, n, modulus)
	duration := time.Since(start)

	// Handle max value exceeded error
	if errors.Is(err, service.ErrMaxValueExceeded) {
		s.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Value of 'n' exceeds maximum allowed (%d). This limit prevents resource exhaustion.", s.securityConfig.MaxNValue))
		return
	}

	// Build and send response using helper
	resp := buildTermResponse(n, modulus, engine, result, duration, err)
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleAnalysis returns the algebraic invariants of a recurrence: its
// canonical description, characteristic polynomial, minimal polynomial and
// companion transformation matrix.
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	seq, parseErr := s.parseSequenceParams(r)
	if parseErr != nil {
		s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	resp := AnalysisResponse{
		Order:                    seq.Order(),
		Description:              seq.String(),
		CharacteristicPolynomial: seq.CharacteristicPolynomial().String(),
		TransformationMatrix:     seq.TransformationMatrix().String(),
	}

	minPoly, err := seq.MinimalPolynomial(ctx)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.MinimalPolynomial = minPoly.String()
		resp.Degenerate = minPoly.Degree() < seq.Order()
	}

	s.writeJSONResponse(w, http.StatusOK, resp)
}

// parseSequenceParams extracts and validates the sequence definition from
// the 'u' and 'a' query parameters.
//
// Parameters:
//   - r: The HTTP request containing query parameters.
//
// Returns:
//   - *recurrence.Sequence: The validated sequence.
//   - *TermParseError: A parse error if validation fails, nil otherwise.
func (s *Server) parseSequenceParams(r *http.Request) (*recurrence.Sequence, *TermParseError) {
	uSpec := r.URL.Query().Get("u")
	if uSpec == "" {
		return nil, &TermParseError{
			Message:    "Missing 'u' parameter (comma-separated initial terms)",
			StatusCode: http.StatusBadRequest,
		}
	}
	aSpec := r.URL.Query().Get("a")
	if aSpec == "" {
		return nil, &TermParseError{
			Message:    "Missing 'a' parameter (comma-separated coefficients)",
			StatusCode: http.StatusBadRequest,
		}
	}

	initial, err := config.ParseIntList(uSpec)
	if err != nil {
		return nil, &TermParseError{
			Message:    fmt.Sprintf("Invalid 'u' parameter: %v", err),
			StatusCode: http.StatusBadRequest,
		}
	}
	coeffs, err := config.ParseIntList(aSpec)
	if err != nil {
		return nil, &TermParseError{
			Message:    fmt.Sprintf("Invalid 'a' parameter: %v", err),
			StatusCode: http.StatusBadRequest,
		}
	}

	if s.securityConfig.MaxOrder > 0 && len(initial) > s.securityConfig.MaxOrder {
		return nil, &TermParseError{
			Message:    fmt.Sprintf("Recurrence order exceeds maximum allowed (%d)", s.securityConfig.MaxOrder),
			StatusCode: http.StatusBadRequest,
		}
	}

	seq, err := recurrence.New(initial, coeffs)
	if err != nil {
		return nil, &TermParseError{
			Message:    err.Error(),
			StatusCode: http.StatusBadRequest,
		}
	}
	return seq, nil
}

// parseTermParams extracts and validates the evaluation parameters from the request.
//
// Parameters:
//   - r: The HTTP request containing query parameters.
//
// Returns:
//   - n: The parsed term index.
//   - modulus: The parsed modulus, nil for exact evaluation.
//   - engine: The engine name (defaults to the matrix engine if not specified).
//   - err: A TermParseError if validation fails, nil otherwise.
func parseTermParams(r *http.Request) (n int64, modulus *big.Int, engine string, err *TermParseError) {
	nStr := r.URL.Query().Get("n")
	if nStr == "" {
		return 0, nil, "", &TermParseError{
			Message:    "Missing 'n' parameter",
			StatusCode: http.StatusBadRequest,
		}
	}

	n, parseErr := strconv.ParseInt(nStr, 10, 64)
	if parseErr != nil || n < 0 {
		return 0, nil, "", &TermParseError{
			Message:    "Invalid 'n' parameter: must be a non-negative integer",
			StatusCode: http.StatusBadRequest,
		}
	}

	modulus, modErr := config.ParseModulus(r.URL.Query().Get("modulus"))
	if modErr != nil {
		return 0, nil, "", &TermParseError{
			Message:    fmt.Sprintf("Invalid 'modulus' parameter: %v", modErr),
			StatusCode: http.StatusBadRequest,
		}
	}

	engine = r.URL.Query().Get("engine")
	if engine == "" {
		engine = recurrence.DefaultEngine
	}

	return n, modulus, engine, nil
}

// buildTermResponse constructs the response struct for an evaluation.
//
// Parameters:
//   - n: The term index that was evaluated.
//   - modulus: The modulus used, nil for exact evaluation.
//   - engine: The engine name used.
//   - result: The evaluation result (may be nil if error occurred).
//   - duration: The time taken for the evaluation.
//   - err: Any error that occurred during evaluation.
//
// Returns:
//   - TermResponse: The constructed response struct.
func buildTermResponse(n int64, modulus *big.Int, engine string, result *big.Int, duration time.Duration, err error) TermResponse {
	resp := TermResponse{
		N:        n,
		Modulus:  modulus,
		Duration: duration.String(),
		Engine:   engine,
	}

	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Result = result
	}

	return resp
}

// writeJSONResponse helper function to write a JSON response with the correct content type.
//
// Parameters:
//   - w: The HTTP response writer.
//   - statusCode: The HTTP status code to write.
//   - data: The data to be encoded as JSON.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

// writeErrorResponse helper function to write a standardized error response.
//
// Parameters:
//   - w: The HTTP response writer.
//   - statusCode: The HTTP status code to write.
//   - message: The error message to be included in the response body.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errResp := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	s.writeJSONResponse(w, statusCode, errResp)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agbru/reccalc/internal/config"
	"github.com/agbru/reccalc/internal/recurrence"
)

// MockEvaluator is a mock implementation of recurrence.Evaluator for testing.
type MockEvaluator struct {
	Result *big.Int
	Err    error
	// CapturedOpts stores the options passed to Evaluate for verification.
	CapturedOpts recurrence.Options
	// CapturedModulus stores the modulus passed to Evaluate.
	CapturedModulus *big.Int
}

// Name returns the mock evaluator's name.
func (m *MockEvaluator) Name() string {
	return "Mock"
}

// Evaluate implements the recurrence.Evaluator interface returning predefined results.
func (m *MockEvaluator) Evaluate(ctx context.Context, progressChan chan<- recurrence.ProgressUpdate, evalIndex int, seq *recurrence.Sequence, n int64, modulus *big.Int, opts recurrence.Options) (*big.Int, error) {
	m.CapturedOpts = opts
	m.CapturedModulus = modulus
	return m.Result, m.Err
}

// createTestServer initializes a server instance for testing with default configuration.
func createTestServer(registry map[string]recurrence.Evaluator) *Server {
	cfg := config.AppConfig{
		Addr:      ":8080",
		Threshold: 4096,
	}
	return NewServer(recurrence.NewTestFactory(registry), cfg)
}

// tribonacciQuery is the query fragment defining the default test sequence.
const tribonacciQuery = "u=0,0,1&a=1,1,1"

// TestHandleTerm verifies the behavior of the term evaluation endpoint.
// It tests successful evaluations, validation errors, and evaluation failures.
func TestHandleTerm(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		mockResult     *big.Int
		mockErr        error
		expectedStatus int
		expectedBody   string
		checkError     bool
	}{
		{
			name:           "Success",
			queryParams:    "?" + tribonacciQuery + "&n=10",
			mockResult:     big.NewInt(149),
			mockErr:        nil,
			expectedStatus: http.StatusOK,
			expectedBody:   `149`,
			checkError:     false,
		},
		{
			name:           "Missing n",
			queryParams:    "?" + tribonacciQuery,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Missing 'n' parameter",
			checkError:     true,
		},
		{
			name:           "Missing u",
			queryParams:    "?a=1,1,1&n=10",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Missing 'u' parameter",
			checkError:     true,
		},
		{
			name:           "Invalid n",
			queryParams:    "?" + tribonacciQuery + "&n=abc",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "must be a non-negative integer",
			checkError:     true,
		},
		{
			name:           "Length mismatch",
			queryParams:    "?u=0,1&a=1,1,1&n=10",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "differ in length",
			checkError:     true,
		},
		{
			name:           "Unknown engine",
			queryParams:    "?" + tribonacciQuery + "&n=10&engine=unknown",
			expectedStatus: http.StatusOK, // Server returns 200 with error in JSON body
			expectedBody:   "unknown engine",
			checkError:     true,
		},
		{
			name:           "Evaluation error",
			queryParams:    "?" + tribonacciQuery + "&n=10&engine=matrix",
			mockResult:     nil,
			mockErr:        errors.New("eval error"),
			expectedStatus: http.StatusOK,
			expectedBody:   "eval error",
			checkError:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEval := &MockEvaluator{
				Result: tt.mockResult,
				Err:    tt.mockErr,
			}
			registry := map[string]recurrence.Evaluator{
				"matrix": mockEval,
			}
			server := createTestServer(registry)

			req := httptest.NewRequest("GET", "/api/v1/term"+tt.queryParams, http.NoBody)
			w := httptest.NewRecorder()

			server.handleTerm(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, resp.StatusCode)
			}

			bodyBytes, _ := io.ReadAll(resp.Body)

			if tt.checkError {
				// For error responses
				if tt.expectedStatus != http.StatusOK {
					var errResp ErrorResponse
					if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
						t.Errorf("Failed to unmarshal error response: %v", err)
					}
					if !strings.Contains(errResp.Message, tt.expectedBody) {
						t.Errorf("Expected error message to contain %q, got %q", tt.expectedBody, errResp.Message)
					}
				} else {
					// For evaluation errors (200 OK but with error field)
					var jsonResp TermResponse
					if err := json.Unmarshal(bodyBytes, &jsonResp); err != nil {
						t.Errorf("Failed to unmarshal JSON response: %v", err)
					}
					if !strings.Contains(jsonResp.Error, tt.expectedBody) {
						t.Errorf("Expected error message to contain %q, got %q", tt.expectedBody, jsonResp.Error)
					}
				}
			} else {
				// For success responses
				var jsonResp TermResponse
				if err := json.Unmarshal(bodyBytes, &jsonResp); err != nil {
					t.Errorf("Failed to unmarshal JSON response: %v", err)
				}
				if jsonResp.Result.Cmp(big.NewInt(149)) != 0 {
					t.Errorf("Expected result 149, got %s", jsonResp.Result.String())
				}
				if jsonResp.N != 10 {
					t.Errorf("Expected n=10, got n=%d", jsonResp.N)
				}
				if jsonResp.Engine != "matrix" {
					t.Errorf("Expected engine=matrix, got engine=%s", jsonResp.Engine)
				}
			}
		})
	}
}

// TestHandleAnalysis verifies the sequence analysis endpoint.
func TestHandleAnalysis(t *testing.T) {
	server := createTestServer(nil)

	req := httptest.NewRequest("GET", "/api/v1/analysis?"+tribonacciQuery, http.NoBody)
	w := httptest.NewRecorder()

	server.handleAnalysis(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var analysis AnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		t.Fatalf("Failed to decode analysis response: %v", err)
	}

	if analysis.Order != 3 {
		t.Errorf("Expected order 3, got %d", analysis.Order)
	}
	if analysis.CharacteristicPolynomial == "" {
		t.Error("Expected a characteristic polynomial")
	}
	if analysis.MinimalPolynomial == "" {
		t.Error("Expected a minimal polynomial")
	}
	if analysis.TransformationMatrix == "" {
		t.Error("Expected a transformation matrix")
	}
	if !strings.Contains(analysis.Description, "Linear recurrence sequence") {
		t.Errorf("Unexpected description: %q", analysis.Description)
	}
}

// TestHandleAnalysis_MissingParams verifies validation of the analysis endpoint.
func TestHandleAnalysis_MissingParams(t *testing.T) {
	server := createTestServer(nil)

	req := httptest.NewRequest("GET", "/api/v1/analysis", http.NoBody)
	w := httptest.NewRecorder()

	server.handleAnalysis(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

// TestHandleHealth verifies the health check endpoint.
func TestHandleHealth(t *testing.T) {
	server := createTestServer(nil)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var healthResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		t.Errorf("Failed to decode health response: %v", err)
	}

	if healthResp["status"] != "healthy" {
		t.Errorf("Expected status=healthy, got %v", healthResp["status"])
	}
}

// TestHandleEngines verifies the engines listing endpoint.
func TestHandleEngines(t *testing.T) {
	mockEval := &MockEvaluator{Result: big.NewInt(1)}
	registry := map[string]recurrence.Evaluator{
		"matrix":    mockEval,
		"poly":      mockEval,
		"iterative": mockEval,
	}
	server := createTestServer(registry)

	req := httptest.NewRequest("GET", "/api/v1/engines", http.NoBody)
	w := httptest.NewRecorder()

	server.handleEngines(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var enginesResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&enginesResp); err != nil {
		t.Errorf("Failed to decode engines response: %v", err)
	}

	engines, ok := enginesResp["engines"].([]interface{})
	if !ok {
		t.Fatal("Expected engines to be an array")
	}

	if len(engines) != 3 {
		t.Errorf("Expected 3 engines, got %d", len(engines))
	}
}

// TestMethodNotAllowed verifies that non-GET methods are rejected.
func TestMethodNotAllowed(t *testing.T) {
	server := createTestServer(nil)

	tests := []struct {
		name     string
		endpoint string
		method   string
	}{
		{"Term POST", "/api/v1/term", "POST"},
		{"Analysis POST", "/api/v1/analysis", "POST"},
		{"Health POST", "/health", "POST"},
		{"Engines POST", "/api/v1/engines", "POST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.endpoint, http.NoBody)
			w := httptest.NewRecorder()

			switch tt.endpoint {
			case "/api/v1/term":
				server.handleTerm(w, req)
			case "/api/v1/analysis":
				server.handleAnalysis(w, req)
			case "/health":
				server.handleHealth(w, req)
			case "/api/v1/engines":
				server.handleEngines(w, req)
			}

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusMethodNotAllowed {
				t.Errorf("Expected status 405, got %d", resp.StatusCode)
			}
		})
	}
}

// TestLoggingMiddleware verifies that the logging middleware executes the next handler.
func TestLoggingMiddleware(t *testing.T) {
	server := createTestServer(nil)

	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}

	wrapped := server.loggingMiddleware(testHandler)

	req := httptest.NewRequest("GET", "/test", http.NoBody)
	w := httptest.NewRecorder()

	// Give the logger a bit of time
	done := make(chan bool)
	go func() {
		wrapped(w, req)
		done <- true
	}()

	select {
	case <-done:
		if !handlerCalled {
			t.Error("Handler was not called")
		}
	case <-time.After(1 * time.Second):
		t.Error("Middleware timed out")
	}
}

// TestThresholdPassedToEvaluator verifies that the parallelism threshold
// configuration is correctly passed to the evaluator in API requests.
func TestThresholdPassedToEvaluator(t *testing.T) {
	mockEval := &MockEvaluator{
		Result: big.NewInt(149),
		Err:    nil,
	}
	registry := map[string]recurrence.Evaluator{
		"matrix": mockEval,
	}

	// Create server with a specific threshold value
	cfg := config.AppConfig{
		Addr:      ":8080",
		Threshold: 1234,
	}
	server := NewServer(recurrence.NewTestFactory(registry), cfg)

	req := httptest.NewRequest("GET", "/api/v1/term?"+tribonacciQuery+"&n=10&modulus=97", http.NoBody)
	w := httptest.NewRecorder()

	server.handleTerm(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	// Verify that the threshold was passed correctly
	if mockEval.CapturedOpts.ParallelThreshold != 1234 {
		t.Errorf("Expected ParallelThreshold=1234, got %d", mockEval.CapturedOpts.ParallelThreshold)
	}

	// Verify the modulus reached the evaluator
	if mockEval.CapturedModulus == nil || mockEval.CapturedModulus.Cmp(big.NewInt(97)) != 0 {
		t.Errorf("Expected modulus=97, got %v", mockEval.CapturedModulus)
	}
}

// TestParseTermParams verifies the parameter parsing helper function.
func TestParseTermParams(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		expectedN      int64
		expectedEngine string
		expectedMod    *big.Int
		expectedError  bool
		errorMessage   string
	}{
		{
			name:           "Valid n with default engine",
			queryParams:    "?n=42",
			expectedN:      42,
			expectedEngine: "matrix",
			expectedError:  false,
		},
		{
			name:           "Valid n with specified engine",
			queryParams:    "?n=100&engine=poly",
			expectedN:      100,
			expectedEngine: "poly",
			expectedError:  false,
		},
		{
			name:           "Valid n with modulus",
			queryParams:    "?n=100&modulus=97",
			expectedN:      100,
			expectedEngine: "matrix",
			expectedMod:    big.NewInt(97),
			expectedError:  false,
		},
		{
			name:           "Zero modulus means exact",
			queryParams:    "?n=100&modulus=0",
			expectedN:      100,
			expectedEngine: "matrix",
			expectedMod:    nil,
			expectedError:  false,
		},
		{
			name:          "Missing n parameter",
			queryParams:   "",
			expectedError: true,
			errorMessage:  "Missing 'n' parameter",
		},
		{
			name:          "Invalid n - non-numeric",
			queryParams:   "?n=abc",
			expectedError: true,
			errorMessage:  "must be a non-negative integer",
		},
		{
			name:          "Invalid n - negative",
			queryParams:   "?n=-5",
			expectedError: true,
			errorMessage:  "must be a non-negative integer",
		},
		{
			name:          "Negative modulus",
			queryParams:   "?n=10&modulus=-7",
			expectedError: true,
			errorMessage:  "modulus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/term"+tt.queryParams, http.NoBody)
			n, modulus, engine, parseErr := parseTermParams(req)

			if tt.expectedError {
				if parseErr == nil {
					t.Error("Expected error, got nil")
					return
				}
				if !strings.Contains(strings.ToLower(parseErr.Message), strings.ToLower(tt.errorMessage)) {
					t.Errorf("Expected error message to contain %q, got %q", tt.errorMessage, parseErr.Message)
				}
			} else {
				if parseErr != nil {
					t.Errorf("Unexpected error: %v", parseErr)
					return
				}
				if n != tt.expectedN {
					t.Errorf("Expected n=%d, got n=%d", tt.expectedN, n)
				}
				if engine != tt.expectedEngine {
					t.Errorf("Expected engine=%s, got engine=%s", tt.expectedEngine, engine)
				}
				if (tt.expectedMod == nil) != (modulus == nil) {
					t.Errorf("Expected modulus=%v, got %v", tt.expectedMod, modulus)
				} else if tt.expectedMod != nil && modulus.Cmp(tt.expectedMod) != 0 {
					t.Errorf("Expected modulus=%v, got %v", tt.expectedMod, modulus)
				}
			}
		})
	}
}

// TestWithLogger verifies the WithLogger option.
func TestWithLogger(t *testing.T) {
	registry := map[string]recurrence.Evaluator{}
	cfg := config.AppConfig{Addr: ":8080"}

	// Test with nil logger (should not change default)
	server := NewServer(recurrence.NewTestFactory(registry), cfg, WithLogger(nil))
	if server.logger == nil {
		t.Error("expected default logger to be set")
	}

	// Test with custom standard logger using WithStdLogger
	customLogger := log.New(io.Discard, "[CUSTOM] ", 0)
	server = NewServer(recurrence.NewTestFactory(registry), cfg, WithStdLogger(customLogger))
	if server.logger == nil {
		t.Error("expected custom logger to be set")
	}
}

// TestWithService verifies the WithService option.
func TestWithService(t *testing.T) {
	registry := map[string]recurrence.Evaluator{}
	cfg := config.AppConfig{Addr: ":8080"}

	// Test with nil service (should use default)
	server := NewServer(recurrence.NewTestFactory(registry), cfg, WithService(nil))
	if server.service == nil {
		t.Error("expected default service to be initialized")
	}

	// Test with custom service
	customService := &mockService{result: big.NewInt(123)}
	server = NewServer(recurrence.NewTestFactory(registry), cfg, WithService(customService))
	if server.service != customService {
		t.Error("expected custom service to be set")
	}
}

// TestWithTimeouts verifies the WithTimeouts option.
func TestWithTimeouts(t *testing.T) {
	registry := map[string]recurrence.Evaluator{}
	cfg := config.AppConfig{Addr: ":8080"}

	customTimeouts := Timeouts{
		RequestTimeout:  10 * time.Minute,
		ShutdownTimeout: 60 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    15 * time.Minute,
		IdleTimeout:     5 * time.Minute,
	}

	server := NewServer(recurrence.NewTestFactory(registry), cfg, WithTimeouts(customTimeouts))
	if server.timeouts.RequestTimeout != customTimeouts.RequestTimeout {
		t.Errorf("expected RequestTimeout=%v, got %v", customTimeouts.RequestTimeout, server.timeouts.RequestTimeout)
	}
	if server.timeouts.ShutdownTimeout != customTimeouts.ShutdownTimeout {
		t.Errorf("expected ShutdownTimeout=%v, got %v", customTimeouts.ShutdownTimeout, server.timeouts.ShutdownTimeout)
	}
	if server.httpServer.ReadTimeout != customTimeouts.ReadTimeout {
		t.Errorf("expected ReadTimeout=%v, got %v", customTimeouts.ReadTimeout, server.httpServer.ReadTimeout)
	}
}

// TestWithMaxN verifies the WithMaxN option.
func TestWithMaxN(t *testing.T) {
	registry := map[string]recurrence.Evaluator{
		"matrix": &MockEvaluator{Result: big.NewInt(149)},
	}
	cfg := config.AppConfig{Addr: ":8080"}

	server := NewServer(recurrence.NewTestFactory(registry), cfg, WithMaxN(1000))
	if server.securityConfig.MaxNValue != 1000 {
		t.Errorf("expected MaxN=1000, got %d", server.securityConfig.MaxNValue)
	}
}

// TestTermParseErrorMessage verifies the TermParseError.Error() method.
func TestTermParseErrorMessage(t *testing.T) {
	err := TermParseError{
		Message:    "test error message",
		StatusCode: http.StatusBadRequest,
	}

	if err.Error() != "test error message" {
		t.Errorf("expected 'test error message', got '%s'", err.Error())
	}
}

// mockService implements service.Service for testing.
type mockService struct {
	result *big.Int
	err    error
}

func (m *mockService) EvaluateTerm(ctx context.Context, engineName string, seq *recurrence.Sequence, n int64, modulus *big.Int) (*big.Int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// TestBuildTermResponse verifies the response building helper function.
func TestBuildTermResponse(t *testing.T) {
	tests := []struct {
		name           string
		n              int64
		engine         string
		result         *big.Int
		duration       time.Duration
		err            error
		hasResult      bool
		hasError       bool
		expectedResult int64
		expectedError  string
	}{
		{
			name:           "Successful evaluation",
			n:              10,
			engine:         "matrix",
			result:         big.NewInt(149),
			duration:       100 * time.Millisecond,
			err:            nil,
			hasResult:      true,
			hasError:       false,
			expectedResult: 149,
		},
		{
			name:          "Evaluation with error",
			n:             999,
			engine:        "poly",
			result:        nil,
			duration:      50 * time.Millisecond,
			err:           errors.New("evaluation failed"),
			hasResult:     false,
			hasError:      true,
			expectedError: "evaluation failed",
		},
		{
			name:           "Zero result",
			n:              0,
			engine:         "matrix",
			result:         big.NewInt(0),
			duration:       1 * time.Nanosecond,
			err:            nil,
			hasResult:      true,
			hasError:       false,
			expectedResult: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := buildTermResponse(tt.n, nil, tt.engine, tt.result, tt.duration, tt.err)

			if resp.N != tt.n {
				t.Errorf("Expected N=%d, got N=%d", tt.n, resp.N)
			}
			if resp.Engine != tt.engine {
				t.Errorf("Expected Engine=%s, got Engine=%s", tt.engine, resp.Engine)
			}
			if resp.Duration != tt.duration.String() {
				t.Errorf("Expected Duration=%s, got Duration=%s", tt.duration.String(), resp.Duration)
			}

			if tt.hasResult {
				if resp.Result == nil {
					t.Error("Expected Result to be set, got nil")
				} else if resp.Result.Cmp(big.NewInt(tt.expectedResult)) != 0 {
					t.Errorf("Expected Result=%d, got Result=%s", tt.expectedResult, resp.Result.String())
				}
			} else {
				if resp.Result != nil {
					t.Errorf("Expected Result to be nil, got %s", resp.Result.String())
				}
			}

			if tt.hasError {
				if resp.Error != tt.expectedError {
					t.Errorf("Expected Error=%q, got Error=%q", tt.expectedError, resp.Error)
				}
			} else {
				if resp.Error != "" {
					t.Errorf("Expected no Error, got Error=%q", resp.Error)
				}
			}
		})
	}
}

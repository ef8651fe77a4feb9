package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/reccalc/internal/config"
	apperrors "github.com/agbru/reccalc/internal/errors"
	"github.com/agbru/reccalc/internal/logging"
	"github.com/agbru/reccalc/internal/recurrence"
	"github.com/agbru/reccalc/internal/service"
)

// Server represents the HTTP server for the recurrence calculator API.
// It wraps the standard http.Server and adds application-specific configuration
// and graceful shutdown capabilities.
type Server struct {
	factory        recurrence.EvaluatorFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a new Server instance with the given evaluator registry and configuration.
// It initializes the HTTP server with timeouts and a request multiplexer.
//
// Parameters:
//   - factory: The evaluator factory to retrieve implementations from.
//   - cfg: The application configuration (address, thresholds, etc.).
//   - opts: Optional functional options for customizing the server (e.g., WithLogger).
//
// Returns:
//   - *Server: A pointer to the initialized Server.
func NewServer(factory recurrence.EvaluatorFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"), // Default unified logger
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}

	// Apply any provided options
	for _, opt := range opts {
		opt(s)
	}

	// Initialize service if not provided
	if s.service == nil {
		s.service = service.NewSequenceService(s.factory, s.cfg, s.securityConfig.MaxNValue)
	}

	// Create default rate limiter if not provided
	if s.rateLimiter == nil {
		rlCfg := DefaultRateLimiterConfig()
		if cfg.RateLimit > 0 {
			rlCfg.RequestsPerSecond = cfg.RateLimit
		}
		if cfg.RateBurst > 0 {
			rlCfg.Burst = cfg.RateBurst
		}
		s.rateLimiter = NewRateLimiter(rlCfg)
	}

	mux := http.NewServeMux()

	// Apply middleware chain: Security -> RateLimit -> Logging -> Metrics -> Handler
	mux.HandleFunc("/api/v1/term", s.wrapWithMiddleware(s.handleTerm))
	mux.HandleFunc("/api/v1/analysis", s.wrapWithMiddleware(s.handleAnalysis))
	mux.HandleFunc("/api/v1/engines", s.wrapWithMiddleware(s.handleEngines))
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))

	addr := cfg.Addr
	if addr == "" {
		addr = config.DefaultAddr
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// wrapWithMiddleware applies the full middleware chain to a handler.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	// Apply in reverse order: Security -> RateLimit -> Logging -> Metrics -> Handler
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start initializes and starts the HTTP server.
// It listens for incoming requests on the configured address and handles system
// signals (SIGINT, SIGTERM) to ensure a graceful shutdown.
//
// Returns:
//   - error: An error if the server fails to start or shuts down unexpectedly.
func (s *Server) Start() error {
	// Setup signal handling for graceful shutdown
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)

	// Channel for server startup errors
	errCh := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		s.logger.Printf("Starting server on %s\n", s.httpServer.Addr)
		s.logger.Printf("Configuration: parallel_threshold=%d, rate_limit=%.1f req/s, burst=%d\n",
			s.cfg.Threshold, s.rateLimiter.rate, int(s.rateLimiter.burst))
		s.logger.Println("Available endpoints:")
		s.logger.Println("  GET /api/v1/term?u=<list>&a=<list>&n=<number>[&modulus=<m>][&engine=<name>]")
		s.logger.Println("  GET /api/v1/analysis?u=<list>&a=<list>")
		s.logger.Println("  GET /api/v1/engines")
		s.logger.Println("  GET /health")
		s.logger.Println("  GET /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-s.shutdownSignal:
		s.logger.Println("Shutdown signal received, initiating graceful shutdown...")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Println("Server stopped gracefully")
	return nil
}

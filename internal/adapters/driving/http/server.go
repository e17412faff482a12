package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driving"
)

// DefaultMaxUploadBytes bounds the size of an estimate request body
const DefaultMaxUploadBytes = 10 << 20

// DefaultRequestTimeout bounds the work done for one request. The server's
// write timeout is set past it so the timeout response still reaches the client.
const DefaultRequestTimeout = 150 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	maxUpload  int64
	logger     *slog.Logger

	// Services
	estimateService driving.EstimateService
	chatService     driving.ChatService
	statusService   driving.StatusService
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	CORSOrigins    []string
	RateLimitRPS   float64 // zero disables rate limiting
	RateLimitBurst int
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		Version:        "dev",
		CORSOrigins:    []string{"*"},
		RateLimitRPS:   10,
		RateLimitBurst: 20,
		MaxUploadBytes: DefaultMaxUploadBytes,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	estimateService driving.EstimateService,
	chatService driving.ChatService,
	statusService driving.StatusService,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		maxUpload:       maxUpload,
		logger:          logger,
		estimateService: estimateService,
		chatService:     chatService,
		statusService:   statusService,
	}
	s.setupRoutes()

	// Outermost first: recovery, logging, CORS, rate limit, timeout
	var h http.Handler = NewTimeoutMiddleware(requestTimeout).Handler(s.router)
	if cfg.RateLimitRPS > 0 {
		h = NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler(h)
	}
	h = NewCORSMiddleware(cfg.CORSOrigins).Handler(h)
	h = NewLoggingMiddleware(logger).Handler(h)
	h = NewRecoveryMiddleware(logger).Handler(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: requestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes registers every route at the root and under /api/v1
func (s *Server) setupRoutes() {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /health", s.handleHealth},
		{"POST /estimate", s.handleEstimate},
		{"POST /estimate/detailed", s.handleEstimateDetailed},
		{"POST /chat", s.handleChat},
		{"GET /features", s.handleFeatures},
	}
	for _, r := range routes {
		s.router.HandleFunc(r.pattern, r.handler)
		method, path, _ := strings.Cut(r.pattern, " ")
		s.router.HandleFunc(method+" /api/v1"+path, r.handler)
	}

	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwagger)
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr, "version", s.version)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Package server exposes the HTTP surface of the service: PDF upload,
// processing triggers, progress polling, and output retrieval.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"docuvert/logging"

	"go.uber.org/zap"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Host to bind to (default: "0.0.0.0").
	Host string

	// Port to listen on (default: 8080).
	Port int

	// ReadTimeout for HTTP requests (default: 60s; uploads can be large).
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Processing runs synchronously inside
	// the request, so this must cover a full multi-page session (default: 30m).
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s).
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 30s).
	ShutdownTimeout time.Duration

	// LogSkipPaths are paths served without a request log line.
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    30 * time.Minute,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		LogSkipPaths:    []string{"/health"},
	}
}

// Server wires the API handlers, logging middleware, and http.Server
// together.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	api        *API
	loggingMw  *LoggingMiddleware
	logger     *logging.Logger
}

// NewServer creates a configured server around the API handler set.
func NewServer(config ServerConfig, api *API, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewTestLogger()
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:       mux,
		config:    config,
		api:       api,
		loggingMw: NewLoggingMiddleware(logger, config.LogSkipPaths),
		logger:    logger.Named("server"),
	}
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.rootHandler(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	s.logger.Info("server created", zap.String("addr", addr))
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.api.RegisterRoutes(s.mux)
}

// rootHandler wraps the mux with middleware.
func (s *Server) rootHandler() http.Handler {
	return s.loggingMw.Handler(s.mux)
}

// Handler exposes the fully wired handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening for HTTP requests and blocks until the server is
// shut down.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

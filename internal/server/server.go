// Package server exposes the schedule capabilities over HTTP alongside
// Kubernetes-style health probes (liveness, readiness, startup) and
// graceful shutdown with connection draining.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/dayflow/internal/health"
	"github.com/felixgeelhaar/dayflow/internal/log"
	"github.com/felixgeelhaar/dayflow/internal/planner"
	"github.com/felixgeelhaar/dayflow/internal/session"
)

// Server serves the capability API and health endpoints.
type Server struct {
	httpServer      *http.Server
	probeManager    *health.ProbeManager
	planner         *planner.Transformer
	clock           session.Clock
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080", "0.0.0.0:8080")
	Address string

	// ShutdownTimeout is the maximum time to wait for connections to drain
	// during shutdown. Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 30 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Provider round trips are slow, so this defaults to 5 minutes.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Defaults to 60 seconds.
	IdleTimeout time.Duration
}

// NewServer creates a new HTTP server serving the capability API.
func NewServer(transformer *planner.Transformer, probeManager *health.ProbeManager, clock session.Clock, logger *log.Logger, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if clock == nil {
		clock = session.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		probeManager:    probeManager,
		planner:         transformer,
		clock:           clock,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/health/startup", s.handleStartup)

	// Backward compatibility: /healthz maps to readiness
	mux.HandleFunc("/healthz", s.handleReadiness)

	mux.HandleFunc("/api/ai/generate-schedule", s.handleGenerateSchedule)
	mux.HandleFunc("/api/ai/add-task-to-schedule", s.handleAddTask)
	mux.HandleFunc("/api/ai/adjust-schedule-for-delay", s.handleAdjustForDelay)
	mux.HandleFunc("/api/ai/extract-tasks-from-transcript", s.handleExtractTasks)
	mux.HandleFunc("/api/ai/suggest-tasks-from-goal", s.handleSuggestTasks)
	mux.HandleFunc("/api/ai/summarize-day", s.handleSummarizeDay)
	mux.HandleFunc("/api/ai/get-current-time", s.handleCurrentTime)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the configured request handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server. This is a blocking call that returns when
// the server is stopped or encounters an error. Returns http.ErrServerClosed
// when the server is shut down gracefully.
func (s *Server) Start() error {
	s.probeManager.MarkInitialized()

	s.logger.Info("server listening", "address", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown performs graceful shutdown of the HTTP server.
//
// It:
//  1. Marks the server as shutting down (readiness probes will fail)
//  2. Disables HTTP keep-alives to stop accepting new requests
//  3. Waits for existing connections to drain (up to ShutdownTimeout)
//  4. Forces closure of any remaining connections after timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()

	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// writeProbeResponse writes probe responses with consistent error handling.
func (s *Server) writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if result.Status == health.StatusUnhealthy {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// handleLiveness handles liveness probe requests.
// GET /health/live
//
// Liveness always returns 200, even during shutdown: a draining process is
// still alive.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckLiveness(r.Context())
	s.writeProbeResponse(w, result, http.StatusOK)
}

// handleReadiness handles readiness probe requests.
// GET /health/ready
//
// Returns 503 when the server is shutting down or a dependency check
// reports unhealthy.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckReadiness(r.Context())
	s.writeProbeResponse(w, result, http.StatusServiceUnavailable)
}

// handleStartup handles startup probe requests.
// GET /health/startup
//
// Returns 503 until initialization has completed.
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckStartup(r.Context())
	s.writeProbeResponse(w, result, http.StatusServiceUnavailable)
}

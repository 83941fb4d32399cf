// Package server provides the HTTP API for compliance evaluation.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"veritas-hq/minerva/pkg/audit"
	"veritas-hq/minerva/pkg/config"
	"veritas-hq/minerva/pkg/policy"
	"veritas-hq/minerva/pkg/policy/engine"
	"veritas-hq/minerva/pkg/records"
	"veritas-hq/minerva/pkg/telemetry/metrics"
)

// HealthProbe reports readiness of an external dependency, such as the
// classifier sidecar.
type HealthProbe interface {
	Health(ctx context.Context) error
}

// Server is the HTTP API server for compliance evaluation.
type Server struct {
	config       *config.ServerConfig
	engine       *engine.Engine
	registry     *policy.Registry
	recorder     *audit.Recorder
	auditStore   audit.Storage
	recordStore  records.Store
	metrics      *metrics.EngineMetrics
	metricsPath  string
	probes       map[string]HealthProbe
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options bundles the server dependencies. Recorder, stores, metrics,
// and probes are optional; nil disables the corresponding surface.
type Options struct {
	Config      *config.ServerConfig
	Engine      *engine.Engine
	Registry    *policy.Registry
	Recorder    *audit.Recorder
	AuditStore  audit.Storage
	RecordStore records.Store
	Metrics     *metrics.EngineMetrics
	MetricsPath string
	Probes      map[string]HealthProbe
	Logger      *slog.Logger
}

// NewServer creates a new API server.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server config cannot be nil")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("pack registry cannot be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	return &Server{
		config:       opts.Config,
		engine:       opts.Engine,
		registry:     opts.Registry,
		recorder:     opts.Recorder,
		auditStore:   opts.AuditStore,
		recordStore:  opts.RecordStore,
		metrics:      opts.Metrics,
		metricsPath:  metricsPath,
		probes:       opts.Probes,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server",
			"address", s.config.ListenAddress,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/evaluate", s.handleEvaluate)
	mux.HandleFunc("GET /v1/packs", s.handlePacks)
	mux.HandleFunc("GET /v1/audit/{id}", s.handleAuditGet)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.metrics != nil {
		mux.Handle("GET "+s.metricsPath, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

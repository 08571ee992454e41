// Package server hosts the HTTP API: it wires configuration into the
// extraction pipeline and serves the registered endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pdfstruct/pdfstruct/internal/api"
	"github.com/pdfstruct/pdfstruct/internal/config"
	"github.com/pdfstruct/pdfstruct/internal/extract"
	"github.com/pdfstruct/pdfstruct/internal/fetch"
	"github.com/pdfstruct/pdfstruct/internal/headings"
	"github.com/pdfstruct/pdfstruct/internal/layout"
	"github.com/pdfstruct/pdfstruct/internal/remoteparse"
	"github.com/pdfstruct/pdfstruct/internal/server/endpoints"
	"github.com/pdfstruct/pdfstruct/internal/svcctx"
	"github.com/pdfstruct/pdfstruct/internal/tables"
)

// Server is the pdfstruct HTTP server. The pipeline and its collaborators
// are rebuilt on config hot-reload.
type Server struct {
	httpServer       *http.Server
	configMgr        *config.Manager
	logger           *slog.Logger
	endpointRegistry *api.Registry

	mu       sync.RWMutex
	running  bool
	services *svcctx.Services
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, fmt.Errorf("config manager is required")
	}

	appCfg := cfg.ConfigManager.Get()
	if cfg.Host == "" {
		cfg.Host = appCfg.Server.Host
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = appCfg.Server.Port
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}
	s.setServices(buildServices(appCfg, cfg.ConfigManager, cfg.Logger))

	// Rebuild the pipeline when the config file changes.
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		s.setServices(buildServices(c, cfg.ConfigManager, cfg.Logger))
		cfg.Logger.Info("pipeline rebuilt from config")
	})

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requirePipeline)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute, // extractions on large documents are slow
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// buildServices assembles the pipeline and its collaborators from config.
func buildServices(c *config.Config, mgr *config.Manager, logger *slog.Logger) *svcctx.Services {
	fetcher := fetch.New(c.FetchTimeout(), logger)
	classifier := headings.NewClassifier(c.HeadingThresholds(), logger)
	detector := layout.NewDetector(c.Layout.DetectorURL, logger)
	grid := tables.NewGridEngine(c.Tables.GridURL, logger)
	normalizer := tables.NewNormalizer(grid, tables.NewWhitespaceEngine(logger), logger)
	normalizer.SetAccuracyFloors(c.Tables.LatticeMinAccuracy, c.Tables.StreamMinAccuracy)

	pipeline := extract.NewPipeline(
		fetcher, classifier, detector, normalizer, c.OrderEngine(), logger,
	)

	return &svcctx.Services{
		Pipeline:      pipeline,
		Fetcher:       fetcher,
		Detector:      detector,
		GridEngine:    grid,
		RemoteParser:  remoteparse.New(c.RemoteParserConfig(), logger),
		ConfigManager: mgr,
		Logger:        logger,
	}
}

func (s *Server) setServices(svcs *svcctx.Services) {
	s.mu.Lock()
	s.services = svcs
	s.mu.Unlock()
}

func (s *Server) getServices() *svcctx.Services {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svcs := s.getServices(); svcs != nil {
			ctx = svcctx.WithServices(ctx, svcs)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePipeline is middleware that ensures the extraction pipeline is
// constructed. Returns 503 Service Unavailable otherwise.
func (s *Server) requirePipeline(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svcs := s.getServices()
		if svcs == nil || svcs.Pipeline == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized","status":503}`))
			return
		}
		next(w, r)
	}
}

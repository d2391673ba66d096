// Package server serves the choropleth, its legend and the region data over
// HTTP.
//
// The atlas is loaded once in the background; until it is available every
// map route answers 503 and /readyz reports the load state. Rendered
// artifacts go through the same [pipeline.Runner] cache as the CLI.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/accessmap/pkg/atlas"
	"github.com/matzehuels/accessmap/pkg/observability"
	"github.com/matzehuels/accessmap/pkg/pipeline"
)

// Defaults for Config fields left zero.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr            string
	CORSOrigins     []string
	ShutdownTimeout time.Duration

	// Options are the base pipeline options for every request: sources,
	// size and tooltips. Formats and thresholds are set per request.
	Options pipeline.Options
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	logger   *log.Logger
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	router   *chi.Mux

	mu      sync.RWMutex
	atlas   *atlas.Atlas
	loadErr error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics records request metrics in m and serves /metrics from g.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// New builds a server around runner. The atlas is not loaded until
// [Server.Load] or [Server.Run] is called.
func New(cfg Config, runner *pipeline.Runner, opts ...Option) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		cfg:      cfg,
		runner:   runner,
		logger:   log.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.cfg.CORSOrigins))

	r.Get("/", s.handlePage)
	r.Get("/map.svg", s.handleArtifact(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/map.geojson", s.handleArtifact(pipeline.FormatGeoJSON, "application/geo+json"))
	r.Get("/legend.svg", s.handleLegend)

	r.Route("/api", func(r chi.Router) {
		r.Get("/regions", s.handleArtifact(pipeline.FormatJSON, "application/json"))
		r.Get("/regions/{code}", s.handleRegion)
		r.Get("/fills", s.handleFills)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router = r
}

// ServeHTTP dispatches to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Load fetches the sources and makes the atlas available to handlers. A
// failed load is reported by /readyz.
func (s *Server) Load(ctx context.Context) error {
	a, err := s.runner.Load(ctx, s.cfg.Options)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
	if err == nil {
		s.atlas = a
	}
	return err
}

// Atlas returns the loaded atlas, or nil before the first successful load.
func (s *Server) Atlas() *atlas.Atlas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atlas
}

func (s *Server) state() (*atlas.Atlas, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atlas, s.loadErr
}

// Run loads the atlas in the background and serves until ctx is cancelled,
// then drains connections within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		start := time.Now()
		if err := s.Load(ctx); err != nil {
			s.logger.Error("load map data", "error", err)
			return
		}
		s.logger.Info("map data ready", "duration", time.Since(start))
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

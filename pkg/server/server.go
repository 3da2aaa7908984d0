// Package server exposes the generation pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz              liveness and build version
//	POST /v1/generate          JSON options in, manifest and base64 artifacts out
//	GET  /v1/image.png         query-driven PNG
//	GET  /v1/image.tiff        query-driven 16-bit TIFF
//	GET  /v1/points.csv        query-driven ground-truth coordinates
//	GET  /v1/kernel            preview kernel for ?radius=&sigma=
//	GET  /v1/runs              recent catalogue entries
//	GET  /v1/runs/{id}         one catalogue entry
//
// Errors are JSON objects {"code": "...", "message": "..."}; validation
// failures are 400, unknown runs 404, everything else 500.
//
// When API keys are configured every /v1 route requires one in the
// X-API-Key header, and cache entries are scoped per key.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/evsynth/pkg/cache"
	"github.com/matzehuels/evsynth/pkg/catalog"
)

const (
	// DefaultTimeout bounds one request, generation included.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxPixels caps width×height of a requested canvas.
	DefaultMaxPixels = 4096 * 4096

	// DefaultMaxPoints caps the points a request may sample: parents×cluster_max
	// for the cluster policy, beads for the pack policy.
	DefaultMaxPoints = 1_000_000

	// DefaultMaxKernelRadius caps the PSF kernel radius of renders and previews.
	DefaultMaxKernelRadius = 128

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Config configures a [Server].
type Config struct {
	// Cache stores geometry and artifacts. Nil disables caching.
	Cache cache.Cache
	// Catalog records every generated run. Nil disables the /v1/runs routes.
	Catalog catalog.Store
	Logger  *log.Logger
	// Timeout bounds one request. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxPixels caps width×height. Zero means DefaultMaxPixels.
	MaxPixels int
	// MaxPoints caps the sampled point count. Zero means DefaultMaxPoints.
	MaxPoints int
	// MaxKernelRadius caps the kernel radius. Zero means DefaultMaxKernelRadius.
	MaxKernelRadius int
	// APIKeys, when non-empty, are the accepted X-API-Key values.
	APIKeys []string
}

// Server is the HTTP API.
type Server struct {
	cache           cache.Cache
	catalog         catalog.Store
	logger          *log.Logger
	timeout         time.Duration
	maxPixels       int
	maxPoints       int
	maxKernelRadius int
	keys            map[string]bool
	router          chi.Router
}

// New builds the server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		cache:           cfg.Cache,
		catalog:         cfg.Catalog,
		logger:          cfg.Logger,
		timeout:         cfg.Timeout,
		maxPixels:       cfg.MaxPixels,
		maxPoints:       cfg.MaxPoints,
		maxKernelRadius: cfg.MaxKernelRadius,
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.timeout == 0 {
		s.timeout = DefaultTimeout
	}
	if s.maxPixels == 0 {
		s.maxPixels = DefaultMaxPixels
	}
	if s.maxPoints == 0 {
		s.maxPoints = DefaultMaxPoints
	}
	if s.maxKernelRadius == 0 {
		s.maxKernelRadius = DefaultMaxKernelRadius
	}
	if len(cfg.APIKeys) > 0 {
		s.keys = make(map[string]bool, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			s.keys[k] = true
		}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Post("/generate", s.handleGenerate)
		r.Get("/image.png", s.handleArtifact("png", "image/png"))
		r.Get("/image.tiff", s.handleArtifact("tiff", "image/tiff"))
		r.Get("/points.csv", s.handleArtifact("csv", "text/csv; charset=utf-8"))
		r.Get("/kernel", s.handleKernel)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Package server exposes the layout pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz
//	POST /api/v1/layouts                    faces JSON → layout JSON (?save=1 stores a package)
//	POST /api/v1/export/{format}            layout JSON → dxf, svg or json (?layer=N)
//	GET  /api/v1/packages                   newest packages (?limit=N)
//	GET  /api/v1/packages/{id}              one package
//	GET  /admin/packages/{id}/layout.dxf    cut file for the shop floor (?layer=N)
//	GET  /quote/{id}/preview.svg            customer preview (?layer=N)
//
// The admin and quote downloads read the package's stored artifacts, which
// were rendered by the same exporters as the export route, so all three
// agree byte for byte. A layer parameter re-renders from the stored layout.
//
// When an exporter produces nothing the response is 204 No Content, which
// front ends treat as "disable the download button".
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/foamlayout/pkg/config"
	"github.com/matzehuels/foamlayout/pkg/observability"
	"github.com/matzehuels/foamlayout/pkg/pipeline"
	"github.com/matzehuels/foamlayout/pkg/store"
)

// maxBodyBytes bounds request bodies. Traced documents with thousands of
// loops stay well under this.
const maxBodyBytes = 32 << 20

// Server serves layout requests.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults config.Build
}

// Option configures a Server.
type Option func(*Server)

func WithBuildDefaults(b config.Build) Option { return func(s *Server) { s.defaults = b } }
func WithLogger(l *log.Logger) Option         { return func(s *Server) { s.logger = l } }

// New returns a server backed by runner and st. A nil store disables the
// package routes' persistence by using an in-memory store.
func New(runner *pipeline.Runner, st store.Store, opts ...Option) *Server {
	if st == nil {
		st = store.NewMemory()
	}
	s := &Server{
		runner:   runner,
		store:    st,
		logger:   log.Default(),
		defaults: config.Default().Build,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/layouts", s.handleBuild)
		r.Post("/export/{format}", s.handleExport)
		r.Get("/packages", s.handleListPackages)
		r.Get("/packages/{id}", s.handleGetPackage)
	})

	r.Get("/admin/packages/{id}/layout.dxf", s.handlePackageArtifact(pipeline.FormatDXF))
	r.Get("/quote/{id}/preview.svg", s.handlePackageArtifact(pipeline.FormatSVG))

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error", "error", err)
		return srv.Close()
	}
	return nil
}

// instrument reports each request to the server hooks and the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", time.Since(start))
	})
}

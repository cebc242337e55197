// Package server exposes the latest run's aggregates over HTTP so
// dashboards and ad-hoc tooling can read them without parsing the CSV
// output.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ApexPlayground/Tpot-analysis-project/internal/config"
	"github.com/ApexPlayground/Tpot-analysis-project/internal/pipeline"
	"github.com/ApexPlayground/Tpot-analysis-project/internal/record"
)

// Server serves one completed RunResult. The result is immutable, so no
// locking is needed behind the handlers.
type Server struct {
	cfg    config.ServerConfig
	result *pipeline.RunResult
	logger *zap.Logger
	http   *http.Server
}

// New builds a server over a completed run.
func New(cfg config.ServerConfig, result *pipeline.RunResult, logger *zap.Logger) *Server {
	s := &Server{cfg: cfg, result: result, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/run", s.handleRun)
		r.Get("/sources", s.handleSources)
		r.Get("/sources/{family}/tables/{name}", s.handleTable)
		r.Get("/sources/{family}/buckets/{name}", s.handleBuckets)
	})

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.ReadTimeout),
		WriteTimeout: time.Duration(cfg.WriteTimeout),
	}
	return s
}

// Handler returns the route tree, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving requests until Shutdown or a listener
// error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("report server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.result)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	families := make([]record.Family, 0, len(s.result.Sources))
	for _, src := range s.result.Sources {
		families = append(families, src.Family)
	}
	writeJSON(w, http.StatusOK, families)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(chi.URLParam(r, "family"))
	if src == nil {
		http.NotFound(w, r)
		return
	}
	table, ok := src.Tables[chi.URLParam(r, "name")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	src := s.findSource(chi.URLParam(r, "family"))
	if src == nil {
		http.NotFound(w, r)
		return
	}
	buckets, ok := src.Buckets[chi.URLParam(r, "name")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) findSource(family string) *pipeline.SourceResult {
	for i := range s.result.Sources {
		if string(s.result.Sources[i].Family) == family {
			return &s.result.Sources[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

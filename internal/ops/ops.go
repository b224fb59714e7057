// Package ops exposes a minimal operational HTTP surface for scan runs
package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"codesweep/internal/core/version"
	"codesweep/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Guarder reports readiness of the storage backends
type Guarder interface {
	Guard(context.Context) error
}

// Status is the mutable run status served on /status
type Status struct {
	State    string `json:"state"` // "idle" | "running" | "done" | "failed"
	RunID    string `json:"run_id,omitempty"`
	Queries  int    `json:"queries"`
	Findings int    `json:"findings"`
	CapHit   bool   `json:"cap_hit"`
}

// Server is the ops listener; zero value is not usable, use New
type Server struct {
	addr   string
	guard  Guarder
	log    logger.Logger
	status atomic.Pointer[Status]
	http   *http.Server
}

// New builds an ops server bound to addr
func New(addr string, guard Guarder) *Server {
	s := &Server{
		addr:  addr,
		guard: guard,
		log:   *logger.Named("ops"),
	}
	s.status.Store(&Status{State: "idle"})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Get("/status", s.handleStatus)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// SetStatus publishes the current run status
func (s *Server) SetStatus(st Status) { s.status.Store(&st) }

// Start serves in the background; errors other than graceful close are logged
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("ops listener starting")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("ops listener failed")
		}
	}()
}

// Stop shuts the listener down gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":    true,
		"build": version.Info(),
	})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.guard != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.guard.Guard(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Load())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

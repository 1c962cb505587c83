// Package api exposes the operational HTTP surface of the crawler: health
// and metrics endpoints, crawl progress, and the out-of-band channel that
// delivers replacement API credentials to the key gate.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/TheBoringBakery/MoonCaker/internal/keygate"
	"github.com/TheBoringBakery/MoonCaker/internal/store"
)

// Progress is the store surface the progress endpoint reads.
type Progress interface {
	Partitions(ctx context.Context) ([]store.Partition, error)
	CountMatches(ctx context.Context) (int64, error)
}

// Server wires the ops HTTP handlers to the gate and the store.
type Server struct {
	router   chi.Router
	gate     *keygate.Gate
	progress Progress
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(gate *keygate.Gate, progress Progress, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{gate: gate, progress: progress, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", s.getProgress)
		r.Route("/key", func(r chi.Router) {
			r.Post("/", s.supplyKey)
			r.Get("/pending", s.keyPending)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type progressResponse struct {
	Matches    int64             `json:"matches"`
	Partitions []store.Partition `json:"partitions"`
	KeyPending bool              `json:"keyPending"`
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	partitions, err := s.progress.Partitions(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "list partitions failed")
		return
	}
	matches, err := s.progress.CountMatches(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "count matches failed")
		return
	}
	s.writeJSON(w, http.StatusOK, progressResponse{
		Matches:    matches,
		Partitions: partitions,
		KeyPending: s.gate.Pending(),
	})
}

type supplyKeyRequest struct {
	Key string `json:"key"`
}

func (s *Server) supplyKey(w http.ResponseWriter, r *http.Request) {
	var req supplyKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		s.writeError(w, http.StatusBadRequest, "missing key")
		return
	}
	s.gate.Supply(req.Key)
	s.logger.Info("replacement credential supplied")
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) keyPending(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"pending": s.gate.Pending()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

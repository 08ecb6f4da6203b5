// Package server exposes the joined dataset over HTTP for the dashboard
// front end.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/shuyaguan/dc-dashboard/internal/dataset"
)

// Server serves the dashboard API from a loaded store.
type Server struct {
	store *dataset.Store
}

// New creates a server around the store.
func New(store *dataset.Store) *Server {
	return &Server{store: store}
}

// Handler builds the chi router with all API routes.
func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/roads", s.handleRoads)
		r.Get("/counters", s.handleCounters)
		r.Get("/temporal/{key}", s.handleTemporal)
		r.Get("/stats", s.handleStats)
		r.Get("/compare/{key}", s.handleCompare)
		r.Get("/export.csv", s.handleExportCSV)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

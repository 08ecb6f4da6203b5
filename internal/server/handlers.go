package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shuyaguan/dc-dashboard/internal/query"
)

// filtersFromRequest reads the common query parameters. Volume accepts a
// comma-separated bucket list; an absent view means combined.
func filtersFromRequest(r *http.Request) query.Filters {
	q := r.URL.Query()
	f := query.Filters{
		Neighborhood: q.Get("neighborhood"),
		CounterType:  q.Get("counterType"),
		View:         query.View(q.Get("view")),
	}
	if f.View == "" {
		f.View = query.ViewCombined
	}
	if raw := q.Get("volume"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Volume = append(f.Volume, strings.ToLower(part))
			}
		}
	}
	return f
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := s.store.State()
	status := "ok"
	code := http.StatusOK
	if !info.Loaded {
		status = "loading"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"status": status, "dataset": info})
}

func (s *Server) handleRoads(w http.ResponseWriter, r *http.Request) {
	f := filtersFromRequest(r)
	segments := s.store.FilteredRoads(f)
	writeJSON(w, http.StatusOK, segmentCollection(segments, f.View))
}

func (s *Server) handleCounters(w http.ResponseWriter, r *http.Request) {
	points := s.store.FilteredCounters(filtersFromRequest(r))
	writeJSON(w, http.StatusOK, counterCollection(points))
}

func (s *Server) handleTemporal(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	series, ok := s.store.TemporalSeries(key)
	if !ok {
		writeError(w, http.StatusNotFound, "no temporal data for key "+key)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "series": series})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Statistics()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	cmp, ok := s.store.Compare(key)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown segment key "+key)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	out, err := s.store.ExportCSV(filtersFromRequest(r))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="segments.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

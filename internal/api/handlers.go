package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/MrSnug/seedtracker/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// queryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// writeDataOrError maps engine errors onto HTTP statuses: an uninitialized
// engine is a 503, anything else a 500.
func writeDataOrError(w http.ResponseWriter, data any, err error) {
	if err != nil {
		if errors.Is(err, tracker.ErrNotInitialized) {
			writeError(w, http.StatusServiceUnavailable, "tracker not initialized", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// writeResult maps an administrative Result onto 200/422.
func writeResult(w http.ResponseWriter, res tracker.Result) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	totals, err := s.engine.TopSeeders(r.Context(), limit)
	writeDataOrError(w, totals, err)
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	streaks, err := s.engine.TopStreaks(r.Context(), limit)
	writeDataOrError(w, streaks, err)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	report, err := s.engine.Analytics(r.Context(), days)
	writeDataOrError(w, report, err)
}

func (s *Server) handleEffectiveSeeders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 0)
	seeders, err := s.engine.EffectiveSeeders(r.Context(), limit)
	writeDataOrError(w, seeders, err)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.engine.SmartRecommendations(r.Context())
	writeDataOrError(w, recs, err)
}

func (s *Server) handleAlertStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.AlertStatus())
}

func (s *Server) handleUpdateAlerts(w http.ResponseWriter, r *http.Request) {
	var update tracker.AlertConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	writeResult(w, s.engine.UpdateAlertConfig(update))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.engine.ListEntries(),
	})
}

func (s *Server) handleAddToList(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	writeResult(w, s.engine.AddToList(uid))
}

func (s *Server) handleRemoveFromList(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	writeResult(w, s.engine.RemoveFromList(uid))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeResult(w, s.engine.ResetAllTotals(r.Context()))
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
)

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleModelStatistics(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	if _, err := s.profiles.Load(model); err != nil {
		s.writeFailure(w, err)
		return
	}
	stats, err := s.stats.ForPersona(r.Context(), model)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// handlePurgeStatistics wipes a persona's conversation log and ratings.
// Trained responses survive the purge.
func (s *Server) handlePurgeStatistics(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	counts, err := s.stats.Purge(r.Context(), model)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.log.Info("purged statistics", "persona", model,
		"conversations", counts.Conversations, "ratings", counts.Ratings)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "purged",
		"model":   model,
		"deleted": counts,
	})
}

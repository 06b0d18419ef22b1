package handlers

import (
	"net/http"

	"github.com/persona-labs/persona-service/settings"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"service": "persona-service",
		"status":  "running",
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := s.settings.Get(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var doc settings.Document
	if err := decodeBody(r, &doc); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	saved, err := s.settings.Save(r.Context(), doc)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.checker.Check(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":               report.Status,
		"database":             report.Database,
		"redis":                report.Redis,
		"system":               report.System,
		"uptime":               report.Uptime,
		"models_loaded":        s.profiles.Loaded(),
		"active_conversations": s.ledger.Active(),
	})
}

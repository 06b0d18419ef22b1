package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/persona-labs/persona-service/persona"
)

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.profiles.List()
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if models == nil {
		models = []persona.Summary{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"models": models})
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := s.profiles.Load(name)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var p persona.Profile
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.profiles.Save(name, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "model": name})
}

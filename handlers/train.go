package handlers

import (
	"net/http"
	"strings"

	"github.com/persona-labs/persona-service/trained"
)

type trainRequest struct {
	Model    string `json:"model"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Priority int    `json:"priority"`
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req trainRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Priority == 0 {
		req.Priority = 1
	}
	if err := s.trained.Train(r.Context(), req.Model, req.Question, req.Answer, req.Priority, trained.OriginManual); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := s.trained.Count(r.Context(), req.Model)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":            "trained",
		"model":             req.Model,
		"trained_responses": count,
	})
}

// handleTrainFile bulk-imports question/answer pairs from an uploaded
// text file, one pair per line.
func (s *Server) handleTrainFile(w http.ResponseWriter, r *http.Request) {
	model := strings.TrimSpace(r.URL.Query().Get("model"))
	if model == "" {
		s.writeError(w, http.StatusBadRequest, "model query parameter is required")
		return
	}
	if _, err := s.profiles.Load(model); err != nil {
		s.writeFailure(w, err)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	imported, err := s.trained.Import(r.Context(), model, file)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	count, err := s.trained.Count(r.Context(), model)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":            "imported",
		"model":             model,
		"imported":          imported,
		"trained_responses": count,
	})
}

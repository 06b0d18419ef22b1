package handlers

import (
	"net/http"
	"strings"

	"github.com/persona-labs/persona-service/analytics"
	"github.com/persona-labs/persona-service/trained"
)

type chatRequest struct {
	UserID  string `json:"user_id"`
	Model   string `json:"model"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Turn      int    `json:"message_number"`
	Semi      bool   `json:"is_semi"`
	Final     bool   `json:"is_last"`
	Emotion   string `json:"emotion"`
	Source    string `json:"source"`
	ModelUsed string `json:"model_used"`
}

func (req *chatRequest) validate() string {
	switch {
	case strings.TrimSpace(req.UserID) == "":
		return "user_id is required"
	case strings.TrimSpace(req.Model) == "":
		return "model is required"
	case strings.TrimSpace(req.Message) == "":
		return "message is required"
	}
	return ""
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.resolver.Resolve(r.Context(), req.Model, req.UserID, req.Message)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	s.sink.Submit(analytics.Activity{
		UserID:   req.UserID,
		Persona:  req.Model,
		Message:  req.Message,
		Response: res.Text,
		Turn:     res.Turn,
		Semi:     res.Semi,
		Final:    res.Final,
		Emotion:  res.Emotion,
		Source:   string(res.Source),
	})

	s.writeJSON(w, http.StatusOK, chatResponse{
		Response:  res.Text,
		Turn:      res.Turn,
		Semi:      res.Semi,
		Final:     res.Final,
		Emotion:   res.Emotion,
		Source:    string(res.Source),
		ModelUsed: req.Model,
	})
}

type testRequest struct {
	Model   string `json:"model"`
	Message string `json:"message"`
}

// handleTest resolves a message without recording a turn or activity,
// so curators can poke a persona without polluting statistics.
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Model) == "" || strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "model and message are required")
		return
	}

	res, err := s.resolver.Preview(r.Context(), req.Model, req.Message)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, chatResponse{
		Response:  res.Text,
		Turn:      res.Turn,
		Semi:      res.Semi,
		Final:     res.Final,
		Emotion:   res.Emotion,
		Source:    string(res.Source),
		ModelUsed: req.Model,
	})
}

type rateRequest struct {
	UserID   string `json:"user_id"`
	Model    string `json:"model"`
	Message  string `json:"message"`
	Response string `json:"response"`
	Rating   int    `json:"rating"`
}

// autoTrainThreshold is the rating at and above which a rated exchange
// is promoted into the trained bank, with the rating as its priority.
const autoTrainThreshold = 8

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Rating < 1 || req.Rating > 10 {
		s.writeError(w, http.StatusBadRequest, "rating must be within [1,10]")
		return
	}
	if strings.TrimSpace(req.Model) == "" || strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "model and message are required")
		return
	}

	if err := s.stats.InsertRating(r.Context(), analytics.Rating{
		UserID:   req.UserID,
		Persona:  req.Model,
		Message:  req.Message,
		Response: req.Response,
		Rating:   req.Rating,
	}); err != nil {
		s.writeFailure(w, err)
		return
	}

	// Promotion honors the persona's learning switch: a curator can
	// freeze a persona's trained bank while ratings keep flowing.
	trainedNow := false
	if req.Rating >= autoTrainThreshold && strings.TrimSpace(req.Response) != "" {
		p, err := s.profiles.Load(req.Model)
		if err == nil && p.LearningEnabled {
			if err := s.trained.Train(r.Context(), req.Model, req.Message, req.Response, req.Rating, trained.OriginAuto); err != nil {
				s.log.Warn("could not auto-train from rating", "persona", req.Model, "err", err)
			} else {
				trainedNow = true
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "rated",
		"trained": trainedNow,
	})
}

// Package handlers exposes the HTTP API: chat resolution, persona
// management, training, statistics, settings and health.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/rs/cors"

	"github.com/persona-labs/persona-service/analytics"
	"github.com/persona-labs/persona-service/conversation"
	"github.com/persona-labs/persona-service/engine"
	"github.com/persona-labs/persona-service/health"
	"github.com/persona-labs/persona-service/persona"
	"github.com/persona-labs/persona-service/settings"
	"github.com/persona-labs/persona-service/trained"
)

// Server wires the HTTP surface to the underlying components.
type Server struct {
	resolver *engine.Resolver
	profiles *persona.Store
	trained  *trained.Store
	stats    *analytics.Store
	sink     *analytics.Sink
	settings *settings.Store
	checker  *health.Checker
	ledger   *conversation.Ledger
	log      *log.Logger
}

func NewServer(
	resolver *engine.Resolver,
	profiles *persona.Store,
	trainedStore *trained.Store,
	stats *analytics.Store,
	sink *analytics.Sink,
	settingsStore *settings.Store,
	checker *health.Checker,
	ledger *conversation.Ledger,
	logger *log.Logger,
) *Server {
	return &Server{
		resolver: resolver,
		profiles: profiles,
		trained:  trainedStore,
		stats:    stats,
		sink:     sink,
		settings: settingsStore,
		checker:  checker,
		ledger:   ledger,
		log:      logger,
	}
}

// Router builds the chi router with all API routes mounted under /api.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Post("/chat", s.handleChat)
		r.Post("/test", s.handleTest)
		r.Post("/rate", s.handleRate)
		r.Post("/train", s.handleTrain)
		r.Post("/train-file", s.handleTrainFile)
		r.Get("/models", s.handleListModels)
		r.Get("/model/{name}", s.handleGetModel)
		r.Post("/model/{name}", s.handleSaveModel)
		r.Get("/statistics", s.handleStatistics)
		r.Get("/statistics/{model}", s.handleModelStatistics)
		r.Delete("/statistics/{model}", s.handlePurgeStatistics)
		r.Get("/settings", s.handleGetSettings)
		r.Post("/settings", s.handleSaveSettings)
		r.Get("/health", s.handleHealth)
	})
	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("could not encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure maps component errors onto HTTP statuses.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, persona.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Error("request failed", "err", err)
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// Package api exposes the ops surface over HTTP: health and metrics
// exposition, a live engine snapshot, and the running configuration.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tsachs/pacer/internal/config"
)

// Server wires HTTP routes for the ops API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	configHandler *ConfigHandler
	eventsHandler *EventsHandler
}

// NewServer creates a server exposing the given stats provider, the
// running configuration, and an ingestion path into the enqueuer.
func NewServer(statsProvider StatsProvider, cfg *config.Config, enq Enqueuer) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		configHandler: NewConfigHandler(cfg),
		eventsHandler: NewEventsHandler(enq),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/config", MetricsMiddleware(s.configHandler.HandleConfig, "config"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

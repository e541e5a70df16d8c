// Package api exposes the ops surface over HTTP: health and metrics
// exposition, a live engine snapshot, and the running configuration.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tsachs/pacer/internal/domain/model"
)

// Enqueuer accepts raw click events for the control loop. Returns false
// when the event could not be accepted.
type Enqueuer interface {
	Enqueue(e model.ClickEvent) bool
}

// EventsHandler handles click event ingestion. Capture front-ends that
// cannot link the engine in-process push observed presses and releases
// here.
type EventsHandler struct {
	enq Enqueuer
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(enq Enqueuer) *EventsHandler {
	return &EventsHandler{enq: enq}
}

// clickRequest mirrors the wire shape for POST /events.
type clickRequest struct {
	Trigger string `json:"trigger"`
	Kind    string `json:"kind"`
	TS      string `json:"ts"`
	ID      string `json:"id,omitempty"`
}

func (c clickRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Trigger) == "":
		return errors.New("missing trigger")
	case c.Kind != "press" && c.Kind != "release":
		return errors.New("kind must be press or release")
	case strings.TrimSpace(c.TS) == "":
		return errors.New("missing ts")
	}
	if _, err := time.Parse(time.RFC3339Nano, c.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

func (c clickRequest) toEvent() model.ClickEvent {
	at, _ := time.Parse(time.RFC3339Nano, c.TS)
	kind := model.Press
	if c.Kind == "release" {
		kind = model.Release
	}
	return model.ClickEvent{
		Trigger: model.Trigger(c.Trigger),
		Kind:    kind,
		At:      at,
		ID:      c.ID,
	}
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if ok := h.enq.Enqueue(req.toEvent()); !ok {
		writeError(w, http.StatusServiceUnavailable, "queue_closed", ErrQueueClosed)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

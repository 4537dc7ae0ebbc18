// Package diag exposes bootstrap progress over HTTP for applications that
// already serve a debug listener. It is an optional surface: the scheduler
// works the same without it.
package diag

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/kickstart/internal/scheduler"
)

type statusResponse struct {
	State            string                         `json:"state"`
	Complete         bool                           `json:"complete"`
	InteractiveSince *time.Time                     `json:"interactive_since,omitempty"`
	Phases           map[string]scheduler.PhaseInfo `json:"phases"`
}

// Handler returns a router serving bootstrap diagnostics:
//
//	GET /bootstrap/status  — state machine position and per-task progress
//	GET /bootstrap/summary — the current (possibly partial) run summary
func Handler(s *scheduler.Scheduler) http.Handler {
	r := chi.NewRouter()
	r.Get("/bootstrap/status", handleStatus(s))
	r.Get("/bootstrap/summary", handleSummary(s))
	return r
}

func handleStatus(s *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			State:    s.State().String(),
			Complete: s.IsComplete(),
			Phases:   s.PhaseStatus(),
		}
		if since := s.InteractiveSince(); !since.IsZero() {
			resp.InteractiveSince = &since
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

func handleSummary(s *scheduler.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, s.CurrentSummary())
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

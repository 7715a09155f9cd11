package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"scenicnav/internal/model"
	"scenicnav/internal/planner"
)

// PlansHandler handles POST /v1/plans
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	resp, err := s.Planner.Plan(r.Context(), req, nil)
	if err != nil {
		writePlanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writePlanError maps planner sentinels onto problem responses.
func writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidRequest):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid plan request", err.Error(), r.URL.Path)
	case errors.Is(err, planner.ErrNoScenicData):
		writeProblem(w, http.StatusUnprocessableEntity, "No scenic data", err.Error(), r.URL.Path)
	case errors.Is(err, planner.ErrRouting):
		writeProblem(w, http.StatusBadGateway, "Routing service failed", err.Error(), r.URL.Path)
	default:
		writeProblem(w, http.StatusInternalServerError, "Plan failed", err.Error(), r.URL.Path)
	}
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using the Postgres store
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, 200, map[string]string{"status": "ready"})
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/simulation"
)

func simulationStatus(err error) int {
	switch {
	case errors.Is(err, simulation.ErrRunNotFound), errors.Is(err, simulation.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, simulation.ErrWrongTurn),
		errors.Is(err, simulation.ErrPlayerUnavailable),
		errors.Is(err, simulation.ErrSkipFirstRound),
		errors.Is(err, simulation.ErrDraftComplete),
		errors.Is(err, simulation.ErrNoTeams):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeSimulationError(w http.ResponseWriter, err error) {
	status := simulationStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("Simulation request failed", "error", err)
	}
	writeError(w, status, err)
}

// decodeOptional decodes a JSON body, accepting an empty one
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// StartSimulation opens a new run and returns its first view
func (h *APIHandlers) StartSimulation(w http.ResponseWriter, r *http.Request) {
	runID, _, err := h.sim.Start(r.Context())
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	view, err := h.sim.View(runID)
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	w.Header().Set("Location", "/api/simulations/"+runID)
	writeJSON(w, http.StatusCreated, view)
}

// GetSimulation returns the current view of a run
func (h *APIHandlers) GetSimulation(w http.ResponseWriter, r *http.Request) {
	view, err := h.sim.View(chi.URLParam(r, "runID"))
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Pick places a first-round bid or a later-round pick for the acting team
func (h *APIHandlers) Pick(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	var req struct {
		TeamID   string `json:"teamId"`
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode pick request", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, errors.New("playerId is required"))
		return
	}

	if _, err := h.sim.Select(r.Context(), runID, req.TeamID, req.PlayerID); err != nil {
		writeSimulationError(w, err)
		return
	}
	h.GetSimulation(w, r)
}

// Skip ends the acting team's draft
func (h *APIHandlers) Skip(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	var req struct {
		TeamID string `json:"teamId"`
	}
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := h.sim.Skip(r.Context(), runID, req.TeamID); err != nil {
		writeSimulationError(w, err)
		return
	}
	h.GetSimulation(w, r)
}

// GetResult returns every team's picks in standings order
func (h *APIHandlers) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.sim.Result(chi.URLParam(r, "runID"))
	if err != nil {
		writeSimulationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteSimulation drops a run
func (h *APIHandlers) DeleteSimulation(w http.ResponseWriter, r *http.Request) {
	if err := h.sim.Delete(chi.URLParam(r, "runID")); err != nil {
		writeSimulationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

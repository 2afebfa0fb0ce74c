package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/clickhouse"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/dal"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/models"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/pubsub"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/scouting"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/simulation"
)

// APIHandlers contains all API handler methods
type APIHandlers struct {
	dal       dal.DraftDAL
	sim       *simulation.Service
	pubsub    *pubsub.PubSub
	analytics clickhouse.Recorder
	checks    []check
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(d dal.DraftDAL, sim *simulation.Service, ps *pubsub.PubSub, analytics clickhouse.Recorder) *APIHandlers {
	return &APIHandlers{
		dal:       d,
		sim:       sim,
		pubsub:    ps,
		analytics: analytics,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// ListPlayers returns the board grouped by category and position, filtered by ?q=
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.dal.ListPlayers()
	if err != nil {
		logger.Error("Failed to list players", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	q := r.URL.Query().Get("q")
	filtered := scouting.Filter(players, q)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":  q,
		"count":  len(filtered),
		"groups": scouting.Group(filtered),
	})
}

// GetPlayer returns a player with scouting comments and aggregates
func (h *APIHandlers) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	player, err := h.dal.GetPlayer(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	comments, err := h.dal.ListComments(id)
	if err != nil {
		logger.Error("Failed to list comments", "error", err, "player_id", id)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	writeJSON(w, http.StatusOK, models.PlayerDetail{
		Player:   *player,
		Comments: comments,
		Averages: scouting.Averages(comments),
		AvgRank:  scouting.AverageRank(comments),
	})
}

// AddComment stores a scouting report on a player
func (h *APIHandlers) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	player, err := h.dal.GetPlayer(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req struct {
		Text    string         `json:"text"`
		Rank    models.Rank    `json:"rank"`
		Ratings models.Ratings `json:"ratings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode comment request", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	comment := &models.Comment{PlayerID: id, Text: req.Text, Rank: req.Rank, Ratings: req.Ratings}
	if err := scouting.ValidateComment(comment, player); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	saved, err := h.dal.AddComment(comment)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	logger.Info("Scouting comment added", "player_id", id, "rank", saved.Rank)

	h.pubsub.Publish(pubsub.NewEvent(pubsub.EventComment, "", map[string]any{
		"playerId":  id,
		"commentId": saved.ID,
		"rank":      string(saved.Rank),
	}))

	writeJSON(w, http.StatusCreated, saved)
}

// ListTeams returns all teams in standings order
func (h *APIHandlers) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.dal.ListTeams()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// AverageDraftPositions reports where players tend to go across recorded runs
func (h *APIHandlers) AverageDraftPositions(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		writeJSON(w, http.StatusOK, []clickhouse.PlayerADP{})
		return
	}
	adp, err := h.analytics.AverageDraftPositions(r.Context())
	if err != nil {
		logger.Error("Failed to query average draft positions", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, adp)
}

// Reset wipes runs and comments and reseeds the roster
func (h *APIHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	logger.Info("Resetting data store")
	if err := h.dal.Reset(); err != nil {
		logger.Error("Failed to reset data store", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, dal.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	logger.Error("Data store request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err)
}

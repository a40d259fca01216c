package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dwalters/cardroom/internal/services/registry"
	"github.com/dwalters/cardroom/internal/storage"
)

// APIHandler serves the small JSON surface consumed by the CLI
type APIHandler struct {
	registry *registry.Service
	storage  storage.Storage
	logger   *slog.Logger
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(reg *registry.Service, store storage.Storage, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		registry: reg,
		storage:  store,
		logger:   logger,
	}
}

// HealthResult is the healthz response body
type HealthResult struct {
	Status string `json:"status"`
}

// RoomResult is one room in the rooms listing
type RoomResult struct {
	Name     string `json:"name"`
	GameType string `json:"game_type"`
	Players  int    `json:"players"`
}

// Health reports process liveness
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResult{Status: "ok"})
}

// Rooms lists all rooms with their current player counts
func (h *APIHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Error("could not list rooms", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	results := make([]RoomResult, 0, len(rooms))
	for _, room := range rooms {
		players, err := h.storage.ListRoomPlayers(r.Context(), room.Name)
		if err != nil {
			h.logger.Error("could not list room players",
				slog.String("room", string(room.Name)),
				slog.String("error", err.Error()))
		}
		results = append(results, RoomResult{
			Name:     string(room.Name),
			GameType: room.GameType,
			Players:  len(players),
		})
	}

	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

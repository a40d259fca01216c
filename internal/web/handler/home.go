package handler

import (
	"log/slog"
	"net/http"

	"github.com/dwalters/cardroom/internal/services/registry"
	"github.com/dwalters/cardroom/internal/storage"
	"github.com/dwalters/cardroom/internal/web/middleware"
	"github.com/dwalters/cardroom/internal/web/templates"
)

// HomeHandler serves the landing page: the login form for anonymous
// sessions, the room list for authenticated ones.
type HomeHandler struct {
	registry *registry.Service
	storage  storage.Storage
	logger   *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(reg *registry.Service, store storage.Storage, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		registry: reg,
		storage:  store,
		logger:   logger,
	}
}

// Home renders the landing page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if sess.User == nil {
		if err := templates.Login(w, templates.LoginData{}); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	rooms, err := h.registry.List(r.Context())
	if err != nil {
		h.logger.Error("could not list rooms", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	entries := make([]templates.RoomListEntry, 0, len(rooms))
	for _, room := range rooms {
		players, err := h.storage.ListRoomPlayers(r.Context(), room.Name)
		if err != nil {
			h.logger.Error("could not count room players",
				slog.String("room", string(room.Name)),
				slog.String("error", err.Error()))
		}
		entries = append(entries, templates.RoomListEntry{
			Name:     string(room.Name),
			GameType: room.GameType,
			Players:  len(players),
		})
	}

	data := templates.RoomListData{
		Username: sess.User.Username,
		Rooms:    entries,
	}
	if err := templates.RoomList(w, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

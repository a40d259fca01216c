package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dwalters/cardroom/internal/web/middleware"
	"github.com/dwalters/cardroom/internal/web/templates"
)

// RoomHandler serves the room/game page
type RoomHandler struct{}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler() *RoomHandler {
	return &RoomHandler{}
}

// View renders the room page. The page renders for any name; the socket's
// room:load is where an unknown room surfaces as an error.
func (h *RoomHandler) View(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	if sess.User == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	name := mux.Vars(r)["name"]

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := templates.RoomData{
		Username: sess.User.Username,
		Room:     name,
	}
	if err := templates.Room(w, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

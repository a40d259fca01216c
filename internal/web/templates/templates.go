// Package templates holds the server's HTML pages. The UI is deliberately
// thin: a login form, a room list, and the room shell the client-side game
// code mounts into.
package templates

import (
	"embed"
	"html/template"
	"io"
)

//go:embed *.html
var files embed.FS

var pages = template.Must(template.ParseFS(files, "*.html"))

// LoginData feeds the login page
type LoginData struct{}

// RoomListEntry is one row of the room list page
type RoomListEntry struct {
	Name     string
	GameType string
	Players  int
}

// RoomListData feeds the room selection page
type RoomListData struct {
	Username string
	Rooms    []RoomListEntry
}

// RoomData feeds the room/game page
type RoomData struct {
	Username string
	Room     string
}

// Login renders the login form
func Login(w io.Writer, data LoginData) error {
	return pages.ExecuteTemplate(w, "login.html", data)
}

// RoomList renders the room selection page
func RoomList(w io.Writer, data RoomListData) error {
	return pages.ExecuteTemplate(w, "rooms.html", data)
}

// Room renders the room/game page
func Room(w io.Writer, data RoomData) error {
	return pages.ExecuteTemplate(w, "room.html", data)
}

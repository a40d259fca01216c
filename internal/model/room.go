package model

import "time"

// RoomName is the unique, human-readable identifier for a room
type RoomName string

// Room groups players around one game instance. Rooms are seeded at startup
// and never deleted.
type Room struct {
	Name      RoomName
	GameType  string
	Game      string // opaque reference to the room's game instance
	CreatedAt time.Time
}

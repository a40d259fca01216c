package model

import "time"

// PlayerID uniquely identifies a player record
type PlayerID string

// Player is a user's participation in one room over the lifetime of one
// socket connection. It is created on room join and deleted on disconnect.
type Player struct {
	ID        PlayerID
	Name      string
	Room      RoomName
	User      UserID
	CreatedAt time.Time
}

// PublicPlayer is the subset of player fields shared with other clients
type PublicPlayer struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
}

// Public returns the player's client-visible fields
func (p *Player) Public() PublicPlayer {
	return PublicPlayer{
		ID:   p.ID,
		Name: p.Name,
	}
}

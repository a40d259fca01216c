package model

import "time"

// GameType is descriptive seed data naming a kind of card game.
// It carries no behavior; the rules engine is out of scope.
type GameType struct {
	Name      string
	CreatedAt time.Time
}

package storage

import (
	"context"

	"github.com/dwalters/cardroom/internal/model"
)

// Storage defines the interface for data persistence.
//
// The Ensure* operations are atomic check-and-create: they create the entity
// only if no entity with the same natural key exists, and report whether a
// create happened. Seeding relies on this to stay idempotent under
// concurrent startup calls.
type Storage interface {
	// User operations
	EnsureUser(ctx context.Context, user *model.User) (created bool, err error)
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Room operations
	EnsureRoom(ctx context.Context, room *model.Room) (created bool, err error)
	GetRoom(ctx context.Context, name model.RoomName) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error
	ListRoomPlayers(ctx context.Context, room model.RoomName) ([]*model.Player, error)

	// Game type operations
	EnsureGameType(ctx context.Context, gt *model.GameType) (created bool, err error)
	ListGameTypes(ctx context.Context) ([]*model.GameType, error)
}

// Package presence keeps socket connections, sessions, and persisted
// room/player state consistent: it creates a player when a user joins a room
// over a socket and tears the player down, with a broadcast to the rest of
// the room, when that socket closes.
package presence

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dwalters/cardroom/internal/dependencies/clock"
	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/storage"
)

// Socket is the coordinator's view of one live connection.
type Socket interface {
	// ID identifies the connection for logging
	ID() string
	// Deliver queues an event for this socket; false means it was dropped
	Deliver(event string, payload any) bool
	// OnClose registers fn to run when the socket closes. If the socket is
	// already closed, fn runs immediately; either way it runs exactly once.
	OnClose(fn func())
}

// Channel is a room-scoped broadcast group of sockets.
type Channel interface {
	Attach(s Socket)
	Detach(s Socket)
	Broadcast(event string, payload any)
}

// ChannelProvider hands out the broadcast channel for a room
type ChannelProvider interface {
	Channel(room model.RoomName) Channel
}

// EventPlayerDisconnected is broadcast to a room when a member's socket closes
const EventPlayerDisconnected = "app:player-disconnected"

// Join is the result of a successful room join. Players holds the members
// present before this join, for client UI population.
type Join struct {
	Room    *model.Room
	Player  *model.Player
	Players []*model.Player
}

// Coordinator implements the room join/leave flow
type Coordinator struct {
	storage  storage.Storage
	channels ChannelProvider
	clock    clock.Clock
	logger   *slog.Logger
}

// NewCoordinator creates a new presence Coordinator
func NewCoordinator(store storage.Storage, channels ChannelProvider, clk clock.Clock, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		storage:  store,
		channels: channels,
		clock:    clk,
		logger:   logger.With(slog.String("component", "presence")),
	}
}

// JoinRoom creates a player for user in the named room and subscribes sock to
// the room's broadcast channel. The player exists, the socket is subscribed,
// and the disconnect handler is registered before JoinRoom returns, so no
// broadcast can reference the player before its cleanup is in place. Any
// failure aborts the join without emitting a broadcast.
func (c *Coordinator) JoinRoom(ctx context.Context, sock Socket, name model.RoomName, user *model.User) (*Join, error) {
	room, err := c.storage.GetRoom(ctx, name)
	if err != nil {
		return nil, err
	}

	existing, err := c.storage.ListRoomPlayers(ctx, room.Name)
	if err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:        model.PlayerID(uuid.NewString()),
		Name:      user.Username,
		Room:      room.Name,
		User:      user.ID,
		CreatedAt: c.clock.Now(),
	}
	if err := c.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	channel := c.channels.Channel(room.Name)
	channel.Attach(sock)
	sock.OnClose(func() {
		c.leave(channel, sock, player)
	})

	c.logger.Info("player joined room",
		slog.String("room", string(room.Name)),
		slog.String("player", string(player.ID)),
		slog.String("socket", sock.ID()))

	return &Join{
		Room:    room,
		Player:  player,
		Players: existing,
	}, nil
}

// leave runs once per socket close. It detaches before broadcasting so the
// departing socket never receives its own disconnect notice.
func (c *Coordinator) leave(channel Channel, sock Socket, player *model.Player) {
	channel.Detach(sock)

	// The disconnect is real regardless of store state: log a failed delete
	// and still notify the room.
	if err := c.storage.DeletePlayer(context.Background(), player.ID); err != nil {
		c.logger.Error("could not delete player on disconnect",
			slog.String("player", string(player.ID)),
			slog.String("error", err.Error()))
	}

	channel.Broadcast(EventPlayerDisconnected, player.Public())

	c.logger.Info("player left room",
		slog.String("room", string(player.Room)),
		slog.String("player", string(player.ID)),
		slog.String("socket", sock.ID()))
}

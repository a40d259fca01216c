package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dwalters/cardroom/internal/dependencies/clock"
	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/storage"
)

// Service is the room registry: the process-wide mapping from room name to
// room state, backed by injected storage rather than a global map.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new registry Service
func New(store storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		clock:   clk,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Find returns the room with the given name
func (s *Service) Find(ctx context.Context, name model.RoomName) (*model.Room, error) {
	return s.storage.GetRoom(ctx, name)
}

// List returns all rooms
func (s *Service) List(ctx context.Context) ([]*model.Room, error) {
	return s.storage.ListRooms(ctx)
}

// EnsureSeeded creates any rooms from names that are absent from storage.
// It is idempotent and safe under concurrent startup calls: the storage
// Ensure primitive guarantees a name is created at most once. A failure on
// one room does not stop the others.
func (s *Service) EnsureSeeded(ctx context.Context, names []model.RoomName, gameType string) error {
	var errs []error
	for _, name := range names {
		room := &model.Room{
			Name:      name,
			GameType:  gameType,
			Game:      "game_" + uuid.NewString(),
			CreatedAt: s.clock.Now(),
		}
		created, err := s.storage.EnsureRoom(ctx, room)
		if err != nil {
			s.logger.Error("could not ensure room exists",
				slog.String("room", string(name)),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("room %q: %w", name, err))
			continue
		}
		if created {
			s.logger.Info("created room", slog.String("room", string(name)))
		}
	}
	return errors.Join(errs...)
}

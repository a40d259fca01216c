package seed

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dwalters/cardroom/internal/dependencies/clock"
	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/services/registry"
	"github.com/dwalters/cardroom/internal/storage"
)

// Config lists the entities guaranteed to exist after a boot
type Config struct {
	Users     []string
	Rooms     []string
	GameTypes []string
}

// DefaultConfig returns the stock set of users, rooms and game types
func DefaultConfig() Config {
	return Config{
		Users:     []string{"court", "dan", "elyse", "kurt"},
		Rooms:     []string{"cerf", "babbage", "lovelace", "dijkstra"},
		GameTypes: []string{"golf"},
	}
}

// Seeder creates the baseline entities at startup. Every operation is a
// check-and-create, so concurrent boots against a shared store converge
// on a single copy of each entity.
type Seeder struct {
	storage  storage.Storage
	registry *registry.Service
	clock    clock.Clock
	logger   *slog.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(store storage.Storage, reg *registry.Service, clk clock.Clock, logger *slog.Logger) *Seeder {
	return &Seeder{
		storage:  store,
		registry: reg,
		clock:    clk,
		logger:   logger.With(slog.String("component", "seed")),
	}
}

// Run seeds game types, users and rooms. A failure on one entity is
// logged and does not stop the rest; the last error is returned so the
// caller can decide whether to surface it.
func (s *Seeder) Run(ctx context.Context, cfg Config) error {
	var lastErr error

	for _, name := range cfg.GameTypes {
		created, err := s.storage.EnsureGameType(ctx, &model.GameType{
			Name:      name,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			s.logger.Error("could not seed game type",
				slog.String("game_type", name),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if created {
			s.logger.Info("seeded game type", slog.String("game_type", name))
		}
	}

	for _, username := range cfg.Users {
		created, err := s.storage.EnsureUser(ctx, &model.User{
			ID:        model.UserID("user_" + uuid.NewString()),
			Username:  username,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			s.logger.Error("could not seed user",
				slog.String("username", username),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if created {
			s.logger.Info("seeded user", slog.String("username", username))
		}
	}

	gameType := ""
	if len(cfg.GameTypes) > 0 {
		gameType = cfg.GameTypes[0]
	}

	names := make([]model.RoomName, 0, len(cfg.Rooms))
	for _, name := range cfg.Rooms {
		names = append(names, model.RoomName(name))
	}
	if err := s.registry.EnsureSeeded(ctx, names, gameType); err != nil {
		lastErr = err
	}

	return lastErr
}

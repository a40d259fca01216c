package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dwalters/cardroom/internal/dependencies/clock"
	"github.com/dwalters/cardroom/internal/seed"
	"github.com/dwalters/cardroom/internal/services/auth"
	"github.com/dwalters/cardroom/internal/services/presence"
	"github.com/dwalters/cardroom/internal/services/registry"
	"github.com/dwalters/cardroom/internal/session"
	"github.com/dwalters/cardroom/internal/storage"
	"github.com/dwalters/cardroom/internal/storage/memory"
	redisstorage "github.com/dwalters/cardroom/internal/storage/redis"
	"github.com/dwalters/cardroom/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Sessions
	Sessions session.Store

	// Services
	Auth     *auth.Service
	Registry *registry.Service
	Presence *presence.Coordinator
	Hubs     *ws.HubManager
	Gateway  *ws.Gateway
	Seeder   *seed.Seeder
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SessionConfig holds session behavior settings (optional)
	SessionConfig session.Config
	// SocketConfig holds socket gateway settings (optional)
	SocketConfig ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	return newWithDependencies(store, clk, cfg.SessionConfig, cfg.SocketConfig, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, sessionCfg session.Config, socketCfg ws.Config, logger *slog.Logger) *App {
	sessions := session.NewMemoryStore(clk, sessionCfg)

	authService := auth.New(store, sessions, logger)
	registryService := registry.New(store, clk, logger)
	hubs := ws.NewHubManager(logger)
	coordinator := presence.NewCoordinator(store, hubs, clk, logger)
	gateway := ws.NewGateway(sessions, coordinator, socketCfg, logger)
	seeder := seed.NewSeeder(store, registryService, clk, logger)

	return &App{
		Storage:  store,
		Clock:    clk,
		Sessions: sessions,
		Auth:     authService,
		Registry: registryService,
		Presence: coordinator,
		Hubs:     hubs,
		Gateway:  gateway,
		Seeder:   seeder,
	}
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection; an unreachable store at boot is fatal
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) EnsureUser(ctx context.Context, user *model.User) (bool, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return false, err
	}

	// Value first, claim last. The SETNX on the username index decides
	// creation, so a failure in between leaves only an unreferenced value
	// under a fresh ID that the next run replaces; a claim can never exist
	// without its value.
	if err := s.client.Set(ctx, userKey(user.ID), data, 0).Err(); err != nil {
		return false, err
	}

	claimed, err := s.client.SetNX(ctx, usernameIndexKey(user.Username), string(user.ID), 0).Result()
	if err != nil {
		return false, err
	}
	if !claimed {
		// Lost the race or already seeded: drop the now-orphaned value
		_ = s.client.Del(ctx, userKey(user.ID)).Err()
		return false, nil
	}
	return true, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	id, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(id))
}

// Room operations

func (s *Storage) EnsureRoom(ctx context.Context, room *model.Room) (bool, error) {
	data, err := json.Marshal(room)
	if err != nil {
		return false, err
	}

	// Index first, claim last. A dangling index member from an interrupted
	// run is skipped by ListRooms and repaired by the next run, whereas a
	// value written without its index member would stay invisible forever.
	if err := s.client.SAdd(ctx, roomsIndexKey(), string(room.Name)).Err(); err != nil {
		return false, err
	}

	created, err := s.client.SetNX(ctx, roomKey(room.Name), data, 0).Result()
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Storage) GetRoom(ctx context.Context, name model.RoomName) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	names, err := s.client.SMembers(ctx, roomsIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = roomKey(model.RoomName(name))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue // Skip invalid data
		}
		rooms = append(rooms, &room)
	}

	// Set members come back in arbitrary order
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	pKey := playerKey(player.ID)
	indexKey := roomPlayersIndexKey(player.Room)

	// Use pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, pKey, data, s.cfg.PlayerTTL)
	pipe.SAdd(ctx, indexKey, pKey)
	pipe.Expire(ctx, indexKey, s.cfg.PlayerTTL) // Keep index TTL in sync
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(id))
	pipe.SRem(ctx, roomPlayersIndexKey(player.Room), playerKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListRoomPlayers(ctx context.Context, room model.RoomName) ([]*model.Player, error) {
	playerKeys, err := s.client.SMembers(ctx, roomPlayersIndexKey(room)).Result()
	if err != nil {
		return nil, err
	}
	if len(playerKeys) == 0 {
		return []*model.Player{}, nil
	}

	values, err := s.client.MGet(ctx, playerKeys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var player model.Player
		if err := json.Unmarshal([]byte(val.(string)), &player); err != nil {
			continue
		}
		players = append(players, &player)
	}

	// Order by join time so earlier members list first
	sort.Slice(players, func(i, j int) bool {
		if players[i].CreatedAt.Equal(players[j].CreatedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

// Game type operations

func (s *Storage) EnsureGameType(ctx context.Context, gt *model.GameType) (bool, error) {
	data, err := json.Marshal(gt)
	if err != nil {
		return false, err
	}

	// Same index-first ordering as EnsureRoom, for the same repair property
	if err := s.client.SAdd(ctx, gameTypesIndexKey(), gt.Name).Err(); err != nil {
		return false, err
	}

	created, err := s.client.SetNX(ctx, gameTypeKey(gt.Name), data, 0).Result()
	if err != nil {
		return false, err
	}
	return created, nil
}

func (s *Storage) ListGameTypes(ctx context.Context) ([]*model.GameType, error) {
	names, err := s.client.SMembers(ctx, gameTypesIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []*model.GameType{}, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = gameTypeKey(name)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	types := make([]*model.GameType, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var gt model.GameType
		if err := json.Unmarshal([]byte(val.(string)), &gt); err != nil {
			continue
		}
		types = append(types, &gt)
	}
	return types, nil
}

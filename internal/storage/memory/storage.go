package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	rooms         map[model.RoomName]*model.Room
	players       map[model.PlayerID]*model.Player
	roomPlayers   map[model.RoomName]map[model.PlayerID]struct{}
	gameTypes     map[string]*model.GameType
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		rooms:         make(map[model.RoomName]*model.Room),
		players:       make(map[model.PlayerID]*model.Player),
		roomPlayers:   make(map[model.RoomName]map[model.PlayerID]struct{}),
		gameTypes:     make(map[string]*model.GameType),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) EnsureUser(ctx context.Context, user *model.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usernameIndex[user.Username]; ok {
		return false, nil
	}
	s.users[user.ID] = user
	s.usernameIndex[user.Username] = user.ID
	return true, nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// Room operations

func (s *Storage) EnsureRoom(ctx context.Context, room *model.Room) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Name]; ok {
		return false, nil
	}
	s.rooms[room.Name] = room
	return true, nil
}

func (s *Storage) GetRoom(ctx context.Context, name model.RoomName) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[name]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	if s.roomPlayers[player.Room] == nil {
		s.roomPlayers[player.Room] = make(map[model.PlayerID]struct{})
	}
	s.roomPlayers[player.Room][player.ID] = struct{}{}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil
	}
	delete(s.players, id)
	if idx, ok := s.roomPlayers[player.Room]; ok {
		delete(idx, id)
		if len(idx) == 0 {
			delete(s.roomPlayers, player.Room)
		}
	}
	return nil
}

func (s *Storage) ListRoomPlayers(ctx context.Context, room model.RoomName) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.roomPlayers[room]
	players := make([]*model.Player, 0, len(idx))
	for id := range idx {
		if player, ok := s.players[id]; ok {
			players = append(players, player)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].CreatedAt.Before(players[j].CreatedAt)
	})
	return players, nil
}

// Game type operations

func (s *Storage) EnsureGameType(ctx context.Context, gt *model.GameType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gameTypes[gt.Name]; ok {
		return false, nil
	}
	s.gameTypes[gt.Name] = gt
	return true, nil
}

func (s *Storage) ListGameTypes(ctx context.Context) ([]*model.GameType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]*model.GameType, 0, len(s.gameTypes))
	for _, gt := range s.gameTypes {
		types = append(types, gt)
	}
	sort.Slice(types, func(i, j int) bool {
		return types[i].Name < types[j].Name
	})
	return types, nil
}

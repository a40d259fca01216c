package redis

import (
	"fmt"

	"github.com/dwalters/cardroom/internal/model"
)

// Key prefix for all lobby data
const keyPrefix = "cardroom"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// roomKey returns the Redis key for a Room
func roomKey(name model.RoomName) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, name)
}

// roomsIndexKey returns the Redis key for the SET of all room names
func roomsIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// roomPlayersIndexKey returns the Redis key for the SET of player keys in a room
func roomPlayersIndexKey(room model.RoomName) string {
	return fmt.Sprintf("%s:idx:room_players:%s", keyPrefix, room)
}

// gameTypeKey returns the Redis key for a GameType
func gameTypeKey(name string) string {
	return fmt.Sprintf("%s:game_type:%s", keyPrefix, name)
}

// gameTypesIndexKey returns the Redis key for the SET of all game type names
func gameTypesIndexKey() string {
	return fmt.Sprintf("%s:idx:game_types", keyPrefix)
}

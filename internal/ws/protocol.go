package ws

import (
	"encoding/json"

	"github.com/dwalters/cardroom/internal/model"
)

// Channel events understood by the gateway
const (
	EventRoomLoad       = "room:load"
	EventModelSync      = "model:sync"
	EventCollectionSync = "collection:sync"
)

// request is a client-to-server frame. Data is event-specific.
type request struct {
	ID    int64           `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// response is the server's acknowledgment of a request. Exactly one of
// Error and Data is set.
type response struct {
	ID    int64      `json:"id"`
	Event string     `json:"event,omitempty"`
	Error *WireError `json:"error,omitempty"`
	Data  any        `json:"data,omitempty"`
}

// push is an unsolicited server-to-client frame (room broadcasts)
type push struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// roomLoadRequest is the data payload of a room:load request
type roomLoadRequest struct {
	Room string `json:"room"`
}

// roomPayload is the room projection in a room:load reply
type roomPayload struct {
	Name     model.RoomName `json:"name"`
	GameType string         `json:"game_type"`
	Game     string         `json:"game"`
}

// roomLoadReply is the data payload of a successful room:load ack.
// Players holds the members present before this join.
type roomLoadReply struct {
	Room    roomPayload          `json:"room"`
	Player  model.PublicPlayer   `json:"player"`
	Players []model.PublicPlayer `json:"players"`
}

package ws

import (
	"log/slog"
	"sync"

	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/services/presence"
)

// Hub is the broadcast channel for a single room. Broadcasts fan out to
// every attached socket's send buffer; a full buffer drops that socket's
// copy rather than blocking the sender.
type Hub struct {
	room   model.RoomName
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[presence.Socket]struct{}
}

// NewHub creates a Hub for a room
func NewHub(room model.RoomName, logger *slog.Logger) *Hub {
	return &Hub{
		room:        room,
		logger:      logger.With(slog.String("room", string(room))),
		subscribers: make(map[presence.Socket]struct{}),
	}
}

var _ presence.Channel = (*Hub)(nil)

// Attach subscribes a socket to this room's broadcasts
func (h *Hub) Attach(s presence.Socket) {
	h.mu.Lock()
	h.subscribers[s] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Info("socket subscribed",
		slog.String("socket", s.ID()),
		slog.Int("subscribers", count))
}

// Detach unsubscribes a socket
func (h *Hub) Detach(s presence.Socket) {
	h.mu.Lock()
	delete(h.subscribers, s)
	count := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Info("socket unsubscribed",
		slog.String("socket", s.ID()),
		slog.Int("subscribers", count))
}

// Broadcast sends an event to every subscribed socket
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for s := range h.subscribers {
		if !s.Deliver(event, payload) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("broadcast partially dropped",
			slog.String("event", event),
			slog.Int("dropped", dropped))
	}
}

// SubscriberCount returns the number of attached sockets
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// HubManager manages the hubs for all rooms
type HubManager struct {
	logger *slog.Logger

	mu   sync.RWMutex
	hubs map[model.RoomName]*Hub
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		logger: logger.With(slog.String("component", "ws")),
		hubs:   make(map[model.RoomName]*Hub),
	}
}

var _ presence.ChannelProvider = (*HubManager)(nil)

// Channel returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) Channel(room model.RoomName) presence.Channel {
	return m.hub(room)
}

// Hub returns the hub for a room, or nil if none exists yet
func (m *HubManager) Hub(room model.RoomName) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[room]
}

func (m *HubManager) hub(room model.RoomName) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[room]; ok {
		return hub
	}

	hub := NewHub(room, m.logger)
	m.hubs[room] = hub
	return hub
}

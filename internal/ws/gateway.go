// Package ws is the socket gateway: it authenticates websocket handshakes
// against the shared session store, attaches the resolved session to the
// connection, keeps that session alive while the socket is open, and routes
// channel events to the presence coordinator.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/services/presence"
	"github.com/dwalters/cardroom/internal/session"
)

// Config holds socket gateway settings
type Config struct {
	// KeepAlive is the interval between session touches per connection
	KeepAlive time.Duration
	// SendBuffer is the per-connection outbound frame buffer
	SendBuffer int
	// MaxMessageSize caps inbound frame size in bytes
	MaxMessageSize int64
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		KeepAlive:      60 * time.Second,
		SendBuffer:     256,
		MaxMessageSize: 4096,
	}
}

// Gateway upgrades and serves socket connections
type Gateway struct {
	sessions session.Store
	presence *presence.Coordinator
	upgrader websocket.Upgrader
	cfg      Config
	logger   *slog.Logger

	keepalives atomic.Int64
}

// NewGateway creates a new Gateway
func NewGateway(sessions session.Store, coordinator *presence.Coordinator, cfg Config, logger *slog.Logger) *Gateway {
	def := DefaultConfig()
	if cfg.KeepAlive == 0 {
		cfg.KeepAlive = def.KeepAlive
	}
	if cfg.SendBuffer == 0 {
		cfg.SendBuffer = def.SendBuffer
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	return &Gateway{
		sessions: sessions,
		presence: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		cfg:    cfg,
		logger: logger.With(slog.String("component", "gateway")),
	}
}

// ActiveKeepalives reports how many per-connection keep-alive loops are
// currently running. It returns to zero once every connection has closed.
func (g *Gateway) ActiveKeepalives() int {
	return int(g.keepalives.Load())
}

// ServeWS handles a websocket handshake. A missing cookie or unresolvable
// session rejects the handshake with 401; it never panics the process.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		g.logger.Info("handshake rejected, no session cookie",
			slog.String("remote", r.RemoteAddr))
		http.Error(w, "no session cookie", http.StatusUnauthorized)
		return
	}

	sess, err := g.sessions.Get(r.Context(), session.ID(cookie.Value))
	if err != nil {
		g.logger.Info("handshake rejected, session not found",
			slog.String("remote", r.RemoteAddr))
		http.Error(w, "invalid session", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response
		g.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(conn, sess, g)
	client.logger.Info("socket connected", slog.String("remote", r.RemoteAddr))

	g.keepalives.Add(1)
	go client.keepAlive(g.cfg.KeepAlive)
	go client.writePump()
	go client.readPump()
}

// dispatch routes one inbound frame and queues the acknowledgment
func (g *Gateway) dispatch(c *Client, raw []byte) {
	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		c.logger.Warn("unparseable frame", slog.String("error", err.Error()))
		c.reply(response{Error: toWireError(errInvalidPayload)})
		return
	}

	ctx := context.Background()

	switch req.Event {
	case EventRoomLoad:
		g.handleRoomLoad(ctx, c, req)

	case EventModelSync, EventCollectionSync:
		// Placeholder persistence protocol: acknowledge by echoing the data
		var data any
		if len(req.Data) > 0 {
			if err := json.Unmarshal(req.Data, &data); err != nil {
				c.reply(response{ID: req.ID, Event: req.Event, Error: toWireError(errInvalidPayload)})
				return
			}
		}
		c.reply(response{ID: req.ID, Event: req.Event, Data: data})

	default:
		c.logger.Warn("unknown event", slog.String("event", req.Event))
		c.reply(response{ID: req.ID, Event: req.Event, Error: toWireError(errUnknownEvent)})
	}
}

func (g *Gateway) handleRoomLoad(ctx context.Context, c *Client, req request) {
	fail := func(err error) {
		if !errors.Is(err, model.ErrRoomNotFound) {
			c.logger.Error("room load failed", slog.String("error", err.Error()))
		}
		c.reply(response{ID: req.ID, Event: req.Event, Error: toWireError(err)})
	}

	var body roomLoadRequest
	if err := json.Unmarshal(req.Data, &body); err != nil || body.Room == "" {
		fail(errInvalidPayload)
		return
	}

	// Re-resolve the session: a login over HTTP after the handshake must be
	// visible here, and the handshake snapshot is never shared across
	// goroutines.
	sess, err := g.sessions.Get(ctx, c.sess.ID)
	if err != nil {
		fail(err)
		return
	}
	if sess.User == nil {
		fail(errNotLoggedIn)
		return
	}

	join, err := g.presence.JoinRoom(ctx, c, model.RoomName(body.Room), sess.User)
	if err != nil {
		fail(err)
		return
	}

	players := make([]model.PublicPlayer, 0, len(join.Players))
	for _, p := range join.Players {
		players = append(players, p.Public())
	}

	c.reply(response{
		ID:    req.ID,
		Event: req.Event,
		Data: roomLoadReply{
			Room: roomPayload{
				Name:     join.Room.Name,
				GameType: join.Room.GameType,
				Game:     join.Room.Game,
			},
			Player:  join.Player.Public(),
			Players: players,
		},
	})
}

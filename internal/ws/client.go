package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dwalters/cardroom/internal/services/presence"
	"github.com/dwalters/cardroom/internal/session"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed between reads before the connection is considered dead
	pongWait = 60 * time.Second

	// Ping interval; must be shorter than pongWait
	pingPeriod = 54 * time.Second
)

// Client is one authenticated socket connection. It implements
// presence.Socket: the coordinator attaches it to room hubs and registers
// close hooks on it.
type Client struct {
	id   string
	conn *websocket.Conn
	// sess is the handshake-time snapshot; only its ID is read after the
	// upgrade, handlers re-resolve the session from the store
	sess    *session.Session
	gateway *Gateway
	send    chan []byte
	logger  *slog.Logger

	// done closes exactly once when the connection shuts down
	done      chan struct{}
	closeOnce sync.Once

	hookMu     sync.Mutex
	closed     bool
	closeHooks []func()
}

func newClient(conn *websocket.Conn, sess *session.Session, g *Gateway) *Client {
	id := uuid.NewString()
	return &Client{
		id:      id,
		conn:    conn,
		sess:    sess,
		gateway: g,
		send:    make(chan []byte, g.cfg.SendBuffer),
		logger: g.logger.With(
			slog.String("socket", id),
			slog.String("session", string(sess.ID))),
		done: make(chan struct{}),
	}
}

var _ presence.Socket = (*Client)(nil)

// ID identifies the connection
func (c *Client) ID() string {
	return c.id
}

// Deliver queues an event push for this socket. It never blocks: a full
// send buffer drops the frame and returns false.
func (c *Client) Deliver(event string, payload any) bool {
	msg, err := json.Marshal(push{Event: event, Data: payload})
	if err != nil {
		c.logger.Error("could not encode push", slog.String("event", event), slog.String("error", err.Error()))
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("push dropped, send buffer full", slog.String("event", event))
		return false
	}
}

// OnClose registers fn to run when the connection closes. Hooks run exactly
// once; registering on an already-closed client runs fn immediately, which
// closes the window where a socket disconnects between a player being
// persisted and its cleanup being registered.
func (c *Client) OnClose(fn func()) {
	c.hookMu.Lock()
	if c.closed {
		c.hookMu.Unlock()
		fn()
		return
	}
	c.closeHooks = append(c.closeHooks, fn)
	c.hookMu.Unlock()
}

// reply sends an acknowledgment frame for a request
func (c *Client) reply(resp response) {
	msg, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("could not encode reply", slog.String("error", err.Error()))
		return
	}

	select {
	case c.send <- msg:
	default:
		c.logger.Warn("reply dropped, send buffer full", slog.Int64("id", resp.ID))
	}
}

// shutdown tears the connection down: stops both pumps and the keep-alive,
// then fires the registered close hooks exactly once.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.hookMu.Lock()
		c.closed = true
		hooks := c.closeHooks
		c.closeHooks = nil
		c.hookMu.Unlock()

		close(c.done)
		_ = c.conn.Close()

		for _, fn := range hooks {
			fn()
		}

		c.logger.Info("socket disconnected")
	})
}

// readPump reads frames from the peer and dispatches them sequentially, so a
// join completes before any later frame from the same socket is handled.
func (c *Client) readPump() {
	defer c.shutdown()

	c.conn.SetReadLimit(c.gateway.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn("unexpected socket error", slog.String("error", err.Error()))
			}
			return
		}

		c.gateway.dispatch(c, raw)
	}
}

// writePump is the single writer on the connection; it forwards queued
// frames and keeps the transport alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.shutdown()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// keepAlive touches the HTTP session on a fixed interval while the socket is
// open, so socket-only activity keeps the session from expiring. The ticker
// stops when the connection closes; the gateway counts active loops so leaks
// are observable.
func (c *Client) keepAlive(interval time.Duration) {
	defer c.gateway.keepalives.Add(-1)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.gateway.sessions.Touch(context.Background(), c.sess.ID); err != nil {
				// Transient store errors must not kill the connection
				c.logger.Warn("session keep-alive failed", slog.String("error", err.Error()))
			}

		case <-c.done:
			return
		}
	}
}

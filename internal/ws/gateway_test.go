package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/dwalters/cardroom/internal/dependencies/clock"
	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/services/presence"
	"github.com/dwalters/cardroom/internal/session"
	"github.com/dwalters/cardroom/internal/storage/memory"
	"github.com/dwalters/cardroom/internal/testutil"
)

// countingSessions wraps a session store and counts Touch calls
type countingSessions struct {
	session.Store
	touches atomic.Int64
}

func (c *countingSessions) Touch(ctx context.Context, id session.ID) error {
	c.touches.Add(1)
	return c.Store.Touch(ctx, id)
}

type gatewayFixture struct {
	gateway  *Gateway
	sessions *countingSessions
	storage  *memory.Storage
	server   *httptest.Server
	user     *model.User
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	store := memory.New()
	clk := clock.New()
	ctx := context.Background()

	user := &model.User{ID: "user-1", Username: "court", CreatedAt: clk.Now()}
	_, err := store.EnsureUser(ctx, user)
	require.NoError(t, err)

	_, err = store.EnsureRoom(ctx, &model.Room{
		Name: "cerf", GameType: "golf", Game: "game-1", CreatedAt: clk.Now(),
	})
	require.NoError(t, err)

	logger := testutil.NopLogger()
	sessions := &countingSessions{Store: session.NewMemoryStore(clk, session.DefaultConfig())}
	hubs := NewHubManager(logger)
	coordinator := presence.NewCoordinator(store, hubs, clk, logger)

	cfg := DefaultConfig()
	cfg.KeepAlive = 15 * time.Millisecond

	gateway := NewGateway(sessions, coordinator, cfg, logger)
	server := httptest.NewServer(http.HandlerFunc(gateway.ServeWS))
	t.Cleanup(server.Close)

	return &gatewayFixture{
		gateway:  gateway,
		sessions: sessions,
		storage:  store,
		server:   server,
		user:     user,
	}
}

func (f *gatewayFixture) socketURL() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

// loginSession creates a session already bound to the fixture user
func (f *gatewayFixture) loginSession(t *testing.T) *session.Session {
	t.Helper()

	sess, err := f.sessions.Create(context.Background())
	require.NoError(t, err)
	sess.User = f.user
	require.NoError(t, f.sessions.Save(context.Background(), sess))
	return sess
}

func (f *gatewayFixture) dial(t *testing.T, sess *session.Session) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Cookie", (&http.Cookie{Name: session.CookieName, Value: string(sess.ID)}).String())

	conn, resp, err := websocket.DefaultDialer.Dial(f.socketURL(), header)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// frame is a loosely typed inbound frame for assertions
type frame struct {
	ID    int64           `json:"id"`
	Event string          `json:"event"`
	Error *WireError      `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var f frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func sendRequest(t *testing.T, conn *websocket.Conn, id int64, event string, data any) {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(request{ID: id, Event: event, Data: payload}))
}

func TestHandshakeRejectedWithoutCookie(t *testing.T) {
	f := newGatewayFixture(t)

	conn, resp, err := websocket.DefaultDialer.Dial(f.socketURL(), nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeRejectedWithUnknownSession(t *testing.T) {
	f := newGatewayFixture(t)

	header := http.Header{}
	header.Set("Cookie", (&http.Cookie{Name: session.CookieName, Value: "sess_bogus"}).String())

	conn, resp, err := websocket.DefaultDialer.Dial(f.socketURL(), header)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, resp)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoomLoad(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t, f.loginSession(t))

	sendRequest(t, conn, 1, EventRoomLoad, roomLoadRequest{Room: "cerf"})

	ack := readFrame(t, conn)
	require.Equal(t, int64(1), ack.ID)
	require.Equal(t, EventRoomLoad, ack.Event)
	require.Nil(t, ack.Error)

	var reply roomLoadReply
	require.NoError(t, json.Unmarshal(ack.Data, &reply))
	require.Equal(t, model.RoomName("cerf"), reply.Room.Name)
	require.Equal(t, "golf", reply.Room.GameType)
	require.Equal(t, "court", reply.Player.Name)
	require.Empty(t, reply.Players)
}

func TestRoomLoadUnknownRoom(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t, f.loginSession(t))

	sendRequest(t, conn, 1, EventRoomLoad, roomLoadRequest{Room: "turing"})

	ack := readFrame(t, conn)
	require.NotNil(t, ack.Error)
	require.Equal(t, SeverityFatal, ack.Error.Severity)
	require.Equal(t, TypeRoomNotFound, ack.Error.Type)
}

func TestRoomLoadWithoutLogin(t *testing.T) {
	f := newGatewayFixture(t)

	sess, err := f.sessions.Create(context.Background())
	require.NoError(t, err)
	conn := f.dial(t, sess)

	sendRequest(t, conn, 1, EventRoomLoad, roomLoadRequest{Room: "cerf"})

	ack := readFrame(t, conn)
	require.NotNil(t, ack.Error)
	require.Equal(t, SeverityFatal, ack.Error.Severity)
	require.Equal(t, TypeAuthRejected, ack.Error.Type)
}

func TestSecondJoinerSeesFirst(t *testing.T) {
	f := newGatewayFixture(t)

	first := f.dial(t, f.loginSession(t))
	sendRequest(t, first, 1, EventRoomLoad, roomLoadRequest{Room: "cerf"})
	firstAck := readFrame(t, first)
	require.Nil(t, firstAck.Error)

	var firstReply roomLoadReply
	require.NoError(t, json.Unmarshal(firstAck.Data, &firstReply))

	second := f.dial(t, f.loginSession(t))
	sendRequest(t, second, 1, EventRoomLoad, roomLoadRequest{Room: "cerf"})
	secondAck := readFrame(t, second)
	require.Nil(t, secondAck.Error)

	var secondReply roomLoadReply
	require.NoError(t, json.Unmarshal(secondAck.Data, &secondReply))
	require.Len(t, secondReply.Players, 1)
	require.Equal(t, firstReply.Player.ID, secondReply.Players[0].ID)
}

func TestDisconnectBroadcast(t *testing.T) {
	f := newGatewayFixture(t)

	staying := f.dial(t, f.loginSession(t))
	sendRequest(t, staying, 1, EventRoomLoad, roomLoadRequest{Room: "cerf"})
	require.Nil(t, readFrame(t, staying).Error)

	leaving := f.dial(t, f.loginSession(t))
	sendRequest(t, leaving, 1, EventRoomLoad, roomLoadRequest{Room: "cerf"})
	leavingAck := readFrame(t, leaving)
	require.Nil(t, leavingAck.Error)

	var leavingReply roomLoadReply
	require.NoError(t, json.Unmarshal(leavingAck.Data, &leavingReply))

	require.NoError(t, leaving.Close())

	notice := readFrame(t, staying)
	require.Equal(t, presence.EventPlayerDisconnected, notice.Event)

	var gone model.PublicPlayer
	require.NoError(t, json.Unmarshal(notice.Data, &gone))
	require.Equal(t, leavingReply.Player.ID, gone.ID)

	// The departed player is removed from storage
	require.Eventually(t, func() bool {
		players, err := f.storage.ListRoomPlayers(context.Background(), "cerf")
		return err == nil && len(players) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestModelSyncEchoes(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t, f.loginSession(t))

	sendRequest(t, conn, 7, EventModelSync, map[string]any{"card": "4H"})

	ack := readFrame(t, conn)
	require.Equal(t, int64(7), ack.ID)
	require.Equal(t, EventModelSync, ack.Event)
	require.Nil(t, ack.Error)
	require.JSONEq(t, `{"card":"4H"}`, string(ack.Data))
}

func TestUnknownEvent(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t, f.loginSession(t))

	sendRequest(t, conn, 3, "game:deal", nil)

	ack := readFrame(t, conn)
	require.NotNil(t, ack.Error)
	require.Equal(t, SeverityError, ack.Error.Severity)
	require.Equal(t, TypeValidationFailure, ack.Error.Type)
}

func TestMalformedFrame(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t, f.loginSession(t))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	ack := readFrame(t, conn)
	require.NotNil(t, ack.Error)
	require.Equal(t, TypeValidationFailure, ack.Error.Type)
}

func TestKeepAliveTouchesSession(t *testing.T) {
	f := newGatewayFixture(t)
	conn := f.dial(t, f.loginSession(t))
	defer func() { _ = conn.Close() }()

	require.Eventually(t, func() bool {
		return f.sessions.touches.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestKeepAliveStopsOnDisconnect(t *testing.T) {
	f := newGatewayFixture(t)

	first := f.dial(t, f.loginSession(t))
	second := f.dial(t, f.loginSession(t))

	require.Eventually(t, func() bool {
		return f.gateway.ActiveKeepalives() == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, first.Close())
	require.NoError(t, second.Close())

	require.Eventually(t, func() bool {
		return f.gateway.ActiveKeepalives() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoginAfterConnectIsVisible(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	sess, err := f.sessions.Create(ctx)
	require.NoError(t, err)
	conn := f.dial(t, sess)

	sendRequest(t, conn, 1, EventRoomLoad, roomLoadRequest{Room: "cerf"})
	ack := readFrame(t, conn)
	require.NotNil(t, ack.Error)
	require.Equal(t, TypeAuthRejected, ack.Error.Type)

	// Log in over the store, as the HTTP handler does, with the socket open
	cur, err := f.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	cur.User = f.user
	require.NoError(t, f.sessions.Save(ctx, cur))

	sendRequest(t, conn, 2, EventRoomLoad, roomLoadRequest{Room: "cerf"})
	ack = readFrame(t, conn)
	require.Equal(t, int64(2), ack.ID)
	require.Nil(t, ack.Error)

	var reply roomLoadReply
	require.NoError(t, json.Unmarshal(ack.Data, &reply))
	require.Equal(t, "court", reply.Player.Name)
}

func TestConcurrentLoginAndRoomLoad(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	sess, err := f.sessions.Create(ctx)
	require.NoError(t, err)
	conn := f.dial(t, sess)

	done := make(chan struct{})
	go func() {
		defer close(done)
		cur, err := f.sessions.Get(ctx, sess.ID)
		if err != nil {
			return
		}
		cur.User = f.user
		_ = f.sessions.Save(ctx, cur)
	}()

	// Hammer the socket while the login lands; every ack is either a clean
	// join or an auth rejection, never a torn read
	const frames = 20
	for i := int64(1); i <= frames; i++ {
		sendRequest(t, conn, i, EventRoomLoad, roomLoadRequest{Room: "cerf"})
		ack := readFrame(t, conn)
		require.Equal(t, i, ack.ID)
		if ack.Error != nil {
			require.Equal(t, TypeAuthRejected, ack.Error.Type)
		}
	}

	<-done

	sendRequest(t, conn, frames+1, EventRoomLoad, roomLoadRequest{Room: "cerf"})
	ack := readFrame(t, conn)
	require.Nil(t, ack.Error)
}

func TestConfigDefaultsFillUnsetFields(t *testing.T) {
	g := NewGateway(nil, nil, Config{KeepAlive: time.Minute}, testutil.NopLogger())

	def := DefaultConfig()
	require.Equal(t, time.Minute, g.cfg.KeepAlive)
	require.Equal(t, def.SendBuffer, g.cfg.SendBuffer)
	require.Equal(t, def.MaxMessageSize, g.cfg.MaxMessageSize)

	g = NewGateway(nil, nil, Config{SendBuffer: 8}, testutil.NopLogger())
	require.Equal(t, def.KeepAlive, g.cfg.KeepAlive)
	require.Equal(t, 8, g.cfg.SendBuffer)
	require.Equal(t, def.MaxMessageSize, g.cfg.MaxMessageSize)
}

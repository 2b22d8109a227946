package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/CallRelay/internal/application/config"
	"github.com/qrave1/CallRelay/internal/application/constant"
	"github.com/qrave1/CallRelay/internal/domain/events"
	"github.com/qrave1/CallRelay/internal/infra/adapters/memory"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/handlers"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/server"
	"github.com/qrave1/CallRelay/internal/usecase"
)

type testApp struct {
	srv       *httptest.Server
	registry  memory.ConnectionRegistry
	directory memory.RoomDirectory
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		AllowedOrigin: "*",
		StaticDir:     t.TempDir(),
		Relay:         config.RelayConfig{RoomCapacity: 2, QueueSize: 64},
		WS: config.WebsocketConfig{
			SendBuffer:     64,
			MaxMessageSize: 64 * 1024,
			PingInterval:   time.Hour,
			PongWait:       2 * time.Hour,
			WriteWait:      time.Second,
		},
		StunURLs: []string{"stun:stun.example.org:3478"},
	}
}

// newTestApp собирает приложение так же, как это делает cmd, но на httptest сервере
func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	registry := memory.NewConnectionRegistry()
	directory := memory.NewRoomDirectory()
	wsRepo := memory.NewWSConnectionRepository(cfg.WS)

	presence := usecase.NewPresenceUsecase(directory, wsRepo)
	router := usecase.NewSignalingUsecase(cfg.Relay, registry, directory, wsRepo, presence)

	ctx, cancel := context.WithCancel(context.Background())
	go router.Run(ctx)

	e := server.New(
		cfg,
		handlers.NewPagesHandler(cfg.StaticDir),
		handlers.NewIceHandler(cfg),
		handlers.NewReportHandler(),
		handlers.NewStatsHandler(registry, directory),
		handlers.NewWebSocketHandler(cfg, router, wsRepo),
	)

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return &testApp{srv: srv, registry: registry, directory: directory}
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   uuid.UUID
}

func (a *testApp) dial(t *testing.T) *wsClient {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(a.srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &wsClient{t: t, conn: conn}

	connected := readData[events.ConnectedEvent](t, c.expect(constant.EventConnected))
	require.NotEqual(t, uuid.Nil, connected.ConnectionID)
	c.id = connected.ConnectionID

	return c
}

func (c *wsClient) send(eventType string, data any) {
	c.t.Helper()

	msg, err := events.New(eventType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *wsClient) sendRaw(raw string) {
	c.t.Helper()

	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func (c *wsClient) read() events.Message {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	var msg events.Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))

	return msg
}

func (c *wsClient) expect(eventType string) events.Message {
	c.t.Helper()

	msg := c.read()
	require.Equal(c.t, eventType, msg.Type, "data: %s", msg.Data)

	return msg
}

func (c *wsClient) join(roomID, userID string) events.RoomJoinedEvent {
	c.t.Helper()

	c.send(constant.EventJoinRoom, events.JoinRoomEvent{RoomID: roomID, UserID: userID})

	return readData[events.RoomJoinedEvent](c.t, c.expect(constant.EventRoomJoined))
}

func readData[T any](t *testing.T, msg events.Message) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))

	return v
}

func TestWebSocket_TwoPeerCall(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	alice := app.dial(t)
	joined := alice.join("r1", "alice")
	assert.Equal(t, events.RoomJoinedEvent{RoomID: "r1", Members: 1}, joined)

	bob := app.dial(t)
	joined = bob.join("r1", "bob")
	assert.Equal(t, 2, joined.Members)

	presence := readData[events.PresenceEvent](t, alice.expect(constant.EventUserConnected))
	assert.Equal(t, "bob", presence.UserID)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	alice.send(constant.EventOffer, events.OfferEvent{RoomID: "r1", Offer: offer})

	gotOffer := readData[events.ForwardedOffer](t, bob.expect(constant.EventOffer))
	assert.JSONEq(t, string(offer), string(gotOffer.Offer))
	assert.Equal(t, alice.id, gotOffer.SenderID)

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	bob.send(constant.EventAnswer, events.AnswerEvent{RoomID: "r1", Answer: answer})

	gotAnswer := readData[events.ForwardedAnswer](t, alice.expect(constant.EventAnswer))
	assert.JSONEq(t, string(answer), string(gotAnswer.Answer))
	assert.Equal(t, bob.id, gotAnswer.SenderID)

	candidate := json.RawMessage(`{"candidate":"candidate:1 1 udp 2122260223 10.0.0.1 50000 typ host","sdpMid":"0"}`)
	alice.send(constant.EventIceCandidate, events.IceCandidateEvent{RoomID: "r1", Candidate: candidate})

	gotCandidate := readData[events.ForwardedIceCandidate](t, bob.expect(constant.EventIceCandidate))
	assert.JSONEq(t, string(candidate), string(gotCandidate.Candidate))

	require.NoError(t, alice.conn.Close())

	left := readData[events.PresenceEvent](t, bob.expect(constant.EventUserDisconnected))
	assert.Equal(t, "alice", left.UserID)

	assert.Eventually(t, func() bool {
		return app.registry.Count() == 1 && app.directory.Size("r1") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocket_IceCandidatesKeepOrder(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	alice, bob := app.dial(t), app.dial(t)
	alice.join("r1", "alice")
	bob.join("r1", "bob")
	alice.expect(constant.EventUserConnected)

	for i := 0; i < 20; i++ {
		alice.send(constant.EventIceCandidate, events.IceCandidateEvent{
			RoomID:    "r1",
			Candidate: json.RawMessage(`{"seq":` + strings.Repeat("1", i+1) + `}`),
		})
	}

	for i := 0; i < 20; i++ {
		got := readData[events.ForwardedIceCandidate](t, bob.expect(constant.EventIceCandidate))
		assert.JSONEq(t, `{"seq":`+strings.Repeat("1", i+1)+`}`, string(got.Candidate))
	}
}

func TestWebSocket_ThirdPeerRejected(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	app.dial(t).join("r1", "alice")
	app.dial(t).join("r1", "bob")

	eve := app.dial(t)
	eve.send(constant.EventJoinRoom, events.JoinRoomEvent{RoomID: "r1", UserID: "eve"})

	rejected := readData[events.ErrorEvent](t, eve.expect(constant.EventError))
	assert.Equal(t, "room is full", rejected.Message)
	assert.Equal(t, 2, app.directory.Size("r1"))
}

func TestWebSocket_MalformedMessageKeepsConnection(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	c := app.dial(t)

	c.sendRaw(`{not json`)
	bad := readData[events.ErrorEvent](t, c.expect(constant.EventError))
	assert.Equal(t, "invalid message", bad.Message)

	c.send("teleport", nil)
	unknown := readData[events.ErrorEvent](t, c.expect(constant.EventError))
	assert.Contains(t, unknown.Message, "unknown message type")

	c.send(constant.EventJoinRoom, json.RawMessage(`"not an object"`))
	assert.Equal(t, constant.EventError, c.read().Type)

	// клиентские ошибки только логируются, ответа нет
	c.send(constant.EventError, map[string]string{"error": "camera denied"})

	c.send(constant.EventPing, nil)
	c.expect(constant.EventPong)
}

func TestWebSocket_SignalWithoutPeersIsDropped(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	c := app.dial(t)
	c.send(constant.EventOffer, events.OfferEvent{RoomID: "ghost", Offer: json.RawMessage(`{}`)})

	// следующее сообщение - pong, значит offer никуда не ушёл и не сломал соединение
	c.send(constant.EventPing, nil)
	c.expect(constant.EventPong)

	assert.Equal(t, 0, app.directory.RoomCount())
}

func TestWebSocket_OriginCheck(t *testing.T) {
	cfg := testConfig(t)
	cfg.AllowedOrigin = "https://calls.example.org"

	app := newTestApp(t, cfg)
	url := "ws" + strings.TrimPrefix(app.srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.org"}})
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://calls.example.org"}})
	require.NoError(t, err)
	_ = conn.Close()
}

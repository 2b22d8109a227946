package memory

import (
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
)

func testWSConfig() config.WebsocketConfig {
	return config.WebsocketConfig{
		SendBuffer:   8,
		PingInterval: time.Hour,
		PongWait:     2 * time.Hour,
		WriteWait:    time.Second,
	}
}

// serveRepo поднимает сервер, который кладёт соединение в repo под новым id
func serveRepo(t *testing.T, repo WebsocketConnectionRepository) (*websocket.Conn, uuid.UUID) {
	t.Helper()

	id := uuid.New()
	added := make(chan struct{})

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		repo.Add(id, conn)
		close(added)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case <-added:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server side connection")
	}

	return client, id
}

func TestWSRepository_WritePreservesOrder(t *testing.T) {
	repo := NewWSConnectionRepository(testWSConfig())
	client, id := serveRepo(t, repo)

	for i := 0; i < 5; i++ {
		repo.Write(id, map[string]int{"seq": i})
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 5; i++ {
		var got map[string]int
		require.NoError(t, client.ReadJSON(&got))
		assert.Equal(t, i, got["seq"])
	}

	assert.Equal(t, []uuid.UUID{id}, repo.GetAllConnected())
}

func TestWSRepository_RemoveClosesConnection(t *testing.T) {
	repo := NewWSConnectionRepository(testWSConfig())
	client, id := serveRepo(t, repo)

	repo.Remove(id)
	repo.Remove(id)

	// после удаления запись молча отбрасывается
	repo.Write(id, map[string]string{"late": "message"})

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure),
		"unexpected error: %v", err)

	assert.Empty(t, repo.GetAllConnected())
}

func TestWSRepository_WriteToUnknownIsDropped(t *testing.T) {
	repo := NewWSConnectionRepository(testWSConfig())

	assert.NotPanics(t, func() {
		repo.Write(uuid.New(), "nobody")
	})
}

func TestWSRepository_SendsPings(t *testing.T) {
	cfg := testWSConfig()
	cfg.PingInterval = 20 * time.Millisecond

	repo := NewWSConnectionRepository(cfg)
	client, _ := serveRepo(t, repo)

	pinged := make(chan struct{}, 1)
	client.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})

	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for ping")
	}
}

package usecase

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/CallRelay/internal/domain/events"
)

// recordingWS запоминает всё, что роутер отправил каждому соединению
type recordingWS struct {
	sent map[uuid.UUID][]events.Message
	mu   sync.Mutex
}

func newRecordingWS() *recordingWS {
	return &recordingWS{sent: make(map[uuid.UUID][]events.Message)}
}

func (r *recordingWS) Add(uuid.UUID, *websocket.Conn) {}

func (r *recordingWS) Remove(uuid.UUID) {}

func (r *recordingWS) Write(connID uuid.UUID, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent[connID] = append(r.sent[connID], payload.(events.Message))
}

func (r *recordingWS) GetAllConnected() []uuid.UUID { return nil }

func (r *recordingWS) messages(connID uuid.UUID) []events.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]events.Message(nil), r.sent[connID]...)
}

// ofType возвращает только сообщения указанного типа
func (r *recordingWS) ofType(connID uuid.UUID, eventType string) []events.Message {
	var out []events.Message
	for _, msg := range r.messages(connID) {
		if msg.Type == eventType {
			out = append(out, msg)
		}
	}

	return out
}

func (r *recordingWS) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = make(map[uuid.UUID][]events.Message)
}

func decode[T any](t *testing.T, msg events.Message) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))

	return v
}

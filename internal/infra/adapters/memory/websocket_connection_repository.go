package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qrave1/CallRelay/internal/application/config"
	"github.com/qrave1/CallRelay/internal/application/constant"
	"github.com/qrave1/CallRelay/internal/application/metric"
)

// WebsocketConnectionRepository интерфейс для работы с активными сессиями в памяти.
// Write не блокируется: сообщение кладётся в очередь соединения, если соединения
// нет или очередь переполнена - сообщение отбрасывается.
type WebsocketConnectionRepository interface {
	Add(uuid.UUID, *websocket.Conn)
	Remove(uuid uuid.UUID)

	Write(uuid.UUID, any)
	GetAllConnected() []uuid.UUID
}

// queuedWS - соединение с очередью на запись. Писать в conn может только writePump.
type queuedWS struct {
	conn *websocket.Conn
	send chan any
}

type wsConnectionRepository struct {
	cfg config.WebsocketConfig

	// wsConns хранит map[connection_id]*queuedWS
	wsConns map[uuid.UUID]*queuedWS

	mu sync.RWMutex
}

func NewWSConnectionRepository(cfg config.WebsocketConfig) WebsocketConnectionRepository {
	return &wsConnectionRepository{
		cfg:     cfg,
		wsConns: make(map[uuid.UUID]*queuedWS, 10),
	}
}

func (w *wsConnectionRepository) Add(connID uuid.UUID, conn *websocket.Conn) {
	qws := &queuedWS{
		conn: conn,
		send: make(chan any, w.cfg.SendBuffer),
	}

	w.mu.Lock()
	if prev, exists := w.wsConns[connID]; exists {
		close(prev.send)
	} else {
		metric.IncrementWSActiveConnections()
	}
	w.wsConns[connID] = qws
	w.mu.Unlock()

	go w.writePump(connID, qws)
}

func (w *wsConnectionRepository) Remove(connID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	qws, exists := w.wsConns[connID]
	if !exists {
		return
	}

	delete(w.wsConns, connID)
	close(qws.send)

	metric.DecrementWSActiveConnections()
}

func (w *wsConnectionRepository) Write(connID uuid.UUID, payload any) {
	// Отправка под RLock, закрытие канала под Lock: send в закрытый канал невозможен
	w.mu.RLock()
	defer w.mu.RUnlock()

	qws, ok := w.wsConns[connID]
	if !ok {
		metric.RecordDroppedMessage()
		slog.Debug("drop message for unknown connection", slog.Any(constant.ConnectionID, connID))

		return
	}

	select {
	case qws.send <- payload:
	default:
		metric.RecordDroppedMessage()
		slog.Warn("send queue is full, message dropped", slog.Any(constant.ConnectionID, connID))
	}
}

func (w *wsConnectionRepository) GetAllConnected() []uuid.UUID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	connIDs := make([]uuid.UUID, 0, len(w.wsConns))

	for connID := range w.wsConns {
		connIDs = append(connIDs, connID)
	}

	return connIDs
}

// writePump единственный писатель в соединение: сообщения из очереди и ping
func (w *wsConnectionRepository) writePump(connID uuid.UUID, qws *queuedWS) {
	ticker := time.NewTicker(w.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-qws.send:
			_ = qws.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteWait))

			if !ok {
				_ = qws.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := qws.conn.WriteJSON(payload); err != nil {
				slog.Error(
					"write to websocket",
					slog.Any(constant.Error, err),
					slog.Any(constant.ConnectionID, connID),
				)

				// Соединение мертво, дальше всё пойдёт в переполненную очередь и будет отброшено
				_ = qws.conn.Close()
				return
			}

		case <-ticker.C:
			_ = qws.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteWait))

			if err := qws.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("ping failed", slog.Any(constant.Error, err), slog.Any(constant.ConnectionID, connID))

				_ = qws.conn.Close()
				return
			}
		}
	}
}

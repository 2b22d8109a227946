package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/CallRelay/internal/domain"
)

// ConnectionRegistry хранит состояние каждого живого соединения.
// Все операции над неизвестным id - no-op.
type ConnectionRegistry interface {
	Register(connID uuid.UUID)

	// Unregister удаляет соединение и возвращает его последнее состояние
	Unregister(connID uuid.UUID) (domain.Connection, bool)

	SetRoom(connID uuid.UUID, roomID, userID string)
	ClearRoom(connID uuid.UUID)

	Get(connID uuid.UUID) (domain.Connection, bool)
	Count() int
}

type connectionRegistry struct {
	conns map[uuid.UUID]domain.Connection
	now   func() time.Time

	mu sync.RWMutex
}

func NewConnectionRegistry() ConnectionRegistry {
	return &connectionRegistry{
		conns: make(map[uuid.UUID]domain.Connection),
		now:   time.Now,
	}
}

func (r *connectionRegistry) Register(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[connID]; exists {
		return
	}

	r.conns[connID] = domain.Connection{ID: connID, ConnectedAt: r.now()}
}

func (r *connectionRegistry) Unregister(connID uuid.UUID) (domain.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return domain.Connection{}, false
	}

	delete(r.conns, connID)

	return conn, true
}

func (r *connectionRegistry) SetRoom(connID uuid.UUID, roomID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return
	}

	conn.RoomID = roomID
	conn.UserID = userID
	r.conns[connID] = conn
}

func (r *connectionRegistry) ClearRoom(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, exists := r.conns[connID]
	if !exists {
		return
	}

	conn.RoomID = ""
	r.conns[connID] = conn
}

func (r *connectionRegistry) Get(connID uuid.UUID) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.conns[connID]

	return conn, exists
}

func (r *connectionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

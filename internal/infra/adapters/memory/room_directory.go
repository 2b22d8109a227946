package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/qrave1/CallRelay/internal/application/metric"
)

// RoomDirectory хранит map[room_id]set[connection_id].
// Пустые комнаты удаляются сразу.
type RoomDirectory interface {
	// Join добавляет участника, false если он уже был в комнате
	Join(roomID string, connID uuid.UUID) bool

	// Leave удаляет участника, false если его не было в комнате
	Leave(roomID string, connID uuid.UUID) bool

	// MembersExcept возвращает остальных участников комнаты, порядок не определён
	MembersExcept(roomID string, connID uuid.UUID) []uuid.UUID

	Members(roomID string) []uuid.UUID
	Size(roomID string) int
	RoomCount() int
}

type roomDirectory struct {
	rooms map[string]map[uuid.UUID]struct{}
	mu    sync.RWMutex
}

func NewRoomDirectory() RoomDirectory {
	return &roomDirectory{
		rooms: make(map[string]map[uuid.UUID]struct{}),
	}
}

func (d *roomDirectory) Join(roomID string, connID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]struct{}, 2)
		d.rooms[roomID] = members

		metric.SetActiveRooms(len(d.rooms))
	}

	if _, exists := members[connID]; exists {
		return false
	}

	members[connID] = struct{}{}

	return true
}

func (d *roomDirectory) Leave(roomID string, connID uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomID]
	if !ok {
		return false
	}

	if _, exists := members[connID]; !exists {
		return false
	}

	delete(members, connID)

	if len(members) == 0 {
		delete(d.rooms, roomID)

		metric.SetActiveRooms(len(d.rooms))
	}

	return true
}

func (d *roomDirectory) MembersExcept(roomID string, connID uuid.UUID) []uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := d.rooms[roomID]
	if len(members) == 0 {
		return nil
	}

	others := make([]uuid.UUID, 0, len(members))

	for member := range members {
		if member == connID {
			continue
		}

		others = append(others, member)
	}

	return others
}

func (d *roomDirectory) Members(roomID string) []uuid.UUID {
	return d.MembersExcept(roomID, uuid.Nil)
}

func (d *roomDirectory) Size(roomID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms[roomID])
}

func (d *roomDirectory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.rooms)
}

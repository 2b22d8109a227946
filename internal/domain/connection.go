package domain

import (
	"time"

	"github.com/google/uuid"
)

// Connection - состояние одного живого websocket соединения
type Connection struct {
	ID          uuid.UUID
	RoomID      string
	UserID      string
	ConnectedAt time.Time
}

func (c Connection) InRoom() bool {
	return c.RoomID != ""
}

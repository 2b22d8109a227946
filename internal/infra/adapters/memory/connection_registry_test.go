package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRegistry_RegisterUnregister(t *testing.T) {
	r := NewConnectionRegistry()
	id := uuid.New()

	r.Register(id)
	r.SetRoom(id, "r1", "alice")

	conn, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, "r1", conn.RoomID)
	assert.Equal(t, "alice", conn.UserID)
	assert.False(t, conn.ConnectedAt.IsZero())

	last, ok := r.Unregister(id)
	require.True(t, ok)
	assert.Equal(t, "r1", last.RoomID)
	assert.Equal(t, "alice", last.UserID)

	_, ok = r.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestConnectionRegistry_UnknownIsNoop(t *testing.T) {
	r := NewConnectionRegistry()
	id := uuid.New()

	_, ok := r.Unregister(id)
	assert.False(t, ok)

	r.SetRoom(id, "r1", "ghost")
	r.ClearRoom(id)

	_, ok = r.Get(id)
	assert.False(t, ok)
}

func TestConnectionRegistry_RegisterTwiceKeepsState(t *testing.T) {
	reg := NewConnectionRegistry().(*connectionRegistry)
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return first }

	id := uuid.New()
	reg.Register(id)
	reg.SetRoom(id, "r1", "alice")

	reg.now = func() time.Time { return first.Add(time.Hour) }
	reg.Register(id)

	conn, _ := reg.Get(id)
	assert.Equal(t, "r1", conn.RoomID)
	assert.Equal(t, first, conn.ConnectedAt)
	assert.Equal(t, 1, reg.Count())
}

func TestConnectionRegistry_ClearRoomKeepsUser(t *testing.T) {
	r := NewConnectionRegistry()
	id := uuid.New()

	r.Register(id)
	r.SetRoom(id, "r1", "alice")
	r.ClearRoom(id)

	conn, ok := r.Get(id)
	require.True(t, ok)
	assert.False(t, conn.InRoom())
	assert.Equal(t, "alice", conn.UserID)
}

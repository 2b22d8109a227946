package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Command - входящая команда для роутера. Реализации: Join, Offer, Answer,
// IceCandidate, Disconnect.
type Command interface {
	Sender() uuid.UUID
	command()
}

type Join struct {
	ConnID uuid.UUID
	RoomID string
	UserID string
}

type Offer struct {
	ConnID  uuid.UUID
	RoomID  string
	Payload json.RawMessage
}

type Answer struct {
	ConnID  uuid.UUID
	RoomID  string
	Payload json.RawMessage
}

type IceCandidate struct {
	ConnID  uuid.UUID
	RoomID  string
	Payload json.RawMessage
}

type Disconnect struct {
	ConnID uuid.UUID
}

func (c Join) Sender() uuid.UUID         { return c.ConnID }
func (c Offer) Sender() uuid.UUID        { return c.ConnID }
func (c Answer) Sender() uuid.UUID       { return c.ConnID }
func (c IceCandidate) Sender() uuid.UUID { return c.ConnID }
func (c Disconnect) Sender() uuid.UUID   { return c.ConnID }

func (Join) command()         {}
func (Offer) command()        {}
func (Answer) command()       {}
func (IceCandidate) command() {}
func (Disconnect) command()   {}

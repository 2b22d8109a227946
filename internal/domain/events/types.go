package events

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Message - общее событие
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JoinRoomEvent - клиент входит в комнату
type JoinRoomEvent struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// OfferEvent, AnswerEvent, IceCandidateEvent - входящие сигнальные сообщения.
// Полезная нагрузка не разбирается и пересылается как есть.
type OfferEvent struct {
	RoomID string          `json:"room_id"`
	Offer  json.RawMessage `json:"offer"`
}

type AnswerEvent struct {
	RoomID string          `json:"room_id"`
	Answer json.RawMessage `json:"answer"`
}

type IceCandidateEvent struct {
	RoomID    string          `json:"room_id"`
	Candidate json.RawMessage `json:"candidate"`
}

// ClientErrorEvent - ошибка, о которой сообщил клиент, только логируется
type ClientErrorEvent struct {
	Error json.RawMessage `json:"error"`
}

// ConnectedEvent - отправляется клиенту сразу после подключения
type ConnectedEvent struct {
	ConnectionID uuid.UUID `json:"connection_id"`
}

// RoomJoinedEvent - подтверждение входа в комнату
type RoomJoinedEvent struct {
	RoomID  string `json:"room_id"`
	Members int    `json:"members"`
}

// PresenceEvent - user-connected / user-disconnected
type PresenceEvent struct {
	UserID string `json:"user_id"`
}

// Исходящие сигнальные сообщения
type ForwardedOffer struct {
	Offer    json.RawMessage `json:"offer"`
	SenderID uuid.UUID       `json:"sender_id"`
}

type ForwardedAnswer struct {
	Answer   json.RawMessage `json:"answer"`
	SenderID uuid.UUID       `json:"sender_id"`
}

type ForwardedIceCandidate struct {
	Candidate json.RawMessage `json:"candidate"`
	SenderID  uuid.UUID       `json:"sender_id"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// New собирает конверт из типа и данных
func New(eventType string, data any) (Message, error) {
	if data == nil {
		return Message{Type: eventType}, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return Message{}, err
	}

	return Message{Type: eventType, Data: raw}, nil
}

package constant

// Ключи атрибутов slog
const (
	Error        = "error"
	ConnectionID = "connection_id"
	RoomID       = "room_id"
	UserID       = "user_id"
	Event        = "event"
	Members      = "members"
	Addr         = "addr"
)

package constant

// Типы событий сигнального протокола
const (
	EventConnected        = "connected"
	EventJoinRoom         = "join-room"
	EventRoomJoined       = "room-joined"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
	EventOffer            = "offer"
	EventAnswer           = "answer"
	EventIceCandidate     = "ice-candidate"
	EventError            = "error"
	EventPing             = "ping"
	EventPong             = "pong"
)

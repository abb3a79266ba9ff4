package server

// Room events (player_joined, round_resolved, ...) are defined in
// internal/game/events.go and are forwarded to clients under the same names.

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeCreateRoom   MessageType = "create_room"
	MessageTypeJoinRoom     MessageType = "join_room"
	MessageTypeLeaveRoom    MessageType = "leave_room"
	MessageTypeListRooms    MessageType = "list_rooms"
	MessageTypeSubmitAction MessageType = "submit_action"
	MessageTypeChat         MessageType = "chat"
	MessageTypeObserve      MessageType = "observe"

	// Server to client messages
	MessageTypeError           MessageType = "error"
	MessageTypeRoomJoined      MessageType = "room_joined"
	MessageTypeRoomLeft        MessageType = "room_left"
	MessageTypeRoomList        MessageType = "room_list"
	MessageTypeSnapshot        MessageType = "snapshot"
	MessageTypeRoundResolved   MessageType = "round_resolved"
	MessageTypePlayerJoined    MessageType = "player_joined"
	MessageTypePlayerLeft      MessageType = "player_left"
	MessageTypeActionSubmitted MessageType = "action_submitted"
	MessageTypeChatPosted      MessageType = "chat_posted"
)

// Error codes carried in ErrorData.Code
const (
	ErrorCodeRoomFull       = "room_full"
	ErrorCodeRoomExists     = "room_exists"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeInvalidAction  = "invalid_action"
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeNotJoined      = "not_joined"
	ErrorCodeUnknownType    = "unknown_message_type"
	ErrorCodeInternal       = "internal"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lox/roundtable/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type CreateRoomData struct {
	RoomID string `json:"roomId"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
}

type JoinRoomData struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

// SubmitActionData carries either a wager (amount + selector) or a duel
// choice. A non-empty choice wins.
type SubmitActionData struct {
	Amount   int    `json:"amount,omitempty"`
	Selector string `json:"selector,omitempty"`
	Choice   string `json:"choice,omitempty"`
}

// Action converts the payload into a game action.
func (d SubmitActionData) Action() (game.Action, error) {
	if d.Choice != "" {
		choice, err := game.ParseChoice(d.Choice)
		if err != nil {
			return nil, err
		}
		return game.Move{Choice: choice}, nil
	}
	return game.Wager{Amount: d.Amount, Selector: d.Selector}, nil
}

type ChatData struct {
	Text string `json:"text"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomJoinedData struct {
	RoomID   string        `json:"roomId"`
	PlayerID game.PlayerID `json:"playerId"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type RoomLeftData struct {
	RoomID string `json:"roomId"`
}

type RoomListData struct {
	Rooms []game.Summary `json:"rooms"`
}

type SnapshotData struct {
	Snapshot     game.Snapshot      `json:"snapshot"`
	Notification *game.Notification `json:"notification,omitempty"`
}

type PlayerJoinedData struct {
	RoomID   string        `json:"roomId"`
	PlayerID game.PlayerID `json:"playerId"`
	Name     string        `json:"name"`
	Members  int           `json:"members"`
}

type PlayerLeftData = PlayerJoinedData

type ActionSubmittedData struct {
	RoomID   string        `json:"roomId"`
	PlayerID game.PlayerID `json:"playerId"`
	Name     string        `json:"name"`
}

type RoundResolvedData struct {
	RoomID string           `json:"roomId"`
	Result game.RoundResult `json:"result"`
}

type ChatPostedData struct {
	RoomID string         `json:"roomId"`
	Entry  game.ChatEntry `json:"entry"`
}

// MessageFromEvent converts a room event into the message pushed to clients.
func MessageFromEvent(event game.GameEvent) (*Message, error) {
	switch e := event.(type) {
	case game.PlayerJoinedEvent:
		return NewMessage(MessageTypePlayerJoined, PlayerJoinedData{RoomID: e.RoomID, PlayerID: e.PlayerID, Name: e.Name, Members: e.Members})
	case game.PlayerLeftEvent:
		return NewMessage(MessageTypePlayerLeft, PlayerLeftData{RoomID: e.RoomID, PlayerID: e.PlayerID, Name: e.Name, Members: e.Members})
	case game.ActionSubmittedEvent:
		return NewMessage(MessageTypeActionSubmitted, ActionSubmittedData{RoomID: e.RoomID, PlayerID: e.PlayerID, Name: e.Name})
	case game.RoundResolvedEvent:
		return NewMessage(MessageTypeRoundResolved, RoundResolvedData{RoomID: e.RoomID, Result: e.Result})
	case game.ChatPostedEvent:
		return NewMessage(MessageTypeChatPosted, ChatPostedData{RoomID: e.RoomID, Entry: e.Entry})
	}
	return nil, fmt.Errorf("unsupported event %s", event.EventType())
}

// ErrorCode maps a coordinator error onto its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrCapacity):
		return ErrorCodeRoomFull
	case errors.Is(err, game.ErrAlreadyExists):
		return ErrorCodeRoomExists
	case errors.Is(err, game.ErrNotFound):
		return ErrorCodeNotFound
	case errors.Is(err, game.ErrInvalidAction):
		return ErrorCodeInvalidAction
	case errors.Is(err, game.ErrEmptyMessage):
		return ErrorCodeInvalidMessage
	}
	return ErrorCodeInternal
}

package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/roundtable/internal/game"
)

// Connection represents a WebSocket connection to a client. A connection
// holds at most one seat at a time and receives its room's events.
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerID    game.PlayerID
	roomID      string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	coordinator *Coordinator
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, coordinator *Coordinator) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		coordinator: coordinator,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// OnEvent forwards room events to the client.
func (c *Connection) OnEvent(event game.GameEvent) {
	msg, err := MessageFromEvent(event)
	if err != nil {
		c.logger.Debug("Dropping event", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}

// Seat returns the room and player this connection is seated as.
func (c *Connection) Seat() (string, game.PlayerID) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID, c.playerID
}

func (c *Connection) setSeat(roomID string, playerID game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
	c.playerID = playerID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	roomID, playerID := c.Seat()
	c.logger.Debug("Received message", "type", msg.Type, "room", roomID, "player", playerID)

	switch msg.Type {
	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, ErrorCodeInvalidMessage, "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(msg, data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, ErrorCodeInvalidMessage, "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(msg, data)

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom(msg)

	case MessageTypeListRooms:
		c.reply(msg, MessageTypeRoomList, RoomListData{Rooms: c.coordinator.ListRooms()})

	case MessageTypeSubmitAction:
		var data SubmitActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, ErrorCodeInvalidMessage, "Failed to parse action data")
			return
		}
		c.handleSubmitAction(msg, data)

	case MessageTypeChat:
		var data ChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, ErrorCodeInvalidMessage, "Failed to parse chat data")
			return
		}
		c.handleChat(msg, data)

	case MessageTypeObserve:
		c.handleObserve(msg)

	default:
		c.sendError(msg, ErrorCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

// reply sends a response carrying the request's ID.
func (c *Connection) reply(req *Message, messageType MessageType, data any) {
	response, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	response.RequestID = req.RequestID
	_ = c.SendMessage(response)
}

// sendError sends an error message to the client
func (c *Connection) sendError(req *Message, code, message string) {
	c.reply(req, MessageTypeError, ErrorData{Code: code, Message: message})
}

func (c *Connection) sendFailure(req *Message, err error) {
	c.sendError(req, ErrorCode(err), err.Error())
}

func (c *Connection) handleCreateRoom(req *Message, data CreateRoomData) {
	c.logger.Info("Create room request", "room", data.RoomID, "kind", data.Kind)

	kind, err := game.ParseKind(data.Kind)
	if err != nil {
		c.sendError(req, ErrorCodeInvalidAction, err.Error())
		return
	}
	if _, err := c.coordinator.CreateRoom(data.RoomID, kind); err != nil {
		c.sendFailure(req, err)
		return
	}
	c.handleJoinRoom(req, JoinRoomData{RoomID: data.RoomID, Name: data.Name})
}

func (c *Connection) handleJoinRoom(req *Message, data JoinRoomData) {
	c.logger.Info("Join room request", "room", data.RoomID, "name", data.Name)

	if roomID, _ := c.Seat(); roomID != "" {
		_ = c.leaveCurrent()
	}

	playerID, err := c.coordinator.Join(data.RoomID, data.Name)
	if err != nil {
		c.sendFailure(req, err)
		return
	}

	room, ok := c.coordinator.Room(data.RoomID)
	if !ok {
		c.sendError(req, ErrorCodeNotFound, "Room closed while joining")
		return
	}
	c.setSeat(data.RoomID, playerID)
	room.Events().Subscribe(c)

	c.reply(req, MessageTypeRoomJoined, RoomJoinedData{
		RoomID:   data.RoomID,
		PlayerID: playerID,
		Snapshot: room.Observe(playerID),
	})
}

func (c *Connection) handleLeaveRoom(req *Message) {
	roomID, _ := c.Seat()
	if roomID == "" {
		c.sendError(req, ErrorCodeNotJoined, "Not seated in a room")
		return
	}
	if err := c.leaveCurrent(); err != nil {
		c.sendFailure(req, err)
		return
	}
	c.reply(req, MessageTypeRoomLeft, RoomLeftData{RoomID: roomID})
}

// leaveCurrent gives up the current seat, if any, and stops the room's
// event stream.
func (c *Connection) leaveCurrent() error {
	roomID, playerID := c.Seat()
	if roomID == "" {
		return nil
	}
	c.setSeat("", "")

	if room, ok := c.coordinator.Room(roomID); ok {
		room.Events().Unsubscribe(c)
	}
	return c.coordinator.Leave(roomID, playerID)
}

func (c *Connection) handleSubmitAction(req *Message, data SubmitActionData) {
	roomID, playerID := c.Seat()
	if roomID == "" {
		c.sendError(req, ErrorCodeNotJoined, "Join a room first")
		return
	}

	action, err := data.Action()
	if err != nil {
		c.sendFailure(req, err)
		return
	}
	c.logger.Debug("Action", "room", roomID, "player", playerID, "action", action)

	// A completing duel throw settles the round; the result reaches every
	// seat through the room's round_resolved event.
	if _, err := c.coordinator.SubmitAction(roomID, playerID, action); err != nil {
		c.sendFailure(req, err)
	}
}

func (c *Connection) handleChat(req *Message, data ChatData) {
	roomID, playerID := c.Seat()
	if roomID == "" {
		c.sendError(req, ErrorCodeNotJoined, "Join a room first")
		return
	}
	if _, err := c.coordinator.PostChat(roomID, playerID, data.Text); err != nil {
		c.sendFailure(req, err)
	}
}

// handleObserve is the poll path: it ticks the room, then returns the
// snapshot along with the seat's notification, which is cleared once sent.
func (c *Connection) handleObserve(req *Message) {
	roomID, playerID := c.Seat()
	if roomID == "" {
		c.sendError(req, ErrorCodeNotJoined, "Join a room first")
		return
	}

	if _, _, err := c.coordinator.Tick(roomID); err != nil {
		c.sendFailure(req, err)
		return
	}
	snap, err := c.coordinator.Observe(roomID, playerID)
	if err != nil {
		c.sendFailure(req, err)
		return
	}

	data := SnapshotData{Snapshot: snap}
	if n, ok, err := c.coordinator.DrainNotification(playerID); err == nil && ok {
		data.Notification = &n
	}
	c.reply(req, MessageTypeSnapshot, data)
}

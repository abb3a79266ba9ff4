package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/roundtable/internal/game"
)

func startTestServer(t *testing.T, c *Coordinator) (*Server, string) {
	t.Helper()
	srv := NewServer("127.0.0.1:0", testLogger(), c)
	go srv.run()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType MessageType, data any, requestID string) {
	t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(t, err)
	msg.RequestID = requestID
	require.NoError(t, conn.WriteJSON(msg))
}

// expect reads messages until one of the wanted type arrives.
func expect(t *testing.T, conn *websocket.Conn, want MessageType) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", want)
		if msg.Type == want {
			return &msg
		}
	}
}

func decode[T any](t *testing.T, msg *Message) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(msg.Data, &v))
	return v
}

// Client-side views. Round outcomes are interfaces on the server side, so
// tests decode only the fields they check.
type resultView struct {
	Round       int               `json:"round"`
	Settlements []game.Settlement `json:"settlements"`
}

type roundResolvedView struct {
	RoomID string     `json:"roomId"`
	Result resultView `json:"result"`
}

type snapshotView struct {
	RoomID           string       `json:"roomId"`
	Phase            game.Phase   `json:"phase"`
	Round            int          `json:"round"`
	SecondsRemaining *int         `json:"secondsRemaining"`
	History          []resultView `json:"history"`
	Self             *selfView    `json:"self"`
}

type selfView struct {
	Balance int         `json:"balance"`
	Record  game.Record `json:"record"`
}

type roomJoinedView struct {
	RoomID   string        `json:"roomId"`
	PlayerID game.PlayerID `json:"playerId"`
	Snapshot snapshotView  `json:"snapshot"`
}

type observeView struct {
	Snapshot     snapshotView       `json:"snapshot"`
	Notification *game.Notification `json:"notification"`
}

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := NewServer("127.0.0.1:0", testLogger(), newTestCoordinator(t, quartz.NewMock(t)))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Equal(t, "OK", w.Body.String())
}

func TestServerRoomsEndpoint(t *testing.T) {
	t.Parallel()
	c := newTestCoordinator(t, quartz.NewMock(t))
	_, err := c.CreateRoom("lobby", game.KindRoulette)
	require.NoError(t, err)
	srv := NewServer("127.0.0.1:0", testLogger(), c)

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	w := httptest.NewRecorder()
	srv.handleRooms(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body RoomListData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rooms, 1)
	assert.Equal(t, "lobby", body.Rooms[0].ID)
}

func TestWebSocketDuel(t *testing.T) {
	t.Parallel()
	c := newTestCoordinator(t, quartz.NewMock(t))
	_, url := startTestServer(t, c)

	alice := dial(t, url)
	send(t, alice, MessageTypeCreateRoom, CreateRoomData{RoomID: "R1", Kind: "rps", Name: "Alice"}, "1")
	joined := decode[roomJoinedView](t, expect(t, alice, MessageTypeRoomJoined))
	assert.Equal(t, "R1", joined.RoomID)
	assert.NotEmpty(t, joined.PlayerID)
	assert.Equal(t, game.PhaseWaiting, joined.Snapshot.Phase)

	bob := dial(t, url)
	send(t, bob, MessageTypeJoinRoom, JoinRoomData{RoomID: "R1", Name: "Bob"}, "2")
	expect(t, bob, MessageTypeRoomJoined)

	pj := decode[PlayerJoinedData](t, expect(t, alice, MessageTypePlayerJoined))
	assert.Equal(t, "Bob", pj.Name)
	assert.Equal(t, 2, pj.Members)

	carol := dial(t, url)
	send(t, carol, MessageTypeJoinRoom, JoinRoomData{RoomID: "R1", Name: "Carol"}, "3")
	errMsg := expect(t, carol, MessageTypeError)
	assert.Equal(t, "3", errMsg.RequestID)
	assert.Equal(t, ErrorCodeRoomFull, decode[ErrorData](t, errMsg).Code)

	send(t, alice, MessageTypeSubmitAction, SubmitActionData{Choice: "rock"}, "")
	send(t, bob, MessageTypeSubmitAction, SubmitActionData{Choice: "scissors"}, "")

	for _, conn := range []*websocket.Conn{alice, bob} {
		resolved := decode[roundResolvedView](t, expect(t, conn, MessageTypeRoundResolved))
		assert.Equal(t, 1, resolved.Result.Round)
		require.Len(t, resolved.Result.Settlements, 2)
	}

	send(t, alice, MessageTypeObserve, nil, "obs")
	snap := decode[observeView](t, expect(t, alice, MessageTypeSnapshot))
	require.NotNil(t, snap.Notification)
	assert.Equal(t, game.NoticeWin, snap.Notification.Kind)
	require.NotNil(t, snap.Snapshot.Self)
	assert.Equal(t, 1, snap.Snapshot.Self.Record.Wins)

	// Drained on the first observe.
	send(t, alice, MessageTypeObserve, nil, "obs2")
	snap = decode[observeView](t, expect(t, alice, MessageTypeSnapshot))
	assert.Nil(t, snap.Notification)
}

func TestWebSocketRouletteAndChat(t *testing.T) {
	t.Parallel()
	mClock := quartz.NewMock(t)
	c := newTestCoordinator(t, mClock)
	_, err := c.CreateRoom("lobby", game.KindRoulette)
	require.NoError(t, err)
	_, url := startTestServer(t, c)

	conn := dial(t, url)
	send(t, conn, MessageTypeJoinRoom, JoinRoomData{RoomID: "lobby", Name: "P1"}, "")
	expect(t, conn, MessageTypeRoomJoined)

	send(t, conn, MessageTypeSubmitAction, SubmitActionData{Amount: 5000, Selector: "red"}, "big")
	errMsg := expect(t, conn, MessageTypeError)
	assert.Equal(t, ErrorCodeInvalidAction, decode[ErrorData](t, errMsg).Code)

	send(t, conn, MessageTypeSubmitAction, SubmitActionData{Amount: 100, Selector: "red"}, "")
	expect(t, conn, MessageTypeActionSubmitted)

	send(t, conn, MessageTypeChat, ChatData{Text: "   "}, "empty")
	assert.Equal(t, ErrorCodeInvalidMessage, decode[ErrorData](t, expect(t, conn, MessageTypeError)).Code)

	send(t, conn, MessageTypeChat, ChatData{Text: "spin it"}, "")
	posted := decode[ChatPostedData](t, expect(t, conn, MessageTypeChatPosted))
	assert.Equal(t, "spin it", posted.Entry.Text)

	send(t, conn, MessageTypeObserve, nil, "")
	snap := decode[observeView](t, expect(t, conn, MessageTypeSnapshot))
	require.NotNil(t, snap.Snapshot.SecondsRemaining)
	assert.Equal(t, 30, *snap.Snapshot.SecondsRemaining)
	assert.Zero(t, snap.Snapshot.Round)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	mClock.Advance(30 * time.Second).MustWait(ctx)

	// The observe poll drives the round clock.
	send(t, conn, MessageTypeObserve, nil, "")
	expect(t, conn, MessageTypeRoundResolved)
	snap = decode[observeView](t, expect(t, conn, MessageTypeSnapshot))
	assert.Equal(t, 1, snap.Snapshot.Round)
	require.NotNil(t, snap.Notification)
	assert.Contains(t, []game.NoticeKind{game.NoticeWin, game.NoticeLoss}, snap.Notification.Kind)
}

func TestWebSocketErrors(t *testing.T) {
	t.Parallel()
	c := newTestCoordinator(t, quartz.NewMock(t))
	_, url := startTestServer(t, c)
	conn := dial(t, url)

	send(t, conn, MessageTypeSubmitAction, SubmitActionData{Choice: "rock"}, "a")
	assert.Equal(t, ErrorCodeNotJoined, decode[ErrorData](t, expect(t, conn, MessageTypeError)).Code)

	send(t, conn, MessageTypeJoinRoom, JoinRoomData{RoomID: "nope", Name: "X"}, "b")
	assert.Equal(t, ErrorCodeNotFound, decode[ErrorData](t, expect(t, conn, MessageTypeError)).Code)

	send(t, conn, MessageTypeCreateRoom, CreateRoomData{RoomID: "x", Kind: "poker", Name: "X"}, "c")
	assert.Equal(t, ErrorCodeInvalidAction, decode[ErrorData](t, expect(t, conn, MessageTypeError)).Code)

	send(t, conn, MessageType("dance"), nil, "d")
	assert.Equal(t, ErrorCodeUnknownType, decode[ErrorData](t, expect(t, conn, MessageTypeError)).Code)

	send(t, conn, MessageTypeCreateRoom, CreateRoomData{RoomID: "x", Kind: "roulette", Name: "X"}, "e")
	expect(t, conn, MessageTypeRoomJoined)

	other := dial(t, url)
	send(t, other, MessageTypeCreateRoom, CreateRoomData{RoomID: "x", Kind: "duel", Name: "Y"}, "f")
	assert.Equal(t, ErrorCodeRoomExists, decode[ErrorData](t, expect(t, other, MessageTypeError)).Code)

	send(t, conn, MessageTypeListRooms, nil, "g")
	list := decode[RoomListData](t, expect(t, conn, MessageTypeRoomList))
	require.Len(t, list.Rooms, 1)
	assert.Equal(t, 1, list.Rooms[0].Members)

	send(t, conn, MessageTypeLeaveRoom, nil, "h")
	left := decode[RoomLeftData](t, expect(t, conn, MessageTypeRoomLeft))
	assert.Equal(t, "x", left.RoomID)

	send(t, conn, MessageTypeLeaveRoom, nil, "i")
	assert.Equal(t, ErrorCodeNotJoined, decode[ErrorData](t, expect(t, conn, MessageTypeError)).Code)
}

func TestDisconnectFreesSeat(t *testing.T) {
	t.Parallel()
	c := newTestCoordinator(t, quartz.NewMock(t))
	srv, url := startTestServer(t, c)

	alice := dial(t, url)
	send(t, alice, MessageTypeCreateRoom, CreateRoomData{RoomID: "R1", Kind: "duel", Name: "Alice"}, "")
	expect(t, alice, MessageTypeRoomJoined)
	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, alice.Close())

	require.Eventually(t, func() bool {
		rooms := c.ListRooms()
		return len(rooms) == 1 && rooms[0].Members == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, srv.ConnectionCount())
}

func TestErrorCodeMapping(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want string
	}{
		{game.ErrCapacity, ErrorCodeRoomFull},
		{game.ErrAlreadyExists, ErrorCodeRoomExists},
		{game.ErrNotFound, ErrorCodeNotFound},
		{game.ErrInvalidAction, ErrorCodeInvalidAction},
		{game.ErrEmptyMessage, ErrorCodeInvalidMessage},
		{context.Canceled, ErrorCodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), "%v", tt.err)
	}
}

func TestSubmitActionDataAction(t *testing.T) {
	t.Parallel()

	a, err := SubmitActionData{Amount: 10, Selector: "odd"}.Action()
	require.NoError(t, err)
	assert.Equal(t, game.Wager{Amount: 10, Selector: "odd"}, a)

	a, err = SubmitActionData{Choice: "P"}.Action()
	require.NoError(t, err)
	assert.Equal(t, game.Move{Choice: game.Paper}, a)

	_, err = SubmitActionData{Choice: "lizard"}.Action()
	require.ErrorIs(t, err, game.ErrInvalidAction)
}

package server

import (
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/roundtable/internal/game"
	"github.com/lox/roundtable/internal/playerid"
	"github.com/lox/roundtable/internal/randutil"
)

// RoomSpec describes a room to create.
type RoomSpec struct {
	ID              string
	Kind            game.Kind
	Interval        time.Duration
	StartingBalance int
	HistoryLimit    int
	FeedLimit       int
}

// Defaults fills the fields CreateRoom callers leave empty.
type Defaults struct {
	Interval        time.Duration
	StartingBalance int
	HistoryLimit    int
	FeedLimit       int
}

// DefaultDefaults returns the stock room settings.
func DefaultDefaults() Defaults {
	return Defaults{
		Interval:        30 * time.Second,
		StartingBalance: game.DefaultStartingBalance,
		HistoryLimit:    game.DefaultHistoryLimit,
		FeedLimit:       game.DefaultFeedLimit,
	}
}

// Coordinator is the process-wide registry of rooms and player sessions. It
// is built once and shared by every handler. The registry lock is never held
// while a room resolves a round. Lock order is registry, then room.
type Coordinator struct {
	logger   *log.Logger
	clock    quartz.Clock
	seed     int64
	ids      *playerid.Generator
	defaults Defaults

	mu       sync.RWMutex
	rooms    map[string]*game.Room
	order    []string
	sessions map[game.PlayerID]string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock sets the clock rooms measure rounds against.
func WithClock(clock quartz.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithSeed makes every room's outcomes replayable from seed.
func WithSeed(seed int64) Option {
	return func(c *Coordinator) { c.seed = seed }
}

// WithIDSource sets the randomness used to mint player IDs.
func WithIDSource(r io.Reader) Option {
	return func(c *Coordinator) { c.ids = playerid.New(r) }
}

// WithDefaults sets the settings applied to rooms created without a spec.
func WithDefaults(d Defaults) Option {
	return func(c *Coordinator) { c.defaults = d }
}

// NewCoordinator constructs an empty coordinator.
func NewCoordinator(logger *log.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:   logger.WithPrefix("coordinator"),
		clock:    quartz.NewReal(),
		seed:     time.Now().UnixNano(),
		ids:      playerid.New(nil),
		defaults: DefaultDefaults(),
		rooms:    make(map[string]*game.Room),
		sessions: make(map[game.PlayerID]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateRoom registers a room of the given kind with default settings.
func (c *Coordinator) CreateRoom(roomID string, kind game.Kind) (*game.Room, error) {
	return c.CreateRoomWithSpec(RoomSpec{ID: roomID, Kind: kind})
}

// CreateRoomWithSpec registers a room. Existing rooms are never replaced.
func (c *Coordinator) CreateRoomWithSpec(spec RoomSpec) (*game.Room, error) {
	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: room id required", game.ErrInvalidAction)
	}
	if spec.Interval <= 0 {
		spec.Interval = c.defaults.Interval
	}
	if spec.StartingBalance <= 0 {
		spec.StartingBalance = c.defaults.StartingBalance
	}
	if spec.HistoryLimit <= 0 {
		spec.HistoryLimit = c.defaults.HistoryLimit
	}
	if spec.FeedLimit <= 0 {
		spec.FeedLimit = c.defaults.FeedLimit
	}

	rules, err := game.NewRules(spec.Kind, game.RulesConfig{
		Interval:        spec.Interval,
		StartingBalance: spec.StartingBalance,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrInvalidAction, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.rooms[spec.ID]; exists {
		return nil, fmt.Errorf("%w: %s", game.ErrAlreadyExists, spec.ID)
	}

	room := game.NewRoom(game.RoomConfig{
		ID:              spec.ID,
		Rules:           rules,
		StartingBalance: spec.StartingBalance,
		HistoryLimit:    spec.HistoryLimit,
		FeedLimit:       spec.FeedLimit,
		Clock:           c.clock,
		Rand:            randutil.Derive(c.seed, spec.ID),
		Logger:          c.logger,
	})
	c.rooms[spec.ID] = room
	c.order = append(c.order, spec.ID)

	c.logger.Info("Created room", "room", spec.ID, "kind", spec.Kind, "interval", spec.Interval)
	return room, nil
}

// Room looks a room up without changing anything.
func (c *Coordinator) Room(roomID string) (*game.Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	room, ok := c.rooms[roomID]
	return room, ok
}

func (c *Coordinator) room(roomID string) (*game.Room, error) {
	room, ok := c.Room(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: room %s", game.ErrNotFound, roomID)
	}
	return room, nil
}

// Joinable yields the IDs of rooms with a free seat in creation order. Each
// iteration re-reads the registry, and seat counts are checked as the
// sequence is consumed.
func (c *Coordinator) Joinable() iter.Seq[string] {
	return func(yield func(string) bool) {
		c.mu.RLock()
		order := slices.Clone(c.order)
		rooms := make([]*game.Room, len(order))
		for i, id := range order {
			rooms[i] = c.rooms[id]
		}
		c.mu.RUnlock()

		for i, room := range rooms {
			if !room.Joinable() {
				continue
			}
			if !yield(order[i]) {
				return
			}
		}
	}
}

// ListRooms returns lobby summaries in creation order.
func (c *Coordinator) ListRooms() []game.Summary {
	rooms := c.snapshotRooms()
	out := make([]game.Summary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, room.Summary())
	}
	return out
}

func (c *Coordinator) snapshotRooms() []*game.Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rooms := make([]*game.Room, 0, len(c.order))
	for _, id := range c.order {
		rooms = append(rooms, c.rooms[id])
	}
	return rooms
}

// Join seats a new player in a room under a freshly minted identity.
func (c *Coordinator) Join(roomID, name string) (game.PlayerID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: display name required", game.ErrInvalidAction)
	}
	room, err := c.room(roomID)
	if err != nil {
		return "", err
	}

	raw, err := c.ids.Generate()
	if err != nil {
		return "", err
	}
	id := game.PlayerID(raw)
	if err := room.Join(id, name); err != nil {
		return "", err
	}

	// The room may have been swept between lookup and seating.
	c.mu.Lock()
	if c.rooms[roomID] != room {
		c.mu.Unlock()
		_ = room.Leave(id)
		return "", fmt.Errorf("%w: room %s", game.ErrNotFound, roomID)
	}
	c.sessions[id] = roomID
	c.mu.Unlock()
	return id, nil
}

// Open creates a room and seats its first player, the lobby "host" flow.
func (c *Coordinator) Open(roomID string, kind game.Kind, name string) (game.PlayerID, error) {
	if _, err := c.CreateRoom(roomID, kind); err != nil {
		return "", err
	}
	return c.Join(roomID, name)
}

// Leave removes a player from a room.
func (c *Coordinator) Leave(roomID string, playerID game.PlayerID) error {
	room, err := c.room(roomID)
	if err != nil {
		return err
	}
	if err := room.Leave(playerID); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.sessions, playerID)
	c.mu.Unlock()
	return nil
}

// SubmitAction records a player's pending action. A non-nil result means
// the submission completed and settled a round.
func (c *Coordinator) SubmitAction(roomID string, playerID game.PlayerID, action game.Action) (*game.RoundResult, error) {
	room, err := c.room(roomID)
	if err != nil {
		return nil, err
	}
	return room.Submit(playerID, action)
}

// Observe returns a room snapshot from a player's point of view.
func (c *Coordinator) Observe(roomID string, playerID game.PlayerID) (game.Snapshot, error) {
	room, err := c.room(roomID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return room.Observe(playerID), nil
}

// Tick evaluates one room's round clock.
func (c *Coordinator) Tick(roomID string) (*game.RoundResult, bool, error) {
	room, err := c.room(roomID)
	if err != nil {
		return nil, false, err
	}
	result, ok := room.Tick()
	return result, ok, nil
}

// TickAll evaluates every room concurrently and reports how many resolved.
func (c *Coordinator) TickAll(ctx context.Context) (int, error) {
	rooms := c.snapshotRooms()

	var (
		mu       sync.Mutex
		resolved int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, room := range rooms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, ok := room.Tick(); ok {
				mu.Lock()
				resolved++
				mu.Unlock()
			}
			return nil
		})
	}
	err := g.Wait()
	return resolved, err
}

// DrainNotification returns and clears a player's undelivered notification.
func (c *Coordinator) DrainNotification(playerID game.PlayerID) (game.Notification, bool, error) {
	c.mu.RLock()
	roomID, ok := c.sessions[playerID]
	c.mu.RUnlock()
	if !ok {
		return game.Notification{}, false, fmt.Errorf("%w: player %s", game.ErrNotFound, playerID)
	}

	room, err := c.room(roomID)
	if err != nil {
		return game.Notification{}, false, err
	}
	return room.DrainNotification(playerID)
}

// PostChat appends a chat line to a room's feed.
func (c *Coordinator) PostChat(roomID string, playerID game.PlayerID, text string) (game.ChatEntry, error) {
	room, err := c.room(roomID)
	if err != nil {
		return game.ChatEntry{}, err
	}
	return room.PostChat(playerID, text)
}

// DeleteRoom removes a room and forgets its sessions.
func (c *Coordinator) DeleteRoom(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rooms[roomID]; !ok {
		return false
	}
	c.deleteLocked(roomID)
	return true
}

// deleteIfIdle removes a room only if it is still idle for ttl. The check
// runs under the registry lock so a concurrent Join either keeps the room
// alive or finds it gone.
func (c *Coordinator) deleteIfIdle(roomID string, ttl time.Duration, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok || room.Idle(now) < ttl {
		return false
	}
	c.deleteLocked(roomID)
	return true
}

func (c *Coordinator) deleteLocked(roomID string) {
	delete(c.rooms, roomID)
	c.order = slices.DeleteFunc(c.order, func(id string) bool { return id == roomID })
	for pid, rid := range c.sessions {
		if rid == roomID {
			delete(c.sessions, pid)
		}
	}
	c.logger.Info("Deleted room", "room", roomID)
}

// SweepIdle deletes rooms that have been empty and quiet for at least ttl.
func (c *Coordinator) SweepIdle(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	now := c.clock.Now()

	var swept []string
	for _, room := range c.snapshotRooms() {
		if room.Idle(now) < ttl {
			continue
		}
		if c.deleteIfIdle(room.ID(), ttl, now) {
			swept = append(swept, room.ID())
		}
	}
	return swept
}

// Run ticks every room on a fixed cadence and sweeps idle rooms until ctx
// is cancelled. Polling hosts can skip it and call Tick themselves.
func (c *Coordinator) Run(ctx context.Context, every, roomTTL time.Duration) error {
	if every <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := c.clock.NewTicker(every, "coordinator", "tick")
	defer ticker.Stop()

	c.logger.Info("Round ticker started", "every", every, "roomTTL", roomTTL)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := c.TickAll(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error("Tick failed", "error", err)
			}
			if swept := c.SweepIdle(roomTTL); len(swept) > 0 {
				c.logger.Info("Swept idle rooms", "rooms", swept)
			}
		}
	}
}

package game

import (
	"fmt"
	"math"
	rand "math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/roundtable/internal/feed"
)

const (
	DefaultStartingBalance = 1000
	DefaultHistoryLimit    = 20
	DefaultFeedLimit       = 50
)

// RoomConfig configures a new room.
type RoomConfig struct {
	ID              string
	Rules           Rules
	StartingBalance int
	HistoryLimit    int
	FeedLimit       int
	Clock           quartz.Clock
	Rand            *rand.Rand
	Logger          *log.Logger
}

// Room is one isolated game instance. Every exported method is safe for
// concurrent use. Mutations, including the whole check-and-resolve step of
// a round, run under the room's write lock, so concurrent pollers can never
// settle the same round twice.
type Room struct {
	id              string
	rules           Rules
	startingBalance int
	clock           quartz.Clock
	rng             *rand.Rand
	logger          *log.Logger
	bus             EventBus

	mu           sync.RWMutex
	phase        Phase
	trigger      Trigger
	round        int
	members      []PlayerID
	players      map[PlayerID]*Player
	history      *feed.Log[RoundResult]
	chat         *feed.Log[ChatEntry]
	lastActivity time.Time
}

// NewRoom builds a room in the waiting phase.
func NewRoom(cfg RoomConfig) *Room {
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = DefaultStartingBalance
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = DefaultFeedLimit
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	now := cfg.Clock.Now()
	return &Room{
		id:              cfg.ID,
		rules:           cfg.Rules,
		startingBalance: cfg.StartingBalance,
		clock:           cfg.Clock,
		rng:             cfg.Rand,
		logger:          cfg.Logger.WithPrefix("room").With("room", cfg.ID, "kind", cfg.Rules.Kind()),
		bus:             NewEventBus(),
		phase:           PhaseWaiting,
		trigger:         cfg.Rules.NewTrigger(now),
		players:         make(map[PlayerID]*Player),
		history:         feed.New[RoundResult](cfg.HistoryLimit),
		chat:            feed.New[ChatEntry](cfg.FeedLimit),
		lastActivity:    now,
	}
}

// ID returns the room key.
func (r *Room) ID() string { return r.id }

// Kind returns the game the room runs.
func (r *Room) Kind() Kind { return r.rules.Kind() }

// Events returns the bus room events are published on.
func (r *Room) Events() EventBus { return r.bus }


// Join seats a new member under the given identity.
func (r *Room) Join(id PlayerID, name string) error {
	r.mu.Lock()

	if capacity := r.rules.Capacity(); capacity > 0 {
		if len(r.members) >= capacity {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s has %d/%d members", ErrCapacity, r.id, len(r.members), capacity)
		}
		for _, p := range r.players {
			if p.Name == name {
				r.mu.Unlock()
				return fmt.Errorf("%w: name %q already seated in %s", ErrCapacity, name, r.id)
			}
		}
	}
	if _, exists := r.players[id]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: player %s already in %s", ErrCapacity, id, r.id)
	}

	now := r.clock.Now()
	r.players[id] = &Player{ID: id, Name: name, Balance: r.startingBalance, JoinedAt: now}
	r.members = append(r.members, id)
	r.lastActivity = now

	if r.phase == PhaseWaiting && len(r.members) >= r.rules.Required() {
		r.phase = PhaseOpen
		r.trigger.Reset(now)
		r.logger.Debug("Room open for actions", "members", len(r.members))
	}
	members := len(r.members)
	r.mu.Unlock()

	r.logger.Info("Player joined", "player", id, "name", name, "members", members)
	r.bus.Publish(PlayerJoinedEvent{RoomID: r.id, PlayerID: id, Name: name, Members: members, timestamp: now})
	return nil
}

// Leave removes a member. Rooms that drop below their required member
// count go back to waiting; pending actions of the remaining members are
// kept.
func (r *Room) Leave(id PlayerID) error {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: player %s in room %s", ErrNotFound, id, r.id)
	}

	delete(r.players, id)
	r.members = slices.DeleteFunc(r.members, func(m PlayerID) bool { return m == id })
	now := r.clock.Now()
	r.lastActivity = now
	if len(r.members) < r.rules.Required() {
		r.phase = PhaseWaiting
	}
	members := len(r.members)
	r.mu.Unlock()

	r.logger.Info("Player left", "player", id, "name", p.Name, "members", members)
	r.bus.Publish(PlayerLeftEvent{RoomID: r.id, PlayerID: id, Name: p.Name, Members: members, timestamp: now})
	return nil
}

// Submit records a member's pending action, replacing any earlier one. For
// rooms that resolve on player action, the submission that completes the
// set settles the round immediately and its result is returned.
func (r *Room) Submit(id PlayerID, action Action) (*RoundResult, error) {
	if action == nil {
		return nil, fmt.Errorf("%w: no action", ErrInvalidAction)
	}

	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: player %s in room %s", ErrNotFound, id, r.id)
	}
	if err := r.rules.Validate(action, p.Balance); err != nil {
		r.mu.Unlock()
		return nil, err
	}

	now := r.clock.Now()
	p.Pending = action
	r.lastActivity = now
	result := r.resolveLocked(now)
	r.mu.Unlock()

	r.logger.Debug("Action submitted", "player", id, "action", action)
	r.bus.Publish(ActionSubmittedEvent{RoomID: r.id, PlayerID: id, Name: p.Name, timestamp: now})
	if result != nil {
		r.bus.Publish(RoundResolvedEvent{RoomID: r.id, Result: *result, timestamp: now})
	}
	return result, nil
}

// Tick evaluates the round clock and resolves the round when it is due.
// Calling it again before the next round is due does nothing, so hosts may
// call it on every poll.
func (r *Room) Tick() (*RoundResult, bool) {
	r.mu.Lock()
	now := r.clock.Now()
	result := r.resolveLocked(now)
	r.mu.Unlock()

	if result == nil {
		return nil, false
	}
	r.bus.Publish(RoundResolvedEvent{RoomID: r.id, Result: *result, timestamp: now})
	return result, true
}

// resolveLocked runs one resolution if the trigger says the round is due.
// The trigger is reset before anything else about the round changes.
func (r *Room) resolveLocked(now time.Time) *RoundResult {
	if r.phase != PhaseOpen {
		return nil
	}
	entries := r.entriesLocked()
	if !r.trigger.Due(now, entries) {
		return nil
	}
	r.trigger.Reset(now)

	r.phase = PhaseResolving
	result := r.rules.Settle(r.rng, entries)
	r.round++
	result.Round = r.round
	result.ResolvedAt = now

	r.phase = PhaseSettled
	for i := range result.Settlements {
		s := &result.Settlements[i]
		s.Notification.Round = r.round
		p, ok := r.players[s.PlayerID]
		if !ok {
			continue
		}
		p.Balance = s.Balance
		p.Record.add(s.Result)
		p.notify(s.Notification)
	}
	for _, p := range r.players {
		p.Pending = nil
	}
	r.history.Append(result)
	r.phase = PhaseOpen

	r.logger.Info("Round resolved", "round", result.Round, "outcome", result.Outcome, "settled", len(result.Settlements))
	return &result
}

func (r *Room) entriesLocked() []Entry {
	entries := make([]Entry, 0, len(r.members))
	for _, id := range r.members {
		p := r.players[id]
		entries = append(entries, Entry{PlayerID: p.ID, Name: p.Name, Balance: p.Balance, Action: p.Pending})
	}
	return entries
}

// Observe returns a copy of the room as seen by viewer. An empty or unknown
// viewer gets the public view only.
func (r *Room) Observe(viewer PlayerID) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		RoomID:  r.id,
		Kind:    r.rules.Kind(),
		Phase:   r.phase,
		Round:   r.round,
		Members: make([]MemberView, 0, len(r.members)),
		History: r.history.Snapshot(),
		Feed:    r.chat.Snapshot(),
	}
	if r.phase == PhaseOpen {
		if left, timed := r.trigger.Remaining(r.clock.Now()); timed {
			secs := int(math.Ceil(left.Seconds()))
			snap.SecondsRemaining = &secs
		}
	}
	for _, id := range r.members {
		p := r.players[id]
		snap.Members = append(snap.Members, MemberView{
			ID:      p.ID,
			Name:    p.Name,
			Balance: p.Balance,
			Ready:   p.Pending != nil,
			Record:  p.Record,
		})
	}
	if p, ok := r.players[viewer]; ok {
		self := &SelfView{ID: p.ID, Name: p.Name, Balance: p.Balance, Pending: p.Pending, Record: p.Record}
		if n, ok := p.peek(); ok {
			self.Notification = &n
		}
		snap.Self = self
	}
	return snap
}

// DrainNotification returns and clears a member's undelivered notification.
func (r *Room) DrainNotification(id PlayerID) (Notification, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return Notification{}, false, fmt.Errorf("%w: player %s in room %s", ErrNotFound, id, r.id)
	}
	n, ok := p.drain()
	return n, ok, nil
}

// PostChat appends a line to the room feed.
func (r *Room) PostChat(id PlayerID, text string) (ChatEntry, error) {
	text, ok := cleanChat(text)
	if !ok {
		return ChatEntry{}, ErrEmptyMessage
	}

	r.mu.Lock()
	p, found := r.players[id]
	if !found {
		r.mu.Unlock()
		return ChatEntry{}, fmt.Errorf("%w: player %s in room %s", ErrNotFound, id, r.id)
	}
	now := r.clock.Now()
	entry := ChatEntry{PlayerID: id, Name: p.Name, Text: text, At: now}
	r.chat.Append(entry)
	r.lastActivity = now
	r.mu.Unlock()

	r.bus.Publish(ChatPostedEvent{RoomID: r.id, Entry: entry, timestamp: now})
	return entry, nil
}

// Summary returns the lobby listing for the room.
func (r *Room) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Summary{
		ID:       r.id,
		Kind:     r.rules.Kind(),
		Phase:    r.phase,
		Members:  len(r.members),
		Capacity: r.rules.Capacity(),
		Round:    r.round,
	}
}

// Joinable reports whether another member can be seated.
func (r *Room) Joinable() bool {
	return r.Summary().Joinable()
}

// Idle reports how long the room has had no members and no activity. It is
// zero while anyone is seated.
func (r *Room) Idle(now time.Time) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.members) > 0 {
		return 0
	}
	return now.Sub(r.lastActivity)
}

package game

import (
	"sync"
	"time"
)

// EventType represents a room event type with type safety
type EventType string

// EventType constants for room domain events
const (
	EventTypePlayerJoined    EventType = "player_joined"
	EventTypePlayerLeft      EventType = "player_left"
	EventTypeActionSubmitted EventType = "action_submitted"
	EventTypeRoundResolved   EventType = "round_resolved"
	EventTypeChatPosted      EventType = "chat_posted"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents anything that happens in a room
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
	Room() string
}

// PlayerJoinedEvent is published when a member takes a seat
type PlayerJoinedEvent struct {
	RoomID    string
	PlayerID  PlayerID
	Name      string
	Members   int
	timestamp time.Time
}

func (e PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Timestamp() time.Time { return e.timestamp }
func (e PlayerJoinedEvent) Room() string         { return e.RoomID }

// PlayerLeftEvent is published when a member leaves
type PlayerLeftEvent struct {
	RoomID    string
	PlayerID  PlayerID
	Name      string
	Members   int
	timestamp time.Time
}

func (e PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }
func (e PlayerLeftEvent) Timestamp() time.Time { return e.timestamp }
func (e PlayerLeftEvent) Room() string         { return e.RoomID }

// ActionSubmittedEvent is published when a member locks in an action. The
// action itself is not included so duel throws stay hidden until settled.
type ActionSubmittedEvent struct {
	RoomID    string
	PlayerID  PlayerID
	Name      string
	timestamp time.Time
}

func (e ActionSubmittedEvent) EventType() EventType { return EventTypeActionSubmitted }
func (e ActionSubmittedEvent) Timestamp() time.Time { return e.timestamp }
func (e ActionSubmittedEvent) Room() string         { return e.RoomID }

// RoundResolvedEvent is published once per settled round
type RoundResolvedEvent struct {
	RoomID    string
	Result    RoundResult
	timestamp time.Time
}

func (e RoundResolvedEvent) EventType() EventType { return EventTypeRoundResolved }
func (e RoundResolvedEvent) Timestamp() time.Time { return e.timestamp }
func (e RoundResolvedEvent) Room() string         { return e.RoomID }

// ChatPostedEvent is published for every chat line
type ChatPostedEvent struct {
	RoomID    string
	Entry     ChatEntry
	timestamp time.Time
}

func (e ChatPostedEvent) EventType() EventType { return EventTypeChatPosted }
func (e ChatPostedEvent) Timestamp() time.Time { return e.timestamp }
func (e ChatPostedEvent) Room() string         { return e.RoomID }

// EventSubscriber can subscribe to room events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory event bus. Publish delivers synchronously
// on the caller's goroutine; rooms publish after releasing their lock, so
// subscribers may call back into the room.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}

// EventSubscriberFunc adapts a function to EventSubscriber. Because funcs
// are not comparable, a func subscriber can only be removed by keeping the
// *EventSubscriberFunc pointer.
type EventSubscriberFunc func(GameEvent)

func (f *EventSubscriberFunc) OnEvent(event GameEvent) { (*f)(event) }

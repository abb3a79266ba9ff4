package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishesInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()

	var order []string
	first := EventSubscriberFunc(func(GameEvent) { order = append(order, "first") })
	second := EventSubscriberFunc(func(GameEvent) { order = append(order, "second") })
	bus.Subscribe(&first)
	bus.Subscribe(&second)

	bus.Publish(ChatPostedEvent{RoomID: "lobby"})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	kept := &recordingSubscriber{}
	dropped := &recordingSubscriber{}
	bus.Subscribe(kept)
	bus.Subscribe(dropped)

	bus.Publish(PlayerJoinedEvent{RoomID: "lobby", Name: "alice"})
	bus.Unsubscribe(dropped)
	bus.Publish(PlayerLeftEvent{RoomID: "lobby", Name: "alice"})

	assert.Equal(t, []EventType{EventTypePlayerJoined, EventTypePlayerLeft}, kept.types())
	assert.Equal(t, []EventType{EventTypePlayerJoined}, dropped.types())

	// Unknown subscribers are ignored.
	bus.Unsubscribe(&recordingSubscriber{})
	bus.Publish(ChatPostedEvent{RoomID: "lobby"})
	assert.Len(t, kept.events, 3)
}

func TestEventBusSubscriberMayUnsubscribeDuringPublish(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	var once EventSubscriberFunc
	once = func(GameEvent) {
		calls++
		bus.Unsubscribe(&once)
	}
	bus.Subscribe(&once)

	bus.Publish(ChatPostedEvent{RoomID: "lobby"})
	bus.Publish(ChatPostedEvent{RoomID: "lobby"})
	assert.Equal(t, 1, calls)
}

func TestEventRoomAndType(t *testing.T) {
	events := []GameEvent{
		PlayerJoinedEvent{RoomID: "R1"},
		PlayerLeftEvent{RoomID: "R1"},
		ActionSubmittedEvent{RoomID: "R1"},
		RoundResolvedEvent{RoomID: "R1"},
		ChatPostedEvent{RoomID: "R1"},
	}
	want := []EventType{
		EventTypePlayerJoined,
		EventTypePlayerLeft,
		EventTypeActionSubmitted,
		EventTypeRoundResolved,
		EventTypeChatPosted,
	}
	require.Len(t, events, len(want))
	for i, e := range events {
		assert.Equal(t, "R1", e.Room())
		assert.Equal(t, want[i], e.EventType())
		assert.Equal(t, string(want[i]), e.EventType().String())
	}
}

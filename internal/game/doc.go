// Package game implements the rooms that players join, act in and poll.
//
// The main type is Room, which owns the members, the round clock, the
// round history and the chat feed of a single game instance. How a round
// is accepted and settled is delegated to a Rules implementation, chosen
// by room kind:
//   - RouletteRules: timed rounds of wagers settled against one spin
//   - DuelRules: two-player rock-paper-scissors, settled once both moved
//
// # Basic Usage
//
//	rules, err := game.NewRules(game.KindRoulette, game.RulesConfig{
//	    Interval:        30 * time.Second,
//	    StartingBalance: game.DefaultStartingBalance,
//	})
//	room := game.NewRoom(game.RoomConfig{ID: "lobby", Rules: rules})
//	_ = room.Join(id, "alice")
//	room.Submit(id, game.Wager{Amount: 10, Selector: "red"})
//	if result, ok := room.Tick(); ok {
//	    // round settled
//	}
//
// # Deterministic Testing
//
// Inject a quartz mock clock and a seeded *rand.Rand through RoomConfig to
// replay spins and round timing exactly:
//
//	mock := quartz.NewMock(t)
//	room := game.NewRoom(game.RoomConfig{
//	    ID: "lobby", Rules: rules, Clock: mock, Rand: randutil.New(42),
//	})
//
// # Events
//
// Every room has an EventBus. Subscribers receive joins, leaves, submitted
// actions, chat posts and settled rounds after the room lock is released,
// so a subscriber may call back into the room.
package game

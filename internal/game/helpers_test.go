package game

import (
	"io"
	rand "math/rand/v2"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestRoulette(t *testing.T, clock quartz.Clock) *Room {
	t.Helper()
	rules, err := NewRules(KindRoulette, RulesConfig{Interval: 30 * time.Second, StartingBalance: 1000})
	if err != nil {
		t.Fatal(err)
	}
	return NewRoom(RoomConfig{ID: "table", Rules: rules, Clock: clock, Rand: newTestRand(7), Logger: testLogger()})
}

func newTestDuel(t *testing.T, clock quartz.Clock) *Room {
	t.Helper()
	rules, err := NewRules(KindDuel, RulesConfig{})
	if err != nil {
		t.Fatal(err)
	}
	return NewRoom(RoomConfig{ID: "R1", Rules: rules, Clock: clock, Logger: testLogger()})
}

type recordingSubscriber struct {
	events []GameEvent
}

func (r *recordingSubscriber) OnEvent(e GameEvent) { r.events = append(r.events, e) }

func (r *recordingSubscriber) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

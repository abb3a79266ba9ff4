package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"
)

// Kind names a room's game.
type Kind string

const (
	KindRoulette Kind = "roulette"
	KindDuel     Kind = "duel"
)

func (k Kind) String() string { return string(k) }

// ParseKind accepts a kind name, case-insensitively. "rps" is an alias for
// duel.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "roulette":
		return KindRoulette, nil
	case "duel", "rps":
		return KindDuel, nil
	}
	return "", fmt.Errorf("unknown room kind %q", s)
}

// Entry is the settlement input for one member: who they are, what they
// hold and what they submitted. Action is nil when the member sat out.
type Entry struct {
	PlayerID PlayerID
	Name     string
	Balance  int
	Action   Action
}

// Result is a member's outcome for one round.
type Result string

const (
	ResultNone     Result = ""
	ResultWin      Result = "win"
	ResultLoss     Result = "loss"
	ResultTie      Result = "tie"
	ResultBankrupt Result = "bankrupt"
)

// Settlement records what a round did to one member. Balance equals the
// previous balance plus Delta plus Bailout.
type Settlement struct {
	PlayerID     PlayerID     `json:"playerId"`
	Name         string       `json:"name"`
	Result       Result       `json:"result"`
	Action       string       `json:"action"`
	Category     string       `json:"category,omitempty"`
	Stake        int          `json:"stake,omitempty"`
	Delta        int          `json:"delta"`
	Bailout      int          `json:"bailout,omitempty"`
	Balance      int          `json:"balance"`
	Notification Notification `json:"-"`
}

// Outcome is the terminal event of a round: a spin or a set of throws.
type Outcome interface {
	fmt.Stringer
	isOutcome()
}

// RoundResult is one resolved round as kept in room history.
type RoundResult struct {
	Round       int          `json:"round"`
	Kind        Kind         `json:"kind"`
	Outcome     Outcome      `json:"outcome"`
	Settlements []Settlement `json:"settlements"`
	ResolvedAt  time.Time    `json:"resolvedAt"`
}

// Rules is the per-kind resolution strategy a room runs.
type Rules interface {
	Kind() Kind
	// Capacity is the member cap; zero means unbounded.
	Capacity() int
	// Required is how many members must be seated before rounds run.
	Required() int
	// Validate rejects actions that cannot take part in this kind of round.
	Validate(a Action, balance int) error
	// NewTrigger builds the round clock, started at now.
	NewTrigger(now time.Time) Trigger
	// Settle resolves one round from a consistent snapshot. It never fails.
	Settle(rng *rand.Rand, entries []Entry) RoundResult
}

// RulesConfig carries the tunables a rules constructor may need.
type RulesConfig struct {
	Interval        time.Duration
	StartingBalance int
}

// NewRules builds the strategy for kind.
func NewRules(kind Kind, cfg RulesConfig) (Rules, error) {
	switch kind {
	case KindRoulette:
		if cfg.Interval <= 0 {
			return nil, fmt.Errorf("roulette interval must be positive, got %s", cfg.Interval)
		}
		if cfg.StartingBalance <= 0 {
			return nil, fmt.Errorf("starting balance must be positive, got %d", cfg.StartingBalance)
		}
		return &RouletteRules{Interval: cfg.Interval, StartingBalance: cfg.StartingBalance}, nil
	case KindDuel:
		return DuelRules{}, nil
	}
	return nil, fmt.Errorf("unknown room kind %q", kind)
}

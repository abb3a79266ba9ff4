package game

import (
	"fmt"
	"strings"
)

// Action is a player's pending decision for the current round. It is either
// a Wager or a Move.
type Action interface {
	fmt.Stringer
	isAction()
}

// Wager stakes Amount on Selector for the next roulette spin. The selector
// is kept as typed by the player and parsed at settlement time.
type Wager struct {
	Amount   int    `json:"amount"`
	Selector string `json:"selector"`
}

func (Wager) isAction() {}

func (w Wager) String() string {
	return fmt.Sprintf("%d on %s", w.Amount, w.Selector)
}

// Move is a duel throw.
type Move struct {
	Choice Choice `json:"choice"`
}

func (Move) isAction() {}

func (m Move) String() string { return m.Choice.String() }

// Choice is one of the three duel throws.
type Choice uint8

const (
	ChoiceNone Choice = iota
	Rock
	Paper
	Scissors
)

var choiceNames = [...]string{"none", "rock", "paper", "scissors"}

func (c Choice) String() string {
	if int(c) < len(choiceNames) {
		return choiceNames[c]
	}
	return fmt.Sprintf("choice(%d)", uint8(c))
}

// Valid reports whether c is a real throw.
func (c Choice) Valid() bool { return c >= Rock && c <= Scissors }

// Beats reports whether c defeats o. Each throw beats exactly one other
// throw: rock > scissors > paper > rock.
func (c Choice) Beats(o Choice) bool {
	if !c.Valid() || !o.Valid() {
		return false
	}
	return (int(c)-int(o)+3)%3 == 1
}

// ParseChoice accepts a throw name, case-insensitively.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rock", "r":
		return Rock, nil
	case "paper", "p":
		return Paper, nil
	case "scissors", "s":
		return Scissors, nil
	}
	return ChoiceNone, fmt.Errorf("%w: unknown choice %q", ErrInvalidAction, s)
}

// MarshalText encodes the throw by name.
func (c Choice) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a throw name.
func (c *Choice) UnmarshalText(b []byte) error {
	parsed, err := ParseChoice(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

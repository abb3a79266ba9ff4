package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"
)

// Throw is one member's move in a duel round.
type Throw struct {
	PlayerID PlayerID `json:"playerId"`
	Name     string   `json:"name"`
	Choice   Choice   `json:"choice"`
}

// DuelOutcome lists the throws of a resolved duel, in seat order.
type DuelOutcome struct {
	Throws []Throw `json:"throws"`
}

func (DuelOutcome) isOutcome() {}

func (o DuelOutcome) String() string {
	parts := make([]string, len(o.Throws))
	for i, t := range o.Throws {
		parts[i] = fmt.Sprintf("%s:%s", t.Name, t.Choice)
	}
	return strings.Join(parts, " vs ")
}

// Compare returns the result of a against b.
func Compare(a, b Choice) Result {
	switch {
	case a == b:
		return ResultTie
	case a.Beats(b):
		return ResultWin
	default:
		return ResultLoss
	}
}

// DuelRules is two-seat rock-paper-scissors. Rounds resolve as soon as both
// seats have thrown; balances are never touched.
type DuelRules struct{}

func (DuelRules) Kind() Kind    { return KindDuel }
func (DuelRules) Capacity() int { return 2 }
func (DuelRules) Required() int { return 2 }

func (DuelRules) Validate(a Action, _ int) error {
	m, ok := a.(Move)
	if !ok {
		return fmt.Errorf("%w: duels take moves, got %T", ErrInvalidAction, a)
	}
	if !m.Choice.Valid() {
		return fmt.Errorf("%w: unknown choice %s", ErrInvalidAction, m.Choice)
	}
	return nil
}

func (DuelRules) NewTrigger(time.Time) Trigger { return ActionTrigger{Required: 2} }

// Settle compares the two throws. The generator is unused: duels are
// decided by the players alone.
func (DuelRules) Settle(_ *rand.Rand, entries []Entry) RoundResult {
	result := RoundResult{Kind: KindDuel}

	var throws []Throw
	for _, e := range entries {
		if m, ok := e.Action.(Move); ok {
			throws = append(throws, Throw{PlayerID: e.PlayerID, Name: e.Name, Choice: m.Choice})
		}
	}
	result.Outcome = DuelOutcome{Throws: throws}
	if len(throws) != 2 {
		return result
	}

	for i, t := range throws {
		other := throws[1-i]
		res := Compare(t.Choice, other.Choice)

		var n Notification
		switch res {
		case ResultWin:
			n = newNotice(NoticeWin, "You won: %s beats %s.", t.Choice, other.Choice)
		case ResultLoss:
			n = newNotice(NoticeLoss, "You lost: %s beats %s.", other.Choice, t.Choice)
		default:
			n = newNotice(NoticeTie, "Tie: you both threw %s.", t.Choice)
		}

		var balance int
		for _, e := range entries {
			if e.PlayerID == t.PlayerID {
				balance = e.Balance
			}
		}
		result.Settlements = append(result.Settlements, Settlement{
			PlayerID:     t.PlayerID,
			Name:         t.Name,
			Result:       res,
			Action:       t.Choice.String(),
			Category:     t.Choice.String(),
			Balance:      balance,
			Notification: n,
		})
	}
	return result
}

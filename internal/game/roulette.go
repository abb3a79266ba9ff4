package game

import (
	"fmt"
	rand "math/rand/v2"
	"time"
)

// WheelSize is the number of pockets, 0 through 36.
const WheelSize = 37

// Color is a pocket's colour.
type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Black Color = "black"
)

var redPockets = [WheelSize]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ColorOf maps a pocket to its colour. Zero is the only green pocket.
func ColorOf(n int) Color {
	switch {
	case n == 0:
		return Green
	case n > 0 && n < WheelSize && redPockets[n]:
		return Red
	default:
		return Black
	}
}

// SpinOutcome is the pocket a roulette round landed on.
type SpinOutcome struct {
	Number int   `json:"number"`
	Color  Color `json:"color"`
}

func (SpinOutcome) isOutcome() {}

func (o SpinOutcome) String() string { return fmt.Sprintf("%d %s", o.Number, o.Color) }

// RouletteRules settles wagers against one spin per interval. Members join a
// single unbounded table.
type RouletteRules struct {
	Interval        time.Duration
	StartingBalance int
}

func (r *RouletteRules) Kind() Kind    { return KindRoulette }
func (r *RouletteRules) Capacity() int { return 0 }
func (r *RouletteRules) Required() int { return 1 }

func (r *RouletteRules) Validate(a Action, balance int) error {
	w, ok := a.(Wager)
	if !ok {
		return fmt.Errorf("%w: roulette takes wagers, got %T", ErrInvalidAction, a)
	}
	if w.Amount <= 0 {
		return fmt.Errorf("%w: wager must be positive, got %d", ErrInvalidAction, w.Amount)
	}
	if w.Amount > balance {
		return fmt.Errorf("%w: wager %d exceeds balance %d", ErrInvalidAction, w.Amount, balance)
	}
	return nil
}

func (r *RouletteRules) NewTrigger(now time.Time) Trigger {
	return NewTimerTrigger(r.Interval, now)
}

// Settle spins the wheel and settles every wager against it.
func (r *RouletteRules) Settle(rng *rand.Rand, entries []Entry) RoundResult {
	return r.SettleSpin(rng.IntN(WheelSize), entries)
}

// SettleSpin settles entries against a known pocket. Members without a
// wager are left out of the result entirely.
func (r *RouletteRules) SettleSpin(n int, entries []Entry) RoundResult {
	outcome := SpinOutcome{Number: n, Color: ColorOf(n)}
	result := RoundResult{Kind: KindRoulette, Outcome: outcome}

	for _, e := range entries {
		w, ok := e.Action.(Wager)
		if !ok {
			continue
		}

		sel := ParseSelector(w.Selector)
		s := Settlement{
			PlayerID: e.PlayerID,
			Name:     e.Name,
			Action:   w.String(),
			Category: sel.Kind.String(),
			Stake:    w.Amount,
		}
		if mult, won := sel.Multiplier(n); won {
			s.Delta = w.Amount * mult
			s.Result = ResultWin
			s.Notification = newNotice(NoticeWin, "You won %d with %s!", s.Delta, w.Selector)
		} else {
			s.Delta = -w.Amount
			s.Result = ResultLoss
			s.Notification = newNotice(NoticeLoss, "Lost %d on %s.", w.Amount, w.Selector)
		}

		s.Balance = e.Balance + s.Delta
		if s.Balance <= 0 {
			s.Bailout = r.StartingBalance - s.Balance
			s.Balance = r.StartingBalance
			s.Result = ResultBankrupt
			s.Notification = newNotice(NoticeBankrupt, "Bankrupt! The house reset your balance to %d.", r.StartingBalance)
		}
		result.Settlements = append(result.Settlements, s)
	}
	return result
}

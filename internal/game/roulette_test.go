package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoulette() *RouletteRules {
	return &RouletteRules{Interval: 30 * time.Second, StartingBalance: 1000}
}

func TestColorOf(t *testing.T) {
	assert.Equal(t, Green, ColorOf(0))

	reds := 0
	for n := 1; n < WheelSize; n++ {
		c := ColorOf(n)
		require.NotEqual(t, Green, c, "only zero is green")
		if c == Red {
			reds++
		}
	}
	assert.Equal(t, 18, reds)
	assert.Equal(t, Red, ColorOf(7))
	assert.Equal(t, Black, ColorOf(8))
	assert.Equal(t, Red, ColorOf(12))
	assert.Equal(t, Black, ColorOf(13))
}

func TestSelectorMultiplier(t *testing.T) {
	tests := []struct {
		selector string
		spin     int
		mult     int
		win      bool
	}{
		{"7", 7, 35, true},
		{"7", 8, 0, false},
		{"0", 0, 35, true},
		{"red", 7, 1, true},
		{"RED", 8, 0, false},
		{"black", 8, 1, true},
		{"black", 0, 0, false},
		{"even", 12, 1, true},
		{"even", 0, 0, false},
		{"odd", 13, 1, true},
		{"odd", 0, 0, false},
		{"1st12", 12, 2, true},
		{"1st12", 13, 0, false},
		{"d2", 13, 2, true},
		{"2nd12", 24, 2, true},
		{"3rd12", 36, 2, true},
		{"3rd12", 0, 0, false},
		{"green", 0, 1, true},
		{"Green", 7, 0, false},
		{"37", 37, 0, false},
		{"", 5, 0, false},
		{"banana", 5, 0, false},
	}
	for _, tt := range tests {
		mult, win := ParseSelector(tt.selector).Multiplier(tt.spin)
		assert.Equal(t, tt.win, win, "selector %q on %d", tt.selector, tt.spin)
		assert.Equal(t, tt.mult, mult, "selector %q on %d", tt.selector, tt.spin)
	}
}

func TestRouletteExactNumberWin(t *testing.T) {
	r := testRoulette()
	entries := []Entry{{PlayerID: "p1", Name: "Alice", Balance: 1000, Action: Wager{Amount: 500, Selector: "7"}}}

	result := r.SettleSpin(7, entries)
	require.Len(t, result.Settlements, 1)
	s := result.Settlements[0]
	assert.Equal(t, ResultWin, s.Result)
	assert.Equal(t, 17500, s.Delta)
	assert.Equal(t, 18500, s.Balance)
	assert.Equal(t, NoticeWin, s.Notification.Kind)
	assert.Equal(t, SpinOutcome{Number: 7, Color: Red}, result.Outcome)
	assert.Equal(t, "number", s.Category)
	assert.Equal(t, 500, s.Stake)
}

func TestSelectorKindString(t *testing.T) {
	assert.Equal(t, "number", ParseSelector("17").Kind.String())
	assert.Equal(t, "color", ParseSelector("Black").Kind.String())
	assert.Equal(t, "parity", ParseSelector("odd").Kind.String())
	assert.Equal(t, "dozen", ParseSelector("d2").Kind.String())
	assert.Equal(t, "color", ParseSelector("green").Kind.String())
	assert.Equal(t, "unmatched", ParseSelector("banana").Kind.String())
}

func TestRouletteGreenPaysOnZero(t *testing.T) {
	r := testRoulette()
	entries := []Entry{{PlayerID: "p1", Name: "Alice", Balance: 1000, Action: Wager{Amount: 100, Selector: "green"}}}

	result := r.SettleSpin(0, entries)
	require.Len(t, result.Settlements, 1)
	s := result.Settlements[0]
	assert.Equal(t, ResultWin, s.Result)
	assert.Equal(t, 100, s.Delta)
	assert.Equal(t, 1100, s.Balance)
	assert.Equal(t, "color", s.Category)

	result = r.SettleSpin(5, entries)
	assert.Equal(t, 900, result.Settlements[0].Balance)
}

func TestRouletteLossWithoutBankruptcy(t *testing.T) {
	r := testRoulette()
	entries := []Entry{{PlayerID: "p1", Name: "Alice", Balance: 1000, Action: Wager{Amount: 500, Selector: "7"}}}

	// 12 is red like 7, but the wager is on the number, not the colour.
	result := r.SettleSpin(12, entries)
	require.Len(t, result.Settlements, 1)
	s := result.Settlements[0]
	assert.Equal(t, ResultLoss, s.Result)
	assert.Equal(t, -500, s.Delta)
	assert.Equal(t, 500, s.Balance)
	assert.Zero(t, s.Bailout)
	assert.Equal(t, NoticeLoss, s.Notification.Kind)
}

func TestRouletteBankruptcyResets(t *testing.T) {
	r := testRoulette()
	entries := []Entry{{PlayerID: "p1", Name: "Alice", Balance: 40, Action: Wager{Amount: 40, Selector: "black"}}}

	result := r.SettleSpin(7, entries)
	require.Len(t, result.Settlements, 1)
	s := result.Settlements[0]
	assert.Equal(t, ResultBankrupt, s.Result)
	assert.Equal(t, -40, s.Delta)
	assert.Equal(t, 1000, s.Bailout)
	assert.Equal(t, 1000, s.Balance)
	assert.Equal(t, NoticeBankrupt, s.Notification.Kind, "bankruptcy replaces the loss notice")
}

func TestRouletteSkipsMembersWithoutWager(t *testing.T) {
	r := testRoulette()
	entries := []Entry{
		{PlayerID: "p1", Name: "Alice", Balance: 1000},
		{PlayerID: "p2", Name: "Bob", Balance: 1000, Action: Wager{Amount: 10, Selector: "red"}},
	}

	result := r.SettleSpin(3, entries)
	require.Len(t, result.Settlements, 1)
	assert.Equal(t, PlayerID("p2"), result.Settlements[0].PlayerID)
}

func TestRouletteConservation(t *testing.T) {
	r := testRoulette()
	selectors := []string{"0", "7", "36", "red", "black", "even", "odd", "1st12", "2nd12", "3rd12", "junk"}

	for spin := 0; spin < WheelSize; spin++ {
		var entries []Entry
		expected := 0
		for i, sel := range selectors {
			amount := 10 * (i + 1)
			entries = append(entries, Entry{
				PlayerID: PlayerID(sel),
				Name:     sel,
				Balance:  100000,
				Action:   Wager{Amount: amount, Selector: sel},
			})
			if mult, win := ParseSelector(sel).Multiplier(spin); win {
				expected += amount * mult
			} else {
				expected -= amount
			}
		}

		result := r.SettleSpin(spin, entries)
		total := 0
		for i, s := range result.Settlements {
			total += s.Delta
			assert.Zero(t, s.Bailout, "no one goes bankrupt from 100000")
			assert.Equal(t, entries[i].Balance+s.Delta, s.Balance)
		}
		assert.Equal(t, expected, total, "spin %d", spin)
	}
}

func TestRouletteBankruptcyFloor(t *testing.T) {
	r := testRoulette()
	for balance := 1; balance <= 60; balance++ {
		for amount := 1; amount <= balance; amount++ {
			result := r.SettleSpin(0, []Entry{{PlayerID: "p", Balance: balance, Action: Wager{Amount: amount, Selector: "red"}}})
			s := result.Settlements[0]
			require.Positive(t, s.Balance)
			if balance-amount <= 0 {
				require.Equal(t, r.StartingBalance, s.Balance)
				require.Equal(t, ResultBankrupt, s.Result)
			} else {
				require.Equal(t, balance-amount, s.Balance)
			}
			require.Equal(t, balance+s.Delta+s.Bailout, s.Balance)
		}
	}
}

func TestRouletteValidate(t *testing.T) {
	r := testRoulette()
	assert.NoError(t, r.Validate(Wager{Amount: 100, Selector: "red"}, 100))
	assert.ErrorIs(t, r.Validate(Wager{Amount: 0, Selector: "red"}, 100), ErrInvalidAction)
	assert.ErrorIs(t, r.Validate(Wager{Amount: 101, Selector: "red"}, 100), ErrInvalidAction)
	assert.ErrorIs(t, r.Validate(Move{Choice: Rock}, 100), ErrInvalidAction)
	// Unknown selectors are accepted and simply lose.
	assert.NoError(t, r.Validate(Wager{Amount: 5, Selector: "purple"}, 100))
}

func TestRouletteSettleUsesRand(t *testing.T) {
	r := testRoulette()
	rng := newTestRand(1)
	for i := 0; i < 200; i++ {
		result := r.Settle(rng, nil)
		spin := result.Outcome.(SpinOutcome)
		require.GreaterOrEqual(t, spin.Number, 0)
		require.Less(t, spin.Number, WheelSize)
		require.Equal(t, ColorOf(spin.Number), spin.Color)
	}
}

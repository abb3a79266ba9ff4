package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allChoices = []Choice{Rock, Paper, Scissors}

func TestDuelSymmetry(t *testing.T) {
	for _, a := range allChoices {
		assert.False(t, a.Beats(a), "%s must not beat itself", a)
		assert.Equal(t, ResultTie, Compare(a, a))

		beats, losesTo := 0, 0
		for _, b := range allChoices {
			if a == b {
				continue
			}
			require.True(t, a.Beats(b) != b.Beats(a), "exactly one of %s/%s wins", a, b)
			if a.Beats(b) {
				beats++
				assert.Equal(t, ResultWin, Compare(a, b))
			} else {
				losesTo++
				assert.Equal(t, ResultLoss, Compare(a, b))
			}
		}
		assert.Equal(t, 1, beats, "%s beats exactly one throw", a)
		assert.Equal(t, 1, losesTo, "%s loses to exactly one throw", a)
	}
}

func TestDuelCycle(t *testing.T) {
	assert.True(t, Rock.Beats(Scissors))
	assert.True(t, Scissors.Beats(Paper))
	assert.True(t, Paper.Beats(Rock))
	assert.False(t, ChoiceNone.Beats(Rock))
}

func TestDuelSettle(t *testing.T) {
	entries := []Entry{
		{PlayerID: "a", Name: "Alice", Balance: 1000, Action: Move{Choice: Rock}},
		{PlayerID: "b", Name: "Bob", Balance: 1000, Action: Move{Choice: Scissors}},
	}
	result := DuelRules{}.Settle(nil, entries)

	require.Len(t, result.Settlements, 2)
	assert.Equal(t, ResultWin, result.Settlements[0].Result)
	assert.Equal(t, ResultLoss, result.Settlements[1].Result)
	for _, s := range result.Settlements {
		assert.Zero(t, s.Delta)
		assert.Equal(t, 1000, s.Balance)
	}
	assert.Equal(t, "Alice:rock vs Bob:scissors", result.Outcome.String())
}

func TestDuelSettleTie(t *testing.T) {
	entries := []Entry{
		{PlayerID: "a", Name: "Alice", Action: Move{Choice: Paper}},
		{PlayerID: "b", Name: "Bob", Action: Move{Choice: Paper}},
	}
	result := DuelRules{}.Settle(nil, entries)
	for _, s := range result.Settlements {
		assert.Equal(t, ResultTie, s.Result)
		assert.Equal(t, NoticeTie, s.Notification.Kind)
	}
}

func TestDuelValidate(t *testing.T) {
	r := DuelRules{}
	assert.NoError(t, r.Validate(Move{Choice: Rock}, 0))
	assert.ErrorIs(t, r.Validate(Move{}, 0), ErrInvalidAction)
	assert.ErrorIs(t, r.Validate(Wager{Amount: 1, Selector: "red"}, 10), ErrInvalidAction)
}

func TestParseChoice(t *testing.T) {
	c, err := ParseChoice(" Rock ")
	require.NoError(t, err)
	assert.Equal(t, Rock, c)

	c, err = ParseChoice("s")
	require.NoError(t, err)
	assert.Equal(t, Scissors, c)

	_, err = ParseChoice("lizard")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestMoveJSON(t *testing.T) {
	b, err := json.Marshal(Move{Choice: Paper})
	require.NoError(t, err)
	assert.JSONEq(t, `{"choice":"paper"}`, string(b))

	var m Move
	require.NoError(t, json.Unmarshal([]byte(`{"choice":"scissors"}`), &m))
	assert.Equal(t, Scissors, m.Choice)
}

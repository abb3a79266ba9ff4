package bot

import (
	rand "math/rand/v2"

	"github.com/lox/roundtable/internal/game"
)

var choices = [...]game.Choice{game.Rock, game.Paper, game.Scissors}

// RandomThrower throws uniformly at random.
type RandomThrower struct {
	rng *rand.Rand
}

func NewRandomThrower(rng *rand.Rand) *RandomThrower {
	return &RandomThrower{rng: rng}
}

func (t *RandomThrower) Name() string { return "random" }

func (t *RandomThrower) Decide(game.Snapshot) game.Action {
	return game.Move{Choice: choices[t.rng.IntN(len(choices))]}
}

// CycleThrower throws rock, paper, scissors in turn, advancing once per
// settled round.
type CycleThrower struct {
	start game.Choice
}

func NewCycleThrower(start game.Choice) *CycleThrower {
	return &CycleThrower{start: start}
}

func (t *CycleThrower) Name() string { return "cycle" }

func (t *CycleThrower) Decide(view game.Snapshot) game.Action {
	offset := 0
	for i, c := range choices {
		if c == t.start {
			offset = i
		}
	}
	return game.Move{Choice: choices[(offset+view.Round)%len(choices)]}
}

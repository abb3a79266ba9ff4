package bot

import (
	rand "math/rand/v2"

	"github.com/lox/roundtable/internal/game"
)

// randomSelectors are the outside bets plus a few straight-up numbers.
var randomSelectors = []string{
	"red", "black", "even", "odd", "1st12", "2nd12", "3rd12", "0", "7", "17", "32",
}

// FlatBettor stakes the same amount on the same selector every round.
type FlatBettor struct {
	Selector string
	Amount   int
}

func NewFlatBettor(selector string, amount int) *FlatBettor {
	return &FlatBettor{Selector: selector, Amount: amount}
}

func (b *FlatBettor) Name() string { return "flat:" + b.Selector }

func (b *FlatBettor) Decide(view game.Snapshot) game.Action {
	if view.Self == nil || view.Self.Balance <= 0 {
		return nil
	}
	return game.Wager{Amount: min(b.Amount, view.Self.Balance), Selector: b.Selector}
}

// RandomBettor stakes up to a tenth of its balance on a random selector.
type RandomBettor struct {
	rng *rand.Rand
}

func NewRandomBettor(rng *rand.Rand) *RandomBettor {
	return &RandomBettor{rng: rng}
}

func (b *RandomBettor) Name() string { return "random" }

func (b *RandomBettor) Decide(view game.Snapshot) game.Action {
	if view.Self == nil || view.Self.Balance <= 0 {
		return nil
	}
	amount := 1 + b.rng.IntN(max(1, view.Self.Balance/10))
	selector := randomSelectors[b.rng.IntN(len(randomSelectors))]
	return game.Wager{Amount: amount, Selector: selector}
}

// Package bot provides simple automated players for roulette and duel rooms.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/lox/roundtable/internal/game"
)

// Strategy picks the next action for a seat given what it can observe. A
// nil action means sit this round out.
type Strategy interface {
	Name() string
	Decide(view game.Snapshot) game.Action
}

// Names lists the strategy names New accepts for a kind.
func Names(kind game.Kind) []string {
	switch kind {
	case game.KindRoulette:
		return []string{"flat", "flat:<selector>", "random"}
	case game.KindDuel:
		return []string{"random", "cycle"}
	}
	return nil
}

// New builds a strategy by name. Roulette accepts "flat" (red), "flat:<selector>"
// and "random"; duel accepts "random" and "cycle".
func New(kind game.Kind, name string, rng *rand.Rand) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	base, arg, _ := strings.Cut(name, ":")

	switch kind {
	case game.KindRoulette:
		switch base {
		case "flat":
			if arg == "" {
				arg = "red"
			}
			return NewFlatBettor(arg, 10), nil
		case "random", "rand":
			return NewRandomBettor(rng), nil
		}
	case game.KindDuel:
		switch base {
		case "random", "rand":
			return NewRandomThrower(rng), nil
		case "cycle":
			return NewCycleThrower(game.Rock), nil
		}
	}
	return nil, fmt.Errorf("unknown %s strategy %q", kind, name)
}

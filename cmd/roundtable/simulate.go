package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/lox/roundtable/cmd/roundtable/shared"
	"github.com/lox/roundtable/internal/game"
	"github.com/lox/roundtable/internal/randutil"
	"github.com/lox/roundtable/internal/simulator"
)

// SimulateCmd runs bots against an in-process coordinator
type SimulateCmd struct {
	Kind       string        `short:"k" default:"roulette" enum:"roulette,duel,rps" help:"Room kind to simulate (roulette, duel)"`
	Bots       int           `short:"b" default:"4" help:"Number of bots"`
	Strategies []string      `short:"s" default:"random" help:"Bot strategies, assigned round-robin"`
	Rounds     int           `short:"r" default:"20" help:"Rounds to settle in every room"`
	Interval   time.Duration `default:"20ms" help:"Roulette round interval"`
	Poll       time.Duration `default:"2ms" help:"Bot poll interval"`
	Balance    int           `default:"1000" help:"Starting balance for every bot"`
	Seed       *int64        `help:"RNG seed (random when unset)"`
	Timeout    time.Duration `default:"2m" help:"Give up after this long"`
	LogLevel   string        `short:"l" default:"warn" help:"Log level"`
}

func (c *SimulateCmd) Run() error {
	logger, err := shared.SetupLogger(c.LogLevel)
	if err != nil {
		return err
	}

	kind, err := game.ParseKind(c.Kind)
	if err != nil {
		return err
	}

	seed := randutil.Resolve(c.Seed)

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	sim := simulator.New(simulator.Config{
		Kind:            kind,
		Bots:            c.Bots,
		Strategies:      c.Strategies,
		Rounds:          c.Rounds,
		Interval:        c.Interval,
		Poll:            c.Poll,
		StartingBalance: c.Balance,
		Seed:            seed,
		Timeout:         c.Timeout,
		Logger:          logger,
	})
	report, err := sim.Run(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return errors.New("simulation interrupted")
		}
		return err
	}

	simulator.PrintSummary(os.Stdout, report)
	return nil
}

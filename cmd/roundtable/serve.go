package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/roundtable/cmd/roundtable/shared"
	"github.com/lox/roundtable/internal/randutil"
	"github.com/lox/roundtable/internal/server"
)

// ServeCmd runs the coordinator and its WebSocket host
type ServeCmd struct {
	Config   string `short:"c" default:"roundtable.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	Port     int    `short:"p" help:"Port to listen on (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for every room (optional)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := shared.SetupLogger(cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	seed := randutil.Resolve(c.Seed)
	logger.Info("Using seed", "seed", seed, "deterministic", c.Seed != nil)

	defaults := server.DefaultDefaults()
	defaults.StartingBalance = cfg.Server.StartingBalance
	coordinator := server.NewCoordinator(logger,
		server.WithSeed(seed),
		server.WithDefaults(defaults),
	)

	specs, err := cfg.RoomSpecs()
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if _, err := coordinator.CreateRoomWithSpec(spec); err != nil {
			return fmt.Errorf("creating room %q: %w", spec.ID, err)
		}
	}

	srv := server.NewServer(cfg.GetServerAddress(), logger, coordinator)
	logger.Info("Starting roundtable",
		"version", version,
		"addr", cfg.GetServerAddress(),
		"rooms", len(specs),
		"tick", cfg.TickEvery(),
		"roomTTL", cfg.RoomTTL())

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		return coordinator.Run(ctx, cfg.TickEvery(), cfg.RoomTTL())
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}

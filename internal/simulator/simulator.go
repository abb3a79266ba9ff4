package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/roundtable/internal/bot"
	"github.com/lox/roundtable/internal/game"
	"github.com/lox/roundtable/internal/randutil"
	"github.com/lox/roundtable/internal/server"
	"github.com/lox/roundtable/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Kind            game.Kind
	Bots            int
	Strategies      []string // assigned to bots round-robin
	Rounds          int      // rounds to settle in every room
	Interval        time.Duration
	Poll            time.Duration
	StartingBalance int
	Seed            int64
	Timeout         time.Duration
	Clock           quartz.Clock
	Logger          *log.Logger
}

// PlayerReport is one bot's final standing
type PlayerReport struct {
	Name         string
	Room         string
	Strategy     string
	Balance      int
	Net          int
	Bailouts     int
	Bankruptcies int
	Record       game.Record
}

// Report summarises a finished simulation
type Report struct {
	Kind            game.Kind
	Seed            int64
	StartingBalance int
	Rounds          map[string]int
	Players         []PlayerReport
	Stats           *statistics.Statistics
	Elapsed         time.Duration
}

// Simulator runs bots against an in-process coordinator
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Bots == 0 {
		config.Bots = 4
	}
	if len(config.Strategies) == 0 {
		config.Strategies = []string{"random"}
	}
	if config.Rounds == 0 {
		config.Rounds = 10
	}
	if config.Interval == 0 {
		config.Interval = 50 * time.Millisecond
	}
	if config.Poll == 0 {
		config.Poll = 5 * time.Millisecond
	}
	if config.StartingBalance == 0 {
		config.StartingBalance = game.DefaultStartingBalance
	}
	if config.Timeout == 0 {
		config.Timeout = time.Minute
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

type seat struct {
	room     string
	id       game.PlayerID
	name     string
	strategy bot.Strategy
}

// Run seats the bots, lets them poll until every room has settled the
// configured number of rounds and returns the tally.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	cfg := s.config
	if cfg.Bots < 1 {
		return nil, fmt.Errorf("need at least one bot, got %d", cfg.Bots)
	}
	if cfg.Kind == game.KindDuel && cfg.Bots%2 != 0 {
		return nil, fmt.Errorf("duels need an even number of bots, got %d", cfg.Bots)
	}
	if cfg.Rounds < 1 {
		return nil, fmt.Errorf("need at least one round, got %d", cfg.Rounds)
	}

	logger := cfg.Logger.WithPrefix("simulator")
	coordinator := server.NewCoordinator(cfg.Logger,
		server.WithClock(cfg.Clock),
		server.WithSeed(cfg.Seed),
		server.WithIDSource(randutil.Reader(cfg.Seed, "player-ids")),
		server.WithDefaults(server.Defaults{
			Interval:        cfg.Interval,
			StartingBalance: cfg.StartingBalance,
			HistoryLimit:    game.DefaultHistoryLimit,
			FeedLimit:       game.DefaultFeedLimit,
		}),
	)

	tally := newTally()
	seats, err := s.seat(coordinator, tally)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting simulation", "kind", cfg.Kind, "bots", len(seats), "rounds", cfg.Rounds, "seed", cfg.Seed)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, st := range seats {
		g.Go(func() error {
			return s.play(ctx, coordinator, st)
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("simulation timed out after %v (seed: %d)", cfg.Timeout, cfg.Seed)
		}
		return nil, err
	}

	report := &Report{
		Kind:            cfg.Kind,
		Seed:            cfg.Seed,
		StartingBalance: cfg.StartingBalance,
		Rounds:          make(map[string]int),
		Elapsed:         time.Since(start),
	}
	for _, summary := range coordinator.ListRooms() {
		report.Rounds[summary.ID] = summary.Round
	}
	for _, st := range seats {
		snap, err := coordinator.Observe(st.room, st.id)
		if err != nil {
			return nil, err
		}
		pr := tally.player(st.id)
		pr.Name = st.name
		pr.Room = st.room
		pr.Strategy = st.strategy.Name()
		pr.Balance = snap.Self.Balance
		pr.Record = snap.Self.Record
		report.Players = append(report.Players, pr)
	}
	report.Stats = tally.stats()

	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("report validation failed: %w", err)
	}
	logger.Info("Simulation finished", "elapsed", report.Elapsed, "settlements", report.Stats.Settlements)
	return report, nil
}

// seat creates the rooms and joins every bot.
func (s *Simulator) seat(coordinator *server.Coordinator, tally *tally) ([]seat, error) {
	cfg := s.config

	var roomIDs []string
	switch cfg.Kind {
	case game.KindRoulette:
		roomIDs = []string{"roulette"}
	case game.KindDuel:
		for i := range cfg.Bots / 2 {
			roomIDs = append(roomIDs, fmt.Sprintf("duel-%d", i+1))
		}
	default:
		return nil, fmt.Errorf("unknown room kind %q", cfg.Kind)
	}
	for _, id := range roomIDs {
		room, err := coordinator.CreateRoom(id, cfg.Kind)
		if err != nil {
			return nil, err
		}
		room.Events().Subscribe(tally)
	}

	seats := make([]seat, 0, cfg.Bots)
	for i := range cfg.Bots {
		name := fmt.Sprintf("bot%d", i+1)
		strategyName := cfg.Strategies[i%len(cfg.Strategies)]
		strategy, err := bot.New(cfg.Kind, strategyName, randutil.Derive(cfg.Seed, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w (choose from %s)", name, err, strings.Join(bot.Names(cfg.Kind), ", "))
		}

		roomID := roomIDs[i*len(roomIDs)/cfg.Bots]
		id, err := coordinator.Join(roomID, name)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat{room: roomID, id: id, name: name, strategy: strategy})
	}
	return seats, nil
}

// play is one bot's poll loop: tick, observe, act, drain, wait.
func (s *Simulator) play(ctx context.Context, coordinator *server.Coordinator, st seat) error {
	ticker := s.config.Clock.NewTicker(s.config.Poll, "simulator", "poll")
	defer ticker.Stop()

	for {
		if _, _, err := coordinator.Tick(st.room); err != nil {
			return err
		}
		snap, err := coordinator.Observe(st.room, st.id)
		if err != nil {
			return err
		}
		if snap.Round >= s.config.Rounds {
			return nil
		}

		if snap.Self != nil && snap.Self.Pending == nil {
			if action := st.strategy.Decide(snap); action != nil {
				_, err := coordinator.SubmitAction(st.room, st.id, action)
				if err != nil && !errors.Is(err, game.ErrInvalidAction) {
					return err
				}
			}
		}
		if _, _, err := coordinator.DrainNotification(st.id); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Validate checks that every balance is explained by its settlements.
func (r *Report) Validate() error {
	if r.Stats != nil && r.Stats.Settlements > 0 {
		if err := r.Stats.Validate(); err != nil {
			return err
		}
	}
	for _, p := range r.Players {
		if want := r.StartingBalance + p.Net + p.Bailouts; p.Balance != want {
			return fmt.Errorf("%s: balance %d, settlements explain %d", p.Name, p.Balance, want)
		}
		if p.Balance < 0 {
			return fmt.Errorf("%s: negative balance %d", p.Name, p.Balance)
		}
	}
	return nil
}

// tally accumulates settlements from room events.
type tally struct {
	mu      sync.Mutex
	players map[game.PlayerID]*PlayerReport
	results []statistics.SettlementResult
}

func newTally() *tally {
	return &tally{players: make(map[game.PlayerID]*PlayerReport)}
}

func (t *tally) OnEvent(event game.GameEvent) {
	e, ok := event.(game.RoundResolvedEvent)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range e.Result.Settlements {
		p, ok := t.players[s.PlayerID]
		if !ok {
			p = &PlayerReport{}
			t.players[s.PlayerID] = p
		}
		p.Net += s.Delta
		p.Bailouts += s.Bailout
		if s.Result == game.ResultBankrupt {
			p.Bankruptcies++
		}
		t.results = append(t.results, statistics.SettlementResult{
			Room:     e.RoomID,
			Round:    e.Result.Round,
			Result:   string(s.Result),
			Category: s.Category,
			Staked:   s.Stake,
			Delta:    s.Delta,
			Bailout:  s.Bailout,
		})
	}
}

func (t *tally) player(id game.PlayerID) PlayerReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.players[id]; ok {
		return *p
	}
	return PlayerReport{}
}

func (t *tally) stats() *statistics.Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	results := slices.Clone(t.results)
	slices.SortStableFunc(results, func(a, b statistics.SettlementResult) int {
		if c := strings.Compare(a.Room, b.Room); c != 0 {
			return c
		}
		return a.Round - b.Round
	})

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	return stats
}

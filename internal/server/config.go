package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/roundtable/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  []RoomConfig   `hcl:"room,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address         string `hcl:"address,optional"`
	Port            int    `hcl:"port,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	TickInterval    string `hcl:"tick_interval,optional"`
	RoomTTL         string `hcl:"room_ttl,optional"`
	StartingBalance int    `hcl:"starting_balance,optional"`
}

// RoomConfig defines a room created at startup
type RoomConfig struct {
	Name            string `hcl:"name,label"`
	Kind            string `hcl:"kind"`
	Interval        string `hcl:"interval,optional"`
	StartingBalance int    `hcl:"starting_balance,optional"`
	HistoryLimit    int    `hcl:"history_limit,optional"`
	FeedLimit       int    `hcl:"feed_limit,optional"`
}

const (
	defaultAddress      = "localhost"
	defaultPort         = 8080
	defaultLogLevel     = "info"
	defaultTickInterval = "1s"
	defaultRoomTTL      = "0s"
	defaultRoomInterval = "30s"
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:         defaultAddress,
			Port:            defaultPort,
			LogLevel:        defaultLogLevel,
			TickInterval:    defaultTickInterval,
			RoomTTL:         defaultRoomTTL,
			StartingBalance: game.DefaultStartingBalance,
		},
		Rooms: []RoomConfig{
			{
				Name:            "lobby",
				Kind:            string(game.KindRoulette),
				Interval:        defaultRoomInterval,
				StartingBalance: game.DefaultStartingBalance,
				HistoryLimit:    game.DefaultHistoryLimit,
				FeedLimit:       game.DefaultFeedLimit,
			},
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = defaultLogLevel
	}
	if c.Server.TickInterval == "" {
		c.Server.TickInterval = defaultTickInterval
	}
	if c.Server.RoomTTL == "" {
		c.Server.RoomTTL = defaultRoomTTL
	}
	if c.Server.StartingBalance == 0 {
		c.Server.StartingBalance = game.DefaultStartingBalance
	}

	for i := range c.Rooms {
		room := &c.Rooms[i]
		if room.Interval == "" && room.Kind == string(game.KindRoulette) {
			room.Interval = defaultRoomInterval
		}
		if room.StartingBalance == 0 {
			room.StartingBalance = c.Server.StartingBalance
		}
		if room.HistoryLimit == 0 {
			room.HistoryLimit = game.DefaultHistoryLimit
		}
		if room.FeedLimit == 0 {
			room.FeedLimit = game.DefaultFeedLimit
		}
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := parseDuration("tick_interval", c.Server.TickInterval); err != nil {
		return err
	}
	if _, err := parseDuration("room_ttl", c.Server.RoomTTL); err != nil {
		return err
	}
	if c.Server.StartingBalance <= 0 {
		return fmt.Errorf("starting balance must be positive")
	}

	seen := make(map[string]bool, len(c.Rooms))
	for _, room := range c.Rooms {
		if room.Name == "" {
			return fmt.Errorf("room name must not be empty")
		}
		if seen[room.Name] {
			return fmt.Errorf("room %s: declared more than once", room.Name)
		}
		seen[room.Name] = true

		kind, err := game.ParseKind(room.Kind)
		if err != nil {
			return fmt.Errorf("room %s: %w", room.Name, err)
		}
		if kind == game.KindRoulette {
			d, err := parseDuration("interval", room.Interval)
			if err != nil {
				return fmt.Errorf("room %s: %w", room.Name, err)
			}
			if d <= 0 {
				return fmt.Errorf("room %s: interval must be positive", room.Name)
			}
		}
		if room.StartingBalance <= 0 {
			return fmt.Errorf("room %s: starting balance must be positive", room.Name)
		}
		if room.HistoryLimit < 0 || room.FeedLimit < 0 {
			return fmt.Errorf("room %s: limits must not be negative", room.Name)
		}
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// TickEvery returns the background ticker cadence. Zero disables it.
func (c *ServerConfig) TickEvery() time.Duration {
	d, _ := parseDuration("tick_interval", c.Server.TickInterval)
	return d
}

// RoomTTL returns how long an empty room may sit idle. Zero disables eviction.
func (c *ServerConfig) RoomTTL() time.Duration {
	d, _ := parseDuration("room_ttl", c.Server.RoomTTL)
	return d
}

// RoomSpecs converts the configured rooms into coordinator specs.
func (c *ServerConfig) RoomSpecs() ([]RoomSpec, error) {
	specs := make([]RoomSpec, 0, len(c.Rooms))
	for _, room := range c.Rooms {
		kind, err := game.ParseKind(room.Kind)
		if err != nil {
			return nil, fmt.Errorf("room %s: %w", room.Name, err)
		}
		interval, err := parseDuration("interval", room.Interval)
		if err != nil {
			return nil, fmt.Errorf("room %s: %w", room.Name, err)
		}
		specs = append(specs, RoomSpec{
			ID:              room.Name,
			Kind:            kind,
			Interval:        interval,
			StartingBalance: room.StartingBalance,
			HistoryLimit:    room.HistoryLimit,
			FeedLimit:       room.FeedLimit,
		})
	}
	return specs, nil
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, value)
	}
	return d, nil
}

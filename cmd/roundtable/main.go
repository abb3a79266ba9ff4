package main

import (
	"github.com/alecthomas/kong"
)

var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" default:"withargs" help:"Run the room coordinator behind a WebSocket server"`
	Simulate SimulateCmd      `cmd:"" help:"Run bots against an in-process coordinator and report results"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("roundtable"),
		kong.Description("Real-time roulette and duel rooms over WebSocket"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

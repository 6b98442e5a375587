package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the match server"`
	Play    PlayCmd          `cmd:"" help:"Play a hot-seat match in the terminal"`
	Solve   SolveCmd         `cmd:"" help:"Show the minimum deadwood melds for a hand"`
	Config  ConfigCmd        `cmd:"" help:"Manage the configuration file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ginrummy"),
		kong.Description("Two-player gin rummy engine, server and terminal client"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

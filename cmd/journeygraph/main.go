package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/api"
	"github.com/travigo/journeygraph/pkg/dataimporter"
	"github.com/travigo/journeygraph/pkg/graphexport"
	"github.com/travigo/journeygraph/pkg/planner"
	"github.com/travigo/journeygraph/pkg/util"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if util.GetEnvironmentVariable("JOURNEYGRAPH_LOG_FORMAT", "CONSOLE") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if util.EnvironmentFlag("JOURNEYGRAPH_DEBUG") {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	commands := []*cli.Command{
		dataimporter.RegisterCLI(),
		graphexport.RegisterCLI(),
		api.RegisterCLI(),
	}
	commands = append(commands, planner.RegisterCLI()...)

	app := &cli.App{
		Name:        "journeygraph",
		Description: "Builds time-expanded transit graphs from timetables and plans journeys on them",
		Commands:    commands,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

package api

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/config"
	"github.com/travigo/journeygraph/pkg/database"
	"github.com/travigo/journeygraph/pkg/planner"
	"github.com/travigo/journeygraph/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the journey planning web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the YAML config",
					},
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server, overrides the config",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Graph snapshot file",
					},
					&cli.StringFlag{
						Name:  "store",
						Usage: "Name of a graph stored in MongoDB",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					if err := cfg.Merge(config.Config{Server: config.ServerConfig{Listen: c.String("listen")}}); err != nil {
						return err
					}

					location, err := cfg.Graph.Location()
					if err != nil {
						return err
					}

					graph, record, err := database.OpenGraph(c.Context, c.String("file"), c.String("store"))
					if err != nil {
						return err
					}
					defer database.Disconnect(context.Background())

					journeyPlanner := planner.New(graph, cfg.Query, record.DatasetVersion.Hash)

					if err := redis_client.Connect(c.Context, false); err != nil {
						return err
					}
					if redis_client.Client != nil {
						expiration, err := cfg.Query.CacheExpirationDuration()
						if err != nil {
							return err
						}
						journeyPlanner.Cache = planner.NewCache(redis_client.Client, expiration)
					}

					webApp := NewApp(&Server{
						Planner:  journeyPlanner,
						Record:   record,
						Location: location,
					})

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					go func() {
						<-signals
						log.Info().Msg("Shutting down web api")
						webApp.Shutdown()
					}()

					log.Info().Str("listen", cfg.Server.Listen).Msg("Starting web api")
					return webApp.Listen(cfg.Server.Listen)
				},
			},
		},
	}
}

package dataimporter

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/config"
	"github.com/travigo/journeygraph/pkg/database"
	"github.com/travigo/journeygraph/pkg/dataimporter/datasets"
	"github.com/travigo/journeygraph/pkg/dataimporter/manager"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build a journey graph from a timetable dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML config",
			},
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "ID of a registered dataset",
			},
			&cli.StringFlag{
				Name:  "file",
				Usage: "Local timetable file or URL to build from instead of a registered dataset",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Format of --file (gtfs-schedule or trips-json)",
				Value: string(datasets.DataSetFormatTripsJSON),
			},
			&cli.StringFlag{
				Name:  "service-date",
				Usage: "GTFS service date as YYYY-MM-DD, defaults to the busiest day",
			},
			&cli.StringFlag{
				Name:  "begin",
				Usage: "Graph begin as RFC3339 or YYYY-MM-DD, defaults to midnight before the first trip",
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Trip filter expression, e.g. 'TransportType == \"Rail\"'",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Write the graph snapshot to this file",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Store the graph snapshot in MongoDB under this name",
			},
			&cli.StringFlag{
				Name:  "repeat-every",
				Usage: "Rebuild every X (Go duration, e.g. 6h) while the dataset keeps changing",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Store the graph even if the stored one came from identical data",
			},
		},
		Action: func(c *cli.Context) error {
			if c.String("output") == "" && c.String("store") == "" {
				return errors.New("one of --output or --store is required")
			}

			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			request, err := buildRequestFromFlags(c, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if c.String("store") != "" {
				if err := database.Connect(ctx); err != nil {
					return err
				}
				defer database.Disconnect(context.Background())
			}

			repeatEvery := c.String("repeat-every")
			var repeatDuration time.Duration
			if repeatEvery != "" {
				if repeatDuration, err = time.ParseDuration(repeatEvery); err != nil {
					return err
				}
			}

			for {
				startTime := time.Now()

				if err := buildAndSave(ctx, cfg, request, c.String("output"), c.String("store"), c.Bool("force")); err != nil {
					return err
				}
				if repeatDuration == 0 {
					return nil
				}

				executionDuration := time.Since(startTime)
				log.Info().Msgf("Operation took %s", executionDuration.String())

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(repeatDuration - executionDuration):
				}
			}
		},
	}
}

func buildRequestFromFlags(c *cli.Context, cfg config.Config) (BuildRequest, error) {
	var request BuildRequest

	switch {
	case c.String("dataset") != "":
		dataset, err := manager.GetDataset(cfg.Datasources, c.String("dataset"))
		if err != nil {
			return request, err
		}
		request.Dataset = dataset
	case c.String("file") != "":
		request.Dataset = datasets.DataSet{
			Identifier: c.String("file"),
			Format:     datasets.DataSetFormat(c.String("format")),
			Source:     c.String("file"),
		}
	default:
		return request, errors.New("one of --dataset or --file is required")
	}

	if c.String("service-date") != "" {
		request.Dataset.ServiceDate = c.String("service-date")
	}
	request.Filter = c.String("filter")

	if begin := c.String("begin"); begin != "" {
		location, err := cfg.Graph.Location()
		if err != nil {
			return request, err
		}

		request.Begin, err = parseBegin(begin, location)
		if err != nil {
			return request, err
		}
	}

	return request, nil
}

func parseBegin(value string, location *time.Location) (time.Time, error) {
	if begin, err := time.Parse(time.RFC3339, value); err == nil {
		return begin, nil
	}

	begin, err := time.ParseInLocation(time.DateOnly, value, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid begin %q", value)
	}

	return begin, nil
}

func buildAndSave(ctx context.Context, cfg config.Config, request BuildRequest, output string, store string, force bool) error {
	result, err := Build(ctx, cfg, request)
	if err != nil {
		return err
	}

	if output != "" {
		if err := result.Graph.SaveFile(output); err != nil {
			return err
		}
		log.Info().Str("file", output).Msg("Wrote graph snapshot")
	}

	if store == "" {
		return nil
	}

	if !force {
		existing, err := database.GetGraphRecord(ctx, store)
		if err == nil && existing.DatasetVersion.Hash == result.Version.Hash {
			log.Info().Str("name", store).Str("hash", result.Version.Hash).Msg("Stored graph is already up to date")
			return nil
		} else if err != nil && !errors.Is(err, database.ErrGraphNotFound) {
			return err
		}
	}

	_, err = database.SaveGraph(ctx, store, result.Graph, result.Version)
	return err
}

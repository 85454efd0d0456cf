package planner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/travigo/journeygraph/pkg/config"
	"github.com/travigo/journeygraph/pkg/database"
	"github.com/urfave/cli/v2"
)

var graphFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "Path to the YAML config",
	},
	&cli.StringFlag{
		Name:  "file",
		Usage: "Graph snapshot file",
	},
	&cli.StringFlag{
		Name:  "store",
		Usage: "Name of a graph stored in MongoDB",
	},
}

func RegisterCLI() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "plan",
			Usage: "Plan a journey on a built graph",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:     "from",
					Usage:    "Origin stop ID or a lat,lon coordinate",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "to",
					Usage:    "Destination stop ID or a lat,lon coordinate",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "at",
					Usage: "Earliest departure as RFC3339 or 'YYYY-MM-DD HH:MM' in the graph timezone",
				},
				&cli.IntFlag{
					Name:  "results",
					Usage: "Maximum number of itineraries",
				},
				&cli.BoolFlag{
					Name:  "stops",
					Usage: "List every stop passed through",
				},
				&cli.BoolFlag{
					Name:  "debug",
					Usage: "Dump the raw plans",
				},
			}, graphFlags...),
			Action: func(c *cli.Context) error {
				cfg, err := config.Load(c.String("config"))
				if err != nil {
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

				query := Query{MaxResults: c.Int("results")}
				if query.Origin, err = ParseEndpoint(c.String("from")); err != nil {
					return err
				}
				if query.Destination, err = ParseEndpoint(c.String("to")); err != nil {
					return err
				}
				if at := c.String("at"); at != "" {
					if query.NotBefore, err = ParseTime(at, location); err != nil {
						return err
					}
				}

				planner := New(graph, cfg.Query, record.DatasetVersion.Hash)
				results, err := planner.Plan(c.Context, query)
				if err != nil {
					return err
				}

				if c.Bool("debug") {
					pretty.Println(results)
				}

				if len(results.JourneyPlans) == 0 {
					fmt.Println("No journeys found")
					return nil
				}

				for index, plan := range results.JourneyPlans {
					fmt.Printf("Journey %d: %s, %d transfers\n", index+1, plan.Duration, plan.Transfers())
					fmt.Print(plan.String())

					if c.Bool("stops") {
						for _, event := range plan.StopEvents {
							fmt.Printf("  %s\n", event.String())
						}
					}
					fmt.Println()
				}

				return nil
			},
		},
		{
			Name:  "summary",
			Usage: "Print the size of a built graph",
			Flags: graphFlags,
			Action: func(c *cli.Context) error {
				graph, record, err := database.OpenGraph(c.Context, c.String("file"), c.String("store"))
				if err != nil {
					return err
				}
				defer database.Disconnect(context.Background())

				pretty.Println(record.DatasetVersion)
				pretty.Println(graph.Summary())

				return nil
			},
		},
		{
			Name:  "graphs",
			Usage: "List the graphs stored in MongoDB",
			Action: func(c *cli.Context) error {
				if err := database.Connect(c.Context); err != nil {
					return err
				}
				defer database.Disconnect(context.Background())

				records, err := database.ListGraphs(c.Context)
				if err != nil {
					return err
				}

				for _, record := range records {
					fmt.Printf("%s\t%s\t%d trips\t%d vertices\tbuilt %s\n",
						record.Name,
						record.DatasetVersion.Hash,
						record.Summary.Trips,
						record.Summary.Vertices,
						record.CreationDateTime.Format(time.RFC3339),
					)
				}

				return nil
			},
		},
	}
}

// ParseEndpoint reads "lat,lon" as a coordinate and anything else as a stop ID
func ParseEndpoint(value string) (Endpoint, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Endpoint{}, fmt.Errorf("%w: empty", ErrInvalidEndpoint)
	}

	parts := strings.Split(value, ",")
	if len(parts) == 2 {
		latitude, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		longitude, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if latErr == nil && lonErr == nil {
			endpoint := Coordinate(latitude, longitude)
			return endpoint, endpoint.validate()
		}
	}

	return Stop(value), nil
}

func ParseTime(value string, location *time.Location) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", time.DateTime} {
		if parsed, err := time.ParseInLocation(layout, value, location); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, errors.New("time should be RFC3339 or 'YYYY-MM-DD HH:MM'")
}

package graphexport

import (
	"context"

	"github.com/travigo/journeygraph/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "export-neo4j",
		Usage: "Export a journey graph into Neo4j for exploration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Graph snapshot file",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Name of a graph stored in MongoDB",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Rows per UNWIND statement",
				Value: defaultBatchSize,
			},
		},
		Action: func(c *cli.Context) error {
			graph, _, err := database.OpenGraph(c.Context, c.String("file"), c.String("store"))
			if err != nil {
				return err
			}
			defer database.Disconnect(context.Background())

			exporter, err := NewExporter(c.Context)
			if err != nil {
				return err
			}
			defer exporter.Close(context.Background())

			exporter.BatchSize = c.Int("batch-size")

			return exporter.Export(c.Context, graph)
		},
	}
}

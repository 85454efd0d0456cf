package graphexport

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/journeygraph"
	"github.com/travigo/journeygraph/pkg/util"
)

const defaultBatchSize = 1000

var edgeRelationships = map[journeygraph.EdgeKind]string{
	journeygraph.Transport:  "TRANSPORT",
	journeygraph.Stationary: "STATIONARY",
	journeygraph.Transfer:   "TRANSFER",
}

const (
	clearQuery = `MATCH (n) WHERE n:Location OR n:Event DETACH DELETE n`

	locationQuery = `
		UNWIND $rows AS row
		CREATE (:Location {id: row.id, name: row.name, latitude: row.latitude, longitude: row.longitude})`

	nearbyQuery = `
		UNWIND $rows AS row
		MATCH (l:Location {id: row.id})
		UNWIND row.nearby AS nearbyID
		MATCH (n:Location {id: nearbyID})
		WHERE l.id < n.id
		CREATE (l)-[:NEAR]->(n)`

	vertexQuery = `
		UNWIND $rows AS row
		MATCH (l:Location {id: row.location})
		CREATE (e:Event {handle: row.handle, minute: row.minute, time: row.time, role: row.role})
		CREATE (e)-[:AT]->(l)`

	edgeQuery = `
		UNWIND $rows AS row
		MATCH (s:Event {handle: row.source})
		MATCH (t:Event {handle: row.target})
		CREATE (s)-[:%s {duration: row.duration, trip: row.trip}]->(t)`
)

type Exporter struct {
	Driver    neo4j.DriverWithContext
	Database  string
	BatchSize int
}

// NewExporter connects using JOURNEYGRAPH_NEO4J_* environment variables
func NewExporter(ctx context.Context) (*Exporter, error) {
	uri := util.GetEnvironmentVariable("JOURNEYGRAPH_NEO4J_URI", "neo4j://localhost")
	username := util.GetEnvironmentVariable("JOURNEYGRAPH_NEO4J_USERNAME", "neo4j")
	password := util.GetEnvironmentVariable("JOURNEYGRAPH_NEO4J_PASSWORD", "")

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, err
	}

	return &Exporter{
		Driver:    driver,
		Database:  util.GetEnvironmentVariable("JOURNEYGRAPH_NEO4J_DATABASE", "neo4j"),
		BatchSize: defaultBatchSize,
	}, nil
}

func (e *Exporter) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Export replaces the Location and Event nodes in Neo4j with the given graph
func (e *Exporter) Export(ctx context.Context, graph *journeygraph.Graph) error {
	startTime := time.Now()

	rows, err := collectRows(graph)
	if err != nil {
		return err
	}

	session := e.Driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: e.Database})
	defer session.Close(ctx)

	if err := e.write(ctx, session, clearQuery, nil); err != nil {
		return err
	}

	for _, step := range []struct {
		name    string
		query   string
		batches [][]map[string]any
	}{
		{"locations", locationQuery, batches(rows.locations, e.BatchSize)},
		{"nearby", nearbyQuery, batches(rows.locations, e.BatchSize)},
		{"vertices", vertexQuery, batches(rows.vertices, e.BatchSize)},
	} {
		if err := e.writeBatches(ctx, session, step.name, step.query, step.batches); err != nil {
			return err
		}
	}

	for _, kind := range []journeygraph.EdgeKind{journeygraph.Transport, journeygraph.Stationary, journeygraph.Transfer} {
		query := fmt.Sprintf(edgeQuery, edgeRelationships[kind])
		if err := e.writeBatches(ctx, session, kind.String(), query, batches(rows.edges[kind], e.BatchSize)); err != nil {
			return err
		}
	}

	log.Info().
		Int("locations", len(rows.locations)).
		Int("vertices", len(rows.vertices)).
		Str("Length", time.Since(startTime).String()).
		Msg("Exported graph to Neo4j")

	return nil
}

func (e *Exporter) writeBatches(ctx context.Context, session neo4j.SessionWithContext, name string, query string, batches [][]map[string]any) error {
	for index, batch := range batches {
		if err := e.write(ctx, session, query, map[string]any{"rows": batch}); err != nil {
			return fmt.Errorf("%s batch %d: %w", name, index, err)
		}
	}

	log.Debug().Str("step", name).Int("batches", len(batches)).Msg("Exported rows")
	return nil
}

func (e *Exporter) write(ctx context.Context, session neo4j.SessionWithContext, query string, params map[string]any) error {
	_, err := session.ExecuteWrite(ctx,
		func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, query, params)
			if err != nil {
				return nil, err
			}

			return result.Consume(ctx)
		})

	return err
}

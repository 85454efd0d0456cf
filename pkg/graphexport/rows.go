package graphexport

import (
	"github.com/travigo/journeygraph/pkg/journeygraph"
)

type locationRow struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Nearby    []string
}

func (r locationRow) params() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"name":      r.Name,
		"latitude":  r.Latitude,
		"longitude": r.Longitude,
		"nearby":    r.Nearby,
	}
}

type vertexRow struct {
	Handle   int64
	Location string
	Minute   int64
	Time     string
	Role     string
}

func (r vertexRow) params() map[string]any {
	return map[string]any{
		"handle":   r.Handle,
		"location": r.Location,
		"minute":   r.Minute,
		"time":     r.Time,
		"role":     r.Role,
	}
}

type edgeRow struct {
	Source   int64
	Target   int64
	Duration int64
	Trip     string
}

func (r edgeRow) params() map[string]any {
	return map[string]any{
		"source":   r.Source,
		"target":   r.Target,
		"duration": r.Duration,
		"trip":     r.Trip,
	}
}

type graphRows struct {
	locations []locationRow
	vertices  []vertexRow
	edges     map[journeygraph.EdgeKind][]edgeRow
}

func collectRows(graph *journeygraph.Graph) (*graphRows, error) {
	rows := &graphRows{edges: map[journeygraph.EdgeKind][]edgeRow{}}

	for _, location := range graph.LocationList() {
		rows.locations = append(rows.locations, locationRow{
			ID:        location.ID,
			Name:      location.Name,
			Latitude:  location.Location.Latitude(),
			Longitude: location.Location.Longitude(),
			Nearby:    location.Nearby,
		})
	}

	err := graph.Walk(func(id journeygraph.VertexID, vertex journeygraph.Vertex, out []journeygraph.Edge) error {
		rows.vertices = append(rows.vertices, vertexRow{
			Handle:   int64(id),
			Location: vertex.Location,
			Minute:   int64(vertex.Timestamp),
			Time:     graph.Time(vertex.Timestamp).Format("2006-01-02T15:04:05Z07:00"),
			Role:     vertex.Role.String(),
		})

		for _, edge := range out {
			rows.edges[edge.Kind] = append(rows.edges[edge.Kind], edgeRow{
				Source:   int64(edge.Source),
				Target:   int64(edge.Target),
				Duration: int64(edge.Duration),
				Trip:     edge.TripID,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// batches splits rows into UNWIND parameter lists of at most size entries
func batches[T interface{ params() map[string]any }](rows []T, size int) [][]map[string]any {
	var result [][]map[string]any

	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))

		batch := make([]map[string]any, 0, end-start)
		for _, row := range rows[start:end] {
			batch = append(batch, row.params())
		}
		result = append(result, batch)
	}

	return result
}

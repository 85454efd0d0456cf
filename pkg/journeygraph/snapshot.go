package journeygraph

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const snapshotVersion = 1

type snapshot struct {
	Version int    `bson:"version"`
	Begin   string `bson:"begin"`
	End     string `bson:"end,omitempty"`

	Options Options `bson:"options"`

	ProximityComputed   bool    `bson:"proximitycomputed"`
	MaxTransferDistance float64 `bson:"maxtransferdistance"`
	TransfersGenerated  bool    `bson:"transfersgenerated"`

	Locations []snapshotLocation `bson:"locations"`
	Trips     []Trip             `bson:"trips"`
	Vertices  []snapshotVertex   `bson:"vertices"`
	Edges     []snapshotEdge     `bson:"edges"`
}

type snapshotLocation struct {
	ID        string   `bson:"id"`
	Name      string   `bson:"name"`
	Latitude  float64  `bson:"lat"`
	Longitude float64  `bson:"lon"`
	Nearby    []string `bson:"nearby,omitempty"`
}

// Vertices and edges reference locations and trips by index to keep
// snapshots compact
type snapshotVertex struct {
	Location  int32 `bson:"l"`
	Timestamp int   `bson:"t"`
	Role      Role  `bson:"r"`
	Removed   bool  `bson:"x,omitempty"`
}

type snapshotEdge struct {
	Source   VertexID `bson:"s"`
	Target   VertexID `bson:"t"`
	Kind     EdgeKind `bson:"k"`
	Duration int      `bson:"d"`
	Trip     int32    `bson:"p"`
	Removed  bool     `bson:"x,omitempty"`
}

func formatSnapshotTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseSnapshotTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// WriteSnapshot encodes the whole graph as a single bson document. Handles
// are preserved, tombstones included.
func (g *Graph) WriteSnapshot(writer io.Writer) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	data := snapshot{
		Version:             snapshotVersion,
		Begin:               formatSnapshotTime(g.begin),
		End:                 formatSnapshotTime(g.end),
		Options:             g.options,
		ProximityComputed:   g.locations.proximityComputed,
		MaxTransferDistance: g.locations.maxTransferDistance,
		TransfersGenerated:  g.transfersGenerated,
	}

	locationIndex := map[string]int32{}
	for index, id := range g.locations.order {
		location := g.locations.locations[id]
		nearby, _ := g.locations.Nearby(id)

		var others []string
		for _, nearbyID := range nearby {
			if nearbyID != id {
				others = append(others, nearbyID)
			}
		}

		data.Locations = append(data.Locations, snapshotLocation{
			ID:        id,
			Name:      location.Name,
			Latitude:  location.Latitude,
			Longitude: location.Longitude,
			Nearby:    others,
		})
		locationIndex[id] = int32(index)
	}

	tripIndex := map[string]int32{}
	for index, id := range g.tripOrder {
		data.Trips = append(data.Trips, *g.trips[id])
		tripIndex[id] = int32(index)
	}

	for _, vertex := range g.store.vertices {
		index, known := locationIndex[vertex.Location]
		if !known && !vertex.removed {
			return fmt.Errorf("%w: vertex at unregistered location %s", ErrInvariantViolation, vertex.Location)
		}
		if !known {
			index = -1
		}

		data.Vertices = append(data.Vertices, snapshotVertex{
			Location:  index,
			Timestamp: vertex.Timestamp,
			Role:      vertex.Role,
			Removed:   vertex.removed,
		})
	}

	for _, edge := range g.store.edges {
		trip := int32(-1)
		if edge.TripID != "" {
			trip = tripIndex[edge.TripID]
		}

		data.Edges = append(data.Edges, snapshotEdge{
			Source:   edge.Source,
			Target:   edge.Target,
			Kind:     edge.Kind,
			Duration: edge.Duration,
			Trip:     trip,
			Removed:  edge.removed,
		})
	}

	encoded, err := bson.Marshal(data)
	if err != nil {
		return err
	}

	_, err = writer.Write(encoded)
	return err
}

// ReadSnapshot restores a graph written by WriteSnapshot
func ReadSnapshot(reader io.Reader) (*Graph, error) {
	encoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var data snapshot
	if err := bson.Unmarshal(encoded, &data); err != nil {
		return nil, err
	}
	if data.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", data.Version)
	}

	begin, err := parseSnapshotTime(data.Begin)
	if err != nil {
		return nil, err
	}
	end, err := parseSnapshotTime(data.End)
	if err != nil {
		return nil, err
	}

	graph := NewGraph(begin, end, data.Options)
	graph.transfersGenerated = data.TransfersGenerated

	for _, location := range data.Locations {
		graph.locations.Register(location.ID, location.Name, location.Latitude, location.Longitude)
	}
	for _, location := range data.Locations {
		registered := graph.locations.locations[location.ID]
		for _, nearbyID := range location.Nearby {
			if _, exists := graph.locations.locations[nearbyID]; !exists {
				return nil, fmt.Errorf("%w: location %s is near unknown location %s", ErrInvariantViolation, location.ID, nearbyID)
			}
			registered.nearby[nearbyID] = struct{}{}
		}
	}
	graph.locations.proximityComputed = data.ProximityComputed
	graph.locations.maxTransferDistance = data.MaxTransferDistance

	for index := range data.Trips {
		trip := data.Trips[index]
		graph.trips[trip.ID] = &trip
		graph.tripOrder = append(graph.tripOrder, trip.ID)
	}

	store := graph.store
	for index, vertex := range data.Vertices {
		if vertex.Removed {
			store.vertices = append(store.vertices, Vertex{Timestamp: vertex.Timestamp, Role: vertex.Role, removed: true})
			store.out = append(store.out, nil)
			store.incident = append(store.incident, 0)
			continue
		}

		if vertex.Location < 0 || int(vertex.Location) >= len(data.Locations) {
			return nil, fmt.Errorf("%w: vertex %d references location %d", ErrInvariantViolation, index, vertex.Location)
		}

		id, created := store.GetOrCreateVertex(data.Locations[vertex.Location].ID, vertex.Timestamp, vertex.Role)
		if !created || int(id) != index {
			return nil, fmt.Errorf("%w: vertex %d restored as %d", ErrInvariantViolation, index, id)
		}
	}

	for index, edge := range data.Edges {
		if edge.Removed {
			store.edges = append(store.edges, Edge{Source: edge.Source, Target: edge.Target, Kind: edge.Kind, removed: true})
			continue
		}

		tripID := ""
		if edge.Trip >= 0 {
			if int(edge.Trip) >= len(data.Trips) {
				return nil, fmt.Errorf("%w: edge %d references trip %d", ErrInvariantViolation, index, edge.Trip)
			}
			tripID = data.Trips[edge.Trip].ID
		}

		id, err := store.AddEdge(edge.Source, edge.Target, edge.Kind, tripID)
		if err != nil {
			return nil, err
		}
		if int(id) != index {
			return nil, fmt.Errorf("%w: edge %d restored as %d", ErrInvariantViolation, index, id)
		}
		if restored := store.edges[id].Duration; restored != edge.Duration {
			return nil, fmt.Errorf("%w: edge %d duration %d does not match stored %d", ErrInvariantViolation, index, restored, edge.Duration)
		}
	}

	return graph, nil
}

func (g *Graph) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := g.WriteSnapshot(file); err != nil {
		return err
	}

	return file.Close()
}

func LoadFile(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadSnapshot(file)
}

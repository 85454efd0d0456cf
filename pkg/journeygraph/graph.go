package journeygraph

import (
	"fmt"
	"sync"
	"time"

	"github.com/travigo/journeygraph/pkg/ctdf"
)

type Options struct {
	// MaxTransferDistance is the walking radius in metres for transfers between stops
	MaxTransferDistance float64 `bson:"maxtransferdistance"`
	// MinTransferTime and MaxTransferTime bound transfers in minutes, both exclusive
	MinTransferTime int `bson:"mintransfertime"`
	MaxTransferTime int `bson:"maxtransfertime"`

	// TieCandidates is how many equal-weight paths a query enumerates before
	// ordering them and cutting down to the requested count
	TieCandidates int `bson:"tiecandidates"`

	// RejectBeyondHorizon makes queries after the graph end fail with
	// ErrOutOfRange instead of returning whatever is still reachable
	RejectBeyondHorizon bool `bson:"rejectbeyondhorizon"`
}

func DefaultOptions() Options {
	return Options{
		MaxTransferDistance: 250,
		MinTransferTime:     2,
		MaxTransferTime:     60,
		TieCandidates:       32,
		RejectBeyondHorizon: true,
	}
}

type Trip struct {
	ID            string             `bson:"id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	TransportType ctdf.TransportType `bson:"transporttype" json:"transport_type"`
	Origin        string             `bson:"origin" json:"origin"`
	Destination   string             `bson:"destination" json:"destination"`
}

// Graph is a time-expanded timetable graph. It is built once and then shared
// by any number of concurrent queries.
type Graph struct {
	mu sync.RWMutex

	begin   time.Time
	end     time.Time
	options Options

	locations *LocationRegistry
	store     *Store

	trips     map[string]*Trip
	tripOrder []string

	transfersGenerated bool
}

// NewGraph creates an empty graph whose timestamps count minutes from begin.
// A zero end leaves the graph without an upper time bound.
func NewGraph(begin time.Time, end time.Time, options Options) *Graph {
	return &Graph{
		begin:     begin,
		end:       end,
		options:   options,
		locations: NewLocationRegistry(),
		store:     NewStore(),
		trips:     map[string]*Trip{},
	}
}

func (g *Graph) Begin() time.Time {
	return g.begin
}

func (g *Graph) End() time.Time {
	return g.end
}

func (g *Graph) Options() Options {
	return g.options
}

// Timestamp converts a wall time to whole minutes since the graph begin
func (g *Graph) Timestamp(t time.Time) (int, error) {
	if t.Before(g.begin) {
		return 0, fmt.Errorf("%w: %s is before %s", ErrOutOfRange, t.Format(time.RFC3339), g.begin.Format(time.RFC3339))
	}
	if !g.end.IsZero() && t.After(g.end) {
		return 0, fmt.Errorf("%w: %s is after %s", ErrOutOfRange, t.Format(time.RFC3339), g.end.Format(time.RFC3339))
	}

	return int(t.Sub(g.begin) / time.Minute), nil
}

func (g *Graph) Time(timestamp int) time.Time {
	return g.begin.Add(time.Duration(timestamp) * time.Minute)
}

func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.store.VertexCount()
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.store.EdgeCount()
}

func (g *Graph) Vertex(id VertexID) (Vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.store.Vertex(id)
}

func (g *Graph) Edge(id EdgeID) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.store.Edge(id)
}

func (g *Graph) Trip(id string) (Trip, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	trip, exists := g.trips[id]
	if !exists {
		return Trip{}, false
	}
	return *trip, true
}

// LocationInfo is a read-only view of a registered location
type LocationInfo struct {
	ID        string         `json:"id" groups:"basic"`
	Name      string         `json:"name" groups:"basic"`
	Location  *ctdf.Location `json:"location" groups:"basic"`
	Nearby    []string       `json:"nearby" groups:"detailed"`
	Departing int            `json:"departing" groups:"detailed"`
	Arriving  int            `json:"arriving" groups:"detailed"`
}

func (g *Graph) Location(id string) (LocationInfo, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	location, exists := g.locations.Get(id)
	if !exists {
		return LocationInfo{}, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}

	nearby, _ := g.locations.Nearby(id)

	return LocationInfo{
		ID:        location.ID,
		Name:      location.Name,
		Location:  location.Point(),
		Nearby:    nearby,
		Departing: len(g.store.Departures(id)),
		Arriving:  len(g.store.Arrivals(id)),
	}, nil
}

// LocationsWithin returns the locations strictly closer than maxDistance metres
func (g *Graph) LocationsWithin(latitude float64, longitude float64, maxDistance float64) []LocationDistance {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.locations.Within(latitude, longitude, maxDistance)
}

type Summary struct {
	Begin time.Time `json:"begin" groups:"basic"`
	End   time.Time `json:"end" groups:"basic"`

	Locations       int `json:"locations" groups:"basic"`
	Trips           int `json:"trips" groups:"basic"`
	Vertices        int `json:"vertices" groups:"basic"`
	Edges           int `json:"edges" groups:"basic"`
	TransportEdges  int `json:"transport_edges" groups:"basic"`
	StationaryEdges int `json:"stationary_edges" groups:"basic"`
	TransferEdges   int `json:"transfer_edges" groups:"basic"`
}

func (g *Graph) Summary() Summary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	byKind := g.store.EdgeCountByKind()

	return Summary{
		Begin:           g.begin,
		End:             g.end,
		Locations:       g.locations.Len(),
		Trips:           len(g.trips),
		Vertices:        g.store.VertexCount(),
		Edges:           g.store.EdgeCount(),
		TransportEdges:  byKind[Transport],
		StationaryEdges: byKind[Stationary],
		TransferEdges:   byKind[Transfer],
	}
}

// Walk calls fn for every live vertex and its outgoing edges in handle order
// while holding the read lock. Used by exporters.
func (g *Graph) Walk(fn func(id VertexID, vertex Vertex, out []Edge) error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for index := range g.store.vertices {
		id := VertexID(index)
		vertex, live := g.store.Vertex(id)
		if !live {
			continue
		}

		var out []Edge
		for _, edgeID := range g.store.OutEdges(id) {
			out = append(out, g.store.edges[edgeID])
		}

		if err := fn(id, vertex, out); err != nil {
			return err
		}
	}

	return nil
}

// LocationList returns every location in registration order
func (g *Graph) LocationList() []LocationInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()

	infos := make([]LocationInfo, 0, g.locations.Len())
	for _, id := range g.locations.IDs() {
		location, _ := g.locations.Get(id)
		nearby, _ := g.locations.Nearby(id)

		infos = append(infos, LocationInfo{
			ID:       location.ID,
			Name:     location.Name,
			Location: location.Point(),
			Nearby:   nearby,
		})
	}

	return infos
}

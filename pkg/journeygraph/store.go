package journeygraph

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type VertexID int32
type EdgeID int32

type Role uint8

const (
	Departure Role = iota
	Arrival
)

func (r Role) String() string {
	switch r {
	case Departure:
		return "Departure"
	case Arrival:
		return "Arrival"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

type EdgeKind uint8

const (
	// Transport is movement aboard a trip between two stops
	Transport EdgeKind = iota
	// Stationary is the dwell of a trip at an intermediate stop
	Stationary
	// Transfer links an arrival to a departure at the same or a nearby stop
	Transfer
	// Query edges only ever exist inside a single query
	Query
)

func (k EdgeKind) String() string {
	switch k {
	case Transport:
		return "Transport"
	case Stationary:
		return "Stationary"
	case Transfer:
		return "Transfer"
	case Query:
		return "Query"
	default:
		return fmt.Sprintf("EdgeKind(%d)", k)
	}
}

type Vertex struct {
	Location  string
	Timestamp int
	Role      Role

	removed bool
}

type Edge struct {
	Source   VertexID
	Target   VertexID
	Kind     EdgeKind
	Duration int
	TripID   string

	removed bool
}

type vertexKey struct {
	location  string
	timestamp int
	role      Role
}

// Store owns every vertex and edge of the time-expanded graph. Elements are
// addressed by their index in the arenas; removed elements at the end of an
// arena are truncated, anywhere else they are tombstoned so handles stay stable.
type Store struct {
	vertices []Vertex
	edges    []Edge

	out      [][]EdgeID
	incident []int

	index      map[vertexKey]VertexID
	departures map[string][]VertexID
	arrivals   map[string][]VertexID

	liveVertices int
	liveEdges    int
}

func NewStore() *Store {
	return &Store{
		index:      map[vertexKey]VertexID{},
		departures: map[string][]VertexID{},
		arrivals:   map[string][]VertexID{},
	}
}

// GetOrCreateVertex returns the vertex for the triple, creating it if needed.
// The bool reports whether a new vertex was created.
func (s *Store) GetOrCreateVertex(location string, timestamp int, role Role) (VertexID, bool) {
	key := vertexKey{location: location, timestamp: timestamp, role: role}
	if id, exists := s.index[key]; exists {
		return id, false
	}

	id := VertexID(len(s.vertices))
	s.vertices = append(s.vertices, Vertex{Location: location, Timestamp: timestamp, Role: role})
	s.out = append(s.out, nil)
	s.incident = append(s.incident, 0)
	s.index[key] = id
	s.liveVertices++

	if role == Departure {
		s.departures[location] = append(s.departures[location], id)
	} else {
		s.arrivals[location] = append(s.arrivals[location], id)
	}

	return id, true
}

// AddEdge links two vertices. Duration is the difference of their timestamps
// and may only be negative for Query edges.
func (s *Store) AddEdge(source VertexID, target VertexID, kind EdgeKind, tripID string) (EdgeID, error) {
	if !s.live(source) || !s.live(target) {
		return 0, fmt.Errorf("%w: edge %d -> %d references a missing vertex", ErrInvariantViolation, source, target)
	}

	duration := s.vertices[target].Timestamp - s.vertices[source].Timestamp
	if duration < 0 && kind != Query {
		return 0, fmt.Errorf("%w: %s edge %d -> %d has negative duration %d", ErrInvariantViolation, kind, source, target, duration)
	}

	id := EdgeID(len(s.edges))
	s.edges = append(s.edges, Edge{
		Source:   source,
		Target:   target,
		Kind:     kind,
		Duration: duration,
		TripID:   tripID,
	})
	s.out[source] = append(s.out[source], id)
	s.incident[source]++
	s.incident[target]++
	s.liveEdges++

	return id, nil
}

func (s *Store) RemoveEdge(id EdgeID) error {
	if id < 0 || int(id) >= len(s.edges) || s.edges[id].removed {
		return fmt.Errorf("%w: edge %d does not exist", ErrInvariantViolation, id)
	}

	edge := &s.edges[id]
	position := slices.Index(s.out[edge.Source], id)
	if position < 0 {
		return fmt.Errorf("%w: edge %d missing from adjacency of vertex %d", ErrInvariantViolation, id, edge.Source)
	}

	s.out[edge.Source] = slices.Delete(s.out[edge.Source], position, position+1)
	s.incident[edge.Source]--
	s.incident[edge.Target]--
	edge.removed = true
	s.liveEdges--

	for len(s.edges) > 0 && s.edges[len(s.edges)-1].removed {
		s.edges = s.edges[:len(s.edges)-1]
	}

	return nil
}

// RemoveVertex deletes a vertex that no longer has any edges attached
func (s *Store) RemoveVertex(id VertexID) error {
	if !s.live(id) {
		return fmt.Errorf("%w: vertex %d does not exist", ErrInvariantViolation, id)
	}
	if s.incident[id] != 0 {
		return fmt.Errorf("%w: vertex %d still has %d edges", ErrInvariantViolation, id, s.incident[id])
	}

	vertex := &s.vertices[id]
	delete(s.index, vertexKey{location: vertex.Location, timestamp: vertex.Timestamp, role: vertex.Role})

	byLocation := s.departures
	if vertex.Role == Arrival {
		byLocation = s.arrivals
	}
	if position := slices.Index(byLocation[vertex.Location], id); position >= 0 {
		byLocation[vertex.Location] = slices.Delete(byLocation[vertex.Location], position, position+1)
	}
	if len(byLocation[vertex.Location]) == 0 {
		delete(byLocation, vertex.Location)
	}

	vertex.removed = true
	s.liveVertices--

	for len(s.vertices) > 0 && s.vertices[len(s.vertices)-1].removed {
		last := len(s.vertices) - 1
		s.vertices = s.vertices[:last]
		s.out = s.out[:last]
		s.incident = s.incident[:last]
	}

	return nil
}

func (s *Store) live(id VertexID) bool {
	return id >= 0 && int(id) < len(s.vertices) && !s.vertices[id].removed
}

func (s *Store) Vertex(id VertexID) (Vertex, bool) {
	if !s.live(id) {
		return Vertex{}, false
	}
	return s.vertices[id], true
}

func (s *Store) Edge(id EdgeID) (Edge, bool) {
	if id < 0 || int(id) >= len(s.edges) || s.edges[id].removed {
		return Edge{}, false
	}
	return s.edges[id], true
}

// OutEdges returns the outgoing edges of a vertex. The slice is owned by the
// store and must not be modified.
func (s *Store) OutEdges(id VertexID) []EdgeID {
	if !s.live(id) {
		return nil
	}
	return s.out[id]
}

// Lookup finds the vertex for a triple without creating it
func (s *Store) Lookup(location string, timestamp int, role Role) (VertexID, bool) {
	id, exists := s.index[vertexKey{location: location, timestamp: timestamp, role: role}]
	return id, exists
}

// Departures returns the departure vertices at a location in creation order
func (s *Store) Departures(location string) []VertexID {
	return s.departures[location]
}

// Arrivals returns the arrival vertices at a location in creation order
func (s *Store) Arrivals(location string) []VertexID {
	return s.arrivals[location]
}

func (s *Store) VertexCount() int {
	return s.liveVertices
}

func (s *Store) EdgeCount() int {
	return s.liveEdges
}

func (s *Store) EdgeCountByKind() map[EdgeKind]int {
	counts := map[EdgeKind]int{}
	for _, edge := range s.edges {
		if !edge.removed {
			counts[edge.Kind]++
		}
	}
	return counts
}

// arenaSizes is the number of handles issued so far, live or not
func (s *Store) arenaSizes() (int, int) {
	return len(s.vertices), len(s.edges)
}

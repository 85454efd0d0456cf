package journeygraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreVertexDeduplication(t *testing.T) {
	store := NewStore()

	first, created := store.GetOrCreateVertex("StationA", 600, Departure)
	assert.True(t, created)

	again, created := store.GetOrCreateVertex("StationA", 600, Departure)
	assert.False(t, created)
	assert.Equal(t, first, again)

	arrival, created := store.GetOrCreateVertex("StationA", 600, Arrival)
	assert.True(t, created)
	assert.NotEqual(t, first, arrival)

	assert.Equal(t, 2, store.VertexCount())
	assert.Equal(t, []VertexID{first}, store.Departures("StationA"))
	assert.Equal(t, []VertexID{arrival}, store.Arrivals("StationA"))
}

func TestStoreEdgeDuration(t *testing.T) {
	store := NewStore()

	early, _ := store.GetOrCreateVertex("StationA", 600, Departure)
	late, _ := store.GetOrCreateVertex("StationB", 630, Arrival)

	id, err := store.AddEdge(early, late, Transport, "T1")
	require.NoError(t, err)

	edge, exists := store.Edge(id)
	require.True(t, exists)
	assert.Equal(t, 30, edge.Duration)
	assert.Equal(t, "T1", edge.TripID)

	for _, kind := range []EdgeKind{Transport, Stationary, Transfer} {
		_, err := store.AddEdge(late, early, kind, "")
		assert.ErrorIs(t, err, ErrInvariantViolation, kind.String())
	}
	assert.Equal(t, 1, store.EdgeCount())

	_, err = store.AddEdge(late, early, Query, "")
	assert.NoError(t, err)
}

func TestStoreAddEdgeMissingVertex(t *testing.T) {
	store := NewStore()

	vertex, _ := store.GetOrCreateVertex("StationA", 600, Departure)

	_, err := store.AddEdge(vertex, VertexID(7), Transport, "T1")
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestStoreRemoval(t *testing.T) {
	store := NewStore()

	a, _ := store.GetOrCreateVertex("StationA", 600, Departure)
	b, _ := store.GetOrCreateVertex("StationB", 610, Arrival)
	c, _ := store.GetOrCreateVertex("StationC", 620, Arrival)

	edge, err := store.AddEdge(a, b, Transport, "T1")
	require.NoError(t, err)

	assert.ErrorIs(t, store.RemoveVertex(b), ErrInvariantViolation)

	require.NoError(t, store.RemoveEdge(edge))
	assert.ErrorIs(t, store.RemoveEdge(edge), ErrInvariantViolation)
	assert.Empty(t, store.OutEdges(a))
	assert.Zero(t, store.EdgeCount())

	// b is not the last vertex so it stays as a tombstone
	require.NoError(t, store.RemoveVertex(b))
	vertexArena, edgeArena := store.arenaSizes()
	assert.Equal(t, 3, vertexArena)
	assert.Zero(t, edgeArena)
	assert.Equal(t, 2, store.VertexCount())

	_, exists := store.Vertex(b)
	assert.False(t, exists)
	_, exists = store.Lookup("StationB", 610, Arrival)
	assert.False(t, exists)
	assert.Empty(t, store.Arrivals("StationB"))

	recreated, created := store.GetOrCreateVertex("StationB", 610, Arrival)
	assert.True(t, created)
	assert.Equal(t, VertexID(3), recreated)

	// removing from the end truncates the arena
	require.NoError(t, store.RemoveVertex(recreated))
	require.NoError(t, store.RemoveVertex(c))
	vertexArena, _ = store.arenaSizes()
	assert.Equal(t, 1, vertexArena)
	assert.Equal(t, 1, store.VertexCount())

	assert.ErrorIs(t, store.RemoveVertex(c), ErrInvariantViolation)
}

func TestEdgeCountByKind(t *testing.T) {
	store := NewStore()

	a, _ := store.GetOrCreateVertex("StationA", 600, Departure)
	b, _ := store.GetOrCreateVertex("StationB", 610, Arrival)
	c, _ := store.GetOrCreateVertex("StationB", 612, Departure)

	_, err := store.AddEdge(a, b, Transport, "T1")
	require.NoError(t, err)
	_, err = store.AddEdge(b, c, Stationary, "T1")
	require.NoError(t, err)
	_, err = store.AddEdge(b, c, Transfer, "")
	require.NoError(t, err)

	assert.Equal(t, map[EdgeKind]int{Transport: 1, Stationary: 1, Transfer: 1}, store.EdgeCountByKind())
}

package journeygraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayHandlesStartAfterStore(t *testing.T) {
	store := NewStore()
	a, _ := store.GetOrCreateVertex("StationA", 600, Departure)
	b, _ := store.GetOrCreateVertex("StationB", 630, Arrival)
	_, err := store.AddEdge(a, b, Transport, "T1")
	require.NoError(t, err)

	temporaries := newOverlay(store)
	source := temporaries.addVertex()
	assert.Equal(t, VertexID(2), source)
	assert.True(t, temporaries.ownsVertex(source))
	assert.False(t, temporaries.ownsVertex(b))

	edge := temporaries.addEdge(source, a, 10)
	assert.Equal(t, EdgeID(1), edge)
	assert.True(t, temporaries.ownsEdge(edge))

	require.NoError(t, temporaries.retract())
	assert.Empty(t, temporaries.out)
	assert.Equal(t, 2, store.VertexCount())
	assert.Equal(t, 1, store.EdgeCount())
}

func TestOverlayRetractReportsMissingElements(t *testing.T) {
	temporaries := newOverlay(NewStore())

	source := temporaries.addVertex()
	sink := temporaries.addVertex()
	edge := temporaries.addEdge(source, sink, 0)

	assert.ErrorIs(t, temporaries.removeVertex(source), ErrInvariantViolation)

	require.NoError(t, temporaries.removeEdge(edge))
	assert.ErrorIs(t, temporaries.removeEdge(edge), ErrInvariantViolation)

	assert.ErrorIs(t, temporaries.retract(), ErrInvariantViolation)
}

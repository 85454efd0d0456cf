package journeygraph

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

type queryEdge struct {
	source VertexID
	target VertexID
	weight float64

	removed bool
}

// overlay holds the temporary source and sink of one query together with the
// Query edges that connect them to the timetable. Its handles start where the
// base arenas end, so base and overlay elements never collide. The base graph
// is never written to.
type overlay struct {
	vertexBase VertexID
	edgeBase   EdgeID

	vertices []bool
	edges    []queryEdge
	out      map[VertexID][]EdgeID
}

func newOverlay(store *Store) *overlay {
	vertexCount, edgeCount := store.arenaSizes()

	return &overlay{
		vertexBase: VertexID(vertexCount),
		edgeBase:   EdgeID(edgeCount),
		out:        map[VertexID][]EdgeID{},
	}
}

func (o *overlay) addVertex() VertexID {
	o.vertices = append(o.vertices, true)
	return o.vertexBase + VertexID(len(o.vertices)-1)
}

func (o *overlay) ownsVertex(id VertexID) bool {
	return id >= o.vertexBase
}

func (o *overlay) ownsEdge(id EdgeID) bool {
	return id >= o.edgeBase
}

func (o *overlay) addEdge(source VertexID, target VertexID, weight float64) EdgeID {
	id := o.edgeBase + EdgeID(len(o.edges))
	o.edges = append(o.edges, queryEdge{source: source, target: target, weight: weight})
	o.out[source] = append(o.out[source], id)

	return id
}

func (o *overlay) edge(id EdgeID) queryEdge {
	return o.edges[id-o.edgeBase]
}

func (o *overlay) outEdges(id VertexID) []EdgeID {
	return o.out[id]
}

func (o *overlay) removeEdge(id EdgeID) error {
	index := int(id - o.edgeBase)
	if id < o.edgeBase || index >= len(o.edges) || o.edges[index].removed {
		return fmt.Errorf("%w: query edge %d does not exist", ErrInvariantViolation, id)
	}

	edge := &o.edges[index]
	position := slices.Index(o.out[edge.source], id)
	if position < 0 {
		return fmt.Errorf("%w: query edge %d missing from adjacency of vertex %d", ErrInvariantViolation, id, edge.source)
	}

	o.out[edge.source] = slices.Delete(o.out[edge.source], position, position+1)
	if len(o.out[edge.source]) == 0 {
		delete(o.out, edge.source)
	}
	edge.removed = true

	return nil
}

func (o *overlay) removeVertex(id VertexID) error {
	index := int(id - o.vertexBase)
	if id < o.vertexBase || index >= len(o.vertices) || !o.vertices[index] {
		return fmt.Errorf("%w: query vertex %d does not exist", ErrInvariantViolation, id)
	}
	if len(o.out[id]) > 0 {
		return fmt.Errorf("%w: query vertex %d still has edges", ErrInvariantViolation, id)
	}

	o.vertices[index] = false

	return nil
}

// retract removes every temporary element. Anything that cannot be found is
// reported as an invariant violation.
func (o *overlay) retract() error {
	var errs []error

	for index := len(o.edges) - 1; index >= 0; index-- {
		if o.edges[index].removed {
			errs = append(errs, fmt.Errorf("%w: query edge %d was removed before retraction", ErrInvariantViolation, o.edgeBase+EdgeID(index)))
			continue
		}
		if err := o.removeEdge(o.edgeBase + EdgeID(index)); err != nil {
			errs = append(errs, err)
		}
	}

	for index := len(o.vertices) - 1; index >= 0; index-- {
		if err := o.removeVertex(o.vertexBase + VertexID(index)); err != nil {
			errs = append(errs, err)
		}
	}

	if len(o.out) != 0 {
		errs = append(errs, fmt.Errorf("%w: %d vertices still have query edges after retraction", ErrInvariantViolation, len(o.out)))
	}

	o.edges = nil
	o.vertices = nil

	return errors.Join(errs...)
}

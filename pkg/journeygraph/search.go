package journeygraph

import (
	"container/heap"
	"context"
	"math"
)

const cancellationCheckInterval = 256

// searchGraph is the base store seen through a query overlay
type searchGraph struct {
	store   *Store
	overlay *overlay
}

func (s searchGraph) forEachOut(vertex VertexID, fn func(edge EdgeID, target VertexID, weight float64)) {
	if !s.overlay.ownsVertex(vertex) {
		for _, edgeID := range s.store.OutEdges(vertex) {
			edge := s.store.edges[edgeID]
			fn(edgeID, edge.Target, float64(edge.Duration))
		}
	}

	for _, edgeID := range s.overlay.outEdges(vertex) {
		edge := s.overlay.edge(edgeID)
		fn(edgeID, edge.target, edge.weight)
	}
}

type predecessor struct {
	vertex VertexID
	edge   EdgeID
}

// shortestPathTree keeps every predecessor reaching a vertex at its minimum
// distance, so all equal-weight paths can be recovered.
type shortestPathTree struct {
	dist  map[VertexID]float64
	preds map[VertexID][]predecessor
}

func (t *shortestPathTree) reached(vertex VertexID) bool {
	_, exists := t.dist[vertex]
	return exists
}

// shortestPaths runs Dijkstra from source until every vertex at or below the
// sink distance is settled. Weights must be non-negative.
func (s searchGraph) shortestPaths(ctx context.Context, source VertexID, sink VertexID) (*shortestPathTree, error) {
	tree := &shortestPathTree{
		dist:  map[VertexID]float64{source: 0},
		preds: map[VertexID][]predecessor{},
	}
	settled := map[VertexID]bool{}
	sinkDist := math.Inf(1)

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, &pqItem{vertex: source, priority: 0})

	pops := 0
	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.vertex

		if settled[current] || item.priority > tree.dist[current] {
			continue
		}
		if item.priority > sinkDist {
			break
		}

		pops++
		if pops%cancellationCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		settled[current] = true
		if current == sink {
			sinkDist = item.priority
			continue
		}

		s.forEachOut(current, func(edge EdgeID, target VertexID, weight float64) {
			candidate := item.priority + weight
			known, seen := tree.dist[target]

			switch {
			case !seen || candidate < known:
				tree.dist[target] = candidate
				tree.preds[target] = []predecessor{{vertex: current, edge: edge}}
				heap.Push(pq, &pqItem{vertex: target, priority: candidate})
			case candidate == known:
				tree.preds[target] = append(tree.preds[target], predecessor{vertex: current, edge: edge})
			}
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return tree, nil
}

// enumerate walks the predecessor DAG back from sink and returns up to limit
// source-to-sink step sequences. Vertices already on the current path are
// skipped so zero-weight cycles cannot loop.
func (t *shortestPathTree) enumerate(source VertexID, sink VertexID, limit int) [][]predecessor {
	var found [][]predecessor
	var reversed []predecessor
	onPath := map[VertexID]bool{sink: true}

	var walk func(vertex VertexID) bool
	walk = func(vertex VertexID) bool {
		if vertex == source {
			steps := make([]predecessor, len(reversed))
			for i := range reversed {
				steps[i] = reversed[len(reversed)-1-i]
			}
			found = append(found, steps)

			return len(found) < limit
		}

		for _, pred := range t.preds[vertex] {
			if onPath[pred.vertex] {
				continue
			}

			onPath[pred.vertex] = true
			reversed = append(reversed, predecessor{vertex: vertex, edge: pred.edge})

			keepGoing := walk(pred.vertex)

			reversed = reversed[:len(reversed)-1]
			delete(onPath, pred.vertex)

			if !keepGoing {
				return false
			}
		}

		return true
	}

	walk(sink)

	return found
}

type pqItem struct {
	vertex   VertexID
	priority float64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority == pq[j].priority {
		return pq[i].vertex < pq[j].vertex
	}
	return pq[i].priority < pq[j].priority
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

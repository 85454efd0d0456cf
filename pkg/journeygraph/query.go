package journeygraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"golang.org/x/exp/slices"
)

// Path is one minimum-weight route through the permanent graph. Vertices and
// Edges never contain query-time elements; Edges[i] links Vertices[i] and
// Vertices[i+1].
type Path struct {
	Vertices []VertexID
	Edges    []EdgeID

	// Weight in minutes from NotBefore to arrival at the destination,
	// including waiting and any access or egress walking
	Weight    float64
	NotBefore time.Time

	AccessMinutes float64
	EgressMinutes float64

	// Origin and Destination are only set for coordinate queries
	Origin      *ctdf.Location
	Destination *ctdf.Location
}

type NearQuery struct {
	FromLatitude  float64
	FromLongitude float64
	ToLatitude    float64
	ToLongitude   float64

	NotBefore  time.Time
	MaxResults int

	// MaxAccessDistance in metres, AccessSpeed in km/h
	MaxAccessDistance float64
	AccessSpeed       float64
}

type accessPoint struct {
	location string
	minutes  float64
}

type searchRequest struct {
	notBefore  time.Time
	timestamp  int
	access     []accessPoint
	egress     []accessPoint
	maxResults int

	origin      *ctdf.Location
	destination *ctdf.Location
}

// FindPaths returns the minimum-duration paths from one location to another,
// departing strictly after notBefore. An unreachable destination gives an
// empty result, not an error. Equal-weight paths are ordered by fewest
// transfers, then fewest edges, then vertex handles.
func (g *Graph) FindPaths(ctx context.Context, from string, to string, notBefore time.Time, maxResults int) ([]Path, error) {
	if maxResults < 1 {
		return nil, fmt.Errorf("%w: max results must be at least 1", ErrInvalidQuery)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range []string{from, to} {
		if _, exists := g.locations.Get(id); !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
		}
	}

	timestamp, err := g.queryTimestamp(notBefore)
	if err != nil {
		return nil, err
	}

	return g.search(ctx, searchRequest{
		notBefore:  notBefore,
		timestamp:  timestamp,
		access:     []accessPoint{{location: from}},
		egress:     []accessPoint{{location: to}},
		maxResults: maxResults,
	})
}

// FindPathsNear is FindPaths between two coordinates. Every location strictly
// closer than MaxAccessDistance to an endpoint can be used, with the walking
// time at AccessSpeed added to the path weight.
func (g *Graph) FindPathsNear(ctx context.Context, query NearQuery) ([]Path, error) {
	if query.MaxResults < 1 {
		return nil, fmt.Errorf("%w: max results must be at least 1", ErrInvalidQuery)
	}
	if query.AccessSpeed <= 0 {
		return nil, fmt.Errorf("%w: access speed must be positive", ErrInvalidQuery)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	timestamp, err := g.queryTimestamp(query.NotBefore)
	if err != nil {
		return nil, err
	}

	accessTimes := func(latitude float64, longitude float64) []accessPoint {
		var points []accessPoint
		for _, found := range g.locations.Within(latitude, longitude, query.MaxAccessDistance) {
			points = append(points, accessPoint{
				location: found.ID,
				minutes:  found.Distance / 1000 / query.AccessSpeed * 60,
			})
		}
		return points
	}

	return g.search(ctx, searchRequest{
		notBefore:   query.NotBefore,
		timestamp:   timestamp,
		access:      accessTimes(query.FromLatitude, query.FromLongitude),
		egress:      accessTimes(query.ToLatitude, query.ToLongitude),
		maxResults:  query.MaxResults,
		origin:      ctdf.NewPoint(query.FromLatitude, query.FromLongitude),
		destination: ctdf.NewPoint(query.ToLatitude, query.ToLongitude),
	})
}

func (g *Graph) queryTimestamp(notBefore time.Time) (int, error) {
	if notBefore.Before(g.begin) {
		return 0, fmt.Errorf("%w: %s is before %s", ErrOutOfRange, notBefore.Format(time.RFC3339), g.begin.Format(time.RFC3339))
	}
	if !g.end.IsZero() && notBefore.After(g.end) {
		if g.options.RejectBeyondHorizon {
			return 0, fmt.Errorf("%w: %s is after %s", ErrOutOfRange, notBefore.Format(time.RFC3339), g.end.Format(time.RFC3339))
		}
		log.Debug().Time("notbefore", notBefore).Time("end", g.end).Msg("Query beyond graph horizon")
	}

	return int(notBefore.Sub(g.begin) / time.Minute), nil
}

// search must be called with the read lock held. Temporaries live in an
// overlay that is retracted on every return path.
func (g *Graph) search(ctx context.Context, request searchRequest) (paths []Path, err error) {
	startTime := time.Now()
	temporaries := newOverlay(g.store)

	defer func() {
		if retractErr := temporaries.retract(); retractErr != nil {
			log.Error().Err(retractErr).Msg("Failed to retract query elements")
			paths = nil
			err = errors.Join(err, retractErr)
		}
	}()

	source := temporaries.addVertex()
	sink := temporaries.addVertex()

	accessMinutes := map[string]float64{}
	for _, point := range request.access {
		accessMinutes[point.location] = point.minutes

		for _, departure := range g.store.Departures(point.location) {
			departureTime := g.store.vertices[departure].Timestamp
			if float64(departureTime) > float64(request.timestamp)+point.minutes {
				temporaries.addEdge(source, departure, float64(departureTime-request.timestamp))
			}
		}
	}

	egressMinutes := map[string]float64{}
	for _, point := range request.egress {
		egressMinutes[point.location] = point.minutes

		for _, arrival := range g.store.Arrivals(point.location) {
			temporaries.addEdge(arrival, sink, point.minutes)
		}
	}

	tree, err := searchGraph{store: g.store, overlay: temporaries}.shortestPaths(ctx, source, sink)
	if err != nil {
		return nil, err
	}

	paths = []Path{}
	if tree.reached(sink) {
		limit := max(request.maxResults, g.options.TieCandidates)

		for _, steps := range tree.enumerate(source, sink, limit) {
			path := g.pathFromSteps(steps, tree.dist[sink], request)
			path.AccessMinutes = accessMinutes[g.store.vertices[path.Vertices[0]].Location]
			path.EgressMinutes = egressMinutes[g.store.vertices[path.Vertices[len(path.Vertices)-1]].Location]
			paths = append(paths, path)
		}

		slices.SortStableFunc(paths, g.comparePaths)
		if len(paths) > request.maxResults {
			paths = paths[:request.maxResults]
		}
	}

	log.Debug().
		Int("access", len(request.access)).
		Int("egress", len(request.egress)).
		Int("results", len(paths)).
		Str("Length", time.Since(startTime).String()).
		Msg("Journey graph search")

	return paths, nil
}

// pathFromSteps drops the first and last step, which are the query edges
// leaving the source and entering the sink.
func (g *Graph) pathFromSteps(steps []predecessor, weight float64, request searchRequest) Path {
	path := Path{
		Weight:      weight,
		NotBefore:   request.notBefore,
		Origin:      request.origin,
		Destination: request.destination,
	}

	inner := steps[:len(steps)-1]
	for index, step := range inner {
		path.Vertices = append(path.Vertices, step.vertex)
		if index > 0 {
			path.Edges = append(path.Edges, step.edge)
		}
	}

	return path
}

func (g *Graph) transferCount(path Path) int {
	count := 0
	for _, edgeID := range path.Edges {
		if g.store.edges[edgeID].Kind == Transfer {
			count++
		}
	}
	return count
}

func (g *Graph) comparePaths(a Path, b Path) int {
	if transfersA, transfersB := g.transferCount(a), g.transferCount(b); transfersA != transfersB {
		return transfersA - transfersB
	}
	if len(a.Edges) != len(b.Edges) {
		return len(a.Edges) - len(b.Edges)
	}
	return slices.Compare(a.Vertices, b.Vertices)
}

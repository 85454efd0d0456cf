package planner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/journeygraph/pkg/config"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/journeygraph"
)

var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Endpoint is either a stop or a coordinate
type Endpoint struct {
	StopID    string
	Latitude  float64
	Longitude float64
}

func Stop(id string) Endpoint {
	return Endpoint{StopID: id}
}

func Coordinate(latitude float64, longitude float64) Endpoint {
	return Endpoint{Latitude: latitude, Longitude: longitude}
}

func (e Endpoint) IsStop() bool {
	return e.StopID != ""
}

func (e Endpoint) validate() error {
	if e.IsStop() {
		return nil
	}
	if e.Latitude < -90 || e.Latitude > 90 || e.Longitude < -180 || e.Longitude > 180 {
		return fmt.Errorf("%w: %f,%f is not a coordinate", ErrInvalidEndpoint, e.Latitude, e.Longitude)
	}
	return nil
}

func (e Endpoint) key() string {
	if e.IsStop() {
		return "stop=" + e.StopID
	}
	return fmt.Sprintf("point=%.6f,%.6f", e.Latitude, e.Longitude)
}

// Query is a journey planning request. Zero values take the planner defaults.
type Query struct {
	Origin      Endpoint
	Destination Endpoint
	NotBefore   time.Time
	MaxResults  int

	MaxAccessDistance float64
	AccessSpeed       float64
}

type Planner struct {
	Graph  *journeygraph.Graph
	Config config.QueryConfig
	// Cache is optional
	Cache *cache.Cache[string]
	// Version separates cache entries of different graphs
	Version string
}

func New(graph *journeygraph.Graph, queryConfig config.QueryConfig, version string) *Planner {
	return &Planner{
		Graph:   graph,
		Config:  queryConfig,
		Version: version,
	}
}

func (p *Planner) withDefaults(query Query) Query {
	if query.NotBefore.IsZero() {
		query.NotBefore = time.Now()
	}
	if query.MaxResults == 0 {
		query.MaxResults = p.Config.MaxResults
	}
	if query.MaxAccessDistance == 0 {
		query.MaxAccessDistance = p.Config.MaxAccessDistance
	}
	if query.AccessSpeed == 0 {
		query.AccessSpeed = p.Config.AccessSpeed
	}
	return query
}

// coordinateOf turns a stop endpoint into its coordinate so it can be mixed
// with a coordinate endpoint
func (p *Planner) coordinateOf(endpoint Endpoint) (Endpoint, error) {
	if !endpoint.IsStop() {
		return endpoint, nil
	}

	location, err := p.Graph.Location(endpoint.StopID)
	if err != nil {
		return Endpoint{}, err
	}

	return Coordinate(location.Location.Latitude(), location.Location.Longitude()), nil
}

// Plan finds up to MaxResults itineraries for the query
func (p *Planner) Plan(ctx context.Context, query Query) (*ctdf.JourneyPlanResults, error) {
	query = p.withDefaults(query)

	if err := query.Origin.validate(); err != nil {
		return nil, err
	}
	if err := query.Destination.validate(); err != nil {
		return nil, err
	}

	key := p.cacheKey(query)
	if results, hit := p.cached(ctx, key); hit {
		log.Debug().Str("key", key).Msg("Journey plan cache hit")
		return results, nil
	}

	timeout, err := p.Config.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	startTime := time.Now()

	paths, err := p.findPaths(queryCtx, query)
	if err != nil {
		return nil, err
	}

	results := &ctdf.JourneyPlanResults{
		JourneyPlans:       make([]ctdf.JourneyPlan, 0, len(paths)),
		OriginStopRef:      query.Origin.StopID,
		DestinationStopRef: query.Destination.StopID,
	}
	if !query.Origin.IsStop() {
		results.OriginLocation = ctdf.NewPoint(query.Origin.Latitude, query.Origin.Longitude)
	}
	if !query.Destination.IsStop() {
		results.DestinationLocation = ctdf.NewPoint(query.Destination.Latitude, query.Destination.Longitude)
	}

	for _, path := range paths {
		plan := p.Graph.Itinerary(path)
		plan.StopEvents = p.Graph.StopEvents(path)
		results.JourneyPlans = append(results.JourneyPlans, plan)
	}

	log.Debug().
		Str("origin", query.Origin.key()).
		Str("destination", query.Destination.key()).
		Int("results", len(results.JourneyPlans)).
		Str("Length", time.Since(startTime).String()).
		Msg("Planned journey")

	p.store(ctx, key, results)

	return results, nil
}

func (p *Planner) findPaths(ctx context.Context, query Query) ([]journeygraph.Path, error) {
	if query.Origin.IsStop() && query.Destination.IsStop() {
		return p.Graph.FindPaths(ctx, query.Origin.StopID, query.Destination.StopID, query.NotBefore, query.MaxResults)
	}

	origin, err := p.coordinateOf(query.Origin)
	if err != nil {
		return nil, err
	}
	destination, err := p.coordinateOf(query.Destination)
	if err != nil {
		return nil, err
	}

	return p.Graph.FindPathsNear(ctx, journeygraph.NearQuery{
		FromLatitude:      origin.Latitude,
		FromLongitude:     origin.Longitude,
		ToLatitude:        destination.Latitude,
		ToLongitude:       destination.Longitude,
		NotBefore:         query.NotBefore,
		MaxResults:        query.MaxResults,
		MaxAccessDistance: query.MaxAccessDistance,
		AccessSpeed:       query.AccessSpeed,
	})
}

// PlanMany runs the queries concurrently. Results line up with the queries.
func (p *Planner) PlanMany(ctx context.Context, queries []Query) ([]*ctdf.JourneyPlanResults, error) {
	results := make([]*ctdf.JourneyPlanResults, len(queries))

	workers := pool.New().WithContext(ctx).WithMaxGoroutines(runtime.NumCPU())
	for index, query := range queries {
		index, query := index, query
		workers.Go(func(ctx context.Context) error {
			planned, err := p.Plan(ctx, query)
			if err != nil {
				return fmt.Errorf("query %d: %w", index, err)
			}
			results[index] = planned
			return nil
		})
	}

	if err := workers.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

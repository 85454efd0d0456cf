package journeygraph

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

type Builder struct {
	graph *Graph
}

func NewBuilder(graph *Graph) *Builder {
	return &Builder{graph: graph}
}

type BuildReport struct {
	Accepted      int
	Rejected      int
	TransferEdges int
	Errors        []*BuildError
}

type visit struct {
	location  string
	arrival   int
	departure int
}

// RegisterLocations adds every stop of the given trips to the location registry
func (b *Builder) RegisterLocations(trips [][]ctdf.TripRecord) int {
	b.graph.mu.Lock()
	defer b.graph.mu.Unlock()

	added := 0
	for _, trip := range trips {
		for _, record := range trip {
			if b.graph.locations.Register(record.LocationID, record.LocationName, record.Latitude, record.Longitude) {
				added++
			}
		}
	}

	return added
}

func (b *Builder) ComputeProximity() {
	b.graph.mu.Lock()
	defer b.graph.mu.Unlock()

	startTime := time.Now()
	b.graph.locations.ComputeProximity(b.graph.options.MaxTransferDistance)

	log.Debug().
		Int("locations", b.graph.locations.Len()).
		Float64("distance", b.graph.options.MaxTransferDistance).
		Str("Length", time.Since(startTime).String()).
		Msg("Computed location proximity")
}

func (b *Builder) convertTrip(trip []ctdf.TripRecord) ([]visit, error) {
	if len(trip) < 2 {
		return nil, fmt.Errorf("%w: trip has %d stops, needs at least 2", ErrInvalidTrip, len(trip))
	}

	visits := make([]visit, len(trip))

	for index, record := range trip {
		if record.LocationID == "" {
			return nil, fmt.Errorf("%w: stop %d has no location", ErrInvalidTrip, index)
		}
		visits[index].location = record.LocationID

		if index > 0 {
			if record.ArrivalTime == nil {
				return nil, fmt.Errorf("%w: stop %d (%s) has no arrival time", ErrInvalidTrip, index, record.LocationID)
			}
			arrival, err := b.graph.Timestamp(*record.ArrivalTime)
			if err != nil {
				return nil, err
			}
			visits[index].arrival = arrival
		}

		if index < len(trip)-1 {
			if record.DepartureTime == nil {
				return nil, fmt.Errorf("%w: stop %d (%s) has no departure time", ErrInvalidTrip, index, record.LocationID)
			}
			departure, err := b.graph.Timestamp(*record.DepartureTime)
			if err != nil {
				return nil, err
			}
			visits[index].departure = departure
		}
	}

	return visits, nil
}

// tripAddition tracks everything a trip created so it can be undone
type tripAddition struct {
	store    *Store
	vertices []VertexID
	edges    []EdgeID
}

func (a *tripAddition) vertex(location string, timestamp int, role Role) VertexID {
	id, created := a.store.GetOrCreateVertex(location, timestamp, role)
	if created {
		a.vertices = append(a.vertices, id)
	}
	return id
}

func (a *tripAddition) edge(source VertexID, target VertexID, kind EdgeKind, tripID string) error {
	id, err := a.store.AddEdge(source, target, kind, tripID)
	if err != nil {
		return err
	}
	a.edges = append(a.edges, id)
	return nil
}

func (a *tripAddition) rollback() error {
	var errs []error

	for i := len(a.edges) - 1; i >= 0; i-- {
		if err := a.store.RemoveEdge(a.edges[i]); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.vertices) - 1; i >= 0; i-- {
		if err := a.store.RemoveVertex(a.vertices[i]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// AddTrip adds the vertices and edges of a single trip. A trip that fails
// leaves the graph exactly as it was.
func (b *Builder) AddTrip(trip []ctdf.TripRecord) error {
	visits, err := b.convertTrip(trip)
	if err != nil {
		return err
	}

	tripID := trip[0].TripID
	if tripID == "" {
		return fmt.Errorf("%w: trip has no id", ErrInvalidTrip)
	}
	for index, record := range trip {
		if record.TripID != tripID {
			return fmt.Errorf("%w: stop %d belongs to trip %s, not %s", ErrInvalidTrip, index, record.TripID, tripID)
		}
	}

	b.graph.mu.Lock()
	defer b.graph.mu.Unlock()

	// Transfers are generated once, so a later trip could never connect
	if b.graph.transfersGenerated {
		return fmt.Errorf("%w: trip %s added after transfer generation", ErrTransfersGenerated, tripID)
	}

	if _, exists := b.graph.trips[tripID]; exists {
		return fmt.Errorf("%w: duplicate trip id %s", ErrInvalidTrip, tripID)
	}

	addition := &tripAddition{store: b.graph.store}
	if err := addition.addVisits(visits, tripID); err != nil {
		if rollbackErr := addition.rollback(); rollbackErr != nil {
			return errors.Join(err, rollbackErr)
		}
		return err
	}

	for _, record := range trip {
		b.graph.locations.Register(record.LocationID, record.LocationName, record.Latitude, record.Longitude)
	}

	b.graph.trips[tripID] = &Trip{
		ID:            tripID,
		Name:          trip[0].TripLabel,
		TransportType: trip[0].TransportType,
		Origin:        visits[0].location,
		Destination:   visits[len(visits)-1].location,
	}
	b.graph.tripOrder = append(b.graph.tripOrder, tripID)

	return nil
}

func (a *tripAddition) addVisits(visits []visit, tripID string) error {
	current := a.vertex(visits[0].location, visits[0].departure, Departure)

	for _, stop := range visits[1 : len(visits)-1] {
		arrival := a.vertex(stop.location, stop.arrival, Arrival)
		if err := a.edge(current, arrival, Transport, tripID); err != nil {
			return err
		}

		departure := a.vertex(stop.location, stop.departure, Departure)
		if err := a.edge(arrival, departure, Stationary, tripID); err != nil {
			return err
		}

		current = departure
	}

	last := visits[len(visits)-1]
	destination := a.vertex(last.location, last.arrival, Arrival)
	return a.edge(current, destination, Transport, tripID)
}

// Build adds every trip, continuing past trips that are rejected
func (b *Builder) Build(trips [][]ctdf.TripRecord) BuildReport {
	report := BuildReport{}

	for _, trip := range trips {
		err := b.AddTrip(trip)
		if err == nil {
			report.Accepted++
			continue
		}

		tripID := ""
		if len(trip) > 0 {
			tripID = trip[0].TripID
		}

		buildError := &BuildError{TripID: tripID, Err: err}
		report.Rejected++
		report.Errors = append(report.Errors, buildError)

		log.Debug().Err(buildError).Msg("Rejected trip")
	}

	if report.Rejected > 0 {
		log.Warn().Int("accepted", report.Accepted).Int("rejected", report.Rejected).Msg("Some trips were rejected")
	}

	return report
}

// BuildGraph runs a whole build pass: locations, proximity, trips, transfers
func BuildGraph(begin time.Time, end time.Time, trips [][]ctdf.TripRecord, options Options) (*Graph, BuildReport, error) {
	startTime := time.Now()

	graph := NewGraph(begin, end, options)
	builder := NewBuilder(graph)

	builder.RegisterLocations(trips)
	builder.ComputeProximity()

	report := builder.Build(trips)

	transfers, err := builder.GenerateTransfers()
	if err != nil {
		return nil, report, err
	}
	report.TransferEdges = transfers

	summary := graph.Summary()
	log.Info().
		Int("locations", summary.Locations).
		Int("trips", report.Accepted).
		Int("rejected", report.Rejected).
		Int("vertices", summary.Vertices).
		Int("edges", summary.Edges).
		Int("transfers", summary.TransferEdges).
		Str("Length", time.Since(startTime).String()).
		Msg("Built journey graph")

	return graph, report, nil
}

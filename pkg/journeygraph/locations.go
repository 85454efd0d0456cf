package journeygraph

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"golang.org/x/exp/slices"
)

type Location struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64

	nearby map[string]struct{}
}

func (l *Location) Point() *ctdf.Location {
	return ctdf.NewPoint(l.Latitude, l.Longitude)
}

// LocationDistance is a location paired with its distance in metres from some point
type LocationDistance struct {
	ID       string
	Distance float64
}

// LocationRegistry keeps every known stop and which other stops are within
// walking transfer distance of it. The nearby relation is symmetric and only
// ever grows.
type LocationRegistry struct {
	locations map[string]*Location
	order     []string

	proximityComputed   bool
	maxTransferDistance float64
}

func NewLocationRegistry() *LocationRegistry {
	return &LocationRegistry{
		locations: map[string]*Location{},
	}
}

// Register adds a location and reports whether it was new. Registering an
// existing id is a no-op. Once proximity has been computed, new locations are
// linked to their existing neighbours straight away.
func (r *LocationRegistry) Register(id string, name string, latitude float64, longitude float64) bool {
	if _, exists := r.locations[id]; exists {
		return false
	}

	location := &Location{
		ID:        id,
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
		nearby:    map[string]struct{}{},
	}

	if r.proximityComputed {
		for _, existingID := range r.order {
			existing := r.locations[existingID]
			if ctdf.Haversine(existing.Latitude, existing.Longitude, latitude, longitude) < r.maxTransferDistance {
				existing.nearby[id] = struct{}{}
				location.nearby[existingID] = struct{}{}
			}
		}
	}

	r.locations[id] = location
	r.order = append(r.order, id)

	return true
}

func (r *LocationRegistry) Get(id string) (*Location, bool) {
	location, exists := r.locations[id]
	return location, exists
}

func (r *LocationRegistry) Len() int {
	return len(r.order)
}

// IDs returns all location ids in registration order
func (r *LocationRegistry) IDs() []string {
	return slices.Clone(r.order)
}

func (r *LocationRegistry) ProximityComputed() bool {
	return r.proximityComputed
}

type proximityRow struct {
	index      int
	neighbours []string
}

// ComputeProximity links every pair of locations closer than
// maxTransferDistance metres.
func (r *LocationRegistry) ComputeProximity(maxTransferDistance float64) {
	p := pool.NewWithResults[proximityRow]().WithMaxGoroutines(runtime.GOMAXPROCS(0))

	for index, id := range r.order {
		index := index
		location := r.locations[id]

		p.Go(func() proximityRow {
			row := proximityRow{index: index}

			for _, otherID := range r.order[index+1:] {
				other := r.locations[otherID]
				if ctdf.Haversine(location.Latitude, location.Longitude, other.Latitude, other.Longitude) < maxTransferDistance {
					row.neighbours = append(row.neighbours, otherID)
				}
			}

			return row
		})
	}

	rows := p.Wait()
	slices.SortFunc(rows, func(a, b proximityRow) int {
		return a.index - b.index
	})

	for _, row := range rows {
		location := r.locations[r.order[row.index]]

		for _, neighbourID := range row.neighbours {
			location.nearby[neighbourID] = struct{}{}
			r.locations[neighbourID].nearby[location.ID] = struct{}{}
		}
	}

	r.proximityComputed = true
	r.maxTransferDistance = maxTransferDistance
}

// Nearby returns the sorted ids of all locations within transfer distance,
// including the location itself.
func (r *LocationRegistry) Nearby(id string) ([]string, error) {
	location, exists := r.locations[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}

	nearby := make([]string, 0, len(location.nearby)+1)
	for nearbyID := range location.nearby {
		nearby = append(nearby, nearbyID)
	}
	nearby = append(nearby, id)
	slices.Sort(nearby)

	return nearby, nil
}

// Within returns the locations strictly closer than maxDistance metres to the
// coordinate, in registration order.
func (r *LocationRegistry) Within(latitude float64, longitude float64, maxDistance float64) []LocationDistance {
	var found []LocationDistance

	for _, id := range r.order {
		location := r.locations[id]
		distance := ctdf.Haversine(location.Latitude, location.Longitude, latitude, longitude)

		if distance < maxDistance {
			found = append(found, LocationDistance{ID: id, Distance: distance})
		}
	}

	return found
}

package journeygraph

import (
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/exp/slices"
)

type transferCandidate struct {
	arrival   VertexID
	departure VertexID
}

type transferCandidates struct {
	index      int
	candidates []transferCandidate
}

// GenerateTransfers adds a Transfer edge from every arrival to every departure
// at the same or a nearby location when the gap lies strictly inside the
// configured transfer window. Proximity must already be computed.
func (b *Builder) GenerateTransfers() (int, error) {
	b.graph.mu.Lock()
	defer b.graph.mu.Unlock()

	if !b.graph.locations.ProximityComputed() {
		return 0, ErrProximityNotComputed
	}
	if b.graph.transfersGenerated {
		return 0, ErrTransfersGenerated
	}

	startTime := time.Now()
	store := b.graph.store
	minTransfer := b.graph.options.MinTransferTime
	maxTransfer := b.graph.options.MaxTransferTime

	p := pool.NewWithResults[transferCandidates]().WithMaxGoroutines(runtime.GOMAXPROCS(0))

	for index, locationID := range b.graph.locations.order {
		index := index
		locationID := locationID

		p.Go(func() transferCandidates {
			result := transferCandidates{index: index}

			nearby, _ := b.graph.locations.Nearby(locationID)

			for _, arrival := range store.Arrivals(locationID) {
				arrivalTime := store.vertices[arrival].Timestamp

				for _, connectingID := range nearby {
					for _, departure := range store.Departures(connectingID) {
						gap := store.vertices[departure].Timestamp - arrivalTime

						if gap > minTransfer && gap < maxTransfer {
							result.candidates = append(result.candidates, transferCandidate{arrival: arrival, departure: departure})
						}
					}
				}
			}

			return result
		})
	}

	results := p.Wait()
	slices.SortFunc(results, func(a, b transferCandidates) int {
		return a.index - b.index
	})

	added := 0
	for _, result := range results {
		for _, candidate := range result.candidates {
			if _, err := store.AddEdge(candidate.arrival, candidate.departure, Transfer, ""); err != nil {
				return added, err
			}
			added++
		}
	}

	b.graph.transfersGenerated = true

	log.Info().
		Int("transfers", added).
		Int("min", minTransfer).
		Int("max", maxTransfer).
		Str("Length", time.Since(startTime).String()).
		Msg("Generated transfer edges")

	return added, nil
}

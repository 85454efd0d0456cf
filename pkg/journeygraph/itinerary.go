package journeygraph

import (
	"time"

	"github.com/travigo/journeygraph/pkg/ctdf"
)

func minutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute)).Round(time.Second)
}

// Itinerary condenses a path into route items. Consecutive edges of one trip
// become a single item boarding at its first departure and alighting at the
// last arrival before a transfer, a change of trip, or the end of the path.
func (g *Graph) Itinerary(path Path) ctdf.JourneyPlan {
	g.mu.RLock()
	defer g.mu.RUnlock()

	plan := ctdf.JourneyPlan{
		RouteItems: []ctdf.JourneyPlanRouteItem{},
		Weight:     path.Weight,
	}

	var current *ctdf.JourneyPlanRouteItem
	closeLeg := func() {
		if current != nil {
			plan.RouteItems = append(plan.RouteItems, *current)
			current = nil
		}
	}

	for _, edgeID := range path.Edges {
		edge := g.store.edges[edgeID]
		source := g.store.vertices[edge.Source]
		target := g.store.vertices[edge.Target]

		switch edge.Kind {
		case Transport:
			if current == nil || current.TripRef != edge.TripID {
				closeLeg()

				current = &ctdf.JourneyPlanRouteItem{
					Type:     ctdf.JourneyPlanRouteItemTypeTrip,
					TripRef:  edge.TripID,
					TripName: g.tripName(edge.TripID),
				}
				if trip, exists := g.trips[edge.TripID]; exists {
					current.TransportType = trip.TransportType
				}
				g.setOrigin(current, source)
			}
			g.setDestination(current, target)
		case Stationary:
			if current != nil && current.TripRef != edge.TripID {
				closeLeg()
			}
		case Transfer:
			closeLeg()

			transfer := ctdf.JourneyPlanRouteItem{Type: ctdf.JourneyPlanRouteItemTypeTransfer}
			g.setOrigin(&transfer, source)
			g.setDestination(&transfer, target)
			plan.RouteItems = append(plan.RouteItems, transfer)
		}
	}
	closeLeg()

	if path.Origin != nil && len(path.Vertices) > 0 {
		first := g.store.vertices[path.Vertices[0]]
		walk := ctdf.JourneyPlanRouteItem{
			Type:           ctdf.JourneyPlanRouteItemTypeWalk,
			OriginLocation: path.Origin,
		}
		g.setDestination(&walk, first)
		walk.StartTime = walk.ArrivalTime.Add(-minutesToDuration(path.AccessMinutes))

		plan.RouteItems = append([]ctdf.JourneyPlanRouteItem{walk}, plan.RouteItems...)
	}

	if path.Destination != nil && len(path.Vertices) > 0 {
		last := g.store.vertices[path.Vertices[len(path.Vertices)-1]]
		walk := ctdf.JourneyPlanRouteItem{
			Type:                ctdf.JourneyPlanRouteItemTypeWalk,
			DestinationLocation: path.Destination,
		}
		g.setOrigin(&walk, last)
		walk.ArrivalTime = walk.StartTime.Add(minutesToDuration(path.EgressMinutes))

		plan.RouteItems = append(plan.RouteItems, walk)
	}

	if len(plan.RouteItems) > 0 {
		plan.StartTime = plan.RouteItems[0].StartTime
		plan.ArrivalTime = plan.RouteItems[len(plan.RouteItems)-1].ArrivalTime
		plan.Duration = plan.ArrivalTime.Sub(plan.StartTime)
	}

	return plan
}

func (g *Graph) tripName(tripID string) string {
	if trip, exists := g.trips[tripID]; exists && trip.Name != "" {
		return trip.Name
	}
	return tripID
}

func (g *Graph) locationName(id string) string {
	if location, exists := g.locations.Get(id); exists {
		return location.Name
	}
	return id
}

func (g *Graph) locationPoint(id string) *ctdf.Location {
	if location, exists := g.locations.Get(id); exists {
		return location.Point()
	}
	return nil
}

func (g *Graph) setOrigin(item *ctdf.JourneyPlanRouteItem, vertex Vertex) {
	item.OriginStopRef = vertex.Location
	item.OriginStopName = g.locationName(vertex.Location)
	item.OriginLocation = g.locationPoint(vertex.Location)
	item.StartTime = g.Time(vertex.Timestamp)
}

func (g *Graph) setDestination(item *ctdf.JourneyPlanRouteItem, vertex Vertex) {
	item.DestinationStopRef = vertex.Location
	item.DestinationStopName = g.locationName(vertex.Location)
	item.DestinationLocation = g.locationPoint(vertex.Location)
	item.ArrivalTime = g.Time(vertex.Timestamp)
}

// StopEvents lists every departure and arrival along the path, including
// intermediate stops where the passenger stays on board.
func (g *Graph) StopEvents(path Path) []ctdf.StopEvent {
	g.mu.RLock()
	defer g.mu.RUnlock()

	events := []ctdf.StopEvent{}

	for index, vertexID := range path.Vertices {
		vertex := g.store.vertices[vertexID]

		var tripEdge *Edge
		if vertex.Role == Departure && index < len(path.Edges) {
			tripEdge = &g.store.edges[path.Edges[index]]
		} else if vertex.Role == Arrival && index > 0 {
			tripEdge = &g.store.edges[path.Edges[index-1]]
		}
		if tripEdge == nil || tripEdge.Kind != Transport {
			continue
		}

		eventType := ctdf.StopEventTypeDeparture
		if vertex.Role == Arrival {
			eventType = ctdf.StopEventTypeArrival
		}

		events = append(events, ctdf.StopEvent{
			Type:     eventType,
			Time:     g.Time(vertex.Timestamp),
			TripRef:  tripEdge.TripID,
			TripName: g.tripName(tripEdge.TripID),
			StopRef:  vertex.Location,
			StopName: g.locationName(vertex.Location),
		})
	}

	return events
}

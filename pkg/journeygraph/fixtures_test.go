package journeygraph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

var testBegin = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
var testEnd = testBegin.Add(24 * time.Hour)

type testStation struct {
	id        string
	latitude  float64
	longitude float64
}

var (
	stationA  = testStation{"StationA", 51.5000, -0.1000}
	stationB  = testStation{"StationB", 51.5100, -0.1000}
	stationB2 = testStation{"StationB2", 51.5009, -0.1000}
	stationC  = testStation{"StationC", 51.5200, -0.1000}
	stationD  = testStation{"StationD", 51.5300, -0.1000}
)

func clock(t *testing.T, value string) *time.Time {
	t.Helper()

	parsed, err := time.Parse("15:04", value)
	require.NoError(t, err)

	at := testBegin.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
	return &at
}

// testCall times are "15:04" clock times on testBegin, empty when absent
type testCall struct {
	station   testStation
	arrival   string
	departure string
}

func testTrip(t *testing.T, id string, calls ...testCall) []ctdf.TripRecord {
	t.Helper()

	var records []ctdf.TripRecord
	for _, call := range calls {
		record := ctdf.TripRecord{
			LocationID:   call.station.id,
			LocationName: call.station.id,
			Latitude:     call.station.latitude,
			Longitude:    call.station.longitude,
			TripID:       id,
			TripLabel:    id,
		}
		if call.arrival != "" {
			record.ArrivalTime = clock(t, call.arrival)
		}
		if call.departure != "" {
			record.DepartureTime = clock(t, call.departure)
		}

		records = append(records, record)
	}

	return records
}

func testOptions(minTransfer int, maxTransfer int) Options {
	options := DefaultOptions()
	options.MinTransferTime = minTransfer
	options.MaxTransferTime = maxTransfer

	return options
}

// connectingTrips is T1 StationA 10:00 to StationB 10:30 and T2 StationB
// 10:40 to StationC 11:00
func connectingTrips(t *testing.T) [][]ctdf.TripRecord {
	return [][]ctdf.TripRecord{
		testTrip(t, "T1", testCall{stationA, "", "10:00"}, testCall{stationB, "10:30", ""}),
		testTrip(t, "T2", testCall{stationB, "", "10:40"}, testCall{stationC, "11:00", ""}),
	}
}

func buildTestGraph(t *testing.T, trips [][]ctdf.TripRecord, options Options) *Graph {
	t.Helper()

	graph, report, err := BuildGraph(testBegin, testEnd, trips, options)
	require.NoError(t, err)
	require.Zero(t, report.Rejected)

	return graph
}

func edgesOfKind(t *testing.T, graph *Graph, kind EdgeKind) []Edge {
	t.Helper()

	var found []Edge
	err := graph.Walk(func(id VertexID, vertex Vertex, out []Edge) error {
		for _, edge := range out {
			if edge.Kind == kind {
				found = append(found, edge)
			}
		}
		return nil
	})
	require.NoError(t, err)

	return found
}

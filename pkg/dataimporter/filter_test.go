package dataimporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

func testTrip(id string, transportType ctdf.TransportType, departure time.Time, minutes int, stops ...string) []ctdf.TripRecord {
	trip := make([]ctdf.TripRecord, len(stops))

	for index, stop := range stops {
		at := departure.Add(time.Duration(index*minutes) * time.Minute)
		trip[index] = ctdf.TripRecord{
			LocationID:    stop,
			TripID:        id,
			TripLabel:     "Line " + id,
			TransportType: transportType,
		}
		if index > 0 {
			arrival := at
			trip[index].ArrivalTime = &arrival
		}
		if index < len(stops)-1 {
			departure := at
			trip[index].DepartureTime = &departure
		}
	}

	return trip
}

func testTrips() [][]ctdf.TripRecord {
	morning := time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC)

	return [][]ctdf.TripRecord{
		testTrip("R1", ctdf.TransportTypeRail, morning, 30, "A", "B", "C"),
		testTrip("B1", ctdf.TransportTypeBus, morning.Add(2*time.Hour), 10, "A", "D"),
		testTrip("R2", ctdf.TransportTypeRail, morning.Add(23*time.Hour), 60, "C", "A"),
	}
}

func TestTripFilter(t *testing.T) {
	tests := []struct {
		expression string
		expected   []string
	}{
		{`TransportType == "Rail"`, []string{"R1", "R2"}},
		{`StopCount > 2`, []string{"R1"}},
		{`"D" in Stops`, []string{"B1"}},
		{`Origin == "A" && Departure.Hour() >= 9`, []string{"B1"}},
		{`Destination != "A" and TripLabel startsWith "Line R"`, []string{"R1"}},
	}

	for _, test := range tests {
		t.Run(test.expression, func(t *testing.T) {
			filter, err := NewTripFilter(test.expression)
			require.NoError(t, err)

			kept, err := filter.Apply(testTrips())
			require.NoError(t, err)

			var ids []string
			for _, trip := range kept {
				ids = append(ids, trip[0].TripID)
			}
			assert.Equal(t, test.expected, ids)
		})
	}
}

func TestTripFilterRejectsBadExpressions(t *testing.T) {
	_, err := NewTripFilter(`StopCount + 1`)
	assert.Error(t, err)

	_, err = NewTripFilter(`Operator == "x"`)
	assert.Error(t, err)
}

func TestNilTripFilterKeepsEverything(t *testing.T) {
	var filter *TripFilter

	kept, err := filter.Apply(testTrips())
	require.NoError(t, err)
	assert.Len(t, kept, 3)
}

package gtfs

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/dataimporter/formats"
)

var testFeed = map[string]string{
	"agency.txt": "agency_id,agency_name\nA1,Test Agency\n",
	"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
		"A,Stop A,51.50,-0.10\n" +
		"B,Stop B,51.51,-0.10\n" +
		"C,Stop C,51.52,-0.10\n",
	"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
		"R1,A1,10,,3\n" +
		"R2,A1,,Night Line,2\n",
	"trips.txt": "route_id,service_id,trip_id\n" +
		"R1,WEEKDAY,T1\n" +
		"R2,WEEKEND,T2\n",
	"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,25:05:00,25:05:00,C,3\n" +
		"T1,08:00:00,08:00:00,A,1\n" +
		"T1,08:10:00,08:12:00,B,2\n" +
		"T2,,22:00:00,A,1\n" +
		"T2,22:30:00,,C,2\n",
	"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
		"WEEKDAY,1,1,1,1,1,0,0,20260105,20260109\n" +
		"WEEKEND,0,0,0,0,0,1,1,20260110,20260110\n",
	"calendar_dates.txt": "service_id,date,exception_type\n" +
		"WEEKDAY,20260106,2\n" +
		"WEEKEND,20260107,1\n",
}

func buildFeed(t *testing.T, files map[string]string) []byte {
	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)

	for name, contents := range files {
		file, err := writer.Create(name)
		require.NoError(t, err)
		_, err = file.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	return buffer.Bytes()
}

func parseTestFeed(t *testing.T) *Schedule {
	schedule := &Schedule{}
	require.NoError(t, schedule.ParseFile(bytes.NewReader(buildFeed(t, testFeed))))
	return schedule
}

func date(t *testing.T, value string) time.Time {
	parsed, err := time.ParseInLocation(dateFormat, value, time.UTC)
	require.NoError(t, err)
	return parsed
}

func TestParseFile(t *testing.T) {
	schedule := parseTestFeed(t)

	assert.Len(t, schedule.Stops, 3)
	assert.Len(t, schedule.Routes, 2)
	assert.Len(t, schedule.TripList, 2)
	assert.Len(t, schedule.StopTimes, 5)
	assert.Len(t, schedule.Calendars, 2)
	assert.Len(t, schedule.CalendarDates, 2)

	assert.Equal(t, 51.51, schedule.Stops[1].Latitude)
	assert.Equal(t, "Night Line", schedule.Routes[1].LongName)
}

func TestParseFileRejectsBadInput(t *testing.T) {
	schedule := &Schedule{}
	assert.Error(t, schedule.ParseFile(bytes.NewReader([]byte("not a zip file"))))

	schedule = &Schedule{}
	assert.Error(t, schedule.ParseFile(bytes.NewReader(buildFeed(t, map[string]string{
		"agency.txt": "agency_id,agency_name\nA1,Test Agency\n",
	}))))
}

func TestRunsOn(t *testing.T) {
	schedule := parseTestFeed(t)

	tests := []struct {
		service  string
		date     string
		expected bool
	}{
		{"WEEKDAY", "20260105", true},
		{"WEEKDAY", "20260106", false},
		{"WEEKDAY", "20260110", false},
		{"WEEKDAY", "20260112", false},
		{"WEEKEND", "20260107", true},
		{"WEEKEND", "20260110", true},
		{"WEEKEND", "20260111", false},
		{"MISSING", "20260105", false},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, schedule.RunsOn(test.service, date(t, test.date)), "%s on %s", test.service, test.date)
	}
}

func TestBusiestDate(t *testing.T) {
	schedule := parseTestFeed(t)

	busiest, err := schedule.BusiestDate(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, date(t, "20260107"), busiest)

	_, err = (&Schedule{}).BusiestDate(time.UTC)
	assert.ErrorIs(t, err, ErrNoServiceDate)
}

func TestTrips(t *testing.T) {
	schedule := parseTestFeed(t)

	trips, err := schedule.Trips(formats.ConvertOptions{Location: time.UTC})
	require.NoError(t, err)
	require.Len(t, trips, 2)

	first := trips[0]
	require.Len(t, first, 3)
	assert.Equal(t, "A", first[0].LocationID)
	assert.Equal(t, "B", first[1].LocationID)
	assert.Equal(t, "C", first[2].LocationID)
	assert.Equal(t, "10", first[0].TripLabel)
	assert.Equal(t, ctdf.TransportTypeBus, first[0].TransportType)

	assert.Nil(t, first[0].ArrivalTime)
	assert.Equal(t, time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC), *first[0].DepartureTime)
	assert.Equal(t, time.Date(2026, 1, 7, 8, 10, 0, 0, time.UTC), *first[1].ArrivalTime)
	assert.Equal(t, time.Date(2026, 1, 7, 8, 12, 0, 0, time.UTC), *first[1].DepartureTime)
	assert.Equal(t, time.Date(2026, 1, 8, 1, 5, 0, 0, time.UTC), *first[2].ArrivalTime)
	assert.Nil(t, first[2].DepartureTime)

	second := trips[1]
	assert.Equal(t, "Night Line", second[0].TripLabel)
	assert.Equal(t, ctdf.TransportTypeRail, second[0].TransportType)
	assert.Equal(t, time.Date(2026, 1, 7, 22, 30, 0, 0, time.UTC), *second[1].ArrivalTime)
}

func TestTripsOnServiceDate(t *testing.T) {
	schedule := parseTestFeed(t)

	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	trips, err := schedule.Trips(formats.ConvertOptions{
		Location:    london,
		ServiceDate: date(t, "20260110"),
	})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "T2", trips[0][0].TripID)
	assert.Equal(t, london, trips[0][0].DepartureTime.Location())

	trips, err = schedule.Trips(formats.ConvertOptions{ServiceDate: date(t, "20260106")})
	require.NoError(t, err)
	assert.Empty(t, trips)
}

package dataimporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/config"
	"github.com/travigo/journeygraph/pkg/dataimporter/datasets"
)

const buildTimetable = `{
	"L1": [[
		{"loc_id": "A", "loc_name": "Stop A", "lat": 51.5000, "lon": -0.1000, "dep_time": "2026-01-07T10:00:00", "trip_id": "T1", "trip_type": "bus"},
		{"loc_id": "B", "loc_name": "Stop B", "lat": 51.5100, "lon": -0.1000, "arr_time": "2026-01-07T10:30:00", "trip_id": "T1", "trip_type": "bus"}
	]],
	"L2": [[
		{"loc_id": "B", "loc_name": "Stop B", "lat": 51.5100, "lon": -0.1000, "dep_time": "2026-01-07T10:40:00", "trip_id": "T2", "trip_type": "rail"},
		{"loc_id": "C", "loc_name": "Stop C", "lat": 51.5200, "lon": -0.1000, "arr_time": "2026-01-07T11:00:00", "trip_id": "T2", "trip_type": "rail"}
	], [
		{"loc_id": "B", "loc_name": "Stop B", "lat": 51.5100, "lon": -0.1000, "dep_time": "2026-01-08T10:40:00", "trip_id": "T2", "trip_type": "rail"},
		{"loc_id": "C", "loc_name": "Stop C", "lat": 51.5200, "lon": -0.1000, "arr_time": "2026-01-08T11:00:00", "trip_id": "T2", "trip_type": "rail"}
	]]
}`

func buildDataset(t *testing.T) datasets.DataSet {
	path := filepath.Join(t.TempDir(), "trips.json")
	require.NoError(t, os.WriteFile(path, []byte(buildTimetable), 0o644))

	return datasets.DataSet{Identifier: "test-trips", Format: datasets.DataSetFormatTripsJSON, Source: path}
}

func TestBuild(t *testing.T) {
	result, err := Build(context.Background(), config.Default(), BuildRequest{Dataset: buildDataset(t)})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), result.Window.Begin)
	assert.Equal(t, 1, result.OutsideWindow)
	assert.Equal(t, 2, result.Report.Accepted)
	assert.Equal(t, 1, result.Report.TransferEdges)
	assert.Equal(t, "test-trips", result.Version.Dataset)

	summary := result.Graph.Summary()
	assert.Equal(t, 3, summary.Locations)
	assert.Equal(t, 4, summary.Vertices)
}

func TestBuildWithFilterAndBegin(t *testing.T) {
	request := BuildRequest{
		Dataset: buildDataset(t),
		Begin:   time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
		Filter:  `TransportType == "Rail"`,
	}

	result, err := Build(context.Background(), config.Default(), request)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Filtered)
	assert.Equal(t, 1, result.OutsideWindow)
	assert.Equal(t, 1, result.Report.Accepted)
	assert.Zero(t, result.Report.TransferEdges)

	_, exists := result.Graph.Trip("T2#1")
	assert.True(t, exists)
}

func TestBuildRejectsBadFilter(t *testing.T) {
	_, err := Build(context.Background(), config.Default(), BuildRequest{Dataset: buildDataset(t), Filter: "StopCount +"})
	assert.Error(t, err)
}

func TestParseBegin(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	begin, err := parseBegin("2026-01-07", berlin)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 7, 0, 0, 0, 0, berlin), begin)

	begin, err = parseBegin("2026-01-07T06:00:00Z", berlin)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 1, 7, 6, 0, 0, 0, time.UTC).Equal(begin))

	_, err = parseBegin("tomorrow", berlin)
	assert.Error(t, err)
}

package manager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/dataimporter/datasets"
)

const testTimetable = `{"L1": [[
	{"loc_id": "A", "loc_name": "Stop A", "lat": 51.50, "lon": -0.10, "dep_time": "2026-01-07T10:00:00", "trip_id": "T1", "trip_type": "bus"},
	{"loc_id": "B", "loc_name": "Stop B", "lat": 51.51, "lon": -0.10, "arr_time": "2026-01-07T10:30:00", "trip_id": "T1", "trip_type": "bus"}
]]}`

const testDatasources = `identifier: gb-test
region: GB
provider:
  name: Test Provider
  website: https://example.com
sourceauthentication:
  header:
    X-Api-Key: TEST_API_KEY
datasets:
  - identifier: trips
    format: trips-json
    source: trips.json
    timezone: Europe/London
---
identifier: de-test
provider:
  name: Other Provider
datasets:
  - identifier: schedule
    format: gtfs-schedule
    source: https://example.com/gtfs.zip
    servicedate: "2026-01-07"
    filter: TransportType == "Rail"
`

func writeDatasources(t *testing.T) string {
	directory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(directory, "test.yaml"), []byte(testDatasources), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "README.md"), []byte("ignored"), 0o644))
	return directory
}

func TestGetRegisteredDataSets(t *testing.T) {
	registered, err := GetRegisteredDataSets(writeDatasources(t))
	require.NoError(t, err)
	require.Len(t, registered, 2)

	first := registered[0]
	assert.Equal(t, "gb-test-trips", first.Identifier)
	assert.Equal(t, "gb-test", first.DataSourceRef)
	assert.Equal(t, datasets.DataSetFormatTripsJSON, first.Format)
	assert.Equal(t, "Test Provider", first.Provider.Name)
	assert.Equal(t, "TEST_API_KEY", first.SourceAuthentication.Header["X-Api-Key"])
	assert.Equal(t, "Europe/London", first.Timezone)

	second := registered[1]
	assert.Equal(t, "de-test-schedule", second.Identifier)
	assert.Equal(t, "2026-01-07", second.ServiceDate)
	assert.Equal(t, `TransportType == "Rail"`, second.Filter)
}

func TestGetDataset(t *testing.T) {
	directory := writeDatasources(t)

	dataset, err := GetDataset(directory, "de-test-schedule")
	require.NoError(t, err)
	assert.Equal(t, datasets.DataSetFormatGTFSSchedule, dataset.Format)

	_, err = GetDataset(directory, "missing")
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestLoadDatasetFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.json")
	require.NoError(t, os.WriteFile(path, []byte(testTimetable), 0o644))

	dataset := datasets.DataSet{Identifier: "local", Format: datasets.DataSetFormatTripsJSON, Source: path}

	trips, version, err := LoadDataset(context.Background(), dataset, time.UTC)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, "local", version.Dataset)
	assert.Len(t, version.Hash, 64)
	assert.False(t, version.LastModified.IsZero())

	_, again, err := LoadDataset(context.Background(), dataset, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, version.Hash, again.Hash)
}

func TestLoadDatasetDownloads(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret")
	t.Setenv("TEST_TOKEN", "token")

	lastModified := time.Date(2026, 1, 6, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "secret" || r.URL.Query().Get("token") != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Last-Modified", lastModified.Format(http.TimeFormat))
		w.Write([]byte(testTimetable))
	}))
	defer server.Close()

	dataset := datasets.DataSet{
		Identifier: "remote",
		Format:     datasets.DataSetFormatTripsJSON,
		Source:     server.URL + "/trips.json",
		Timezone:   "Europe/London",
		SourceAuthentication: datasets.SourceAuthentication{
			Header: map[string]string{"X-Api-Key": "TEST_API_KEY"},
			Query:  map[string]string{"token": "TEST_TOKEN"},
		},
	}

	trips, version, err := LoadDataset(context.Background(), dataset, time.UTC)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.True(t, lastModified.Equal(version.LastModified))
	assert.Equal(t, "Europe/London", trips[0][0].DepartureTime.Location().String())

	dataset.SourceAuthentication = datasets.SourceAuthentication{}
	_, _, err = LoadDataset(context.Background(), dataset, time.UTC)
	assert.Error(t, err)
}

func TestLoadDatasetRejectsUnknownFormat(t *testing.T) {
	_, _, err := LoadDataset(context.Background(), datasets.DataSet{Format: "gb-cif"}, time.UTC)
	assert.Error(t, err)
}

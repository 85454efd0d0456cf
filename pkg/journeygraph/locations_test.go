package journeygraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

func TestLocationRegistryRegister(t *testing.T) {
	registry := NewLocationRegistry()

	assert.True(t, registry.Register("StationA", "Station A", 51.5, -0.1))
	assert.False(t, registry.Register("StationA", "Renamed", 10, 10))

	location, exists := registry.Get("StationA")
	require.True(t, exists)
	assert.Equal(t, "Station A", location.Name)
	assert.Equal(t, 51.5, location.Latitude)
	assert.Equal(t, 1, registry.Len())
}

func TestLocationRegistryProximity(t *testing.T) {
	registry := NewLocationRegistry()
	for _, station := range []testStation{stationA, stationB, stationB2} {
		registry.Register(station.id, station.id, station.latitude, station.longitude)
	}

	registry.ComputeProximity(250)
	assert.True(t, registry.ProximityComputed())

	nearby, err := registry.Nearby(stationA.id)
	require.NoError(t, err)
	assert.Equal(t, []string{"StationA", "StationB2"}, nearby)

	nearby, err = registry.Nearby(stationB2.id)
	require.NoError(t, err)
	assert.Equal(t, []string{"StationA", "StationB2"}, nearby)

	nearby, err = registry.Nearby(stationB.id)
	require.NoError(t, err)
	assert.Equal(t, []string{"StationB"}, nearby)

	_, err = registry.Nearby("Nowhere")
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestLocationRegistryLateRegistration(t *testing.T) {
	registry := NewLocationRegistry()
	registry.Register(stationA.id, stationA.id, stationA.latitude, stationA.longitude)
	registry.ComputeProximity(250)

	registry.Register(stationB2.id, stationB2.id, stationB2.latitude, stationB2.longitude)

	nearby, err := registry.Nearby(stationA.id)
	require.NoError(t, err)
	assert.Equal(t, []string{"StationA", "StationB2"}, nearby)
}

func TestLocationRegistryWithinIsStrict(t *testing.T) {
	registry := NewLocationRegistry()
	registry.Register(stationA.id, stationA.id, stationA.latitude, stationA.longitude)

	latitude, longitude := 51.5010, -0.1010
	distance := ctdf.Haversine(stationA.latitude, stationA.longitude, latitude, longitude)

	assert.Empty(t, registry.Within(latitude, longitude, distance))

	found := registry.Within(latitude, longitude, distance+0.5)
	require.Len(t, found, 1)
	assert.Equal(t, stationA.id, found[0].ID)
	assert.InDelta(t, distance, found[0].Distance, 1e-9)
}

func TestLocationOrder(t *testing.T) {
	registry := NewLocationRegistry()
	registry.Register("Zeta", "Zeta", 51.5, -0.1)
	registry.Register("Alpha", "Alpha", 51.6, -0.1)

	ids := registry.IDs()
	assert.Equal(t, []string{"Zeta", "Alpha"}, ids)

	ids[0] = "Changed"
	assert.Equal(t, []string{"Zeta", "Alpha"}, registry.IDs())

	graph := buildTestGraph(t, connectingTrips(t), testOptions(5, 20))
	var listed []string
	for _, info := range graph.LocationList() {
		listed = append(listed, info.ID)
	}
	assert.Equal(t, []string{"StationA", "StationB", "StationC"}, listed)
}

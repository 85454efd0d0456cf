package dataimporter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

func oneDay(begin time.Time) (time.Time, error) {
	return begin.AddDate(0, 0, 1), nil
}

func TestWindowFor(t *testing.T) {
	window, err := WindowFor(testTrips(), time.UTC, oneDay)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC), window.Begin)
	assert.Equal(t, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), window.End)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 08:00 UTC is already 17:00 in Tokyo, same day
	window, err = WindowFor(testTrips(), tokyo, oneDay)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 7, 0, 0, 0, 0, tokyo), window.Begin)
}

func TestWindowApply(t *testing.T) {
	trips := testTrips()
	window, err := WindowFor(trips, time.UTC, oneDay)
	require.NoError(t, err)

	dropped := window.Apply(&trips)
	assert.Equal(t, 1, dropped)
	assert.Len(t, trips, 2)
	assert.Equal(t, "R1", trips[0][0].TripID)
	assert.Equal(t, "B1", trips[1][0].TripID)
}

func TestNewWindowReportsHorizonErrors(t *testing.T) {
	_, err := NewWindow(time.Now(), func(time.Time) (time.Time, error) {
		return time.Time{}, errors.New("bad horizon")
	})
	assert.Error(t, err)
}

func TestWindowContains(t *testing.T) {
	window := Window{Begin: time.Date(2026, 1, 7, 9, 0, 0, 0, time.UTC)}
	trips := testTrips()

	assert.False(t, window.Contains(trips[0]))
	assert.True(t, window.Contains(trips[2]))
	assert.False(t, window.Contains([]ctdf.TripRecord{{LocationID: "A"}}))
}

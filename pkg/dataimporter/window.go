package dataimporter

import (
	"time"

	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/util"
)

// Window is the [Begin, End] range a graph covers
type Window struct {
	Begin time.Time
	End   time.Time
}

// WindowFor starts at midnight of the earliest trip time and ends where
// horizon says
func WindowFor(trips [][]ctdf.TripRecord, location *time.Location, horizon func(time.Time) (time.Time, error)) (Window, error) {
	var earliest time.Time
	for _, trip := range trips {
		start := ctdf.EarliestTime(trip)
		if !start.IsZero() && (earliest.IsZero() || start.Before(earliest)) {
			earliest = start
		}
	}

	if earliest.IsZero() {
		earliest = time.Now()
	}

	local := earliest.In(location)
	begin := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)

	return NewWindow(begin, horizon)
}

func NewWindow(begin time.Time, horizon func(time.Time) (time.Time, error)) (Window, error) {
	end, err := horizon(begin)
	if err != nil {
		return Window{}, err
	}

	return Window{Begin: begin, End: end}, nil
}

// Contains reports whether every time of the trip falls inside the window
func (w Window) Contains(trip []ctdf.TripRecord) bool {
	earliest := ctdf.EarliestTime(trip)
	if earliest.IsZero() || earliest.Before(w.Begin) {
		return false
	}

	return w.End.IsZero() || !ctdf.LatestTime(trip).After(w.End)
}

// Apply drops trips outside the window and returns how many went
func (w Window) Apply(trips *[][]ctdf.TripRecord) int {
	before := len(*trips)
	util.InPlaceFilter(trips, w.Contains)
	return before - len(*trips)
}

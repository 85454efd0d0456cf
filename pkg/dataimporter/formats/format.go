package formats

import (
	"io"
	"time"

	"github.com/travigo/journeygraph/pkg/ctdf"
)

type ConvertOptions struct {
	Location *time.Location
	// ServiceDate selects a single day of a calendar based feed. Zero picks
	// the day with the most trips.
	ServiceDate time.Time
}

// Format is a timetable source that can be turned into trips
type Format interface {
	ParseFile(io.Reader) error
	Trips(ConvertOptions) ([][]ctdf.TripRecord, error)
}

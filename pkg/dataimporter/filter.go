package dataimporter

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

// TripEnv is what a filter expression can see of a trip, for example
// `TransportType == "Rail" && StopCount > 2` or `"8000105" in Stops`
type TripEnv struct {
	TripID        string
	TripLabel     string
	TransportType string
	Origin        string
	Destination   string
	Stops         []string
	StopCount     int
	Departure     time.Time
}

func newTripEnv(trip []ctdf.TripRecord) TripEnv {
	env := TripEnv{
		StopCount: len(trip),
		Stops:     make([]string, len(trip)),
	}

	for index, record := range trip {
		env.Stops[index] = record.LocationID
	}

	if len(trip) > 0 {
		env.TripID = trip[0].TripID
		env.TripLabel = trip[0].TripLabel
		env.TransportType = string(trip[0].TransportType)
		env.Origin = trip[0].LocationID
		env.Destination = trip[len(trip)-1].LocationID
		if trip[0].DepartureTime != nil {
			env.Departure = *trip[0].DepartureTime
		}
	}

	return env
}

type TripFilter struct {
	source  string
	program *vm.Program
}

func NewTripFilter(source string) (*TripFilter, error) {
	program, err := expr.Compile(source, expr.Env(TripEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid trip filter %q: %w", source, err)
	}

	return &TripFilter{source: source, program: program}, nil
}

func (f *TripFilter) Match(trip []ctdf.TripRecord) (bool, error) {
	output, err := expr.Run(f.program, newTripEnv(trip))
	if err != nil {
		return false, err
	}

	return output.(bool), nil
}

// Apply keeps the trips the expression accepts. A nil filter keeps everything.
func (f *TripFilter) Apply(trips [][]ctdf.TripRecord) ([][]ctdf.TripRecord, error) {
	if f == nil {
		return trips, nil
	}

	kept := make([][]ctdf.TripRecord, 0, len(trips))
	for _, trip := range trips {
		matched, err := f.Match(trip)
		if err != nil {
			return nil, fmt.Errorf("trip filter %q: %w", f.source, err)
		}
		if matched {
			kept = append(kept, trip)
		}
	}

	return kept, nil
}

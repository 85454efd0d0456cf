package ctdf

import "time"

// TripRecord is a single stop visit of a trip as delivered by an importer.
// A trip is an ordered slice of records where the first has no ArrivalTime and
// the last has no DepartureTime.
type TripRecord struct {
	LocationID   string
	LocationName string
	Latitude     float64
	Longitude    float64

	ArrivalTime   *time.Time
	DepartureTime *time.Time

	TripID        string
	TripLabel     string
	TransportType TransportType
}

// EarliestTime returns the first time found on the trip, or the zero time if
// the trip carries no times at all.
func EarliestTime(trip []TripRecord) time.Time {
	var earliest time.Time

	for _, record := range trip {
		for _, t := range []*time.Time{record.ArrivalTime, record.DepartureTime} {
			if t != nil && (earliest.IsZero() || t.Before(earliest)) {
				earliest = *t
			}
		}
	}

	return earliest
}

// LatestTime returns the last time found on the trip
func LatestTime(trip []TripRecord) time.Time {
	var latest time.Time

	for _, record := range trip {
		for _, t := range []*time.Time{record.ArrivalTime, record.DepartureTime} {
			if t != nil && t.After(latest) {
				latest = *t
			}
		}
	}

	return latest
}

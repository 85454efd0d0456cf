package tripsjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/paulcager/osgridref"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/dataimporter/formats"
	"golang.org/x/exp/slices"
)

const timeLayout = "2006-01-02T15:04:05"

// Stop is a single call of a trip. Identifiers and coordinates may be given
// as JSON numbers or strings.
type Stop struct {
	LocationID   Value  `json:"loc_id"`
	LocationName string `json:"loc_name"`
	Latitude     Value  `json:"lat"`
	Longitude    Value  `json:"lon"`
	Easting      Value  `json:"easting"`
	Northing     Value  `json:"northing"`

	ArrivalTime   string `json:"arr_time"`
	DepartureTime string `json:"dep_time"`

	TripID   Value  `json:"trip_id"`
	TripType string `json:"trip_type"`
}

// Value holds the raw text of a JSON string or number
type Value string

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = Value(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*v = Value(number.String())
	return nil
}

func (v Value) Float() (float64, error) {
	return strconv.ParseFloat(string(v), 64)
}

// Timetable is a set of trips keyed by the line or train they belong to
type Timetable struct {
	Lines map[string][][]Stop
}

func (t *Timetable) ParseFile(reader io.Reader) error {
	decoder := json.NewDecoder(reader)

	if err := decoder.Decode(&t.Lines); err != nil {
		return err
	}

	if len(t.Lines) == 0 {
		return errors.New("timetable has no trips")
	}

	return nil
}

func (t *Timetable) Trips(options formats.ConvertOptions) ([][]ctdf.TripRecord, error) {
	location := options.Location
	if location == nil {
		location = time.UTC
	}

	labels := make([]string, 0, len(t.Lines))
	for label := range t.Lines {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	var trips [][]ctdf.TripRecord
	skipped := 0

	for _, label := range labels {
		for index, stops := range t.Lines[label] {
			records, err := convertTrip(label, stops, location)
			if err != nil {
				log.Debug().Err(err).Str("line", label).Int("index", index).Msg("Skipping trip")
				skipped++
				continue
			}

			trips = append(trips, records)
		}
	}

	uniqueTripIDs(trips)

	log.Info().
		Int("lines", len(labels)).
		Int("trips", len(trips)).
		Int("skipped", skipped).
		Msg("Converted trips")

	return trips, nil
}

func convertTrip(label string, stops []Stop, location *time.Location) ([]ctdf.TripRecord, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("trip has %d stops", len(stops))
	}

	tripID := string(stops[0].TripID)
	if tripID == "" {
		tripID = label
	}
	transportType := ctdf.ParseTransportType(stops[0].TripType)

	records := make([]ctdf.TripRecord, len(stops))

	for index, stop := range stops {
		if stop.LocationID == "" {
			return nil, fmt.Errorf("stop %d has no loc_id", index)
		}

		latitude, longitude, err := stop.coordinates()
		if err != nil {
			return nil, fmt.Errorf("stop %s: %w", stop.LocationID, err)
		}

		record := ctdf.TripRecord{
			LocationID:    string(stop.LocationID),
			LocationName:  stop.LocationName,
			Latitude:      latitude,
			Longitude:     longitude,
			TripID:        tripID,
			TripLabel:     label,
			TransportType: transportType,
		}

		if index > 0 {
			arrival, err := parseTime(stop.ArrivalTime, location)
			if err != nil {
				return nil, fmt.Errorf("stop %s arrival: %w", stop.LocationID, err)
			}
			record.ArrivalTime = &arrival
		}
		if index < len(stops)-1 {
			departure, err := parseTime(stop.DepartureTime, location)
			if err != nil {
				return nil, fmt.Errorf("stop %s departure: %w", stop.LocationID, err)
			}
			record.DepartureTime = &departure
		}

		records[index] = record
	}

	return records, nil
}

func (s *Stop) coordinates() (float64, float64, error) {
	if s.Latitude != "" && s.Longitude != "" {
		latitude, err := s.Latitude.Float()
		if err != nil {
			return 0, 0, err
		}
		longitude, err := s.Longitude.Float()
		if err != nil {
			return 0, 0, err
		}
		return latitude, longitude, nil
	}

	if s.Easting != "" && s.Northing != "" {
		gridRef, err := osgridref.ParseOsGridRef(fmt.Sprintf("%s,%s", s.Easting, s.Northing))
		if err != nil {
			return 0, 0, err
		}

		latitude, longitude := gridRef.ToLatLon()
		return latitude, longitude, nil
	}

	return 0, 0, errors.New("no coordinates")
}

// parseTime reads naive local times, falling back to RFC3339 for times that
// carry their own offset
func parseTime(value string, location *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing time")
	}

	parsed, err := time.ParseInLocation(timeLayout, value, location)
	if err == nil {
		return parsed, nil
	}

	return time.Parse(time.RFC3339, value)
}

// uniqueTripIDs renames repeated trip ids to id#n, skipping any n that
// would clash with an id already in the feed. The same train number runs
// many times a day.
func uniqueTripIDs(trips [][]ctdf.TripRecord) {
	feedIDs := map[string]bool{}
	for _, trip := range trips {
		feedIDs[trip[0].TripID] = true
	}

	used := map[string]bool{}
	next := map[string]int{}

	for _, trip := range trips {
		original := trip[0].TripID
		tripID := original

		if used[tripID] {
			count := max(next[original], 1)
			for {
				tripID = fmt.Sprintf("%s#%d", original, count)
				count++
				if !used[tripID] && !feedIDs[tripID] {
					break
				}
			}
			next[original] = count
		}
		used[tripID] = true

		for i := range trip {
			trip[i].TripID = tripID
		}
	}
}

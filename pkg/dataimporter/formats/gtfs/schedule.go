package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/ctdf"
	"github.com/travigo/journeygraph/pkg/dataimporter/formats"
	"github.com/travigo/journeygraph/pkg/util"
	"golang.org/x/exp/slices"
)

const dateFormat = "20060102"

var ErrNoServiceDate = errors.New("no service date")

type Schedule struct {
	Stops         []Stop
	Routes        []Route
	TripList      []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
}

func (gtfs *Schedule) ParseFile(reader io.Reader) error {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		return r
	})

	fileMap := map[string]interface{}{
		"stops.txt":          &gtfs.Stops,
		"routes.txt":         &gtfs.Routes,
		"trips.txt":          &gtfs.TripList,
		"stop_times.txt":     &gtfs.StopTimes,
		"calendar.txt":       &gtfs.Calendars,
		"calendar_dates.txt": &gtfs.CalendarDates,
	}

	// TODO stream large feeds from the temp file instead of holding them in memory
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return err
	}

	for _, zipFile := range archive.File {
		destination, exists := fileMap[zipFile.Name]
		if !exists {
			log.Debug().Str("file", zipFile.Name).Msg("Ignoring gtfs file")
			continue
		}

		log.Info().Str("file", zipFile.Name).Msg("Loading file")

		if err := unmarshalZipFile(zipFile, destination); err != nil {
			log.Error().Str("file", zipFile.Name).Err(err).Msg("Failed to parse csv file")
			return fmt.Errorf("%s: %w", zipFile.Name, err)
		}
	}

	if len(gtfs.Stops) == 0 || len(gtfs.StopTimes) == 0 {
		return errors.New("gtfs feed is missing stops or stop times")
	}

	return nil
}

func unmarshalZipFile(zipFile *zip.File, destination interface{}) error {
	file, err := zipFile.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	return gocsv.Unmarshal(file, destination)
}

// RunsOn reports whether the service operates on the given date.
// calendar_dates exceptions win over the regular calendar.
func (gtfs *Schedule) RunsOn(serviceID string, date time.Time) bool {
	day := date.Format(dateFormat)

	for _, exception := range gtfs.CalendarDates {
		if exception.ServiceID != serviceID || exception.Date != day {
			continue
		}

		switch exception.ExceptionType {
		case CalendarDateServiceAdded:
			return true
		case CalendarDateServiceRemoved:
			return false
		}
	}

	for _, calendar := range gtfs.Calendars {
		if calendar.ServiceID != serviceID {
			continue
		}

		// Dates in this format compare correctly as strings
		if day < calendar.Start || day > calendar.End {
			continue
		}

		if calendar.RunsOnWeekday(date.Weekday()) {
			return true
		}
	}

	return false
}

// ServiceDates lists every date named by the calendars, in order
func (gtfs *Schedule) ServiceDates(location *time.Location) []time.Time {
	days := map[string]bool{}

	for _, calendar := range gtfs.Calendars {
		start, err := time.ParseInLocation(dateFormat, calendar.Start, location)
		if err != nil {
			continue
		}
		end, err := time.ParseInLocation(dateFormat, calendar.End, location)
		if err != nil {
			continue
		}

		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			days[day.Format(dateFormat)] = true
		}
	}
	for _, exception := range gtfs.CalendarDates {
		if exception.ExceptionType == CalendarDateServiceAdded {
			days[exception.Date] = true
		}
	}

	var dates []time.Time
	for day := range days {
		date, err := time.ParseInLocation(dateFormat, day, location)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}

	slices.SortFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})

	return dates
}

// BusiestDate returns the date with the most trips running. Ties go to the
// earliest date.
func (gtfs *Schedule) BusiestDate(location *time.Location) (time.Time, error) {
	var busiest time.Time
	mostTrips := 0

	for _, date := range gtfs.ServiceDates(location) {
		running := 0
		for _, trip := range gtfs.TripList {
			if gtfs.RunsOn(trip.ServiceID, date) {
				running++
			}
		}

		if running > mostTrips {
			busiest = date
			mostTrips = running
		}
	}

	if mostTrips == 0 {
		return time.Time{}, ErrNoServiceDate
	}

	return busiest, nil
}

func (gtfs *Schedule) Trips(options formats.ConvertOptions) ([][]ctdf.TripRecord, error) {
	location := options.Location
	if location == nil {
		location = time.UTC
	}

	serviceDate := options.ServiceDate
	if serviceDate.IsZero() {
		busiest, err := gtfs.BusiestDate(location)
		if err != nil {
			return nil, err
		}
		serviceDate = busiest
	}
	serviceDate = time.Date(serviceDate.Year(), serviceDate.Month(), serviceDate.Day(), 0, 0, 0, 0, location)

	log.Info().Str("date", serviceDate.Format(time.DateOnly)).Msg("Converting GTFS service day")

	stops := map[string]*Stop{}
	for i := range gtfs.Stops {
		stops[gtfs.Stops[i].ID] = &gtfs.Stops[i]
	}
	routes := map[string]*Route{}
	for i := range gtfs.Routes {
		routes[gtfs.Routes[i].ID] = &gtfs.Routes[i]
	}
	stopTimes := map[string][]StopTime{}
	for _, stopTime := range gtfs.StopTimes {
		stopTimes[stopTime.TripID] = append(stopTimes[stopTime.TripID], stopTime)
	}

	var trips [][]ctdf.TripRecord
	skipped := 0

	for _, trip := range gtfs.TripList {
		if !gtfs.RunsOn(trip.ServiceID, serviceDate) {
			continue
		}

		records, err := gtfs.convertTrip(trip, routes[trip.RouteID], stops, stopTimes[trip.ID], serviceDate)
		if err != nil {
			log.Debug().Err(err).Str("trip", trip.ID).Msg("Skipping trip")
			skipped++
			continue
		}

		trips = append(trips, records)
	}

	log.Info().
		Int("trips", len(trips)).
		Int("skipped", skipped).
		Msg("Converted GTFS trips")

	return trips, nil
}

func (gtfs *Schedule) convertTrip(trip Trip, route *Route, stops map[string]*Stop, stopTimes []StopTime, serviceDate time.Time) ([]ctdf.TripRecord, error) {
	if len(stopTimes) < 2 {
		return nil, fmt.Errorf("trip %s has %d stop times", trip.ID, len(stopTimes))
	}

	slices.SortStableFunc(stopTimes, func(a, b StopTime) int {
		return a.StopSequence - b.StopSequence
	})

	label := trip.Name
	transportType := ctdf.TransportTypeUnknown
	if route != nil {
		if route.ShortName != "" {
			label = route.ShortName
		} else if route.LongName != "" {
			label = route.LongName
		}
		transportType = ctdf.TransportTypeFromGTFSRouteType(route.Type)
	}

	records := make([]ctdf.TripRecord, len(stopTimes))

	for index, stopTime := range stopTimes {
		stop, exists := stops[stopTime.StopID]
		if !exists {
			return nil, fmt.Errorf("trip %s calls at unknown stop %s", trip.ID, stopTime.StopID)
		}

		arrivalValue, departureValue := stopTime.ArrivalTime, stopTime.DepartureTime
		if arrivalValue == "" {
			arrivalValue = departureValue
		}
		if departureValue == "" {
			departureValue = arrivalValue
		}
		if arrivalValue == "" {
			return nil, fmt.Errorf("trip %s has an untimed stop %s", trip.ID, stopTime.StopID)
		}

		record := ctdf.TripRecord{
			LocationID:    stop.ID,
			LocationName:  stop.Name,
			Latitude:      stop.Latitude,
			Longitude:     stop.Longitude,
			TripID:        trip.ID,
			TripLabel:     label,
			TransportType: transportType,
		}

		if index > 0 {
			arrival, err := util.ParseServiceTime(serviceDate, arrivalValue)
			if err != nil {
				return nil, err
			}
			record.ArrivalTime = &arrival
		}
		if index < len(stopTimes)-1 {
			departure, err := util.ParseServiceTime(serviceDate, departureValue)
			if err != nil {
				return nil, err
			}
			record.DepartureTime = &departure
		}

		records[index] = record
	}

	return records, nil
}

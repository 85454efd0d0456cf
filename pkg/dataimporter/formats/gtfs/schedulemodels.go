package gtfs

import "time"

type Stop struct {
	ID           string  `csv:"stop_id"`
	Code         string  `csv:"stop_code"`
	Name         string  `csv:"stop_name"`
	Latitude     float64 `csv:"stop_lat"`
	Longitude    float64 `csv:"stop_lon"`
	Type         string  `csv:"location_type"`
	Parent       string  `csv:"parent_station"`
	PlatformCode string  `csv:"platform_code"`
}

type Route struct {
	ID        string `csv:"route_id"`
	AgencyID  string `csv:"agency_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Type      int    `csv:"route_type"`
}

type Trip struct {
	RouteID   string `csv:"route_id"`
	ServiceID string `csv:"service_id"`
	ID        string `csv:"trip_id"`
	Headsign  string `csv:"trip_headsign"`
	Name      string `csv:"trip_short_name"`
}

type StopTime struct {
	TripID        string `csv:"trip_id"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
	StopID        string `csv:"stop_id"`
	StopSequence  int    `csv:"stop_sequence"`
	PickupType    int8   `csv:"pickup_type"`
	DropOffType   int8   `csv:"drop_off_type"`
}

type Calendar struct {
	ServiceID string `csv:"service_id"`
	Monday    int    `csv:"monday"`
	Tuesday   int    `csv:"tuesday"`
	Wednesday int    `csv:"wednesday"`
	Thursday  int    `csv:"thursday"`
	Friday    int    `csv:"friday"`
	Saturday  int    `csv:"saturday"`
	Sunday    int    `csv:"sunday"`
	Start     string `csv:"start_date"`
	End       string `csv:"end_date"`
}

// RunsOnWeekday ignores the start and end dates
func (c *Calendar) RunsOnWeekday(weekday time.Weekday) bool {
	flags := map[time.Weekday]int{
		time.Monday:    c.Monday,
		time.Tuesday:   c.Tuesday,
		time.Wednesday: c.Wednesday,
		time.Thursday:  c.Thursday,
		time.Friday:    c.Friday,
		time.Saturday:  c.Saturday,
		time.Sunday:    c.Sunday,
	}

	return flags[weekday] == 1
}

const (
	CalendarDateServiceAdded   = 1
	CalendarDateServiceRemoved = 2
)

type CalendarDate struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int    `csv:"exception_type"`
}

package ctdf

import (
	"fmt"
	"strings"
	"time"
)

type JourneyPlanRouteItemType string

const (
	JourneyPlanRouteItemTypeTrip     JourneyPlanRouteItemType = "trip"
	JourneyPlanRouteItemTypeTransfer JourneyPlanRouteItemType = "transfer"
	JourneyPlanRouteItemTypeWalk     JourneyPlanRouteItemType = "walk"
)

type JourneyPlanResults struct {
	JourneyPlans []JourneyPlan `groups:"basic"`

	OriginStopRef      string `groups:"basic"`
	DestinationStopRef string `groups:"basic"`

	OriginLocation      *Location `groups:"basic"`
	DestinationLocation *Location `groups:"basic"`
}

type JourneyPlan struct {
	RouteItems []JourneyPlanRouteItem `groups:"basic"`

	StartTime   time.Time     `groups:"basic"`
	ArrivalTime time.Time     `groups:"basic"`
	Duration    time.Duration `groups:"basic"`

	// Weight is the search cost in minutes, including any initial wait
	Weight float64 `groups:"detailed"`

	// StopEvents lists every departure and arrival passed through
	StopEvents []StopEvent `groups:"detailed"`
}

type JourneyPlanRouteItem struct {
	Type JourneyPlanRouteItemType `groups:"basic"`

	TripRef       string        `groups:"basic"`
	TripName      string        `groups:"basic"`
	TransportType TransportType `groups:"basic"`

	OriginStopRef       string    `groups:"basic"`
	OriginStopName      string    `groups:"basic"`
	OriginLocation      *Location `groups:"detailed"`
	DestinationStopRef  string    `groups:"basic"`
	DestinationStopName string    `groups:"basic"`
	DestinationLocation *Location `groups:"detailed"`

	StartTime   time.Time `groups:"basic"`
	ArrivalTime time.Time `groups:"basic"`
}

func (p JourneyPlan) Transfers() int {
	transfers := 0
	for _, item := range p.RouteItems {
		if item.Type == JourneyPlanRouteItemTypeTransfer {
			transfers++
		}
	}
	return transfers
}

func (p JourneyPlan) String() string {
	var builder strings.Builder

	for _, item := range p.RouteItems {
		switch item.Type {
		case JourneyPlanRouteItemTypeTrip:
			fmt.Fprintf(&builder, "%s DEP %s %s\n", item.StartTime.Format(time.DateTime), item.TripName, item.OriginStopName)
			fmt.Fprintf(&builder, "%s ARR %s %s\n", item.ArrivalTime.Format(time.DateTime), item.TripName, item.DestinationStopName)
		case JourneyPlanRouteItemTypeTransfer:
			fmt.Fprintf(&builder, "%s TRANSFER %s -> %s (%s)\n", item.StartTime.Format(time.DateTime), item.OriginStopName, item.DestinationStopName, item.ArrivalTime.Sub(item.StartTime))
		case JourneyPlanRouteItemTypeWalk:
			fmt.Fprintf(&builder, "%s WALK %s -> %s (%s)\n", item.StartTime.Format(time.DateTime), walkEndpointName(item.OriginStopName), walkEndpointName(item.DestinationStopName), item.ArrivalTime.Sub(item.StartTime).Round(time.Second))
		}
	}

	return builder.String()
}

func walkEndpointName(name string) string {
	if name == "" {
		return "(coordinate)"
	}
	return name
}

type StopEventType string

const (
	StopEventTypeDeparture StopEventType = "DEP"
	StopEventTypeArrival   StopEventType = "ARR"
)

// StopEvent is a single departure or arrival passed through on a journey
type StopEvent struct {
	Type     StopEventType `groups:"detailed"`
	Time     time.Time     `groups:"detailed"`
	TripRef  string        `groups:"detailed"`
	TripName string        `groups:"detailed"`
	StopRef  string        `groups:"detailed"`
	StopName string        `groups:"detailed"`
}

func (e StopEvent) String() string {
	return fmt.Sprintf("%s %s %s %s", e.Time.Format(time.DateTime), e.Type, e.TripName, e.StopName)
}

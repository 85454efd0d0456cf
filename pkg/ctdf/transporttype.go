package ctdf

import "strings"

type TransportType string

//goland:noinspection GoUnusedConst
const (
	TransportTypeBus       TransportType = "Bus"
	TransportTypeCoach     TransportType = "Coach"
	TransportTypeTram      TransportType = "Tram"
	TransportTypeRail      TransportType = "Rail"
	TransportTypeMetro     TransportType = "Metro"
	TransportTypeFerry     TransportType = "Ferry"
	TransportTypeCableCar  TransportType = "CableCar"
	TransportTypeFunicular TransportType = "Funicular"
	TransportTypeUnknown   TransportType = "UNKNOWN"
)

// TransportTypeFromGTFSRouteType maps basic and extended GTFS route_type values
func TransportTypeFromGTFSRouteType(routeType int) TransportType {
	switch {
	case routeType == 0 || (routeType >= 900 && routeType < 1000):
		return TransportTypeTram
	case routeType == 1 || (routeType >= 400 && routeType < 500):
		return TransportTypeMetro
	case routeType == 2 || routeType == 12 || (routeType >= 100 && routeType < 200):
		return TransportTypeRail
	case routeType == 3 || routeType == 11 || (routeType >= 700 && routeType < 800):
		return TransportTypeBus
	case routeType >= 200 && routeType < 300:
		return TransportTypeCoach
	case routeType == 4 || (routeType >= 1000 && routeType < 1100) || routeType == 1200:
		return TransportTypeFerry
	case routeType == 5 || routeType == 6 || (routeType >= 1300 && routeType < 1400):
		return TransportTypeCableCar
	case routeType == 7 || routeType == 1400:
		return TransportTypeFunicular
	default:
		return TransportTypeUnknown
	}
}

// ParseTransportType accepts loose labels such as "train" or "BUS"
func ParseTransportType(value string) TransportType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "bus":
		return TransportTypeBus
	case "coach":
		return TransportTypeCoach
	case "tram", "light_rail", "lightrail":
		return TransportTypeTram
	case "rail", "train", "ice", "ic", "ec", "ire", "irx", "re", "rb", "s":
		return TransportTypeRail
	case "metro", "subway", "underground":
		return TransportTypeMetro
	case "ferry", "boat":
		return TransportTypeFerry
	case "cablecar", "gondola":
		return TransportTypeCableCar
	case "funicular":
		return TransportTypeFunicular
	default:
		return TransportTypeUnknown
	}
}

package ctdf

import "math"

const earthRadiusMeters = 6371000

type Location struct {
	Type        string    `json:"type" groups:"basic"`
	Coordinates []float64 `json:"coordinates" groups:"basic"`
}

func NewPoint(latitude float64, longitude float64) *Location {
	return &Location{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (l *Location) Latitude() float64 {
	return l.Coordinates[1]
}

func (l *Location) Longitude() float64 {
	return l.Coordinates[0]
}

// Haversine calculates the distance between two points in metres
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

package readings

import "math"

const earthRadiusMi = 3958.8

// HaversineMiles returns the great-circle distance between two points in
// statute miles.
func HaversineMiles(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMi * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinMiles reports whether b lies within radius miles of a.
func WithinMiles(a, b Coordinates, radius float64) bool {
	return HaversineMiles(a, b) <= radius
}

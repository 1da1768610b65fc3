package query

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Proximity bounds. The default comes from the basic lookup form; the hard
// cap holds regardless of what the caller asks for.
const (
	nearbyDefaultLimit = 12
	nearbyMaxLimit     = 20

	earthRadiusKm = 6371.0
)

// Haversine returns the great-circle distance in kilometers between two
// points. Coordinates follow the go-geom XY convention: index 0 is
// longitude, index 1 is latitude, both in decimal degrees. The result is
// symmetric and non-negative over the full coordinate domain.
func Haversine(a, b geom.Coord) float64 {
	lat1 := degToRad(a[1])
	lat2 := degToRad(b[1])
	dLat := degToRad(b[1] - a[1])
	dLon := degToRad(b[0] - a[0])

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(s))
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

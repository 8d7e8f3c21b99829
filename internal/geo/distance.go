package geo

import "math"

// EarthRadiusKm is the mean spherical earth radius.
const EarthRadiusKm = 6371.0

// DistanceKm computes the great-circle distance between two coordinates in
// degrees using the haversine formula. It is symmetric in its arguments and
// returns 0 for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

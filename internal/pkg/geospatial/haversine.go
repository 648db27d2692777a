package geospatial

import "math"

const (
	earthRadiusKm = 6371.0

	// EarthRadiusMeters is the mean sphere radius used for angular radius conversion.
	EarthRadiusMeters = earthRadiusKm * 1000
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// AngularRadius converts a surface distance in meters to an angle in radians
// on the EarthRadiusMeters sphere.
func AngularRadius(radiusMeters float64) float64 {
	return radiusMeters / EarthRadiusMeters
}

// ArcMeters converts an angle in radians back to a surface distance in meters.
func ArcMeters(angularRadius float64) float64 {
	return angularRadius * EarthRadiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

package geospatial

import "math"

const (
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
)

// NormalizeLongitude wraps lon into the half-open range (-180, 180].
// Values already in range are returned unchanged, so the function is idempotent.
// -180 and every odd multiple of 180 map to 180.
func NormalizeLongitude(lon float64) float64 {
	if lon > MinLongitude && lon <= MaxLongitude {
		return lon
	}
	r := math.Mod(lon+180, 360) // (-360, 360)
	if r <= 0 {
		r += 360 // (0, 360]
	}
	return r - 180
}

// ClampLatitude limits lat to [-90, 90]. Latitude does not wrap.
func ClampLatitude(lat float64) float64 {
	return math.Max(MinLatitude, math.Min(MaxLatitude, lat))
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package domain

import (
	"github.com/marinewx/seatemp/internal/pkg/geospatial"
)

// Client-facing validation messages.
const (
	MsgBoundingBoxIncomplete = "For BoundingBox query type, north, south, east, and west must all be supplied."
	MsgRadiusIncomplete      = "For DistanceFromCentre query type, longitude, latitude, and radiusMeters must all be supplied."
	MsgFilterConflict        = "Supply either a bounding box or a radius filter, not both."
	MsgRadiusNotPositive     = "radiusMeters must be greater than zero."
	MsgSouthAboveNorth       = "south must not be greater than north."
	MsgNotFinite             = "Filter values must be finite numbers."
)

// SpatialFilter is either a BoundingBox or a RadiusFromPoint. A nil filter
// matches every record.
type SpatialFilter interface {
	Accept(v FilterVisitor)
	spatialFilter()
}

// FilterVisitor has one method per SpatialFilter variant. Adding a variant
// adds a method here, which breaks every visitor until it handles it.
type FilterVisitor interface {
	VisitBoundingBox(b BoundingBox)
	VisitRadius(r RadiusFromPoint)
}

// BoundingBox bounds are in degrees. After normalization West > East means the
// box crosses the antimeridian.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (b BoundingBox) Accept(v FilterVisitor) { v.VisitBoundingBox(b) }
func (BoundingBox) spatialFilter()           {}

// CrossesAntimeridian reports whether the normalized box wraps across ±180°.
func (b BoundingBox) CrossesAntimeridian() bool { return b.West > b.East }

// RadiusFromPoint selects records within RadiusMeters of a center point.
type RadiusFromPoint struct {
	Longitude    float64 `json:"longitude"`
	Latitude     float64 `json:"latitude"`
	RadiusMeters float64 `json:"radiusMeters"`
}

func (r RadiusFromPoint) Accept(v FilterVisitor) { v.VisitRadius(r) }
func (RadiusFromPoint) spatialFilter()           {}

// AngularRadius is the radius in radians on the Earth sphere.
func (r RadiusFromPoint) AngularRadius() float64 {
	return geospatial.AngularRadius(r.RadiusMeters)
}

// FilterParams carries the raw, optional filter inputs of a request.
type FilterParams struct {
	North        *float64 `json:"north,omitempty"`
	South        *float64 `json:"south,omitempty"`
	East         *float64 `json:"east,omitempty"`
	West         *float64 `json:"west,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	RadiusMeters *float64 `json:"radiusMeters,omitempty"`
}

// ParseFilter validates raw params and returns the normalized filter.
// No params at all yields (nil, nil): match everything.
func ParseFilter(p FilterParams) (SpatialFilter, error) {
	box := countSet(p.North, p.South, p.East, p.West)
	radius := countSet(p.Longitude, p.Latitude, p.RadiusMeters)

	switch {
	case box == 0 && radius == 0:
		return nil, nil
	case box > 0 && radius > 0:
		return nil, invalid(MsgFilterConflict)
	case box > 0:
		if box < 4 {
			return nil, invalid(MsgBoundingBoxIncomplete)
		}
		if !allFinite(*p.North, *p.South, *p.East, *p.West) {
			return nil, invalid(MsgNotFinite)
		}
		b, err := NormalizeBoundingBox(BoundingBox{North: *p.North, South: *p.South, East: *p.East, West: *p.West})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		if radius < 3 {
			return nil, invalid(MsgRadiusIncomplete)
		}
		if !allFinite(*p.Longitude, *p.Latitude, *p.RadiusMeters) {
			return nil, invalid(MsgNotFinite)
		}
		r, err := NormalizeRadius(RadiusFromPoint{Longitude: *p.Longitude, Latitude: *p.Latitude, RadiusMeters: *p.RadiusMeters})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// NormalizeBoundingBox clamps latitudes and wraps longitudes independently.
// A raw span of 360° or more covers every longitude and becomes [-180, 180].
func NormalizeBoundingBox(b BoundingBox) (BoundingBox, error) {
	out := BoundingBox{
		North: geospatial.ClampLatitude(b.North),
		South: geospatial.ClampLatitude(b.South),
	}
	if out.South > out.North {
		return BoundingBox{}, invalid(MsgSouthAboveNorth)
	}
	if b.East-b.West >= 360 {
		out.West, out.East = geospatial.MinLongitude, geospatial.MaxLongitude
		return out, nil
	}
	out.West = geospatial.NormalizeLongitude(b.West)
	out.East = geospatial.NormalizeLongitude(b.East)
	return out, nil
}

// NormalizeRadius wraps the center longitude, clamps its latitude and rejects
// non-positive radii.
func NormalizeRadius(r RadiusFromPoint) (RadiusFromPoint, error) {
	if r.RadiusMeters <= 0 {
		return RadiusFromPoint{}, invalid(MsgRadiusNotPositive)
	}
	return RadiusFromPoint{
		Longitude:    geospatial.NormalizeLongitude(r.Longitude),
		Latitude:     geospatial.ClampLatitude(r.Latitude),
		RadiusMeters: r.RadiusMeters,
	}, nil
}

func countSet(vals ...*float64) int {
	n := 0
	for _, v := range vals {
		if v != nil {
			n++
		}
	}
	return n
}

func allFinite(vals ...float64) bool {
	for _, v := range vals {
		if !geospatial.IsFinite(v) {
			return false
		}
	}
	return true
}

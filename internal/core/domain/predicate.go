package domain

import (
	"github.com/paulmach/orb"

	"github.com/marinewx/seatemp/internal/pkg/geospatial"
)

// Region is one area a record position may fall in. Implemented by BoxRegion
// and CapRegion.
type Region interface {
	Contains(p orb.Point) bool
	region()
}

// BoxRegion is a planar lon/lat rectangle that never crosses the antimeridian.
type BoxRegion struct {
	Bound orb.Bound
}

func (BoxRegion) region() {}

// Ring returns the closed exterior ring (west,south) (east,south) (east,north)
// (west,north) (west,south).
func (b BoxRegion) Ring() orb.Ring {
	return orb.Ring{
		{b.Bound.Min.Lon(), b.Bound.Min.Lat()},
		{b.Bound.Max.Lon(), b.Bound.Min.Lat()},
		{b.Bound.Max.Lon(), b.Bound.Max.Lat()},
		{b.Bound.Min.Lon(), b.Bound.Max.Lat()},
		{b.Bound.Min.Lon(), b.Bound.Min.Lat()},
	}
}

// Contains reports whether p lies in the rectangle, edges included.
func (b BoxRegion) Contains(p orb.Point) bool { return b.Bound.Contains(p) }

// Polygon wraps Ring for WKT rendering.
func (b BoxRegion) Polygon() orb.Polygon { return orb.Polygon{b.Ring()} }

// CapRegion is a spherical cap around Center with an angular radius in radians.
type CapRegion struct {
	Center        orb.Point
	AngularRadius float64
}

func (CapRegion) region() {}

// RadiusMeters converts the angular radius back to a surface distance.
func (c CapRegion) RadiusMeters() float64 { return geospatial.ArcMeters(c.AngularRadius) }

// Contains reports whether p lies within the cap, boundary included.
func (c CapRegion) Contains(p orb.Point) bool {
	return geospatial.Haversine(c.Center.Lat(), c.Center.Lon(), p.Lat(), p.Lon()) <= c.RadiusMeters()
}

// CompiledPredicate is the store-agnostic form of a spatial filter. Regions
// are OR'ed; no regions matches every record. Position and measurement must
// always be present.
type CompiledPredicate struct {
	Regions []Region
}

// MatchAll reports whether the predicate carries no spatial restriction.
func (p CompiledPredicate) MatchAll() bool { return len(p.Regions) == 0 }

// Matches evaluates the spatial part of the predicate in memory.
func (p CompiledPredicate) Matches(lon, lat float64) bool {
	if p.MatchAll() {
		return true
	}
	pt := orb.Point{lon, lat}
	for _, r := range p.Regions {
		if r.Contains(pt) {
			return true
		}
	}
	return false
}

// RequiresPosition is always true; records without a position never match.
func (CompiledPredicate) RequiresPosition() bool { return true }

// RequiresMeasurement is always true; records without a sea surface
// temperature never match.
func (CompiledPredicate) RequiresMeasurement() bool { return true }

// CompilePredicate translates a normalized filter. A nil filter matches all.
func CompilePredicate(f SpatialFilter) CompiledPredicate {
	if f == nil {
		return CompiledPredicate{}
	}
	c := &compiler{}
	f.Accept(c)
	return CompiledPredicate{Regions: c.regions}
}

type compiler struct {
	regions []Region
}

func (c *compiler) VisitBoundingBox(b BoundingBox) {
	west := b.West
	if west == geospatial.MaxLongitude && b.East != geospatial.MaxLongitude {
		west = geospatial.MinLongitude
	}
	if west <= b.East {
		c.regions = append(c.regions, box(west, b.South, b.East, b.North))
		return
	}
	c.regions = append(c.regions,
		box(west, b.South, geospatial.MaxLongitude, b.North),
		box(geospatial.MinLongitude, b.South, b.East, b.North),
	)
}

func (c *compiler) VisitRadius(r RadiusFromPoint) {
	c.regions = append(c.regions, CapRegion{
		Center:        orb.Point{r.Longitude, r.Latitude},
		AngularRadius: r.AngularRadius(),
	})
}

func box(west, south, east, north float64) BoxRegion {
	return BoxRegion{Bound: orb.Bound{Min: orb.Point{west, south}, Max: orb.Point{east, north}}}
}

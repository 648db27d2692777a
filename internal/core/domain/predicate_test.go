package domain_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/marinewx/seatemp/internal/core/domain"
)

func TestCompilePredicate_Nil(t *testing.T) {
	p := domain.CompilePredicate(nil)
	if !p.MatchAll() {
		t.Fatalf("expected match-all, got %d regions", len(p.Regions))
	}
	if !p.RequiresPosition() || !p.RequiresMeasurement() {
		t.Error("match-all must still require position and measurement")
	}
}

func TestCompilePredicate_Box(t *testing.T) {
	p := domain.CompilePredicate(domain.BoundingBox{North: 10, South: -10, East: 20, West: -20})
	if len(p.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(p.Regions))
	}
	b := p.Regions[0].(domain.BoxRegion)
	want := orb.Bound{Min: orb.Point{-20, -10}, Max: orb.Point{20, 10}}
	if b.Bound != want {
		t.Errorf("expected %v, got %v", want, b.Bound)
	}

	ring := b.Ring()
	wantRing := orb.Ring{{-20, -10}, {20, -10}, {20, 10}, {-20, 10}, {-20, -10}}
	if !ring.Equal(wantRing) {
		t.Errorf("unexpected ring %v", ring)
	}
	if !ring.Closed() {
		t.Error("ring must be closed")
	}
}

func TestCompilePredicate_AntimeridianSplit(t *testing.T) {
	p := domain.CompilePredicate(domain.BoundingBox{North: 10, South: -10, East: -170, West: 170})
	if len(p.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(p.Regions))
	}
	east := p.Regions[0].(domain.BoxRegion).Bound
	west := p.Regions[1].(domain.BoxRegion).Bound
	if east.Min.Lon() != 170 || east.Max.Lon() != 180 {
		t.Errorf("unexpected first half %v", east)
	}
	if west.Min.Lon() != -180 || west.Max.Lon() != -170 {
		t.Errorf("unexpected second half %v", west)
	}
	for _, b := range []orb.Bound{east, west} {
		if b.Min.Lat() != -10 || b.Max.Lat() != 10 {
			t.Errorf("latitude span changed: %v", b)
		}
	}
}

func TestCompilePredicate_WestOnAntimeridian(t *testing.T) {
	// 180 and -180 are the same meridian; a box starting there does not wrap.
	p := domain.CompilePredicate(domain.BoundingBox{North: 10, South: -10, East: 20, West: 180})
	if len(p.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(p.Regions))
	}
	b := p.Regions[0].(domain.BoxRegion).Bound
	if b.Min.Lon() != -180 || b.Max.Lon() != 20 {
		t.Errorf("unexpected bound %v", b)
	}
}

func TestCompilePredicate_FullSpan(t *testing.T) {
	p := domain.CompilePredicate(domain.BoundingBox{North: 90, South: -90, East: 180, West: -180})
	if len(p.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(p.Regions))
	}
}

func TestCompilePredicate_Radius(t *testing.T) {
	p := domain.CompilePredicate(domain.RadiusFromPoint{Longitude: 12, Latitude: 34, RadiusMeters: 1000})
	if len(p.Regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(p.Regions))
	}
	c := p.Regions[0].(domain.CapRegion)
	if c.Center != (orb.Point{12, 34}) {
		t.Errorf("unexpected center %v", c.Center)
	}
	if math.Abs(c.AngularRadius-1000.0/6371000) > 1e-15 {
		t.Errorf("unexpected angular radius %v", c.AngularRadius)
	}
	if math.Abs(c.RadiusMeters()-1000) > 1e-6 {
		t.Errorf("expected 1000m, got %v", c.RadiusMeters())
	}
}

func TestCompiledPredicate_Matches(t *testing.T) {
	tests := []struct {
		name     string
		filter   domain.SpatialFilter
		lon, lat float64
		want     bool
	}{
		{"nil matches anything", nil, 123, -45, true},
		{"inside box", domain.BoundingBox{North: 10, South: -10, East: 20, West: -20}, 5, 5, true},
		{"box edge", domain.BoundingBox{North: 10, South: -10, East: 20, West: -20}, 20, 10, true},
		{"outside box", domain.BoundingBox{North: 10, South: -10, East: 20, West: -20}, 25, 0, false},
		{"east of antimeridian", domain.BoundingBox{North: 5, South: -5, East: -170, West: 170}, -175, 0, true},
		{"west of antimeridian", domain.BoundingBox{North: 5, South: -5, East: -170, West: 170}, 175, 0, true},
		{"outside split box", domain.BoundingBox{North: 5, South: -5, East: -170, West: 170}, 0, 0, false},
		{"inside cap", domain.RadiusFromPoint{Longitude: 0, Latitude: 0, RadiusMeters: 200000}, 1, 1, true},
		{"outside cap", domain.RadiusFromPoint{Longitude: 0, Latitude: 0, RadiusMeters: 100000}, 1, 1, false},
		{"cap across antimeridian", domain.RadiusFromPoint{Longitude: 179.9, Latitude: 0, RadiusMeters: 50000}, -179.9, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.CompilePredicate(tt.filter).Matches(tt.lon, tt.lat); got != tt.want {
				t.Errorf("Matches(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
			}
		})
	}
}

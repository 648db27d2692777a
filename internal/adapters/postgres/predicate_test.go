package postgres

import (
	"math"
	"strings"
	"testing"

	"github.com/marinewx/seatemp/internal/core/domain"
)

func TestRenderPredicate_MatchAll(t *testing.T) {
	where, args := renderPredicate(domain.CompilePredicate(nil))
	if where != "position IS NOT NULL AND sea_surface_temperature IS NOT NULL" {
		t.Errorf("unexpected clause %q", where)
	}
	if len(args) != 0 {
		t.Errorf("expected no args, got %v", args)
	}
}

func TestRenderPredicate_Box(t *testing.T) {
	pred := domain.CompilePredicate(domain.BoundingBox{North: 10, South: -10, East: 20, West: -20})
	where, args := renderPredicate(pred)

	if !strings.Contains(where, "ST_Covers(ST_GeomFromText($1, 4326), position)") {
		t.Errorf("unexpected clause %q", where)
	}
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %d", len(args))
	}
	want := "POLYGON((-20 -10,20 -10,20 10,-20 10,-20 -10))"
	if args[0] != want {
		t.Errorf("expected %s, got %v", want, args[0])
	}
}

func TestRenderPredicate_SplitBox(t *testing.T) {
	pred := domain.CompilePredicate(domain.BoundingBox{North: 5, South: -5, East: -170, West: 170})
	where, args := renderPredicate(pred)

	if strings.Count(where, "ST_Covers") != 2 || !strings.Contains(where, " OR ") {
		t.Errorf("expected two OR'ed regions, got %q", where)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if args[0] != "POLYGON((170 -5,180 -5,180 5,170 5,170 -5))" {
		t.Errorf("unexpected east half %v", args[0])
	}
	if args[1] != "POLYGON((-180 -5,-170 -5,-170 5,-180 5,-180 -5))" {
		t.Errorf("unexpected west half %v", args[1])
	}
}

func TestRenderPredicate_Radius(t *testing.T) {
	pred := domain.CompilePredicate(domain.RadiusFromPoint{Longitude: -3, Latitude: 43, RadiusMeters: 5000})
	where, args := renderPredicate(pred)

	if !strings.Contains(where, "ST_DWithin(position::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3, false)") {
		t.Errorf("unexpected clause %q", where)
	}
	if len(args) != 3 || args[0] != -3.0 || args[1] != 43.0 {
		t.Fatalf("unexpected args %v", args)
	}
	if m := args[2].(float64); math.Abs(m-5000) > 1e-6 {
		t.Errorf("expected 5000m, got %v", m)
	}
}

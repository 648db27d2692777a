package postgres

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/pkg/geospatial"
)

// renderPredicate turns a compiled predicate into a WHERE clause over
// weather_reports. Placeholders are numbered from $1.
func renderPredicate(pred domain.CompiledPredicate) (string, []any) {
	clauses := []string{"position IS NOT NULL", "sea_surface_temperature IS NOT NULL"}
	if pred.MatchAll() {
		return strings.Join(clauses, " AND "), nil
	}

	var (
		args    []any
		regions []string
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, r := range pred.Regions {
		switch r := r.(type) {
		case domain.BoxRegion:
			regions = append(regions, fmt.Sprintf(
				"ST_Covers(ST_GeomFromText(%s, 4326), position)",
				next(wkt.MarshalString(r.Polygon())),
			))
		case domain.CapRegion:
			regions = append(regions, fmt.Sprintf(
				"ST_DWithin(position::geography, ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography, %s, false)",
				next(r.Center.Lon()), next(r.Center.Lat()), next(r.AngularRadius*geospatial.EarthRadiusMeters),
			))
		default:
			panic(fmt.Sprintf("postgres: unhandled region %T", r))
		}
	}

	clauses = append(clauses, "("+strings.Join(regions, " OR ")+")")
	return strings.Join(clauses, " AND "), args
}

package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Path        string    // Exact request path
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // Recommended alternative endpoint (optional)
}

// legacySunset is when the unversioned routes go away.
var legacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// legacyRoutes are the unversioned paths kept for existing clients.
var legacyRoutes = []DeprecatedRoute{
	{Path: "/weather/sea/temperature", SunsetDate: legacySunset, Alternative: "/v1/weather/sea/temperature"},
	{Path: "/weather/list", SunsetDate: legacySunset, Alternative: "/v1/weather/list"},
	{Path: "/weather", SunsetDate: legacySunset, Alternative: "/v1/weather/{id}"},
}

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to deprecated endpoints.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	byPath := make(map[string]DeprecatedRoute, len(deprecated))
	for _, d := range deprecated {
		byPath[d.Path] = d
	}

	return func(c *fiber.Ctx) error {
		d, ok := byPath[c.Path()]
		if !ok {
			return c.Next()
		}

		// RFC 8594 Deprecation and Sunset headers
		c.Set("Deprecation", "true")
		c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))

		// RFC 8288 Link header pointing at the successor
		if d.Alternative != "" {
			c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
		}

		days := time.Until(d.SunsetDate).Hours() / 24
		c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

		return c.Next()
	}
}

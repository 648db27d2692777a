package http

import (
	"bufio"

	"github.com/gofiber/fiber/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// sseSink writes Server-Sent Events to the fasthttp body stream.
type sseSink struct {
	w *bufio.Writer
}

func (s *sseSink) Open() error {
	return s.w.Flush()
}

func (s *sseSink) WriteEvent(data []byte) error {
	if _, err := s.w.WriteString("data: "); err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if _, err := s.w.WriteString("\n\n"); err != nil {
		return err
	}
	return s.w.Flush()
}

// SeaTemperatureStreamHandler streams sea surface temperatures as SSE.
// Query: north, south, east, west | longitude, latitude, radiusMeters.
// The HTTP status is always 200. An invalid filter and any later failure
// arrive as a single final {"status","id","error"} event.
func SeaTemperatureStreamHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, filterErr := parseSpatialFilter(c)

		c.Set(fiber.HeaderContentType, "text/event-stream; charset=UTF-8")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		c.Set("X-Accel-Buffering", "no")
		c.Status(fiber.StatusOK)

		// The writer runs after this handler returns; nothing below may touch c.
		ctx := c.UserContext()
		logger := LoggerFromCtx(ctx)
		entry := newStreamAccessEntry(c, "sse")
		svc := deps.SeaTemperatures

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			session := NewStreamSession(&sseSink{w: w}, "sse", logger)
			if filterErr != nil {
				entry.log(ctx, rejectStream(session, filterErr))
				return
			}
			entry.log(ctx, runStream(ctx, svc, filter, session))
		})
		return nil
	}
}

// parseSpatialFilter reads the filter query parameters.
func parseSpatialFilter(c *fiber.Ctx) (domain.SpatialFilter, error) {
	var (
		p   domain.FilterParams
		err error
	)
	fields := []struct {
		name string
		dst  **float64
	}{
		{"north", &p.North},
		{"south", &p.South},
		{"east", &p.East},
		{"west", &p.West},
		{"longitude", &p.Longitude},
		{"latitude", &p.Latitude},
		{"radiusMeters", &p.RadiusMeters},
	}
	for _, f := range fields {
		if *f.dst, err = queryFloat(c, f.name); err != nil {
			return nil, err
		}
	}
	return domain.ParseFilter(p)
}

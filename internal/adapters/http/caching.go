package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on endpoint.
// Handlers that set their own value (the stream sets no-cache) win.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}
		if status := c.Response().StatusCode(); status >= 400 {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready" || path == "/health":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0"

		case isStreamPath(path):
			ttl = "no-cache"

		case strings.HasSuffix(path, "/weather/list"):
			ttl = "public, max-age=60" // New reports may arrive at any time

		case strings.HasPrefix(path, "/v1/weather/") || path == "/weather":
			ttl = "public, max-age=600" // Stored reports never change

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}

// isStreamPath reports whether path serves a long-lived stream. Middleware
// that buffers or reads the body must skip these.
func isStreamPath(path string) bool {
	return strings.HasSuffix(path, "/sea/temperature")
}

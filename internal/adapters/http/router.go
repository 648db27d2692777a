package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/marinewx/seatemp/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, SSE, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip); streams must reach the client unbuffered
	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return isStreamPath(c.Path())
		},
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Deprecation headers on unversioned routes
	app.Use(DeprecationMiddleware(legacyRoutes))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))
	app.Get("/health", LegacyHealthHandler())

	// REST API v1. The stream is long-lived and never gets a timeout.
	v1 := app.Group("/v1")
	v1.Get("/weather/sea/temperature", SeaTemperatureStreamHandler(deps))
	v1.Get("/weather/list", timeout.NewWithContext(ListReportsHandler(deps), requestTimeout))
	v1.Get("/weather/:id", timeout.NewWithContext(GetReportHandler(deps), requestTimeout))

	// Legacy unversioned routes
	app.Get("/weather/sea/temperature", SeaTemperatureStreamHandler(deps))
	app.Get("/weather/list", timeout.NewWithContext(ListReportsHandler(deps), requestTimeout))
	app.Get("/weather", timeout.NewWithContext(LegacyGetReportHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket stream
	app.Use("/v1/ws", WebSocketUpgradeMiddleware())
	app.Get("/v1/ws/sea/temperature", websocket.New(WebSocketStreamHandler(deps)))
}

package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs HTTP requests with structured slog output.
// Logs: method, path, status, latency, bytes sent, request ID, and error (if any).
// Streamed responses are skipped here and logged when the stream ends.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Get request ID if available
		requestID, _ := c.Locals("requestid").(string)
		if requestID == "" {
			requestID = "unknown"
		}

		err := c.Next()

		if c.Response().IsBodyStream() && err == nil {
			return nil
		}

		status := c.Response().StatusCode()
		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("latency", time.Since(start).String()),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", requestID),
		}

		level := levelForStatus(status)
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		}

		slog.LogAttrs(c.UserContext(), level, fmt.Sprintf("%s %s", method, path), attrs...)

		return err
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// streamAccessEntry captures request data before the handler returns, since
// the fiber.Ctx is recycled while the body is still streaming.
type streamAccessEntry struct {
	method    string
	path      string
	query     string
	requestID string
	transport string
	start     time.Time
}

func newStreamAccessEntry(c *fiber.Ctx, transport string) streamAccessEntry {
	requestID, _ := c.Locals("requestid").(string)
	return streamAccessEntry{
		method:    c.Method(),
		path:      c.Path(),
		query:     string(c.Request().URI().QueryString()),
		requestID: requestID,
		transport: transport,
		start:     time.Now(),
	}
}

// log writes the access line for a finished stream, including the stream
// statistics. The HTTP status is always 200 once a stream has started.
func (e streamAccessEntry) log(ctx context.Context, res StreamResult) {
	level := slog.LevelInfo
	if res.Status >= 500 {
		level = slog.LevelError
	}
	slog.LogAttrs(ctx, level, fmt.Sprintf("%s %s", e.method, e.path),
		slog.String("method", e.method),
		slog.String("path", e.path),
		slog.String("query", e.query),
		slog.Int("status", fiber.StatusOK),
		slog.String("latency", time.Since(e.start).String()),
		slog.String("request_id", e.requestID),
		slog.String("transport", e.transport),
		slog.Int("events", res.Events),
		slog.Int("points", res.Points),
		slog.Int("stream_status", res.Status),
	)
}

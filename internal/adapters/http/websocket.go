package http

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// MsgFilterNotObject is sent when the first WebSocket message is not a filter object.
const MsgFilterNotObject = "Filter message must be a JSON object."

const (
	wsFilterWait   = 30 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
)

// frameWriter is the write half of *websocket.Conn.
type frameWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
}

// wsSink writes one text frame per event. Writes are serialized with the
// keep-alive pinger.
type wsSink struct {
	conn frameWriter
	mu   sync.Mutex
}

func (s *wsSink) Open() error { return nil }

func (s *wsSink) WriteEvent(data []byte) error {
	return s.write(websocket.TextMessage, data)
}

func (s *wsSink) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(messageType, data)
}

// WebSocketUpgradeMiddleware rejects plain HTTP requests to WebSocket routes.
func WebSocketUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// WebSocketStreamHandler streams sea surface temperatures over a WebSocket.
// The client sends one JSON filter message with the same fields as the SSE
// query, e.g. {"north":10,"south":-10,"east":-170,"west":170} or {} for all.
// Each batch arrives as one text frame; a failure sends a final
// {"status","id","error"} frame. The server closes the socket when done.
func WebSocketStreamHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		logger := slog.Default().With("transport", "ws", "remote", c.RemoteAddr().String())
		sink := &wsSink{conn: c}

		_ = c.SetReadDeadline(time.Now().Add(wsFilterWait))
		_, msg, err := c.ReadMessage()
		if err != nil {
			logger.Debug("ws filter not received", "error", err)
			return
		}
		_ = c.SetReadDeadline(time.Time{})

		var params domain.FilterParams
		if err := json.Unmarshal(msg, &params); err != nil {
			rejectFilter(sink, logger, &domain.ValidationError{Message: MsgFilterNotObject})
			return
		}
		filter, err := domain.ParseFilter(params)
		if err != nil {
			rejectFilter(sink, logger, err)
			return
		}

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := sink.write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		session := NewStreamSession(sink, "ws", logger)
		res := runStream(context.Background(), deps.SeaTemperatures, filter, session)
		close(done)

		logger.Info("ws stream closed",
			"events", res.Events,
			"points", res.Points,
			"stream_status", res.Status,
		)
		_ = sink.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

// rejectFilter sends a 400 error frame under a logged correlation id, then a
// policy-violation close.
func rejectFilter(sink *wsSink, logger *slog.Logger, err error) {
	rejectStream(NewStreamSession(sink, "ws", logger), err)
	_ = sink.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid filter"))
}

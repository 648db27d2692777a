package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/marinewx/seatemp/internal/core/domain"
	"github.com/marinewx/seatemp/internal/core/usecases"
	"github.com/marinewx/seatemp/internal/pkg/metrics"
)

// ErrBrokenPipe means the client can no longer receive events. It stops the
// producer and is never reported to the client.
var ErrBrokenPipe = errors.New("stream: client connection lost")

// StatusPartial is the stream status recorded when the client went away
// before the stream completed.
const StatusPartial = fiber.StatusPartialContent

// MsgStreamFailure is the only text a client sees for server-side failures.
const MsgStreamFailure = "An unexpected error occurred while streaming sea surface temperatures."

// EventSink delivers encoded events to a single client. WriteEvent must not
// return before the event has been flushed to the connection.
type EventSink interface {
	Open() error
	WriteEvent(data []byte) error
}

// StreamResult summarizes a finished stream for the access log.
type StreamResult struct {
	Events int
	Points int
	Status int
}

// errorEvent is the terminal event sent when a stream fails.
type errorEvent struct {
	Status int    `json:"status"`
	ID     string `json:"id"`
	Error  string `json:"error"`
}

// StreamSession owns one client stream. It is used by a single goroutine.
type StreamSession struct {
	sink      EventSink
	transport string
	logger    *slog.Logger

	started time.Time
	opened  bool
	events  int
	points  int
	status  int
}

// NewStreamSession wraps sink. transport labels metrics ("sse", "ws").
func NewStreamSession(sink EventSink, transport string, logger *slog.Logger) *StreamSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamSession{
		sink:      sink,
		transport: transport,
		logger:    logger,
		started:   time.Now(),
		status:    fiber.StatusOK,
	}
}

// Open commits the response head. On failure nothing has been streamed and
// the session records status 500.
func (s *StreamSession) Open() error {
	if err := s.sink.Open(); err != nil {
		s.status = fiber.StatusInternalServerError
		return fmt.Errorf("%w: open: %v", ErrBrokenPipe, err)
	}
	s.opened = true
	metrics.StreamSessionsActive.WithLabelValues(s.transport).Inc()
	return nil
}

// SendBatch encodes batch as one event and flushes it. A delivery failure
// returns ErrBrokenPipe and marks the stream partial.
func (s *StreamSession) SendBatch(batch domain.SeaTemperatureBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	if err := s.sink.WriteEvent(data); err != nil {
		s.status = StatusPartial
		return fmt.Errorf("%w: %v", ErrBrokenPipe, err)
	}
	s.events++
	s.points += len(batch)
	metrics.StreamEventsSent.WithLabelValues(s.transport).Inc()
	metrics.StreamPointsSent.WithLabelValues(s.transport).Add(float64(len(batch)))
	return nil
}

// Fail logs cause under a fresh correlation id and makes a best-effort
// attempt to send a terminal error event carrying clientMessage.
func (s *StreamSession) Fail(status int, clientMessage string, cause error) {
	id := uuid.NewString()
	s.status = status
	s.logger.Error("sea temperature stream failed",
		"correlation_id", id,
		"status", status,
		"events", s.events,
		"transport", s.transport,
		"error", cause,
	)

	data, err := json.Marshal(errorEvent{Status: status, ID: id, Error: clientMessage})
	if err != nil {
		return
	}
	if err := s.sink.WriteEvent(data); err != nil {
		s.logger.Debug("error event not delivered", "correlation_id", id, "error", err)
	}
}

// Result returns the outcome so far.
func (s *StreamSession) Result() StreamResult {
	return StreamResult{Events: s.events, Points: s.points, Status: s.status}
}

// Close releases per-session metrics. Safe to call once per session.
func (s *StreamSession) Close() {
	if !s.opened {
		return
	}
	s.opened = false
	metrics.StreamSessionsActive.WithLabelValues(s.transport).Dec()
	metrics.StreamDuration.WithLabelValues(s.transport).Observe(time.Since(s.started).Seconds())
}

// rejectStream answers an unusable filter with a single 400 error event.
func rejectStream(session *StreamSession, err error) StreamResult {
	defer session.Close()
	metrics.StreamErrors.WithLabelValues(session.transport, "invalid_filter").Inc()
	if openErr := session.Open(); openErr != nil {
		session.logger.Warn("stream open failed", "error", openErr)
		return session.Result()
	}
	msg := MsgStreamFailure
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Message
	}
	session.Fail(fiber.StatusBadRequest, msg, err)
	return session.Result()
}

// runStream drives one stream to completion. Failures, including panics in
// the producer, end up in the returned result and never escape.
func runStream(ctx context.Context, svc *usecases.SeaTemperatureService, filter domain.SpatialFilter, session *StreamSession) (res StreamResult) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StreamErrors.WithLabelValues(session.transport, "panic").Inc()
			session.Fail(fiber.StatusInternalServerError, MsgStreamFailure, fmt.Errorf("panic: %v", r))
		}
		session.Close()
		res = session.Result()
	}()

	if err := session.Open(); err != nil {
		metrics.StreamErrors.WithLabelValues(session.transport, "open").Inc()
		session.logger.Warn("stream open failed", "error", err)
		return
	}

	err := svc.Stream(ctx, filter, session.SendBatch)
	var dse *domain.DataSourceError
	switch {
	case err == nil:
	case errors.Is(err, ErrBrokenPipe):
		metrics.StreamBrokenPipes.WithLabelValues(session.transport).Inc()
		session.logger.Debug("client went away", "events", session.events)
	case errors.As(err, &dse):
		metrics.StreamErrors.WithLabelValues(session.transport, "data_source").Inc()
		session.Fail(fiber.StatusInternalServerError, MsgStreamFailure, err)
	default:
		metrics.StreamErrors.WithLabelValues(session.transport, "internal").Inc()
		session.Fail(fiber.StatusInternalServerError, MsgStreamFailure, err)
	}
	return
}

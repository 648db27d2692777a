package natsadapter

import (
	"context"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// Subscriber implements ports.ReportSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS and makes sure the report stream exists.
func NewSubscriber(url, subject string) (*Subscriber, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	if err := ensureStream(js, subject); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js, subject: subject}, nil
}

// SubscribeReports registers a durable consumer. Messages that fail to decode
// are terminated; handler errors are nak'ed for redelivery.
func (s *Subscriber) SubscribeReports(ctx context.Context, handler func(ctx context.Context, r *domain.WeatherReport) error) error {
	sub, err := s.js.Subscribe(s.subject+".>", func(msg *nats.Msg) {
		var r domain.WeatherReport
		if err := json.Unmarshal(msg.Data, &r); err != nil {
			slog.Warn("undecodable report", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &r); err != nil {
			slog.Error("report handler failed", "id", r.ID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("report-ingestor"),
		nats.ManualAck(),
		nats.MaxDeliver(5),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

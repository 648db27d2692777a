package natsadapter

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/marinewx/seatemp/internal/core/domain"
)

// Publisher implements ports.ReportPublisher using NATS JetStream.
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// NewPublisher connects to NATS and makes sure the report stream exists.
func NewPublisher(url, subject string) (*Publisher, error) {
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
	return &Publisher{conn: conn, js: js, subject: subject}, nil
}

// PublishReport publishes to <subject>.<callLetters>. The report id is the
// message id, so JetStream drops duplicates within its window.
func (p *Publisher) PublishReport(ctx context.Context, r *domain.WeatherReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject+"."+subjectToken(r.CallLetters), data,
		nats.Context(ctx),
		nats.MsgId(r.ID),
	)
	return err
}

// IsConnected reports the connection state for readiness checks.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

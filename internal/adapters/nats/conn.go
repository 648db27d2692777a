package natsadapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject prefix reports are published under.
const DefaultSubject = "weather.reports"

const streamName = "WEATHER_REPORTS"

func connect(url string) (*nats.Conn, nats.JetStreamContext, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return conn, js, nil
}

// ensureStream creates or updates the report stream for subject.>.
func ensureStream(js nats.JetStreamContext, subject string) error {
	cfg := &nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subject + ".>"},
		Retention: nats.WorkQueuePolicy,
		MaxAge:    72 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// subjectToken makes s usable as a single subject token.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, s)
}

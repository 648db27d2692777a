package http

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/websocket/v2"

	"github.com/marinewx/seatemp/internal/core/domain"
)

type frame struct {
	kind int
	data []byte
}

type fakeConn struct {
	frames []frame
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.frames = append(c.frames, frame{kind: messageType, data: append([]byte(nil), data...)})
	return nil
}

func TestRejectFilter(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"validation", &domain.ValidationError{Message: domain.MsgRadiusIncomplete}, domain.MsgRadiusIncomplete},
		{"not an object", &domain.ValidationError{Message: MsgFilterNotObject}, MsgFilterNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{}
			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, nil))

			rejectFilter(&wsSink{conn: conn}, logger, tt.err)

			if len(conn.frames) != 2 {
				t.Fatalf("expected error frame and close, got %d frames", len(conn.frames))
			}
			if conn.frames[0].kind != websocket.TextMessage || conn.frames[1].kind != websocket.CloseMessage {
				t.Fatalf("unexpected frame kinds %d, %d", conn.frames[0].kind, conn.frames[1].kind)
			}
			var ev errorEvent
			if err := json.Unmarshal(conn.frames[0].data, &ev); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if ev.Status != 400 || ev.Error != tt.msg {
				t.Errorf("unexpected event %+v", ev)
			}
			if len(ev.ID) != 36 {
				t.Fatalf("expected uuid correlation id, got %q", ev.ID)
			}
			if !strings.Contains(logs.String(), `"correlation_id":"`+ev.ID+`"`) {
				t.Errorf("correlation id %s not logged: %s", ev.ID, logs.String())
			}
		})
	}
}

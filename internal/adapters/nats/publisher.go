package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/seascope/internal/core/domain"
)

// Stream and subject layout.
const (
	EventsStream        = "SEASCOPE_EVENTS"
	SessionSubjectRoot  = "seascope.session"
	RenderSubjectRoot   = "seascope.render"
	renderConsumerName  = "render-complete"
	eventsRetentionTime = 24 * time.Hour
)

// SessionSubject is the subject for one event kind of one session.
func SessionSubject(sessionID, kind string) string {
	return SessionSubjectRoot + "." + sessionID + "." + kind
}

// SessionWildcard matches every event of one session.
func SessionWildcard(sessionID string) string {
	return SessionSubjectRoot + "." + sessionID + ".>"
}

// RenderSubject is where the renderer reports a finished frame for a session.
func RenderSubject(sessionID string) string {
	return RenderSubjectRoot + "." + sessionID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js, &nats.StreamConfig{
		Name:      EventsStream,
		Subjects:  []string{SessionSubjectRoot + ".>", RenderSubjectRoot + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    eventsRetentionTime,
		Storage:   nats.FileStorage,
	}); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext, cfg *nats.StreamConfig) error {
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishSessionEvent publishes ev on seascope.session.<id>.<kind>.
func (p *Publisher) PublishSessionEvent(ctx context.Context, ev *domain.SessionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SessionSubject(ev.SessionID, ev.Kind), data, nats.Context(ctx))
	return err
}

// RenderCompletePayload encodes the frame-done message published on
// RenderSubject by renderers that talk to the broker.
func RenderCompletePayload(token uint64) []byte {
	data, _ := json.Marshal(renderComplete{Token: token})
	return data
}

// Conn exposes the underlying connection.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("seascope"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

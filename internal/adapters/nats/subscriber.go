package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"
)

type renderComplete struct {
	Token uint64 `json:"token"`
}

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeRenderComplete delivers seascope.render.<session> messages to
// handler. Malformed messages are terminated; handler errors are retried up
// to three deliveries.
func (s *Subscriber) SubscribeRenderComplete(ctx context.Context, handler func(ctx context.Context, sessionID string, token uint64) error) error {
	sub, err := s.js.Subscribe(RenderSubjectRoot+".>", func(msg *nats.Msg) {
		sessionID, ok := sessionFromRenderSubject(msg.Subject)
		var rc renderComplete
		if !ok || json.Unmarshal(msg.Data, &rc) != nil {
			slog.Warn("malformed render-complete message", "subject", msg.Subject)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, sessionID, rc.Token); err != nil {
			slog.Warn("render-complete handler failed", "session_id", sessionID, "error", err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(renderConsumerName),
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func sessionFromRenderSubject(subject string) (string, bool) {
	id := strings.TrimPrefix(subject, RenderSubjectRoot+".")
	if id == subject || id == "" || strings.Contains(id, ".") {
		return "", false
	}
	return id, true
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

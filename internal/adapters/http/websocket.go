package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/seascope/internal/adapters/nats"
	"github.com/samirrijal/seascope/internal/core/domain"
	"github.com/samirrijal/seascope/internal/core/usecases"
	"github.com/samirrijal/seascope/internal/pkg/metrics"
)

// wsMessage is sent from client to follow or stop following a session.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe" | "render_complete"
	Session string `json:"session"` // session id
	Token   uint64 `json:"token,omitempty"`
}

// liveSession checks that id is a UUID naming an existing session. Session
// ids end up in NATS subjects, where "*" and ">" are wildcards.
func liveSession(sessions *usecases.SessionManager, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed session id", domain.ErrInvalidInput)
	}
	if sessions == nil {
		return domain.ErrSessionNotFound
	}
	_, err := sessions.Get(id)
	return err
}

// WebSocketHandler returns a handler that relays session events from NATS to
// connected clients. A ?session=<id> query parameter subscribes on connect;
// clients may follow more sessions by sending
// {"action":"subscribe","session":"<id>"}. A renderer reports a drawn frame
// with {"action":"render_complete","session":"<id>","token":N}.
func WebSocketHandler(nc *nats.Conn, sessions *usecases.SessionManager) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.Default().With("remote", c.RemoteAddr().String())
		log.Info("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // session id -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event relay not available"})
			return
		}

		subscribe := func(sessionID string) {
			if err := liveSession(sessions, sessionID); err != nil {
				_ = writeJSON(map[string]string{"error": err.Error(), "session": sessionID})
				return
			}
			if _, exists := subs[sessionID]; exists {
				_ = writeJSON(map[string]string{"status": "already subscribed", "session": sessionID})
				return
			}
			s, err := nc.Subscribe(natsadapter.SessionWildcard(sessionID), func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
				return
			}
			subs[sessionID] = s
			_ = writeJSON(map[string]string{"status": "subscribed", "session": sessionID})
		}

		if id := c.Query("session"); id != "" {
			subscribe(id)
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.Session == "" {
				_ = writeJSON(map[string]string{"error": "session is required"})
				continue
			}

			switch m.Action {
			case "subscribe":
				subscribe(m.Session)
			case "unsubscribe":
				if s, exists := subs[m.Session]; exists {
					_ = s.Unsubscribe()
					delete(subs, m.Session)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "session": m.Session})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Session})
				}
			case "render_complete":
				if err := liveSession(sessions, m.Session); err != nil {
					_ = writeJSON(map[string]string{"error": err.Error(), "session": m.Session})
					continue
				}
				if err := nc.Publish(natsadapter.RenderSubject(m.Session), natsadapter.RenderCompletePayload(m.Token)); err != nil {
					_ = writeJSON(map[string]string{"error": "publish failed: " + err.Error()})
				}
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected", "sessions", len(subs))
	}
}

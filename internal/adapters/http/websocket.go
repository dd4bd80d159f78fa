package http

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/refpoint/internal/adapters/nats"
	"github.com/samirrijal/refpoint/internal/pkg/metrics"
)

var wsSessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// wsMessage is sent from client to follow or stop following a session.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Session string `json:"session"` // session id
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays a
// session's snapshot and notice events from NATS to the client.
// Connect with /ws?session=<id> or send {"action":"subscribe","session":"<id>"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // session -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		subscribe := func(session string) {
			if nc == nil {
				_ = writeJSON(map[string]string{"error": "live updates unavailable"})
				return
			}
			if !wsSessionPattern.MatchString(session) {
				_ = writeJSON(map[string]string{"error": "invalid session"})
				return
			}
			if _, exists := subs[session]; exists {
				_ = writeJSON(map[string]string{"status": "already subscribed", "session": session})
				return
			}
			s, err := nc.Subscribe(natsadapter.SessionWildcard(session), func(msg *nats.Msg) {
				_ = writeJSON(json.RawMessage(msg.Data))
			})
			if err != nil {
				_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
				return
			}
			subs[session] = s
			_ = writeJSON(map[string]string{"status": "subscribed", "session": session})
		}

		if session := c.Query("session"); session != "" {
			subscribe(session)
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

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Debug("ws client disconnected", "remote", remoteAddr)
	}
}

package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/refpoint/internal/core/domain"
)

// Event types carried on session subjects.
const (
	EventSnapshot = "snapshot"
	EventNotice   = "notice"
)

// SessionEvent is the envelope published for every session change.
type SessionEvent struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id"`
	Snapshot  *domain.Snapshot `json:"snapshot,omitempty"`
	Notice    *domain.Notice   `json:"notice,omitempty"`
	Time      time.Time        `json:"time"`
}

// SessionSubject is the subject a session's events of one type go to.
func SessionSubject(sessionID, eventType string) string {
	return "refpoint.session." + sessionID + "." + eventType
}

// SessionWildcard matches every event of one session.
func SessionWildcard(sessionID string) string {
	return "refpoint.session." + sessionID + ".>"
}

// Publisher implements ports.EventPublisher and ports.NotificationService
// using NATS JetStream.
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
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:              "REFPOINT_SESSIONS",
			Subjects:          []string{"refpoint.session.>"},
			Retention:         nats.LimitsPolicy,
			MaxAge:            24 * time.Hour,
			MaxMsgsPerSubject: 16,
			Storage:           nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishSnapshot announces a new state of the session's point pair.
func (p *Publisher) PublishSnapshot(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	return p.publish(ctx, SessionEvent{
		Type:      EventSnapshot,
		SessionID: sessionID,
		Snapshot:  &snap,
		Time:      time.Now().UTC(),
	})
}

// Notify publishes a user-facing notice for the session.
func (p *Publisher) Notify(ctx context.Context, sessionID string, n domain.Notice) error {
	return p.publish(ctx, SessionEvent{
		Type:      EventNotice,
		SessionID: sessionID,
		Notice:    &n,
		Time:      time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, ev SessionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SessionSubject(ev.SessionID, ev.Type), data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection, e.g. for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

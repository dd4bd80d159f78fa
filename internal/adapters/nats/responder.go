package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/refpoint/internal/core/domain"
)

// FixFunc produces a fix for a request.
type FixFunc func(ctx context.Context, req PositionRequest) (*domain.Fix, error)

// Responder answers position requests for one device.
type Responder struct {
	conn   *nats.Conn
	device string
	subs   []*nats.Subscription
}

// NewResponder creates a responder sharing conn.
func NewResponder(conn *nats.Conn, device string) *Responder {
	return &Responder{conn: conn, device: device}
}

// Serve subscribes to the device's fix and altitude subjects. The altitude
// subject is answered from the same fix.
func (r *Responder) Serve(ctx context.Context, fix FixFunc) error {
	handlers := map[string]func(req PositionRequest) PositionReply{
		FixSubject(r.device): func(req PositionRequest) PositionReply {
			f, err := fix(ctx, req)
			if err != nil {
				return PositionReply{Error: err.Error()}
			}
			if !req.Altitude {
				f.Altitude = nil
			}
			return PositionReply{Fix: f}
		},
		AltitudeSubject(r.device): func(req PositionRequest) PositionReply {
			f, err := fix(ctx, req)
			if err != nil {
				return PositionReply{Error: err.Error()}
			}
			if f.Altitude == nil {
				return PositionReply{Error: "altitude unavailable"}
			}
			return PositionReply{Altitude: f.Altitude}
		},
	}

	for subject, handle := range handlers {
		handle := handle
		sub, err := r.conn.QueueSubscribe(subject, "positiond", func(msg *nats.Msg) {
			var req PositionRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				slog.Warn("bad position request", "subject", msg.Subject, "error", err)
				return
			}
			data, err := json.Marshal(handle(req))
			if err != nil {
				return
			}
			if err := msg.Respond(data); err != nil {
				slog.Warn("position reply failed", "subject", msg.Subject, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		r.subs = append(r.subs, sub)
	}
	return nil
}

// Close unsubscribes.
func (r *Responder) Close() {
	for _, sub := range r.subs {
		_ = sub.Unsubscribe()
	}
}

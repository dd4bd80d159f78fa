package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/pkg/metrics"
)

// FixSubject is where a device answers horizontal position requests.
func FixSubject(device string) string {
	return "refpoint.position." + device + ".fix"
}

// AltitudeSubject is where a device answers altitude requests.
func AltitudeSubject(device string) string {
	return "refpoint.position." + device + ".altitude"
}

// PositionRequest is sent to a device.
type PositionRequest struct {
	HighAccuracy bool  `json:"high_accuracy"`
	TimeoutMS    int64 `json:"timeout_ms"`
	Altitude     bool  `json:"altitude"`
}

// PositionReply is what a device answers. Error is set when it has no fix.
type PositionReply struct {
	Fix      *domain.Fix `json:"fix,omitempty"`
	Altitude *float64    `json:"altitude,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Positioning implements ports.PositioningService and ports.AltitudeSource
// by request/reply against a positioning daemon.
type Positioning struct {
	conn   *nats.Conn
	device string
}

// NewPositioning creates a client for one device.
func NewPositioning(conn *nats.Conn, device string) *Positioning {
	return &Positioning{conn: conn, device: device}
}

// CurrentPosition asks the device for a horizontal fix.
func (p *Positioning) CurrentPosition(ctx context.Context, opts domain.PositionOptions) (*domain.Fix, error) {
	reply, err := p.request(ctx, FixSubject(p.device), opts)
	if err != nil {
		return nil, err
	}
	if reply.Fix == nil {
		return nil, errors.New("device replied without a fix")
	}
	return reply.Fix, nil
}

// CurrentAltitude asks the device for its altitude alone.
func (p *Positioning) CurrentAltitude(ctx context.Context, opts domain.PositionOptions) (float64, error) {
	reply, err := p.request(ctx, AltitudeSubject(p.device), opts)
	if err != nil {
		return 0, err
	}
	if reply.Altitude == nil {
		return 0, errors.New("device replied without altitude")
	}
	return *reply.Altitude, nil
}

func (p *Positioning) request(ctx context.Context, subject string, opts domain.PositionOptions) (*PositionReply, error) {
	start := time.Now()
	defer func() { metrics.PositionRequestDuration.Observe(time.Since(start).Seconds()) }()

	data, err := json.Marshal(PositionRequest{
		HighAccuracy: opts.HighAccuracy,
		TimeoutMS:    opts.Timeout.Milliseconds(),
		Altitude:     opts.Altitude,
	})
	if err != nil {
		return nil, err
	}

	msg, err := p.conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", subject, err)
	}

	var reply PositionReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return nil, fmt.Errorf("decode reply from %s: %w", subject, err)
	}
	if reply.Error != "" {
		return nil, errors.New(reply.Error)
	}
	return &reply, nil
}

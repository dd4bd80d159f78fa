//go:build integration
// +build integration

package natsadapter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	natsadapter "github.com/samirrijal/refpoint/internal/adapters/nats"
	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/pkg/config"
)

func connect(t *testing.T) *natsadapter.Publisher {
	cfg, err := config.Load("refpoint-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		t.Fatalf("nats: %v", err)
	}
	t.Cleanup(pub.Close)
	return pub
}

func TestIntegration_PositioningRoundTrip(t *testing.T) {
	pub := connect(t)
	device := "it-" + time.Now().Format("150405")
	alt := 44.0

	responder := natsadapter.NewResponder(pub.Conn(), device)
	err := responder.Serve(context.Background(), func(ctx context.Context, req natsadapter.PositionRequest) (*domain.Fix, error) {
		a := alt
		return &domain.Fix{Lat: 39.9042, Lon: 116.4074, Altitude: &a}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(responder.Close)

	pos := natsadapter.NewPositioning(pub.Conn(), device)
	opts := domain.PositionOptions{HighAccuracy: true, Timeout: 2 * time.Second, Altitude: true}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	fix, err := pos.CurrentPosition(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fix.Lat != 39.9042 || fix.Altitude == nil || *fix.Altitude != 44 {
		t.Errorf("unexpected fix %+v", fix)
	}

	got, err := pos.CurrentAltitude(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got != 44 {
		t.Errorf("expected altitude 44, got %v", got)
	}
}

func TestIntegration_PositioningFailure(t *testing.T) {
	pub := connect(t)
	device := "it-fail-" + time.Now().Format("150405")

	responder := natsadapter.NewResponder(pub.Conn(), device)
	err := responder.Serve(context.Background(), func(ctx context.Context, req natsadapter.PositionRequest) (*domain.Fix, error) {
		return nil, errors.New("no satellites")
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(responder.Close)

	pos := natsadapter.NewPositioning(pub.Conn(), device)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = pos.CurrentPosition(ctx, domain.PositionOptions{Timeout: time.Second})
	if err == nil {
		t.Fatal("expected error from failing device")
	}
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/refpoint/internal/adapters/nats"
	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/pkg/config"
	"github.com/samirrijal/refpoint/internal/pkg/logging"
)

// positiond answers position requests for one device over NATS. With no
// receiver attached it serves the fix configured under positiond.*.
func main() {
	cfg, err := config.Load("refpoint-positiond")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nc, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer nc.Drain()

	fix, err := staticFix(cfg.Positiond)
	if err != nil {
		log.Fatalf("positiond fix: %v", err)
	}

	responder := natsadapter.NewResponder(nc, cfg.Positioning.Device)
	if err := responder.Serve(ctx, func(ctx context.Context, req natsadapter.PositionRequest) (*domain.Fix, error) {
		f := *fix
		if fix.Altitude != nil {
			alt := *fix.Altitude
			f.Altitude = &alt
		}
		slog.DebugContext(ctx, "position request", "high_accuracy", req.HighAccuracy, "altitude", req.Altitude)
		return &f, nil
	}); err != nil {
		log.Fatalf("serve: %v", err)
	}
	defer responder.Close()

	slog.Info("positiond serving",
		"device", cfg.Positioning.Device,
		"fix_subject", natsadapter.FixSubject(cfg.Positioning.Device),
		"lat", fix.Lat, "lon", fix.Lon, "has_altitude", fix.Altitude != nil,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down positiond", "signal", sig.String())
}

func staticFix(c config.PositiondConfig) (*domain.Fix, error) {
	var alt *float64
	if c.HasAltitude {
		alt = &c.Altitude
	}
	p, err := domain.NewGeoPoint(c.Lat, c.Lon, alt)
	if err != nil {
		return nil, err
	}
	return &domain.Fix{Lat: p.Lat, Lon: p.Lon, Altitude: p.Altitude}, nil
}

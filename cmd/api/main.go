package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	boltstore "github.com/samirrijal/refpoint/internal/adapters/bolt"
	"github.com/samirrijal/refpoint/internal/adapters/http"
	"github.com/samirrijal/refpoint/internal/adapters/memory"
	natsadapter "github.com/samirrijal/refpoint/internal/adapters/nats"
	"github.com/samirrijal/refpoint/internal/adapters/postgres"
	"github.com/samirrijal/refpoint/internal/adapters/valkey"
	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/ports"
	"github.com/samirrijal/refpoint/internal/core/usecases"
	"github.com/samirrijal/refpoint/internal/pkg/config"
	"github.com/samirrijal/refpoint/internal/pkg/format"
	"github.com/samirrijal/refpoint/internal/pkg/logging"
	"github.com/samirrijal/refpoint/internal/pkg/telemetry"
)

// backend is an opened persistence store plus its readiness probe.
type backend struct {
	store ports.PersistenceStore
	ping  ports.Pinger
	close func()
}

func main() {
	cfg, err := config.Load("refpoint-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Persistence
	be, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("persistence: %v", err)
	}
	defer be.close()

	// NATS: session fan-out and positioning requests
	var (
		publisher ports.EventPublisher
		notifier  ports.NotificationService
		locator   *usecases.Locator
		deps      = &http.Dependencies{Store: be.ping, Backend: cfg.Persistence.Backend}
	)
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, positioning and live updates disabled", "error", err)
		} else {
			defer pub.Close()
			publisher, notifier = pub, pub
			deps.NATS = pub.Conn()

			pos := natsadapter.NewPositioning(pub.Conn(), cfg.Positioning.Device)
			locator = usecases.NewLocator(pos, pos)
		}
	}

	sessionCfg, err := sessionConfig(cfg)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	unit, err := format.ParseUnit(cfg.Display.AltitudeUnit)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	deps.Sessions = usecases.NewSessionService(be.store, locator, publisher, notifier, sessionCfg)
	deps.Presenter = format.NewPresenter(unit)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Refpoint API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "backend", cfg.Persistence.Backend)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Persistence.Backend {
	case config.BackendValkey:
		s, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			return nil, err
		}
		return &backend{store: s, ping: s, close: s.Close}, nil

	case config.BackendPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, err
		}
		go db.ReportPoolStats(ctx, 15*time.Second)
		s := postgres.NewKVStore(db)
		return &backend{store: s, ping: s, close: db.Close}, nil

	case config.BackendBolt:
		s, err := boltstore.Open(cfg.Persistence.BoltPath)
		if err != nil {
			return nil, err
		}
		return &backend{store: s, ping: s, close: func() { _ = s.Close() }}, nil
	}

	s := memory.New()
	return &backend{store: s, ping: s, close: func() {}}, nil
}

func sessionConfig(cfg *config.Config) (usecases.SessionConfig, error) {
	layer, err := domain.ParseMapLayer(cfg.Map.DefaultLayer)
	if err != nil {
		return usecases.SessionConfig{}, err
	}
	center, err := domain.NewGeoPoint(cfg.Map.DefaultLat, cfg.Map.DefaultLon, nil)
	if err != nil {
		return usecases.SessionConfig{}, fmt.Errorf("map default centre: %w", err)
	}
	return usecases.SessionConfig{
		DefaultLanguage: cfg.Display.DefaultLanguage,
		DefaultLayer:    layer,
		DefaultCenter:   center,
		Position: domain.PositionOptions{
			HighAccuracy: cfg.Positioning.HighAccuracy,
			Timeout:      cfg.Positioning.Timeout(),
			Altitude:     cfg.Positioning.Altitude,
		},
	}, nil
}

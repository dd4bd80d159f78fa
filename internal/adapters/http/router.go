package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/refpoint/internal/pkg/metrics"
)

// requestTimeout bounds every REST call; it must exceed the positioning timeout.
const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/geodesic", GeodesicHandler(deps))

	sessions := v1.Group("/sessions")
	sessions.Post("/", timeout.NewWithContext(CreateSessionHandler(deps), requestTimeout))
	sessions.Get("/:id", timeout.NewWithContext(GetSessionHandler(deps), requestTimeout))
	sessions.Put("/:id/points/:role", timeout.NewWithContext(SetPointHandler(deps), requestTimeout))
	sessions.Post("/:id/points/:role/locate", timeout.NewWithContext(LocateHandler(deps), requestTimeout))
	sessions.Delete("/:id/points/:role", timeout.NewWithContext(ClearPointHandler(deps), requestTimeout))
	sessions.Delete("/:id/points", timeout.NewWithContext(ClearAllHandler(deps), requestTimeout))
	sessions.Post("/:id/compute", timeout.NewWithContext(ComputeHandler(deps), requestTimeout))
	sessions.Post("/:id/pick", timeout.NewWithContext(PickHandler(deps), requestTimeout))
	sessions.Post("/:id/tap", timeout.NewWithContext(TapHandler(deps), requestTimeout))
	sessions.Post("/:id/goto/:role", timeout.NewWithContext(GotoHandler(deps), requestTimeout))
	sessions.Put("/:id/preferences", timeout.NewWithContext(PreferencesHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, "")

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

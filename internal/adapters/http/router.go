package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/seascope/internal/pkg/metrics"
)

const (
	requestTimeout = 15 * time.Second
	// Queries wait on the remote classifier.
	queryTimeout = 60 * time.Second
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP. Viewport updates are chatty.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
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

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Sessions
	v1.Post("/sessions", CreateSessionHandler(deps))
	v1.Get("/sessions/:id", GetSessionHandler(deps))
	v1.Delete("/sessions/:id", DeleteSessionHandler(deps))
	v1.Post("/sessions/:id/query", timeout.NewWithContext(SubmitQueryHandler(deps), queryTimeout))
	v1.Post("/sessions/:id/pins", PinHandler(deps))
	v1.Delete("/sessions/:id/pins/:name", UnpinHandler(deps))
	v1.Post("/sessions/:id/clear", ClearHandler(deps))
	v1.Put("/sessions/:id/viewport", ViewportHandler(deps))
	v1.Post("/sessions/:id/render-complete", RenderCompleteHandler(deps))
	v1.Get("/sessions/:id/layers", LayersHandler(deps))
	v1.Get("/sessions/:id/status", StatusHandler(deps))
	v1.Get("/sessions/:id/queries", timeout.NewWithContext(QueryLogHandler(deps), requestTimeout))

	// Catalog
	v1.Get("/catalog", ListCatalogHandler(deps))
	v1.Get("/catalog/presets", PresetsHandler(deps))
	v1.Post("/catalog", timeout.NewWithContext(UpsertCatalogHandler(deps), requestTimeout))

	// Region helpers
	v1.Get("/regions/point", PointRegionHandler(deps))
	v1.Get("/regions/place", timeout.NewWithContext(PlaceRegionHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), queryTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			if id := c.Query("session"); id != "" {
				if err := liveSession(deps.Sessions, id); err != nil {
					return errDomain(c, err)
				}
			}
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS, deps.Sessions)))
}

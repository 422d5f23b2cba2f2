package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/binroute/internal/core/domain"
	"github.com/samirrijal/binroute/internal/pkg/metrics"
)

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
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Resolve the session cookie for every request
	app.Use(SessionMiddleware(deps))

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/health", HealthHandler(deps))
	app.Get("/ready", ReadyHandler(deps))

	// Auth
	app.Post("/signup", SignUpHandler(deps))
	app.Post("/login", GenericLoginHandler(deps))
	app.Post("/admin-login", LoginHandler(deps, domain.RoleAdmin))
	app.Post("/waste-collector-login", LoginHandler(deps, domain.RoleWasteCollector))
	app.Post("/logout", LogoutHandler(deps))

	// Bins — 15s per-request timeout
	app.Get("/bins", timeout.NewWithContext(ListBinsHandler(deps), 15*time.Second))
	app.Get("/collector-bins", RequireRole(domain.RoleWasteCollector),
		timeout.NewWithContext(ListBinsHandler(deps), 15*time.Second))
	app.Get("/next-bin-name", timeout.NewWithContext(NextBinNameHandler(deps), 15*time.Second))
	app.Post("/add-bin", RequireRole(domain.RoleAdmin),
		timeout.NewWithContext(AddBinHandler(deps), 15*time.Second))
	app.Post("/mark-bin-full", timeout.NewWithContext(MarkBinFullHandler(deps), 15*time.Second))

	// Placement suggestions call two upstream services; give them longer
	app.Post("/suggest-bins-along-road", RequireRole(domain.RoleAdmin),
		timeout.NewWithContext(SuggestBinsHandler(deps), 60*time.Second))

	// Role-gated dashboards
	app.Get("/admin-dashboard", RequireRole(domain.RoleAdmin),
		DashboardHandler(domain.RoleAdmin))
	app.Get("/waste-collector-dashboard", RequireRole(domain.RoleWasteCollector),
		DashboardHandler(domain.RoleWasteCollector))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

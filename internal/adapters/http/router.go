package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/minarah/internal/core/domain"
	"github.com/samirrijal/minarah/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// legacySunset is when the unversioned paths stop being served.
var legacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// legacyRoutes maps the unversioned paths earlier clients call onto their /v1 successors.
var legacyRoutes = []DeprecatedRoute{
	{Path: "/routing/route/find", SunsetDate: legacySunset, Alternative: "/v1/routes/find"},
	{Path: "/sos/sos/create", SunsetDate: legacySunset, Alternative: "/v1/sos"},
	{Path: "/sos/sos/pending", SunsetDate: legacySunset, Alternative: "/v1/sos/pending"},
	{Path: "/sos/sos/sos", SunsetDate: legacySunset, Alternative: "/v1/sos"},
	{Path: "/sos/sos/filter", SunsetDate: legacySunset, Alternative: "/v1/sos/filter"},
	{Path: "/sos/sos/assign/:id", SunsetDate: legacySunset, Alternative: "/v1/sos/:id/assign"},
	{Path: "/sos/sos/rescued/:id", SunsetDate: legacySunset, Alternative: "/v1/sos/:id/rescue"},
	{Path: "/sos/sos/assigned/:email", SunsetDate: legacySunset, Alternative: "/v1/teams/:id/sos"},
	{Path: "/sos/sos/rescuedSOS", SunsetDate: legacySunset, Alternative: "/v1/teams/:id/sos?status=Rescued"},
	{Path: "/rescue/rescue/available", SunsetDate: legacySunset, Alternative: "/v1/teams/available"},
	{Path: "/rescue/rescue/allTeams", SunsetDate: legacySunset, Alternative: "/v1/teams"},
	{Path: "/rescue/rescue/status/:id", SunsetDate: legacySunset, Alternative: "/v1/teams/:id/availability"},
	{Path: "/api/flood/predict", SunsetDate: legacySunset, Alternative: "/v1/flood/predict"},
}

// withTimeout wraps h with the per-request deadline.
func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
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
		Next: func(c *fiber.Ctx) bool {
			// Long-lived observer connections are not rate limited.
			return c.Path() == "/ws"
		},
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

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
	app.Use(DeprecationMiddleware(legacyRoutes))

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Safe routing
	v1.Get("/routes/find", withTimeout(FindRouteHandler(deps)))

	// SOS dispatch
	v1.Post("/sos", withTimeout(CreateSOSHandler(deps)))
	v1.Get("/sos", withTimeout(ListSOSHandler(deps)))
	v1.Get("/sos/pending", withTimeout(PendingSOSHandler(deps)))
	v1.Get("/sos/filter", withTimeout(FilterSOSHandler(deps)))
	v1.Get("/sos/:id", withTimeout(GetSOSHandler(deps)))
	v1.Put("/sos/:id/assign", withTimeout(AssignSOSHandler(deps)))
	v1.Put("/sos/:id/rescue", withTimeout(RescueSOSHandler(deps)))

	// Rescue teams
	v1.Get("/teams", withTimeout(ListTeamsHandler(deps)))
	v1.Get("/teams/available", withTimeout(AvailableTeamsHandler(deps)))
	v1.Get("/teams/:id", withTimeout(GetTeamHandler(deps)))
	v1.Put("/teams/:id/availability", withTimeout(SetAvailabilityHandler(deps)))
	v1.Get("/teams/:id/sos", withTimeout(TeamSOSHandler(deps)))

	// Flood prediction
	v1.Post("/flood/predict", withTimeout(PredictFloodHandler(deps)))

	setupLegacyRoutes(app, deps)

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, deps.OpenAPIPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Hub, deps.WS)))
}

// setupLegacyRoutes serves the unversioned paths with the same handlers.
func setupLegacyRoutes(app *fiber.App, deps *Dependencies) {
	app.Get("/routing/route/find", withTimeout(FindRouteHandler(deps)))

	sos := app.Group("/sos/sos")
	sos.Post("/create", withTimeout(CreateSOSHandler(deps)))
	sos.Get("/pending", withTimeout(PendingSOSHandler(deps)))
	sos.Get("/sos", withTimeout(ListSOSHandler(deps)))
	sos.Get("/filter", withTimeout(FilterSOSHandler(deps)))
	sos.Put("/assign/:id", withTimeout(AssignSOSHandler(deps)))
	sos.Put("/rescued/:id", withTimeout(RescueSOSHandler(deps)))
	sos.Get("/assigned/:email", withTimeout(legacyTeamSOSHandler(deps, domain.StatusAssigned)))
	sos.Get("/rescuedSOS", withTimeout(legacyTeamSOSHandler(deps, domain.StatusRescued)))

	rescue := app.Group("/rescue/rescue")
	rescue.Get("/available", withTimeout(AvailableTeamsHandler(deps)))
	rescue.Get("/allTeams", withTimeout(ListTeamsHandler(deps)))
	rescue.Put("/status/:id", withTimeout(SetAvailabilityHandler(deps)))

	app.Post("/api/flood/predict", withTimeout(PredictFloodHandler(deps)))
}

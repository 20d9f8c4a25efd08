package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/crediforum/crediforum-go/internal/handler"
	"github.com/crediforum/crediforum-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Vote        *handler.VoteHandler
	Post        *handler.PostHandler
	Community   *handler.CommunityHandler
	User        *handler.UserHandler
	Credibility *handler.CredibilityHandler
	Stats       *handler.StatsHandler
	Health      *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given
// Fiber app. sessions authenticates the vote route; nil-safe handlers keep
// the read routes public.
func Setup(app *fiber.App, h *Handlers, sessions middleware.SessionResolver, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics (before API group, no auth needed)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	// API routes
	api := app.Group("/api")

	// Vote route: the one authenticated, state-mutating operation
	api.Patch("/votes", h.Vote.Apply, middleware.RequireSession(sessions))

	// Post routes
	api.Get("/posts/:postId", h.Post.GetByID, middleware.NewPostRateLimiter().Handler())

	// Community routes
	api.Get("/communities/:slug", h.Community.GetBySlug)

	// User routes
	api.Get("/users/:userId", h.User.GetByUserID)

	// Credibility routes
	credLimiter := middleware.NewCredibilityRateLimiter()
	api.Get("/credibility", h.Credibility.Get, credLimiter.Handler())
	api.Get("/credibility/events", h.Credibility.GetEvents, credLimiter.Handler())

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, middleware.NewStatsRateLimiter().Handler())
}

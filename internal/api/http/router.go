package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/majewskibartosz/railway-support-lab/internal/api/http/handlers"
	"github.com/majewskibartosz/railway-support-lab/internal/auth"
	apperrors "github.com/majewskibartosz/railway-support-lab/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Tickets *handlers.TicketsHandler
	Health  *handlers.HealthHandler
	Metrics *handlers.MetricsHandler
	Status  *handlers.StatusHandler
	Storage *handlers.StorageHandler
	Debug   *handlers.DebugHandler
	Auth    *handlers.AuthHandler
	Tokens  *auth.TokenManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/full", cfg.Health.Full)
	app.Get("/metrics", cfg.Metrics.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api")
	// stats before :id so "stats" is never parsed as a ticket id
	api.Get("/tickets/stats", cfg.Tickets.Stats)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)

	api.Get("/external/status", cfg.Status.CheckExternal)
	api.Get("/external/history", cfg.Status.History)

	api.Get("/storage", cfg.Storage.ListObjects)
	api.Get("/storage/:key", cfg.Storage.GetObject)
	api.Put("/storage/:key", cfg.Storage.PutObject)
	api.Delete("/storage/:key", cfg.Storage.DeleteObject)

	dbg := app.Group("/debug", auth.RequireAdmin(cfg.Tokens))
	dbg.Get("/slow", cfg.Debug.Slow)
	dbg.Get("/hang", cfg.Debug.Hang)
	dbg.Get("/error", cfg.Debug.Error)
	dbg.Get("/crash", cfg.Debug.Crash)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewRouteNotFound(c.Method(), c.Path())
	})
}

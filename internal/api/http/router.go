package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-tracker/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Tickets *handlers.TicketsHandler
	Reports *handlers.ReportsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	tickets := app.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.EditTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)

	app.Get("/options", cfg.Tickets.Options)
	app.Get("/reports", cfg.Reports.Reports)
	app.Get("/alerts", cfg.Reports.Alerts)

	export := app.Group("/export")
	export.Get("/csv", cfg.Reports.ExportCSV)
	export.Get("/xlsx", cfg.Reports.ExportXLSX)
}

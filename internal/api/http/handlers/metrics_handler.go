package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/majewskibartosz/railway-support-lab/internal/health"
	"github.com/majewskibartosz/railway-support-lab/internal/observability"
	"github.com/majewskibartosz/railway-support-lab/internal/service"
)

// MetricsHandler exposes the ticket summary plus process counters.
type MetricsHandler struct {
	service    *service.TicketService
	metrics    *observability.Metrics
	aggregator *health.Aggregator
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(ticketService *service.TicketService, metrics *observability.Metrics, aggregator *health.Aggregator) *MetricsHandler {
	return &MetricsHandler{service: ticketService, metrics: metrics, aggregator: aggregator}
}

// Metrics GET /metrics.
func (h *MetricsHandler) Metrics(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}

	requests, errorCounts := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"tickets": fiber.Map{
			"total":                  summary.Total,
			"open":                   summary.Open,
			"resolved":               summary.Resolved,
			"avg_resolution_minutes": summary.AvgResolutionMinutes,
			"last_created_at":        summary.LastCreatedAt,
		},
		"process": fiber.Map{
			"uptime_seconds": h.aggregator.Uptime().Seconds(),
			"requests":       requests,
			"errors":         errorCounts,
		},
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/majewskibartosz/railway-support-lab/internal/health"
)

// HealthHandler responds to liveness and full health probes.
type HealthHandler struct {
	aggregator *health.Aggregator
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(aggregator *health.Aggregator) *HealthHandler {
	return &HealthHandler{aggregator: aggregator}
}

// Live GET /health. Never touches the store or the network.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(h.aggregator.Liveness())
}

// Full GET /health/full. 200 when the store sub-check passed, 503 otherwise.
func (h *HealthHandler) Full(c *fiber.Ctx) error {
	report := h.aggregator.Full(c.UserContext())
	if report.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.JSON(report)
}

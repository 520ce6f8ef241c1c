package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/majewskibartosz/railway-support-lab/internal/status"
)

// StatusHandler exposes the external-status probe and its history.
type StatusHandler struct {
	prober  *status.Prober
	history *status.History
}

// NewStatusHandler constructs handler.
func NewStatusHandler(prober *status.Prober, history *status.History) *StatusHandler {
	return &StatusHandler{prober: prober, history: history}
}

// CheckExternal GET /api/external/status. Runs one probe and records it.
func (h *StatusHandler) CheckExternal(c *fiber.Ctx) error {
	result := h.prober.Check(c.UserContext())
	h.history.Append(result)
	return c.JSON(result)
}

// History GET /api/external/history. Newest-first, capped in memory.
func (h *StatusHandler) History(c *fiber.Ctx) error {
	entries := h.history.Snapshot()
	return c.JSON(fiber.Map{
		"count":   len(entries),
		"history": entries,
	})
}

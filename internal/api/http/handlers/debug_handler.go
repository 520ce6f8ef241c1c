package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DebugHandler serves stateless simulated faults. Slow and Hang deliberately
// ignore the request timeout; they exist to demonstrate its absence.
type DebugHandler struct {
	logger *zap.Logger
	fatal  func(reason string)
}

// NewDebugHandler constructs handler. fatal requests process termination,
// bypassing the drain window.
func NewDebugHandler(logger *zap.Logger, fatal func(reason string)) *DebugHandler {
	return &DebugHandler{logger: logger, fatal: fatal}
}

// Slow GET /debug/slow responds after a multi-second delay.
func (h *DebugHandler) Slow(c *fiber.Ctx) error {
	seconds := parseInt(c.Query("seconds"), 5)
	time.Sleep(time.Duration(seconds) * time.Second)
	return c.JSON(fiber.Map{"delayed_seconds": seconds})
}

// Hang GET /debug/hang never completes.
func (h *DebugHandler) Hang(c *fiber.Ctx) error {
	h.logger.Warn("debug hang requested; request will never complete")
	select {}
}

// Error GET /debug/error faults inside the handler; the recovery middleware
// turns it into a well-formed 500 envelope.
func (h *DebugHandler) Error(c *fiber.Ctx) error {
	panic("simulated handler fault")
}

// Crash GET /debug/crash triggers a fatal process fault: the service logs it
// and terminates with a non-zero exit, skipping the drain window.
func (h *DebugHandler) Crash(c *fiber.Ctx) error {
	h.logger.Error("debug crash requested")
	h.fatal("debug crash requested")
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"terminating": true})
}

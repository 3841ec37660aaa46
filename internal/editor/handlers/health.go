package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ============================================================
// Health & Metrics
// ============================================================

func (h *EditorHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// Readiness also reports how many sessions are open.
func (h *EditorHandler) Readiness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ready",
		"sessions": h.sessions.Count(),
	})
}

// Metrics exposes the default prometheus registry.
func Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// ReadinessProbe reports ready once the gateway serves requests; upstream
// services expose their own probes.
func ReadinessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ready"})
}

func StartupProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "started"})
}

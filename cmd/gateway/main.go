package main

import (
	"fmt"
	"log"
	"time"

	"mjcf-editor/internal/common/config"
	"mjcf-editor/internal/common/middleware"
	"mjcf-editor/internal/gateway/handlers"
	"mjcf-editor/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load("3000")

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "MJCF Editor Gateway",
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check & Docs
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe)
	app.Get("/health/startup", handlers.StartupProbe)

	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)
	app.Get("/docs", handlers.SwaggerUI)

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "MJCF Editor API v1",
			"status":  "ok",
		})
	})

	api.Get("/health/editor", proxy.ProxyTo(cfg.EditorURL+"/health/ready"))
	api.Get("/health/files", proxy.ProxyTo(cfg.FilesURL+"/health/ready"))

	proxy.Mount(api, "/sessions", cfg.EditorURL)
	proxy.Mount(api, "/files", cfg.FilesURL)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting API Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Proxying /sessions to %s, /files to %s", cfg.EditorURL, cfg.FilesURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

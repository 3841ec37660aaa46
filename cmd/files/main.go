package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"mjcf-editor/internal/common/config"
	"mjcf-editor/internal/common/middleware"
	"mjcf-editor/internal/files/handlers"
	"mjcf-editor/internal/files/repository"
	"mjcf-editor/internal/files/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// File Store Service
// ============================================================

func main() {
	cfg := config.Load("3002")

	db, err := repository.OpenSQLite(cfg.FilesDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), "migrations/001_init_files.sql"); err != nil {
		log.Fatalf("init db: %v", err)
	}

	fileStorage := service.NewFileStorage(cfg.UploadDir)
	filesHandler := handlers.NewFilesHandler(repo, fileStorage, cfg.MaxUploadMB)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "File Store",
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// File Routes
	// ============================================================

	app.Post("/files", filesHandler.Upload)
	app.Get("/files", filesHandler.List)
	app.Get("/files/:id", filesHandler.Get)
	app.Get("/files/:id/download", filesHandler.Download)
	app.Delete("/files/:id", filesHandler.Delete)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting File Store on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Upload directory: %s", fileStorage.Root())

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

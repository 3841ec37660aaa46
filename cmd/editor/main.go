package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"mjcf-editor/internal/common/config"
	"mjcf-editor/internal/common/middleware"
	"mjcf-editor/internal/editor/handlers"
	"mjcf-editor/internal/editor/hub"
	"mjcf-editor/internal/editor/primitives"
	"mjcf-editor/internal/editor/session"
	"mjcf-editor/internal/editor/store"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Editor Service
// ============================================================

func main() {
	cfg := config.Load("3001")

	palette, err := primitives.Load(cfg.PrimitivesPath)
	if err != nil {
		log.Fatalf("load primitives: %v", err)
	}

	sessions := session.NewManager(store.Options{
		HistoryLimit: cfg.HistoryLimit,
		Palette:      palette,
	})

	feed := hub.New(sessions)
	sessions.OnLifecycle(nil, feed.CloseSession)

	editorHandler := handlers.NewEditorHandler(sessions, cfg.FilesURL)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "MJCF Editor",
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

	app.Get("/health/live", editorHandler.Liveness)
	app.Get("/health/ready", editorHandler.Readiness)
	app.Get("/metrics", handlers.Metrics())

	// ============================================================
	// Editor Routes
	// ============================================================

	editorHandler.Register(app)

	// ============================================================
	// Live Feed
	// ============================================================

	mux := http.NewServeMux()
	mux.Handle("/ws", feed)
	wsAddr := fmt.Sprintf(":%s", cfg.WSPort)
	go func() {
		log.Printf("Starting live feed on %s", wsAddr)
		if err := http.ListenAndServe(wsAddr, mux); err != nil {
			log.Fatalf("Failed to start live feed: %v", err)
		}
	}()

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting MJCF Editor on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

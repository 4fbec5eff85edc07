package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"floor-layout/internal/common/config"
	"floor-layout/internal/common/middleware"
	"floor-layout/internal/layout/editor"
	"floor-layout/internal/layout/gateway"
	"floor-layout/internal/layout/handlers"
	"floor-layout/internal/layout/repository"
	"floor-layout/internal/layout/service"
	"floor-layout/internal/layout/store"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Layout Editor Service
// ============================================================

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	// Коммиты идут в локальную базу, либо во внешний API столов, если задан COMMIT_URL
	var gw gateway.CommitGateway = repo
	if cfg.CommitURL != "" {
		gw = gateway.NewHTTPClient(cfg.CommitURL, cfg.CommitRetries)
		log.Printf("Committing table positions to %s", cfg.CommitURL)
	}
	dispatcher := gateway.NewDispatcher(gw, time.Duration(cfg.CommitTimeout)*time.Second)
	defer dispatcher.Wait()

	sessions := service.NewSessionManager(editorOptions(cfg.Editor), dispatcher)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Layout Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.AllowOrigins))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(repo))

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")
	handlers.Register(api,
		handlers.NewTablesHandler(repo, sessions),
		handlers.NewEditorHandler(repo, sessions),
	)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Layout Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func editorOptions(c config.EditorConfig) editor.Options {
	return editor.Options{
		ZoomMin:      c.ZoomMin,
		ZoomMax:      c.ZoomMax,
		RotationStep: c.RotationStep,
		Arrange: store.ArrangeOptions{
			Columns: c.ArrangeColumns,
			Spacing: c.ArrangeSpacing,
			Margin:  c.ArrangeMargin,
		},
	}
}

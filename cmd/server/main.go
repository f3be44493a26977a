package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/rosterforge/server/internal/config"
	"github.com/lawnchairsociety/rosterforge/server/internal/database"
	"github.com/lawnchairsociety/rosterforge/server/internal/logger"
	"github.com/lawnchairsociety/rosterforge/server/internal/script"
	"github.com/lawnchairsociety/rosterforge/server/internal/server"
	"github.com/lawnchairsociety/rosterforge/server/internal/text"
)

func main() {
	configFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	address := flag.String("addr", "", "Listen address (overrides http.address)")
	modulePath := flag.String("modules", "", "Path to Lua modules (overrides scripts.module_path)")
	flag.Parse()

	// Logger first, so config problems are reported
	logConfig, err := logger.LoadConfig(*configFile)
	if err != nil {
		log.Printf("Failed to load logging config, using defaults: %v", err)
	}
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("Starting roster service")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load server config, using defaults", "path", *configFile, "error", err)
	}
	if *address != "" {
		cfg.HTTP.Address = *address
	}
	if *modulePath != "" {
		cfg.Scripts.ModulePath = *modulePath
	}

	if err := text.Initialize(cfg.Display.PalettePath); err != nil {
		logger.Warning("Failed to load palette, using defaults", "path", cfg.Display.PalettePath, "error", err)
	}

	scripts, err := script.Load(cfg.Scripts.ModulePath)
	if err != nil {
		log.Fatalf("Failed to load Lua modules: %v", err)
	}
	logger.Info("Lua modules loaded", "path", cfg.Scripts.ModulePath, "modules", scripts.Modules())

	db, err := database.OpenWithConfig(cfg.Storage.Database())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Roster store initialized", "driver", cfg.Storage.Driver, "expiry", cfg.Storage.Expiry())

	if len(cfg.WebSocket.AllowedOrigins) == 0 {
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	} else if len(cfg.WebSocket.AllowedOrigins) == 1 && cfg.WebSocket.AllowedOrigins[0] == "*" {
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("WebSocket CORS policy", "allowed_origins", cfg.WebSocket.AllowedOrigins)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, db, scripts)
	logger.Info("Press Ctrl+C to shutdown")
	if err := srv.Start(ctx); err != nil {
		logger.Error("Server error", "error", err)
		db.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

// Package main implements the entry point for the SharePlate API server,
// which lets donors list surplus food and recipients request it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
)

// main is the entry point for the shareplate-api server.
// It loads configuration, sets up logging, optionally runs migrations, and
// otherwise wires the application and serves HTTP until a shutdown signal.
func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, up-by-one, down, redo, reset, status, version) and exit")
	verbose := flag.Bool("verbose", false, "log extra detail while migrating")
	validateMigrations := flag.Bool("validate-migrations", false, "check that every embedded migration is applied and exit")
	flag.Parse()

	cfg, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" || *validateMigrations {
		if err := handleMigrations(cfg, *migrateCmd, *verbose, *validateMigrations); err != nil {
			slog.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("Failed to create application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up the default logger.
// Returns the loaded config and any initialization error.
func initializeApp() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if _, err := logger.Setup(cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"auth_provider", cfg.Auth.Provider)

	return cfg, nil
}

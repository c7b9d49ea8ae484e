package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// migrationTimeout bounds a single migration command.
const migrationTimeout = 5 * time.Minute

// supportedMigrationCommands lists the goose commands exposed through -migrate.
var supportedMigrationCommands = map[string]struct{}{
	"up":        {},
	"up-by-one": {},
	"down":      {},
	"redo":      {},
	"reset":     {},
	"status":    {},
	"version":   {},
}

// ErrMigrationsNotApplied is returned by migration validation when the database
// lags behind the embedded migrations.
var ErrMigrationsNotApplied = errors.New("not all migrations have been applied")

// handleMigrations handles the execution of database migrations.
// It's called from main() when migration-related flags are detected.
// Returns an error if migrations fail or validation is unsuccessful.
func handleMigrations(cfg *config.Config, migrateCmd string, verbose bool, validateMigrations bool) error {
	if cfg.Database.Driver != driverPostgres {
		// The document store needs no schema; indexes are ensured at startup.
		return fmt.Errorf("migrations are only supported for the %s driver, got %q",
			driverPostgres, cfg.Database.Driver)
	}

	if validateMigrations {
		slog.Info("Validating applied migrations",
			"verbose", verbose,
			"mode", getExecutionMode())
		return withMigrationDB(cfg, verbose, func(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
			return verifyAppliedMigrations(ctx, db, logger)
		})
	}

	if migrateCmd == "" {
		return fmt.Errorf("no migration operation specified")
	}
	if _, ok := supportedMigrationCommands[migrateCmd]; !ok {
		return fmt.Errorf("unsupported migration command %q", migrateCmd)
	}

	slog.Info("Executing migrations",
		"command", migrateCmd,
		"verbose", verbose)

	return withMigrationDB(cfg, verbose, func(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
		startTime := time.Now()
		if err := goose.RunContext(ctx, migrateCmd, db, "."); err != nil {
			return fmt.Errorf("goose %s failed: %w", migrateCmd, err)
		}
		logger.Info("Migration operation completed",
			"operation", fmt.Sprintf("goose %s", migrateCmd),
			"duration_ms", time.Since(startTime).Milliseconds())
		return nil
	})
}

// withMigrationDB configures goose for the embedded migrations, opens the
// database and hands it to fn.
func withMigrationDB(
	cfg *config.Config,
	verbose bool,
	fn func(ctx context.Context, db *sql.DB, logger *slog.Logger) error,
) error {
	migrationLogger := slog.Default().With(
		slog.String("component", "migrations"),
		slog.String("mode", getExecutionMode()),
	)

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	migrationLogger.Info("Using database URL",
		"url", maskDatabaseURL(cfg.Database.URL),
		"host", extractHostFromURL(cfg.Database.URL))

	db, err := openPostgres(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			migrationLogger.Error("Error closing database connection", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("database ping timed out: %w (check network connectivity and server load)", err)
		}
		return fmt.Errorf("failed to connect to database: %w (check connection string and credentials)", err)
	}

	if verbose || isCIEnvironment() {
		logDatabaseInfo(ctx, db, migrationLogger)
	}

	return fn(ctx, db, migrationLogger)
}

// verifyAppliedMigrations checks that the database is at the newest embedded migration.
func verifyAppliedMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	available, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("failed to collect embedded migrations: %w", err)
	}

	latest, err := available.Last()
	if err != nil {
		return fmt.Errorf("failed to determine latest migration: %w", err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read database version: %w", err)
	}

	logger.Info("Migration versions",
		"database_version", current,
		"latest_version", latest.Version,
		"embedded_count", len(available))

	if current < latest.Version {
		return fmt.Errorf("%w: database at version %d, latest is %d",
			ErrMigrationsNotApplied, current, latest.Version)
	}

	logger.Info("Migration verification completed successfully")
	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/platform/mongodb"
	"github.com/phrazzld/shareplate-api/internal/platform/postgres"
	"github.com/phrazzld/shareplate-api/internal/service"
	"github.com/phrazzld/shareplate-api/internal/service/auth"
	"github.com/phrazzld/shareplate-api/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// Supported values of database.driver.
const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
)

// certFetchTimeout bounds each download of the identity provider's signing certificates.
const certFetchTimeout = 10 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger      *slog.Logger
	db          *sql.DB
	mongoClient *mongo.Client

	// Stores (using interfaces for proper abstraction)
	foodStore    store.FoodStore
	requestStore store.RequestStore
	decider      store.Decider

	// Service interfaces
	verifier       auth.Verifier
	foodService    service.FoodService
	requestService service.RequestService
}

// newApplication creates a new application instance with all dependencies initialized.
// The backing store is chosen by cfg.Database.Driver; its connection is owned by
// the application and released by cleanup.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.setupStores(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	verifier, err := auth.NewVerifier(cfg.Auth, &http.Client{Timeout: certFetchTimeout}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier
	logger.Info("Token verifier initialized", "provider", cfg.Auth.Provider)

	if err := app.setupServices(); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupStores connects to the configured backend and builds its stores and decider.
func (app *application) setupStores(ctx context.Context) error {
	switch app.config.Database.Driver {
	case driverPostgres:
		db, err := setupAppDatabase(ctx, app.config, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		app.foodStore = postgres.NewFoodStore(db, app.logger)
		app.requestStore = postgres.NewRequestStore(db, app.logger)
		app.decider = postgres.NewDecider(db, app.logger)

	case driverMongo:
		client, err := mongodb.Connect(ctx, app.config.Database.URL, app.logger)
		if err != nil {
			return err
		}
		app.mongoClient = client

		database := client.Database(app.config.Database.Name)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			return err
		}
		app.foodStore = mongodb.NewFoodStore(database.Collection(mongodb.FoodsCollection), app.logger)
		app.requestStore = mongodb.NewRequestStore(database.Collection(mongodb.RequestsCollection), app.logger)

		// Without a multi-document transaction the decision is applied as a
		// compensating saga.
		decider, err := service.NewSagaDecider(app.requestStore, app.foodStore, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create decider: %w", err)
		}
		app.decider = decider

	default:
		return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}

	app.logger.Info("Stores initialized", "driver", app.config.Database.Driver)
	return nil
}

// setupServices builds the domain services over the already initialized stores.
func (app *application) setupServices() error {
	var err error

	app.foodService, err = service.NewFoodService(app.foodStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create food service: %w", err)
	}

	app.requestService, err = service.NewRequestService(app.requestStore, app.foodStore, app.decider, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create request service: %w", err)
	}

	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	if app.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.mongoClient.Disconnect(ctx); err != nil {
			app.logger.Error("Error disconnecting from mongodb", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

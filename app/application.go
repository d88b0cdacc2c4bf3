// Package app wires configuration, storage, providers and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"weatherdash.app/api"
	"weatherdash.app/cache"
	"weatherdash.app/config"
	"weatherdash.app/database"
	"weatherdash.app/providers"
	"weatherdash.app/service"
	"weatherdash.app/storage"
)

// Application represents the main application with all its dependencies
type Application struct {
	config         *config.Config
	db             *gorm.DB
	store          storage.Store
	weatherService *service.WeatherService
	server         *api.Server
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeStorage() error {
	slog.Info("Initializing storage", "type", app.config.Cache.Type)

	// the database connection exists only for the gorm-backed store
	if app.config.Cache.Type == "database" {
		db, err := database.InitDB(app.config.Database)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			return fmt.Errorf("initialize database connection: %w", err)
		}

		if err := database.RunMigrations(db); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			return fmt.Errorf("run database migrations: %w", err)
		}
		app.db = db
	}

	store, err := storage.NewStore(&app.config.Cache, app.db)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		return fmt.Errorf("initialize key-value store: %w", err)
	}

	app.store = cache.NewInstrumentedStore(store, app.config.Cache.Type)
	slog.Info("Storage initialized successfully")
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	client, err := providers.NewClient(&app.config.Weather)
	if err != nil {
		return fmt.Errorf("create provider client: %w", err)
	}

	ttl := time.Duration(app.config.Weather.CacheTTLMinutes) * time.Minute
	weatherCache := cache.New(app.store, ttl)

	app.weatherService = service.NewWeatherService(client, weatherCache, app.store, &app.config.Weather)
	app.server = api.NewServer(app.config, app.weatherService)

	slog.Info("Services initialized successfully", "provider_info", client.GetProviderInfo())
	return nil
}

// Start restores durable state and begins serving
func (app *Application) Start() error {
	slog.Info("Starting application...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := app.weatherService.Bootstrap(ctx); err != nil {
		// a cold start with no upstream and no cache still serves;
		// the first request retries
		slog.Warn("Bootstrap fetch failed", "error", err)
	}

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}

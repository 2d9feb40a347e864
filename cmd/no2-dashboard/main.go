package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/no2-dashboard/internal/api/http"
	"github.com/i474232898/no2-dashboard/internal/config"
	"github.com/i474232898/no2-dashboard/internal/dashboard"
	"github.com/i474232898/no2-dashboard/internal/geocode"
	"github.com/i474232898/no2-dashboard/internal/imagery/backend"
	"github.com/i474232898/no2-dashboard/internal/scheduler"
	"github.com/i474232898/no2-dashboard/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound imagery backend calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Imagery backend with resilience (circuit breaker, optional backoff).
	client := backend.NewClient(httpClient, backend.Options{
		BaseURL:       cfg.BackendURL,
		APIKey:        cfg.BackendAPIKey,
		MaxRetries:    cfg.BackendMaxRetries,
		RetryInterval: cfg.BackendRetryInitial,
	})

	// Series cache with configured retention.
	var seriesStore dashboard.Store
	switch cfg.StoreDriver {
	case "sqlite":
		sqliteStore, err := store.OpenSQLite(cfg.StorePath, cfg.StoreMaxEntries, cfg.StoreMaxAge)
		if err != nil {
			log.Fatalf("failed to open series store: %v", err)
		}
		defer sqliteStore.Close()
		seriesStore = sqliteStore
	default:
		seriesStore = store.NewMemoryStore(cfg.StoreMaxEntries, cfg.StoreMaxAge)
	}

	// Place lookups need a Google API key.
	var geocoder dashboard.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = geocode.NewGoogle(cfg.GeocoderAPIKey)
	} else {
		log.Printf("INFO: GEOCODER_API_KEY not set, place lookups disabled")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	service, err := dashboard.NewService(startupCtx, client, seriesStore, geocoder, dashboard.Options{
		ModelCollection:     cfg.ModelCollection,
		SatelliteCollection: cfg.SatelliteCollection,
		NumDays:             cfg.NumDays,
		Default:             cfg.Default,
	})
	cancelStartup()
	if err != nil {
		log.Fatalf("failed to initialise dashboard: %v", err)
	}

	// Scheduler that keeps the series of popular locations warm.
	sched := scheduler.New(cfg.WarmLocations, cfg.WarmInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "no2-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "no2-dashboard",
			"window":  service.Window(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/swim-conditions/internal/api/http"
	"github.com/i474232898/swim-conditions/internal/conditions"
	"github.com/i474232898/swim-conditions/internal/conditions/providers"
	"github.com/i474232898/swim-conditions/internal/config"
	"github.com/i474232898/swim-conditions/internal/observability"
	"github.com/i474232898/swim-conditions/internal/scheduler"
	"github.com/i474232898/swim-conditions/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := observability.NewLogger(cfg.LogLevel)
	clock := clockwork.NewRealClock()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.LookupTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Snapshot store: Postgres when configured, in-memory otherwise.
	var snapStore conditions.SnapshotStore
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.Site.Name, cfg.DatabaseMaxConns)
		if err != nil {
			log.Fatalf("failed to open snapshot store: %v", err)
		}
		defer pg.Close()
		snapStore = pg
		slogger.Info("using postgres snapshot store")
	} else {
		snapStore = store.NewMemoryStore()
		slogger.Info("using in-memory snapshot store")
	}

	site := cfg.Site.Location

	// The water quality provider rediscovers its monitoring station once a
	// day; the cache lives here so a provider rebuild cannot reset it.
	stationCache := providers.NewStationCache(24 * time.Hour)

	sources := conditions.Sources{
		Tide:     providers.NewNoaaTidesProvider(httpClient, cfg.Site.Stations.Tide, clock),
		Weather:  providers.NewNWSProvider(httpClient, cfg.Site.Stations.Weather),
		Waves:    providers.NewOpenMeteoMarineProvider(httpClient, site),
		DamFlows: providers.NewUSGSDamProvider(httpClient, cfg.Site.Dams),
	}
	if cfg.Site.Stations.Current != "" {
		sources.Current = providers.NewNoaaCurrentsProvider(httpClient, cfg.Site.Stations.Current, site, clock)
	}
	if cfg.OpenWeatherAPIKey != "" {
		sources.Wind = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, site)
	}
	if cfg.Site.Stations.Buoy != "" {
		sources.WaveBackup = providers.NewNDBCProvider(httpClient, cfg.Site.Stations.Buoy)
	}
	if cfg.BeachWatchBaseURL != "" {
		sources.WaterQuality = providers.NewBeachWatchProvider(httpClient, cfg.BeachWatchBaseURL, site, stationCache, clock)
	}
	if cfg.OverflowFeedBaseURL != "" {
		sources.Overflows = providers.NewOverflowFeedProvider(httpClient, cfg.OverflowFeedBaseURL, clock)
	}

	orchestrator := conditions.NewOrchestrator(sources, conditions.OrchestratorConfig{
		Site:             site,
		DamStations:      cfg.Site.Dams,
		OverflowRadiusMi: cfg.Site.OverflowRadiusMi,
		LookupTimeout:    cfg.LookupTimeout,
	}, clock, slogger, metrics)

	service := conditions.NewService(orchestrator, snapStore, cfg.Site.TidePreference, clock, slogger, metrics)

	sched := scheduler.New(service, cfg.RefreshInterval, 2*time.Minute, slogger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "swim-conditions",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "swim-conditions",
			"site":    cfg.Site.Name,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, service)

	go func() {
		slogger.Info("listening", "port", cfg.Port, "site", cfg.Site.Name)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	slogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}
}

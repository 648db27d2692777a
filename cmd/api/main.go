package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/marinewx/seatemp/internal/adapters/http"
	natsadapter "github.com/marinewx/seatemp/internal/adapters/nats"
	"github.com/marinewx/seatemp/internal/adapters/postgres"
	"github.com/marinewx/seatemp/internal/adapters/valkey"
	"github.com/marinewx/seatemp/internal/core/ports"
	"github.com/marinewx/seatemp/internal/core/usecases"
	"github.com/marinewx/seatemp/internal/pkg/config"
	"github.com/marinewx/seatemp/internal/pkg/logging"
	"github.com/marinewx/seatemp/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("seatemp-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database: connects on first use so the server can start before the store is up
	db := postgres.NewProvider(cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	// Cache (optional)
	var reportCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, report cache disabled", "error", err)
	} else {
		reportCache = cache
		defer cache.Close()
	}

	// NATS (optional, readiness only)
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Repos
	weatherRepo := postgres.NewWeatherRepo(db)

	// Use cases
	deps := &http.Dependencies{
		SeaTemperatures: usecases.NewSeaTemperatureService(weatherRepo, cfg.Stream.BatchSize),
		Weather:         usecases.NewWeatherService(weatherRepo, reportCache),
		DB:              db,
		Cache:           cache,
		NATS:            nc,
	}

	// Fiber. A zero write timeout keeps long streams alive.
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Sea Temperature API",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Last-Event-ID",
		ExposeHeaders:    "Link, Deprecation, Sunset, X-Request-Id",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "batch_size", cfg.Stream.BatchSize)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

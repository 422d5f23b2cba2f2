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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/binroute/internal/adapters/http"
	natsadapter "github.com/samirrijal/binroute/internal/adapters/nats"
	"github.com/samirrijal/binroute/internal/adapters/nominatim"
	"github.com/samirrijal/binroute/internal/adapters/ors"
	"github.com/samirrijal/binroute/internal/adapters/postgres"
	"github.com/samirrijal/binroute/internal/adapters/valkey"
	"github.com/samirrijal/binroute/internal/core/usecases"
	"github.com/samirrijal/binroute/internal/pkg/config"
	"github.com/samirrijal/binroute/internal/pkg/logging"
	"github.com/samirrijal/binroute/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("binroute-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

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

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Session store
	sessions, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer sessions.Close()

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, bin events disabled", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Upstream clients
	routingFormat := ors.FormatGeoJSON
	if cfg.Routing.Format == "json" {
		routingFormat = ors.FormatJSON
	}
	router := ors.NewClient(cfg.Routing.APIKey,
		ors.WithBaseURL(cfg.Routing.BaseURL),
		ors.WithProfile(cfg.Routing.Profile),
		ors.WithFormat(routingFormat),
		ors.WithTimeout(time.Duration(cfg.Routing.TimeoutSeconds)*time.Second),
	)
	geocoderTimeout := time.Duration(cfg.Geocoder.TimeoutSeconds) * time.Second
	geocoder := nominatim.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent, geocoderTimeout)

	// Repos
	binRepo := postgres.NewBinRepo(db)
	userRepo := postgres.NewUserRepo(db)

	// Use cases
	binSvc := usecases.NewBinService(binRepo, nil)
	if publisher != nil {
		binSvc = usecases.NewBinService(binRepo, publisher)
	}
	placementSvc := usecases.NewPlacementService(router, geocoder, geocoderTimeout)
	sessionTTL := time.Duration(cfg.Valkey.SessionTTLMinutes) * time.Minute
	authSvc := usecases.NewAuthService(userRepo, sessions, sessionTTL)

	deps := &http.Dependencies{
		Bins:      binSvc,
		Placement: placementSvc,
		Auth:      authSvc,
		NATS:      natsConn,
		DB:        db,
		Sessions:  sessions,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "BinRoute API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/samirrijal/seascope/internal/adapters/classifier"
	"github.com/samirrijal/seascope/internal/adapters/http"
	natsadapter "github.com/samirrijal/seascope/internal/adapters/nats"
	"github.com/samirrijal/seascope/internal/adapters/nominatim"
	"github.com/samirrijal/seascope/internal/adapters/postgres"
	"github.com/samirrijal/seascope/internal/adapters/valkey"
	"github.com/samirrijal/seascope/internal/core/ports"
	"github.com/samirrijal/seascope/internal/core/usecases"
	"github.com/samirrijal/seascope/internal/pkg/config"
	"github.com/samirrijal/seascope/internal/pkg/logging"
	"github.com/samirrijal/seascope/internal/pkg/metrics"
	"github.com/samirrijal/seascope/internal/pkg/telemetry"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load("seascope-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

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

	deps := &http.Dependencies{
		Regions: http.RegionDefaults{RadiusKm: cfg.Geocoder.RadiusKm, Steps: cfg.Geocoder.Steps},
	}

	// Database: query log and catalog overrides. Sessions work without it.
	var (
		queryLog    ports.QueryLogRepository
		catalogRepo ports.CatalogRepository
	)
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, query log disabled", "error", err)
	} else {
		defer db.Close()
		queryLog = postgres.NewQueryLogRepo(db)
		catalogRepo = postgres.NewCatalogRepo(db)
		deps.DB = db
		deps.QueryLog = queryLog
		go reportPoolStats(ctx, db)
	}

	// Cache
	var cache *valkey.Cache
	if cfg.Cache.Enabled {
		cache, err = valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, responses will not be cached", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			deps.Cache = cache
		}
	}

	// NATS
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, session events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		deps.NATS = pub.Conn()
	}

	// Catalog
	catalog := usecases.NewCatalogService(catalogRepo)
	if err := catalog.Load(ctx); err != nil {
		slog.Warn("catalog load failed, using built-in entries", "error", err)
	}
	deps.Catalog = catalog

	// Classifier
	var cls ports.Classifier = classifier.NewClient(cfg.Classifier.BaseURL, cfg.Classifier.Timeout)
	if cache != nil {
		cls = classifier.NewCachedClassifier(cls, cache, cfg.Cache.TTLSeconds)
	}

	resolver := usecases.NewRegionResolver(nominatim.New(cfg.Geocoder.Server))
	deps.Resolver = resolver

	opts := usecases.DefaultOrchestratorOptions()
	opts.SuccessTTL = cfg.Status.SuccessTTL
	opts.ErrorTTL = cfg.Status.ErrorTTL

	sessions := usecases.NewSessionManager(usecases.OrchestratorDeps{
		Classifier: cls,
		Reconciler: usecases.NewReconciler(catalog),
		Resolver:   resolver,
		Publisher:  publisher,
		QueryLog:   queryLog,
		Options:    opts,
	}, cfg.Session.IdleTTL)
	deps.Sessions = sessions
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	// Render-complete signals from broker-connected renderers
	if pub != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeRenderComplete(ctx, sessions.HandleRenderComplete); err != nil {
				slog.Warn("render-complete subscription failed", "error", err)
			}
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Seascope API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "classifier", cfg.Classifier.BaseURL)
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

func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}

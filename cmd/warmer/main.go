package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/seascope/internal/adapters/classifier"
	"github.com/samirrijal/seascope/internal/adapters/postgres"
	"github.com/samirrijal/seascope/internal/adapters/valkey"
	"github.com/samirrijal/seascope/internal/core/ports"
	"github.com/samirrijal/seascope/internal/core/usecases"
	"github.com/samirrijal/seascope/internal/pkg/config"
	"github.com/samirrijal/seascope/internal/pkg/logging"
	"github.com/samirrijal/seascope/internal/pkg/telemetry"
	"github.com/samirrijal/seascope/internal/workflows"
)

// warmer runs the cache-warm worker. "warmer run" starts one warm workflow
// and waits for its result instead.
func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load("seascope-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if len(os.Args) > 1 && os.Args[1] == "run" {
		runOnce(c, cfg.Temporal.TaskQueue)
		return
	}

	ctx := context.Background()
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		log.Fatalf("valkey: %v", err)
	}
	defer cache.Close()

	var catalogRepo ports.CatalogRepository
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, warming built-in catalog only", "error", err)
	} else {
		defer db.Close()
		catalogRepo = postgres.NewCatalogRepo(db)
	}

	upstream := classifier.NewClient(cfg.Classifier.BaseURL, cfg.Classifier.Timeout)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.WarmCacheWorkflow)
	w.RegisterActivity(&workflows.WarmActivities{
		Catalog:   usecases.NewCatalogService(catalogRepo),
		Refresher: classifier.NewCachedClassifier(upstream, cache, cfg.Cache.TTLSeconds),
	})

	slog.Info("warm worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

func runOnce(c client.Client, taskQueue string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        "seascope-warm-" + time.Now().UTC().Format("20060102T150405"),
		TaskQueue: taskQueue,
	}, workflows.WarmCacheWorkflow, workflows.WarmInput{})
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}

	var res workflows.WarmResult
	if err := run.Get(ctx, &res); err != nil {
		log.Fatalf("workflow %s: %v", run.GetID(), err)
	}
	slog.Info("cache warm finished", "workflow_id", run.GetID(),
		"warmed", res.Warmed, "features", res.Features, "failed", res.Failed)
}

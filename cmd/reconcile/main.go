// cmd/reconcile/main.go
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/dangerclosesec/peloton/internal/auth"
	"github.com/dangerclosesec/peloton/internal/config"
	"github.com/dangerclosesec/peloton/internal/database"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/dangerclosesec/peloton/internal/service"
)

func main() {
	// Command line flags
	var (
		batchSize = flag.Int("batch-size", 0, "Number of rows to process in a batch (default from PERMIFY_BATCH_SIZE)")
		dryRun    = flag.Bool("dry-run", false, "Print what would be done without making changes")
		timeout   = flag.Duration("timeout", 30*time.Minute, "Maximum time to run reconciliation")
		watch     = flag.Bool("watch", false, "Keep running and reconcile every PERMIFY_RECONCILE_INTERVAL")
		schema    = flag.Bool("write-schema", false, "Write the permission schema before reconciling")
	)
	flag.Parse()

	// Initialize logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slogger := slog.New(logHandler)
	slog.SetDefault(slogger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Permify.Host == "" {
		slogger.Error("PERMIFY_HOST is required")
		os.Exit(1)
	}

	// Initialize database
	db, err := database.Open(context.Background(), cfg)
	if err != nil {
		slogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	store := repository.NewStore(db)

	permify, err := auth.NewPermifyService(cfg.Permify.Host,
		auth.WithTenant(cfg.Permify.TenantID),
		auth.WithSchemaVersion(cfg.Permify.SchemaVersion),
	)
	if err != nil {
		slogger.Error("failed to initialize Permify service", "error", err)
		os.Exit(1)
	}

	if *schema && !*dryRun {
		version, err := permify.WriteSchema(context.Background())
		if err != nil {
			slogger.Error("failed to write schema", "error", err)
			os.Exit(1)
		}
		slogger.Info("schema written", "version", version)
	}

	relationSync := service.NewRelationSyncService(permify, store, cfg.Permify.Interval, slogger)
	relationSync.SetBatchSize(cfg.Permify.BatchSize)
	if *batchSize > 0 {
		relationSync.SetBatchSize(*batchSize)
	}
	relationSync.SetDryRun(*dryRun)

	if *watch {
		slogger.Info("reconciling periodically", "interval", cfg.Permify.Interval)
		relationSync.Start()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt)
		<-shutdown

		relationSync.Stop()
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stats, err := relationSync.Reconcile(ctx)
	if err != nil {
		slogger.Error("reconciliation failed", "error", err)
		os.Exit(1)
	}
	if stats.Failed > 0 {
		slogger.Warn("reconciliation completed with failures", "relations", stats.Relations, "deleted", stats.Deleted, "failed", stats.Failed)
		os.Exit(2)
	}

	slogger.Info("reconciliation completed successfully", "relations", stats.Relations, "deleted", stats.Deleted)
}

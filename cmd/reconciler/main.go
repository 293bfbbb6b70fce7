// Package main is the entry point for the varicat reconciler: a background
// worker that keeps the invariable registry complete by sweeping all realized
// variant tuples whenever the catalog changes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"varicat/internal/domain/invariable"
	"varicat/internal/domain/reconcile"
	"varicat/internal/infrastructure/storage/postgres"
	"varicat/internal/infrastructure/storage/postgres/invariable_repo"
	"varicat/internal/infrastructure/storage/postgres/variant_repo"
	"varicat/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	log.Info("starting varicat reconciler")

	dsn := mustEnv("DATABASE_URL")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	variants := variant_repo.NewVariantRepo(txManager)
	invariables := invariable_repo.NewInvariableRepo(txManager)

	registry := invariable.NewRegistry(invariables, variants)
	sweep := reconcile.NewSweep(variants, registry).
		WithBatchSize(getEnvInt("RECONCILE_BATCH_SIZE", reconcile.DefaultBatchSize))

	worker := NewReconcileWorker(sweep, pool, dsn, log)
	worker.interval = getEnvDuration("RECONCILE_INTERVAL", time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down reconciler...")
	cancel()

	wg.Wait()
	log.Info("reconciler stopped")
}

// ReconcileWorker runs sweeps triggered by catalog change notifications,
// with a periodic full run as a safety net for missed notifications.
type ReconcileWorker struct {
	sweep    *reconcile.Sweep
	pool     *postgres.Pool
	dsn      string
	log      *logger.Logger
	interval time.Duration
}

func NewReconcileWorker(sweep *reconcile.Sweep, pool *postgres.Pool, dsn string, log *logger.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		sweep:    sweep,
		pool:     pool,
		dsn:      dsn,
		log:      log.WithComponent("reconciler"),
		interval: time.Hour,
	}
}

// Run blocks until ctx is cancelled.
func (w *ReconcileWorker) Run(ctx context.Context) {
	notify := make(chan struct{}, 1)

	listener := postgres.NewNotifyListener(w.dsn, postgres.RevisionChannel)
	go func() {
		for {
			if err := listener.Listen(ctx, notify); err != nil {
				if ctx.Err() != nil {
					return
				}
				w.log.Errorw("notification listener failed, reconnecting", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
				}
			}
		}
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(10 * time.Minute)
	defer statsTicker.Stop()

	// One full run at startup covers changes made while the worker was down.
	w.runSweep(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			w.runSweep(ctx, "notification")
		case <-ticker.C:
			w.runSweep(ctx, "interval")
		case <-statsTicker.C:
			postgres.LogPoolStats(ctx, w.pool.Pool)
		}
	}
}

func (w *ReconcileWorker) runSweep(ctx context.Context, trigger string) {
	start := time.Now()

	summary, err := w.sweep.Run(ctx, nil)
	if err != nil {
		if ctx.Err() != nil {
			w.log.Infow("sweep cancelled",
				"trigger", trigger,
				"processed", summary.Processed,
			)
			return
		}
		w.log.Errorw("sweep failed", "trigger", trigger, "error", err)
		return
	}

	w.log.Infow("sweep completed",
		"trigger", trigger,
		"processed", summary.Processed,
		"created", summary.Created,
		"failed", summary.Failed,
		"duration", time.Since(start).String(),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

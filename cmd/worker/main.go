package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"college/internal/audit"
	"college/internal/config"
	"college/internal/queue"
	"college/internal/revocation"
	"college/internal/store"
)

// Worker drains the auth audit queue into Postgres and prunes expired ledger rows.
func main() {
	cfg := config.Load()
	config.SetupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()

	if cfg.QueueBackend == "memory" {
		log.Warn("QUEUE_BACKEND=memory is drained inside the api process; worker only prunes")
	}

	if cfg.PruneSchedule != "" {
		ledger := revocation.NewLedger(db.Client, redisClient.Client)
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.PruneSchedule, func() {
			pruneLedger(ctx, ledger, cfg.PruneGrace)
		})
		if err != nil {
			log.WithError(err).WithField("schedule", cfg.PruneSchedule).Fatal("invalid prune schedule")
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		log.WithField("schedule", cfg.PruneSchedule).Info("ledger pruning scheduled")
	}

	if cfg.QueueBackend == "memory" {
		<-ctx.Done()
		log.Info("worker stopped")
		return
	}

	log.Info("worker started, waiting for audit events...")
	q := queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	if err := audit.Drain(ctx, q, audit.NewStore(db.Client)); err != nil {
		log.WithError(err).Error("audit drain failed")
	}

	log.Info("worker stopped")
}

// pruneLedger drops revocation rows whose tokens expired more than grace ago.
func pruneLedger(ctx context.Context, ledger *revocation.Ledger, grace time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := ledger.Prune(runCtx, time.Now().Add(-grace))
	if err != nil {
		log.WithError(err).Error("ledger prune failed")
		return
	}
	log.WithField("removed", n).Info("ledger pruned")
}

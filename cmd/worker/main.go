// Package main is the entry point for the viralvibes background worker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"viralvibes/internal/app/service"
	"viralvibes/internal/config"
	"viralvibes/internal/infra/backend/registry"
	"viralvibes/internal/infra/postgres"
	"viralvibes/internal/infra/postgres/migrations"
	infraredis "viralvibes/internal/infra/redis"
	"viralvibes/internal/logger"
	"viralvibes/internal/worker"
	"viralvibes/pkg/locker"
)

func main() {
	var (
		configPath   = pflag.String("config", "", "path to config file")
		once         = pflag.Bool("once", false, "run a single poll cycle and exit")
		listPending  = pflag.Bool("list-pending", false, "print pending jobs and exit")
		pollInterval = pflag.Duration("poll-interval", 0, "override worker.poll_interval")
		batchSize    = pflag.Int("batch-size", 0, "override worker.batch_size")
		maxRuntime   = pflag.Duration("max-runtime", 0, "override worker.max_runtime")
	)
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if *pollInterval > 0 {
		cfg.Worker.PollInterval = *pollInterval
	}
	if *batchSize > 0 {
		cfg.Worker.BatchSize = *batchSize
	}
	if *maxRuntime > 0 {
		cfg.Worker.MaxRuntime = *maxRuntime
	}

	log, err := logger.New("worker", cfg.Logger, cfg.Sentry)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting viralvibes worker",
		zap.String("env", cfg.App.Env),
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize),
	)

	db, err := postgres.NewConnection(cfg.Database, log.Logger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	store := postgres.NewStore(db, cfg.Database.StatsTTL)

	// Cancelled on SIGINT/SIGTERM; the job in flight finishes first.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *listPending {
		jobs, err := store.PendingJobs(ctx, 0)
		if err != nil {
			log.Fatal("failed to list pending jobs", zap.Error(err))
		}
		for _, j := range jobs {
			fmt.Printf("%s\t%s\tattempts=%d\tcreated=%s\n",
				j.ID, j.PlaylistID, j.Attempts, j.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("%d pending job(s)\n", len(jobs))
		os.Exit(0)
	}

	primary, fallback, err := registry.NewBackends(cfg.Backend, log.Logger)
	if err != nil {
		log.Fatal("failed to create backends", zap.Error(err))
	}
	defer func() { _ = primary.Close() }()
	if fallback != nil {
		defer func() { _ = fallback.Close() }()
	}

	var lock locker.DistributedLocker
	if cfg.Worker.UseLock {
		redisClient, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		lock = locker.NewRedisLocker(redisClient, log.Logger)
		log.Info("distributed poll lock enabled")
	}

	pipeline := service.NewPipeline(primary, fallback, cfg.Backend.MaxVideos, log.Logger)

	w := worker.New(store, pipeline, lock, worker.Config{
		PollInterval: cfg.Worker.PollInterval,
		BatchSize:    cfg.Worker.BatchSize,
		MaxRuntime:   cfg.Worker.MaxRuntime,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		JobTimeout:   cfg.Worker.JobTimeout,
		UseLock:      cfg.Worker.UseLock,
	}, log.Logger)

	if *once {
		if err := w.RunOnce(ctx); err != nil {
			log.Fatal("poll cycle failed", zap.Error(err))
		}
		log.Info("poll cycle completed")
		return
	}

	if err := w.Run(ctx); err != nil {
		log.Fatal("worker stopped with error", zap.Error(err))
	}
	log.Info("worker stopped")
}

// Package main is the entry point for the viralvibes API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"viralvibes/internal/app/service"
	"viralvibes/internal/config"
	"viralvibes/internal/domain"
	"viralvibes/internal/infra/backend/registry"
	"viralvibes/internal/infra/postgres"
	"viralvibes/internal/infra/postgres/migrations"
	infraredis "viralvibes/internal/infra/redis"
	"viralvibes/internal/logger"
	"viralvibes/internal/transport/httpserver"
	"viralvibes/internal/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New("api", cfg.Logger, cfg.Sentry)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting viralvibes api",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database, log.Logger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	// Run migrations
	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	store := postgres.NewStore(db, cfg.Database.StatsTTL)

	// Create metadata backends
	primary, fallback, err := registry.NewBackends(cfg.Backend, log.Logger)
	if err != nil {
		log.Fatal("failed to create backends", zap.Error(err))
	}
	defer func() { _ = primary.Close() }()
	if fallback != nil {
		defer func() { _ = fallback.Close() }()
		log.Info("fallback backend enabled", zap.String("name", fallback.Name()))
	}

	// Create response cache (optional, based on config)
	var cache domain.Cache
	if cfg.Cache.Enabled {
		ctx := context.Background()
		redisClient, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		cache = infraredis.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("response cache enabled",
			zap.Duration("stats_ttl", cfg.Cache.StatsTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("response cache disabled")
	}

	// Create services
	pipeline := service.NewPipeline(primary, fallback, cfg.Backend.MaxVideos, log.Logger)
	playlistSvc := service.NewPlaylistService(
		store,
		cache,
		pipeline,
		cfg.App.SyncTimeout,
		cfg.Cache.StatsTTL,
		log.Logger,
	)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		playlistSvc,
		db,
		v,
		log.Logger,
	)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

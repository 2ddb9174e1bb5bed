// Package main runs the playlist pipeline once for a single playlist,
// printing the report to stdout. Useful for debugging backends without
// the API or worker in the way.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"viralvibes/internal/app/service"
	"viralvibes/internal/config"
	"viralvibes/internal/domain"
	"viralvibes/internal/infra/backend/registry"
	"viralvibes/internal/infra/postgres"
	"viralvibes/internal/infra/postgres/migrations"
	"viralvibes/internal/logger"
)

func main() {
	var (
		configPath = pflag.String("config", "", "path to config file")
		rawURL     = pflag.String("url", "", "playlist URL or ID to process")
		backend    = pflag.String("backend", "", "override backend.primary (dataapi or scraper)")
		maxVideos  = pflag.Int("max-videos", -1, "override backend.max_videos (0 means all)")
		dryRun     = pflag.Bool("dry-run", false, "skip persistence, print the report only")
	)
	pflag.Parse()

	if *rawURL == "" {
		fmt.Fprintln(os.Stderr, "usage: process --url <playlist URL or ID> [flags]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if *backend != "" {
		cfg.Backend.Primary = *backend
	}
	if *maxVideos >= 0 {
		cfg.Backend.MaxVideos = *maxVideos
	}

	log, err := logger.New("process", cfg.Logger, cfg.Sentry)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	playlistID, err := domain.ParsePlaylistID(*rawURL)
	if err != nil {
		log.Fatal("invalid playlist reference", zap.Error(err))
	}

	primary, fallback, err := registry.NewBackends(cfg.Backend, log.Logger)
	if err != nil {
		log.Fatal("failed to create backends", zap.Error(err))
	}
	defer func() { _ = primary.Close() }()
	if fallback != nil {
		defer func() { _ = fallback.Close() }()
	}

	pipeline := service.NewPipeline(primary, fallback, cfg.Backend.MaxVideos, log.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Worker.JobTimeout)
	defer cancel()

	report, err := pipeline.Run(ctx, playlistID)
	if err != nil {
		log.Fatal("pipeline run failed", zap.String("playlist_id", playlistID), zap.Error(err))
	}

	if !*dryRun {
		db, err := postgres.NewConnection(cfg.Database, log.Logger)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer func() { _ = postgres.Close(db) }()

		if err := migrations.Run(db); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}

		store := postgres.NewStore(db, cfg.Database.StatsTTL)
		if err := store.SaveStats(ctx, report.Stats, report.Videos); err != nil {
			log.Fatal("failed to persist report", zap.Error(err))
		}
		log.Info("report persisted", zap.String("playlist_id", playlistID))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal("failed to encode report", zap.Error(err))
	}
}

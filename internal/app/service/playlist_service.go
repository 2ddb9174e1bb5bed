package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"viralvibes/internal/domain"
	infraredis "viralvibes/internal/infra/redis"
)

// Analyze outcome statuses.
const (
	StatusDone    = "done"
	StatusPending = "pending"
)

// AnalyzeResult is what the synchronous request path hands back: either a
// finished report or the queued job standing in for one.
type AnalyzeResult struct {
	Status string
	Cached bool

	// Report is set when Status is done.
	Report *domain.Report

	// Job is set when Status is pending.
	Job *domain.Job
}

// PlaylistService coordinates the synchronous request path: serve stored
// results when fresh, process inline when the budget allows, queue for the
// worker otherwise.
type PlaylistService struct {
	store       domain.Store
	cache       domain.Cache
	pipeline    *Pipeline
	syncTimeout time.Duration
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewPlaylistService creates the service. cache may be nil when the Redis
// layer is disabled; the store remains the source of truth either way.
func NewPlaylistService(
	store domain.Store,
	cache domain.Cache,
	pipeline *Pipeline,
	syncTimeout time.Duration,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *PlaylistService {
	return &PlaylistService{
		store:       store,
		cache:       cache,
		pipeline:    pipeline,
		syncTimeout: syncTimeout,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// Analyze resolves a playlist reference to a report. Lookup order: response
// cache, stored stats, inline pipeline run within the sync budget. When the
// inline run times out or hits a retryable upstream condition, the playlist
// is queued and a pending result is returned instead of an error.
func (s *PlaylistService) Analyze(ctx context.Context, rawPlaylist string) (*AnalyzeResult, error) {
	playlistID, err := domain.ParsePlaylistID(rawPlaylist)
	if err != nil {
		return nil, err
	}

	if result := s.fromCache(ctx, playlistID); result != nil {
		return result, nil
	}

	if result, err := s.fromStore(ctx, playlistID); err != nil {
		return nil, err
	} else if result != nil {
		return result, nil
	}

	return s.analyzeInline(ctx, playlistID)
}

// fromCache serves a report assembled from the response cache. Cache
// failures degrade to a miss; the store is authoritative.
func (s *PlaylistService) fromCache(ctx context.Context, playlistID string) *AnalyzeResult {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, infraredis.StatsKey(playlistID))
	if err != nil || data == nil {
		return nil
	}

	var stats domain.PlaylistStats
	if err := json.Unmarshal(data, &stats); err != nil {
		s.logger.Warn("discarding undecodable cache entry",
			zap.String("playlist_id", playlistID),
			zap.Error(err),
		)
		_ = s.cache.Delete(ctx, infraredis.StatsKey(playlistID))

		return nil
	}

	videos, err := s.store.PlaylistVideos(ctx, playlistID)
	if err != nil {
		s.logger.Warn("loading videos for cached stats failed",
			zap.String("playlist_id", playlistID),
			zap.Error(err),
		)
		videos = nil
	}

	return &AnalyzeResult{
		Status: StatusDone,
		Cached: true,
		Report: &domain.Report{
			Playlist: playlistInfoFromStats(&stats),
			Videos:   videos,
			Stats:    &stats,
		},
	}
}

// fromStore serves a report from stored stats when they are still fresh.
func (s *PlaylistService) fromStore(ctx context.Context, playlistID string) (*AnalyzeResult, error) {
	stats, err := s.store.GetCachedStats(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, nil
	}

	videos, err := s.store.PlaylistVideos(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	s.fillCache(ctx, stats)

	return &AnalyzeResult{
		Status: StatusDone,
		Cached: true,
		Report: &domain.Report{
			Playlist: playlistInfoFromStats(stats),
			Videos:   videos,
			Stats:    stats,
		},
	}, nil
}

// analyzeInline runs the pipeline within the sync budget. Timeouts and
// retryable upstream failures queue the playlist for the worker.
func (s *PlaylistService) analyzeInline(ctx context.Context, playlistID string) (*AnalyzeResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.syncTimeout)
	defer cancel()

	report, err := s.pipeline.Run(runCtx, playlistID)
	if err != nil {
		if !shouldQueue(runCtx, err) {
			return nil, err
		}

		s.logger.Info("inline run deferred to worker",
			zap.String("playlist_id", playlistID),
			zap.Error(err),
		)

		job, enqueueErr := s.store.Enqueue(ctx, playlistID)
		if enqueueErr != nil {
			return nil, enqueueErr
		}

		return &AnalyzeResult{Status: StatusPending, Job: job}, nil
	}

	if err := s.store.SaveStats(ctx, report.Stats, report.Videos); err != nil {
		// The report is already in hand; losing the write costs only a
		// recompute on the next request.
		s.logger.Error("persisting inline results failed",
			zap.String("playlist_id", playlistID),
			zap.Error(err),
		)
	} else {
		s.fillCache(ctx, report.Stats)
	}

	return &AnalyzeResult{Status: StatusDone, Report: report}, nil
}

// Stats returns stored stats for a playlist, with per-video rows when
// includeVideos is set. Absent or stale stats surface as NotFoundError.
func (s *PlaylistService) Stats(ctx context.Context, rawPlaylist string, includeVideos bool) (*domain.PlaylistStats, []domain.EnrichedVideo, error) {
	playlistID, err := domain.ParsePlaylistID(rawPlaylist)
	if err != nil {
		return nil, nil, err
	}

	stats, err := s.store.GetCachedStats(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}
	if stats == nil {
		return nil, nil, &domain.NotFoundError{PlaylistID: playlistID}
	}

	if !includeVideos {
		return stats, nil, nil
	}

	videos, err := s.store.PlaylistVideos(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}

	return stats, videos, nil
}

// PendingJobs lists jobs awaiting the worker, oldest first.
func (s *PlaylistService) PendingJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	return s.store.PendingJobs(ctx, limit)
}

// fillCache stores serialized stats in the response cache, best effort.
func (s *PlaylistService) fillCache(ctx context.Context, stats *domain.PlaylistStats) {
	if s.cache == nil || stats == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, infraredis.StatsKey(stats.PlaylistID), data, s.cacheTTL); err != nil {
		s.logger.Warn("cache fill failed",
			zap.String("playlist_id", stats.PlaylistID),
			zap.Error(err),
		)
	}
}

// shouldQueue decides whether a failed inline run is worth deferring to the
// worker. Validation and not-found errors are final; timeouts and retryable
// upstream conditions are not.
func shouldQueue(runCtx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) && runCtx.Err() != nil {
		return true
	}

	return domain.Retryable(err)
}

func playlistInfoFromStats(stats *domain.PlaylistStats) domain.PlaylistInfo {
	return domain.PlaylistInfo{
		ID:               stats.PlaylistID,
		Title:            stats.Title,
		ChannelName:      stats.ChannelName,
		ChannelThumbnail: stats.ChannelThumbnail,
		DeclaredCount:    stats.DeclaredCount,
	}
}

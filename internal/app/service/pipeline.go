package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"viralvibes/internal/domain"
)

// Pipeline runs one playlist through fetch, normalize, and enrich. The
// backend behind it is interchangeable; everything downstream of the
// normalizer sees identical canonical records regardless of which backend
// produced them.
type Pipeline struct {
	primary   domain.Backend
	fallback  domain.Backend
	maxVideos int
	logger    *zap.Logger
}

// NewPipeline creates a pipeline over the given backends. fallback may be
// nil, in which case quota exhaustion on the primary is terminal for the
// attempt.
func NewPipeline(primary, fallback domain.Backend, maxVideos int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		primary:   primary,
		fallback:  fallback,
		maxVideos: maxVideos,
		logger:    logger,
	}
}

// Run produces the full report for a playlist. A mid-playlist upstream
// failure degrades to a partial report instead of failing the run; quota
// exhaustion on the primary backend falls through to the fallback when one
// is configured.
func (p *Pipeline) Run(ctx context.Context, playlistID string) (*domain.Report, error) {
	result, partial, err := p.fetch(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	videos := domain.Normalize(result.Videos)
	enriched, stats := domain.Enrich(videos, result.Playlist, time.Now().UTC())
	if partial {
		stats.PartialFetch = true
	}

	p.logger.Info("pipeline run completed",
		zap.String("playlist_id", playlistID),
		zap.Int("videos", len(enriched)),
		zap.Bool("partial", stats.PartialFetch),
	)

	return &domain.Report{
		Playlist: result.Playlist,
		Videos:   enriched,
		Stats:    stats,
	}, nil
}

// fetch tries the primary backend and falls back on rate limiting. The bool
// result marks a partial fetch that should be flagged in the stats.
func (p *Pipeline) fetch(ctx context.Context, playlistID string) (*domain.FetchResult, bool, error) {
	opts := domain.FetchOptions{MaxVideos: p.maxVideos}

	result, err := p.primary.Fetch(ctx, playlistID, opts)
	if err == nil {
		return result, false, nil
	}

	if partial := usablePartial(result, err); partial {
		return result, true, nil
	}

	var rl *domain.RateLimitedError
	if errors.As(err, &rl) && p.fallback != nil {
		p.logger.Warn("primary backend rate limited, falling back",
			zap.String("primary", p.primary.Name()),
			zap.String("fallback", p.fallback.Name()),
			zap.String("playlist_id", playlistID),
		)

		result, err = p.fallback.Fetch(ctx, playlistID, opts)
		if err == nil {
			return result, false, nil
		}
		if partial := usablePartial(result, err); partial {
			return result, true, nil
		}
	}

	return nil, false, err
}

// usablePartial reports whether a fetch error still delivered enough rows to
// build a degraded report from.
func usablePartial(result *domain.FetchResult, err error) bool {
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}

	return result != nil && len(result.Videos) > 0
}

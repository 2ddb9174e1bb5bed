package domain

import (
	"context"
	"time"
)

// Backend is a pluggable source of raw per-video playlist metadata.
// Implementations: internal/infra/backend/dataapi, internal/infra/backend/scraper.
//
// Backends are drop-in substitutable: callers select one by configured name
// and nothing downstream of the normalizer depends on which backend produced
// the data.
type Backend interface {
	// Name returns the unique identifier for this backend.
	Name() string

	// Fetch retrieves the playlist's metadata and its raw video records in
	// playlist order. Failure modes:
	//   - *NotFoundError: the identifier does not resolve to an accessible playlist
	//   - *RateLimitedError: upstream throttling or quota exhaustion, retryable
	//   - *UpstreamError: any other transport/parsing failure; the partial
	//     FetchResult retrieved so far is returned alongside the error
	Fetch(ctx context.Context, playlistID string, opts FetchOptions) (*FetchResult, error)

	// HealthCheck verifies the upstream source is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources, including any temporary credential
	// material written during fetching.
	Close() error
}

// Store is the job queue and statistics cache contract.
// Implementation: internal/infra/postgres.
type Store interface {
	// ClaimPending atomically transitions up to limit pending jobs to
	// processing and returns them, oldest first. At most one caller may
	// claim a given job: concurrent workers never receive the same job.
	ClaimPending(ctx context.Context, limit int) ([]Job, error)

	// MarkDone persists the run's results and transitions the job to done.
	MarkDone(ctx context.Context, jobID string, stats *PlaylistStats, videos []EnrichedVideo) error

	// MarkFailed records the error text and increments the attempt counter.
	// With retry true the job returns to pending for a future poll cycle;
	// otherwise it transitions to failed terminally.
	MarkFailed(ctx context.Context, jobID string, errText string, retry bool) error

	// Release returns a claimed job to pending without recording an
	// attempt. Used when a worker stops before starting the job.
	Release(ctx context.Context, jobID string) error

	// SaveStats upserts a playlist's aggregate stats and per-video rows.
	// Used directly by the synchronous path; MarkDone goes through it too.
	SaveStats(ctx context.Context, stats *PlaylistStats, videos []EnrichedVideo) error

	// GetCachedStats returns the most recent fresh stats for a playlist,
	// or (nil, nil) when none exist. Staleness policy belongs to the
	// implementation.
	GetCachedStats(ctx context.Context, playlistID string) (*PlaylistStats, error)

	// PlaylistVideos returns the stored per-video rows for a playlist in
	// rank order, or an empty slice when none exist.
	PlaylistVideos(ctx context.Context, playlistID string) ([]EnrichedVideo, error)

	// Enqueue creates a pending job for the playlist. While a pending or
	// processing job already exists for the same playlist, that job is
	// returned instead of creating a duplicate.
	Enqueue(ctx context.Context, playlistID string) (*Job, error)

	// PendingJobs lists jobs awaiting processing, oldest first.
	PendingJobs(ctx context.Context, limit int) ([]Job, error)
}

// Cache is a byte-level cache with TTL semantics, used by the synchronous
// request path in front of the store. Implementation: internal/infra/redis.
type Cache interface {
	// Get retrieves a value by key. Returns nil when not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

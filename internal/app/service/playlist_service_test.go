package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"viralvibes/internal/domain"
	infraredis "viralvibes/internal/infra/redis"
)

// fakeStore is an in-memory domain.Store for service tests.
type fakeStore struct {
	stats     map[string]*domain.PlaylistStats
	videos    map[string][]domain.EnrichedVideo
	jobs      []domain.Job
	saveCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stats:  make(map[string]*domain.PlaylistStats),
		videos: make(map[string][]domain.EnrichedVideo),
	}
}

func (f *fakeStore) ClaimPending(_ context.Context, limit int) ([]domain.Job, error) {
	var claimed []domain.Job
	for i := range f.jobs {
		if len(claimed) >= limit {
			break
		}
		if f.jobs[i].Status == domain.JobStatusPending {
			f.jobs[i].Status = domain.JobStatusProcessing
			claimed = append(claimed, f.jobs[i])
		}
	}

	return claimed, nil
}

func (f *fakeStore) MarkDone(_ context.Context, jobID string, stats *domain.PlaylistStats, videos []domain.EnrichedVideo) error {
	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs[i].Status = domain.JobStatusDone
		}
	}
	if stats != nil {
		f.stats[stats.PlaylistID] = stats
		f.videos[stats.PlaylistID] = videos
	}

	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, jobID string, errText string, retry bool) error {
	for i := range f.jobs {
		if f.jobs[i].ID == jobID {
			f.jobs[i].Attempts++
			f.jobs[i].LastError = errText
			if retry {
				f.jobs[i].Status = domain.JobStatusPending
			} else {
				f.jobs[i].Status = domain.JobStatusFailed
			}
		}
	}

	return nil
}

func (f *fakeStore) Release(_ context.Context, jobID string) error {
	for i := range f.jobs {
		if f.jobs[i].ID == jobID && f.jobs[i].Status == domain.JobStatusProcessing {
			f.jobs[i].Status = domain.JobStatusPending
		}
	}

	return nil
}

func (f *fakeStore) SaveStats(_ context.Context, stats *domain.PlaylistStats, videos []domain.EnrichedVideo) error {
	f.saveCalls++
	f.stats[stats.PlaylistID] = stats
	f.videos[stats.PlaylistID] = videos

	return nil
}

func (f *fakeStore) GetCachedStats(_ context.Context, playlistID string) (*domain.PlaylistStats, error) {
	return f.stats[playlistID], nil
}

func (f *fakeStore) PlaylistVideos(_ context.Context, playlistID string) ([]domain.EnrichedVideo, error) {
	return f.videos[playlistID], nil
}

func (f *fakeStore) Enqueue(_ context.Context, playlistID string) (*domain.Job, error) {
	for i := range f.jobs {
		if f.jobs[i].PlaylistID == playlistID && !f.jobs[i].Terminal() {
			return &f.jobs[i], nil
		}
	}

	job := domain.Job{
		ID:         "job-" + playlistID,
		PlaylistID: playlistID,
		Status:     domain.JobStatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	f.jobs = append(f.jobs, job)

	return &job, nil
}

func (f *fakeStore) PendingJobs(_ context.Context, limit int) ([]domain.Job, error) {
	var pending []domain.Job
	for _, job := range f.jobs {
		if len(pending) >= limit {
			break
		}
		if job.Status == domain.JobStatusPending {
			pending = append(pending, job)
		}
	}

	return pending, nil
}

// fakeCache is an in-memory domain.Cache.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	return f.entries[key], nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.entries[key] = value

	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.entries, key)

	return nil
}

func newTestService(store *fakeStore, cache domain.Cache, backend *fakeBackend) *PlaylistService {
	pipeline := NewPipeline(backend, nil, 0, zap.NewNop())

	return NewPlaylistService(store, cache, pipeline, 5*time.Second, 15*time.Minute, zap.NewNop())
}

func TestAnalyze_InlineRun(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	backend := &fakeBackend{name: "dataapi", result: fetchResult(2, "vid-1", "vid-2")}
	svc := newTestService(store, cache, backend)

	result, err := svc.Analyze(context.Background(), "PLabc")

	require.NoError(t, err)
	assert.Equal(t, StatusDone, result.Status)
	assert.False(t, result.Cached)
	require.NotNil(t, result.Report)
	assert.Len(t, result.Report.Videos, 2)

	// Results were persisted and the cache was filled.
	assert.Equal(t, 1, store.saveCalls)
	assert.Contains(t, cache.entries, infraredis.StatsKey("PLabc"))
}

func TestAnalyze_ServesStoredStats(t *testing.T) {
	store := newFakeStore()
	store.stats["PLabc"] = &domain.PlaylistStats{PlaylistID: "PLabc", TotalViews: 500}
	store.videos["PLabc"] = []domain.EnrichedVideo{
		{Video: domain.Video{Rank: 1, ID: "vid-1"}},
	}
	backend := &fakeBackend{name: "dataapi", result: fetchResult(1, "vid-1")}
	svc := newTestService(store, newFakeCache(), backend)

	result, err := svc.Analyze(context.Background(), "PLabc")

	require.NoError(t, err)
	assert.Equal(t, StatusDone, result.Status)
	assert.True(t, result.Cached)
	assert.Equal(t, int64(500), result.Report.Stats.TotalViews)
	assert.Zero(t, backend.fetches, "fresh stored stats must not trigger a fetch")
}

func TestAnalyze_ServesResponseCache(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	payload, err := json.Marshal(&domain.PlaylistStats{PlaylistID: "PLabc", TotalViews: 700})
	require.NoError(t, err)
	cache.entries[infraredis.StatsKey("PLabc")] = payload

	backend := &fakeBackend{name: "dataapi", result: fetchResult(1, "vid-1")}
	svc := newTestService(store, cache, backend)

	result, err := svc.Analyze(context.Background(), "PLabc")

	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, int64(700), result.Report.Stats.TotalViews)
	assert.Zero(t, backend.fetches)
}

func TestAnalyze_QueuesOnRateLimit(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "dataapi", err: &domain.RateLimitedError{Backend: "dataapi"}}
	svc := newTestService(store, newFakeCache(), backend)

	result, err := svc.Analyze(context.Background(), "PLabc")

	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.Status)
	require.NotNil(t, result.Job)
	assert.Equal(t, "PLabc", result.Job.PlaylistID)
	assert.Equal(t, domain.JobStatusPending, result.Job.Status)

	// A second request reuses the queued job.
	again, err := svc.Analyze(context.Background(), "PLabc")
	require.NoError(t, err)
	assert.Equal(t, result.Job.ID, again.Job.ID)
}

func TestAnalyze_ValidationErrorIsFinal(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "dataapi", result: fetchResult(1, "vid-1")}
	svc := newTestService(store, newFakeCache(), backend)

	_, err := svc.Analyze(context.Background(), "!")

	require.Error(t, err)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, store.jobs, "invalid input must not be queued")
}

func TestAnalyze_NotFoundIsFinal(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "dataapi", err: &domain.NotFoundError{PlaylistID: "PLabc"}}
	svc := newTestService(store, newFakeCache(), backend)

	_, err := svc.Analyze(context.Background(), "PLabc")

	require.Error(t, err)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Empty(t, store.jobs)
}

func TestStats_MissingIsNotFound(t *testing.T) {
	store := newFakeStore()
	backend := &fakeBackend{name: "dataapi", result: fetchResult(1, "vid-1")}
	svc := newTestService(store, newFakeCache(), backend)

	_, _, err := svc.Stats(context.Background(), "PLmissing", false)

	require.Error(t, err)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestStats_IncludeVideos(t *testing.T) {
	store := newFakeStore()
	store.stats["PLabc"] = &domain.PlaylistStats{PlaylistID: "PLabc"}
	store.videos["PLabc"] = []domain.EnrichedVideo{
		{Video: domain.Video{Rank: 1, ID: "vid-1"}},
		{Video: domain.Video{Rank: 2, ID: "vid-2"}},
	}
	backend := &fakeBackend{name: "dataapi"}
	svc := newTestService(store, newFakeCache(), backend)

	stats, videos, err := svc.Stats(context.Background(), "PLabc", true)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Len(t, videos, 2)

	stats, videos, err = svc.Stats(context.Background(), "PLabc", false)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Nil(t, videos)
}

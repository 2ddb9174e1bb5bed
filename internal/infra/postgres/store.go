package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"viralvibes/internal/domain"
)

// statsColumns are the columns refreshed when a stats row is replaced.
var statsColumns = []string{
	"title", "channel_name", "channel_thumbnail",
	"video_count", "declared_count", "partial_fetch",
	"total_views", "total_likes", "total_comments",
	"avg_views", "avg_likes", "avg_comments", "avg_engagement",
	"top_video_ids", "bottom_video_ids",
	"computed_at", "updated_at",
}

// videoColumns are the columns refreshed when a video row is replaced.
var videoColumns = []string{
	"rank", "title", "description", "uploader", "thumbnail",
	"views", "likes", "dislikes", "comments",
	"duration_sec", "published_at", "tags",
	"category_id", "category_name", "definition", "dimension",
	"caption", "licensed",
	"engagement_rate", "controversy", "updated_at",
}

// Store implements domain.Store using PostgreSQL.
type Store struct {
	db       *gorm.DB
	statsTTL time.Duration
}

// NewStore creates a PostgreSQL store. statsTTL is the staleness window for
// GetCachedStats; zero means stored stats never expire.
func NewStore(db *gorm.DB, statsTTL time.Duration) *Store {
	return &Store{db: db, statsTTL: statsTTL}
}

// ClaimPending atomically moves up to limit pending jobs to processing and
// returns them, oldest first. SKIP LOCKED keeps concurrent workers from ever
// claiming the same row.
func (s *Store) ClaimPending(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		return nil, nil
	}

	now := time.Now().UTC()

	var models []JobModel
	err := s.db.WithContext(ctx).Raw(`
		UPDATE playlist_jobs
		SET status = ?, started_at = ?, updated_at = ?
		WHERE id IN (
			SELECT id FROM playlist_jobs
			WHERE status = ?
			ORDER BY created_at ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		string(domain.JobStatusProcessing), now, now,
		string(domain.JobStatusPending), limit,
	).Scan(&models).Error
	if err != nil {
		return nil, &domain.StoreError{Op: "claim_pending", Err: err}
	}

	jobs := make([]domain.Job, len(models))
	for i := range models {
		jobs[i] = models[i].ToDomain()
	}

	// RETURNING order is unspecified; restore oldest-first.
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].CreatedAt.Before(jobs[j-1].CreatedAt); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}

	return jobs, nil
}

// MarkDone persists the run's results and finalizes the job in one
// transaction.
func (s *Store) MarkDone(ctx context.Context, jobID string, stats *domain.PlaylistStats, videos []domain.EnrichedVideo) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job JobModel
		if err := tx.Where("id = ?", jobID).First(&job).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":      string(domain.JobStatusDone),
			"last_error":  "",
			"finished_at": now,
			"updated_at":  now,
		}
		if job.StartedAt != nil {
			updates["processing_time_ms"] = now.Sub(*job.StartedAt).Milliseconds()
		}

		if err := tx.Model(&JobModel{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
			return err
		}

		return saveStatsTx(tx, stats, videos)
	})
	if err != nil {
		return &domain.StoreError{Op: "mark_done", Err: err}
	}

	return nil
}

// MarkFailed records the failure and either requeues the job or finalizes it.
func (s *Store) MarkFailed(ctx context.Context, jobID string, errText string, retry bool) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job JobModel
		if err := tx.Where("id = ?", jobID).First(&job).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		status := domain.JobStatusFailed
		if retry {
			status = domain.JobStatusPending
		}

		updates := map[string]any{
			"status":     string(status),
			"attempts":   job.Attempts + 1,
			"last_error": errText,
			"updated_at": now,
		}
		if job.StartedAt != nil {
			updates["processing_time_ms"] = now.Sub(*job.StartedAt).Milliseconds()
		}
		if !retry {
			updates["finished_at"] = now
		}

		return tx.Model(&JobModel{}).Where("id = ?", jobID).Updates(updates).Error
	})
	if err != nil {
		return &domain.StoreError{Op: "mark_failed", Err: err}
	}

	return nil
}

// Release returns a claimed job to pending without recording an attempt.
func (s *Store) Release(ctx context.Context, jobID string) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Model(&JobModel{}).
		Where("id = ? AND status = ?", jobID, string(domain.JobStatusProcessing)).
		Updates(map[string]any{
			"status":     string(domain.JobStatusPending),
			"started_at": nil,
			"updated_at": now,
		}).Error
	if err != nil {
		return &domain.StoreError{Op: "release", Err: err}
	}

	return nil
}

// SaveStats upserts the playlist's aggregate row and per-video rows.
func (s *Store) SaveStats(ctx context.Context, stats *domain.PlaylistStats, videos []domain.EnrichedVideo) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveStatsTx(tx, stats, videos)
	})
	if err != nil {
		return &domain.StoreError{Op: "save_stats", Err: err}
	}

	return nil
}

func saveStatsTx(tx *gorm.DB, stats *domain.PlaylistStats, videos []domain.EnrichedVideo) error {
	if stats == nil {
		return nil
	}

	model := statsFromDomain(stats)
	model.UpdatedAt = time.Now().UTC()

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "playlist_id"}},
		DoUpdates: clause.AssignmentColumns(statsColumns),
	}).Create(model).Error
	if err != nil {
		return err
	}

	if len(videos) == 0 {
		return nil
	}

	models := make([]*VideoModel, len(videos))
	for i := range videos {
		models[i] = videoFromDomain(stats.PlaylistID, &videos[i])
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "playlist_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns(videoColumns),
	}).CreateInBatches(models, 100).Error
}

// GetCachedStats returns the stored stats for a playlist when they are still
// inside the staleness window, or (nil, nil) otherwise.
func (s *Store) GetCachedStats(ctx context.Context, playlistID string) (*domain.PlaylistStats, error) {
	var model StatsModel
	err := s.db.WithContext(ctx).Where("playlist_id = ?", playlistID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, &domain.StoreError{Op: "get_cached_stats", Err: err}
	}

	if s.statsTTL > 0 && time.Since(model.ComputedAt) > s.statsTTL {
		return nil, nil
	}

	return model.ToDomain(), nil
}

// PlaylistVideos returns the stored per-video rows in rank order.
func (s *Store) PlaylistVideos(ctx context.Context, playlistID string) ([]domain.EnrichedVideo, error) {
	var models []VideoModel
	err := s.db.WithContext(ctx).
		Where("playlist_id = ?", playlistID).
		Order("rank ASC").
		Find(&models).Error
	if err != nil {
		return nil, &domain.StoreError{Op: "playlist_videos", Err: err}
	}

	videos := make([]domain.EnrichedVideo, len(models))
	for i := range models {
		videos[i] = models[i].ToDomain()
	}

	return videos, nil
}

// Enqueue creates a pending job unless an active one already exists for the
// playlist. A partial unique index on active jobs backs the race window, so
// a concurrent duplicate insert loses and re-reads the winner's row.
func (s *Store) Enqueue(ctx context.Context, playlistID string) (*domain.Job, error) {
	if existing, err := s.activeJob(ctx, playlistID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	model := JobModel{
		ID:         uuid.NewString(),
		PlaylistID: playlistID,
		Status:     string(domain.JobStatusPending),
	}

	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		// Lost the race to a concurrent enqueue of the same playlist.
		if existing, findErr := s.activeJob(ctx, playlistID); findErr == nil && existing != nil {
			return existing, nil
		}

		return nil, &domain.StoreError{Op: "enqueue", Err: err}
	}

	job := model.ToDomain()

	return &job, nil
}

func (s *Store) activeJob(ctx context.Context, playlistID string) (*domain.Job, error) {
	var model JobModel
	err := s.db.WithContext(ctx).
		Where("playlist_id = ? AND status IN ?", playlistID,
			[]string{string(domain.JobStatusPending), string(domain.JobStatusProcessing)}).
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, &domain.StoreError{Op: "active_job", Err: err}
	}

	job := model.ToDomain()

	return &job, nil
}

// PendingJobs lists jobs awaiting processing, oldest first.
func (s *Store) PendingJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []JobModel
	err := s.db.WithContext(ctx).
		Where("status = ?", string(domain.JobStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, &domain.StoreError{Op: "pending_jobs", Err: err}
	}

	jobs := make([]domain.Job, len(models))
	for i := range models {
		jobs[i] = models[i].ToDomain()
	}

	return jobs, nil
}

package postgres

import (
	"time"

	"viralvibes/internal/domain"

	"github.com/lib/pq"
)

// JobModel is the GORM model for the playlist_jobs table.
type JobModel struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	PlaylistID string `gorm:"type:varchar(100);not null;index"`
	Status     string `gorm:"type:varchar(20);not null;index"`

	Attempts  int    `gorm:"default:0"`
	LastError string `gorm:"type:text"`

	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
	StartedAt  *time.Time
	FinishedAt *time.Time

	ProcessingTimeMS int64 `gorm:"column:processing_time_ms;default:0"`
}

// TableName returns the table name for JobModel.
func (JobModel) TableName() string {
	return "playlist_jobs"
}

// ToDomain converts JobModel to domain.Job.
func (m *JobModel) ToDomain() domain.Job {
	return domain.Job{
		ID:               m.ID,
		PlaylistID:       m.PlaylistID,
		Status:           domain.JobStatus(m.Status),
		Attempts:         m.Attempts,
		LastError:        m.LastError,
		CreatedAt:        m.CreatedAt,
		StartedAt:        m.StartedAt,
		FinishedAt:       m.FinishedAt,
		ProcessingTimeMS: m.ProcessingTimeMS,
	}
}

// StatsModel is the GORM model for the playlist_stats table. One row per
// playlist, replaced on every successful run.
type StatsModel struct {
	PlaylistID       string `gorm:"type:varchar(100);primaryKey"`
	Title            string `gorm:"type:varchar(500)"`
	ChannelName      string `gorm:"type:varchar(200)"`
	ChannelThumbnail string `gorm:"type:text"`

	VideoCount    int  `gorm:"default:0"`
	DeclaredCount int  `gorm:"default:0"`
	PartialFetch  bool `gorm:"default:false"`

	TotalViews    int64 `gorm:"default:0"`
	TotalLikes    int64 `gorm:"default:0"`
	TotalComments int64 `gorm:"default:0"`

	AvgViews      float64 `gorm:"type:decimal(20,2);default:0"`
	AvgLikes      float64 `gorm:"type:decimal(20,2);default:0"`
	AvgComments   float64 `gorm:"type:decimal(20,2);default:0"`
	AvgEngagement float64 `gorm:"type:decimal(12,6);default:0"`

	TopVideoIDs    pq.StringArray `gorm:"type:text[]"`
	BottomVideoIDs pq.StringArray `gorm:"type:text[]"`

	ComputedAt time.Time `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for StatsModel.
func (StatsModel) TableName() string {
	return "playlist_stats"
}

// ToDomain converts StatsModel to domain.PlaylistStats.
func (m *StatsModel) ToDomain() *domain.PlaylistStats {
	return &domain.PlaylistStats{
		PlaylistID:       m.PlaylistID,
		Title:            m.Title,
		ChannelName:      m.ChannelName,
		ChannelThumbnail: m.ChannelThumbnail,
		VideoCount:       m.VideoCount,
		DeclaredCount:    m.DeclaredCount,
		PartialFetch:     m.PartialFetch,
		TotalViews:       m.TotalViews,
		TotalLikes:       m.TotalLikes,
		TotalComments:    m.TotalComments,
		AvgViews:         m.AvgViews,
		AvgLikes:         m.AvgLikes,
		AvgComments:      m.AvgComments,
		AvgEngagement:    m.AvgEngagement,
		TopVideoIDs:      m.TopVideoIDs,
		BottomVideoIDs:   m.BottomVideoIDs,
		ComputedAt:       m.ComputedAt,
	}
}

// statsFromDomain creates a StatsModel from domain.PlaylistStats.
func statsFromDomain(s *domain.PlaylistStats) *StatsModel {
	return &StatsModel{
		PlaylistID:       s.PlaylistID,
		Title:            s.Title,
		ChannelName:      s.ChannelName,
		ChannelThumbnail: s.ChannelThumbnail,
		VideoCount:       s.VideoCount,
		DeclaredCount:    s.DeclaredCount,
		PartialFetch:     s.PartialFetch,
		TotalViews:       s.TotalViews,
		TotalLikes:       s.TotalLikes,
		TotalComments:    s.TotalComments,
		AvgViews:         s.AvgViews,
		AvgLikes:         s.AvgLikes,
		AvgComments:      s.AvgComments,
		AvgEngagement:    s.AvgEngagement,
		TopVideoIDs:      s.TopVideoIDs,
		BottomVideoIDs:   s.BottomVideoIDs,
		ComputedAt:       s.ComputedAt,
	}
}

// VideoModel is the GORM model for the playlist_videos table. Rows carry the
// enriched per-video record keyed by (playlist_id, video_id).
type VideoModel struct {
	PlaylistID string `gorm:"type:varchar(100);primaryKey"`
	VideoID    string `gorm:"type:varchar(50);primaryKey;column:video_id"`

	Rank        int    `gorm:"not null"`
	Title       string `gorm:"type:varchar(500)"`
	Description string `gorm:"type:text"`
	Uploader    string `gorm:"type:varchar(200)"`
	Thumbnail   string `gorm:"type:text"`

	Views    int64 `gorm:"default:0"`
	Likes    int64 `gorm:"default:0"`
	Dislikes int64 `gorm:"default:0"`
	Comments int64 `gorm:"default:0"`

	DurationSec int64  `gorm:"default:0"`
	PublishedAt string `gorm:"type:varchar(40)"`

	Tags pq.StringArray `gorm:"type:text[]"`

	CategoryID   string `gorm:"type:varchar(10)"`
	CategoryName string `gorm:"type:varchar(100)"`
	Definition   string `gorm:"type:varchar(5)"`
	Dimension    string `gorm:"type:varchar(5)"`
	Caption      bool   `gorm:"default:false"`
	Licensed     bool   `gorm:"default:false"`

	EngagementRate float64 `gorm:"type:decimal(12,6);default:0"`
	Controversy    float64 `gorm:"type:decimal(12,6);default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for VideoModel.
func (VideoModel) TableName() string {
	return "playlist_videos"
}

// ToDomain converts VideoModel back to domain.EnrichedVideo. The display
// mirrors are regenerated from the stored numbers.
func (m *VideoModel) ToDomain() domain.EnrichedVideo {
	v := domain.Video{
		Rank:         m.Rank,
		ID:           m.VideoID,
		Title:        m.Title,
		Description:  m.Description,
		Uploader:     m.Uploader,
		Thumbnail:    m.Thumbnail,
		Views:        m.Views,
		Likes:        m.Likes,
		Dislikes:     m.Dislikes,
		Comments:     m.Comments,
		DurationSec:  m.DurationSec,
		PublishedAt:  m.PublishedAt,
		Tags:         m.Tags,
		CategoryID:   m.CategoryID,
		CategoryName: m.CategoryName,
		Definition:   m.Definition,
		Dimension:    m.Dimension,
		Caption:      m.Caption,
		Licensed:     m.Licensed,
	}

	return domain.EnrichedVideo{
		Video:                   v,
		EngagementRateRaw:       m.EngagementRate,
		Controversy:             m.Controversy,
		ViewsFormatted:          domain.FormatCount(m.Views),
		LikesFormatted:          domain.FormatCount(m.Likes),
		CommentsFormatted:       domain.FormatCount(m.Comments),
		DurationFormatted:       domain.FormatDuration(m.DurationSec),
		EngagementRateFormatted: domain.FormatPercent(m.EngagementRate),
		ControversyFormatted:    domain.FormatPercent(m.Controversy),
	}
}

// videoFromDomain creates a VideoModel from a domain.EnrichedVideo.
func videoFromDomain(playlistID string, v *domain.EnrichedVideo) *VideoModel {
	return &VideoModel{
		PlaylistID:     playlistID,
		VideoID:        v.ID,
		Rank:           v.Rank,
		Title:          v.Title,
		Description:    v.Description,
		Uploader:       v.Uploader,
		Thumbnail:      v.Thumbnail,
		Views:          v.Views,
		Likes:          v.Likes,
		Dislikes:       v.Dislikes,
		Comments:       v.Comments,
		DurationSec:    v.DurationSec,
		PublishedAt:    v.PublishedAt,
		Tags:           v.Tags,
		CategoryID:     v.CategoryID,
		CategoryName:   v.CategoryName,
		Definition:     v.Definition,
		Dimension:      v.Dimension,
		Caption:        v.Caption,
		Licensed:       v.Licensed,
		EngagementRate: v.EngagementRateRaw,
		Controversy:    v.Controversy,
	}
}

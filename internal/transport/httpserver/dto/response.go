package dto

import (
	"time"

	"viralvibes/internal/app/service"
	"viralvibes/internal/domain"
)

// VideoResponse represents a single enriched playlist entry in the response.
type VideoResponse struct {
	Rank     int    `json:"rank"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Uploader string `json:"uploader,omitempty"`

	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Duration int64 `json:"duration_sec"`

	EngagementRate float64 `json:"engagement_rate"`
	Controversy    float64 `json:"controversy"`

	ViewsFormatted          string `json:"views_formatted"`
	LikesFormatted          string `json:"likes_formatted"`
	CommentsFormatted       string `json:"comments_formatted"`
	DurationFormatted       string `json:"duration_formatted"`
	EngagementRateFormatted string `json:"engagement_rate_formatted"`
	ControversyFormatted    string `json:"controversy_formatted"`

	PublishedAt string   `json:"published_at,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
}

// FromEnrichedVideo converts domain.EnrichedVideo to VideoResponse.
func FromEnrichedVideo(v *domain.EnrichedVideo) VideoResponse {
	return VideoResponse{
		Rank:                    v.Rank,
		ID:                      v.ID,
		Title:                   v.Title,
		Uploader:                v.Uploader,
		Views:                   v.Views,
		Likes:                   v.Likes,
		Comments:                v.Comments,
		Duration:                v.DurationSec,
		EngagementRate:          v.EngagementRateRaw,
		Controversy:             v.Controversy,
		ViewsFormatted:          v.ViewsFormatted,
		LikesFormatted:          v.LikesFormatted,
		CommentsFormatted:       v.CommentsFormatted,
		DurationFormatted:       v.DurationFormatted,
		EngagementRateFormatted: v.EngagementRateFormatted,
		ControversyFormatted:    v.ControversyFormatted,
		PublishedAt:             v.PublishedAt,
		Tags:                    v.Tags,
		Thumbnail:               v.Thumbnail,
	}
}

// StatsResponse represents the aggregate metrics for one playlist.
type StatsResponse struct {
	PlaylistID       string `json:"playlist_id"`
	Title            string `json:"title"`
	ChannelName      string `json:"channel_name"`
	ChannelThumbnail string `json:"channel_thumbnail,omitempty"`

	VideoCount    int  `json:"video_count"`
	DeclaredCount int  `json:"declared_count"`
	PartialFetch  bool `json:"partial_fetch"`

	TotalViews    int64 `json:"total_views"`
	TotalLikes    int64 `json:"total_likes"`
	TotalComments int64 `json:"total_comments"`

	AvgViews      float64 `json:"avg_views"`
	AvgLikes      float64 `json:"avg_likes"`
	AvgComments   float64 `json:"avg_comments"`
	AvgEngagement float64 `json:"avg_engagement"`

	TopVideoIDs    []string `json:"top_video_ids"`
	BottomVideoIDs []string `json:"bottom_video_ids"`

	ComputedAt string `json:"computed_at"`
}

// FromStats converts domain.PlaylistStats to StatsResponse.
func FromStats(s *domain.PlaylistStats) StatsResponse {
	return StatsResponse{
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
		ComputedAt:       s.ComputedAt.Format(time.RFC3339),
	}
}

// JobResponse represents a processing job in the response.
type JobResponse struct {
	ID               string `json:"id"`
	PlaylistID       string `json:"playlist_id"`
	Status           string `json:"status"`
	Attempts         int    `json:"attempts"`
	LastError        string `json:"last_error,omitempty"`
	CreatedAt        string `json:"created_at"`
	StartedAt        string `json:"started_at,omitempty"`
	FinishedAt       string `json:"finished_at,omitempty"`
	ProcessingTimeMS int64  `json:"processing_time_ms,omitempty"`
}

// FromJob converts domain.Job to JobResponse.
func FromJob(j *domain.Job) JobResponse {
	resp := JobResponse{
		ID:               j.ID,
		PlaylistID:       j.PlaylistID,
		Status:           string(j.Status),
		Attempts:         j.Attempts,
		LastError:        j.LastError,
		CreatedAt:        j.CreatedAt.Format(time.RFC3339),
		ProcessingTimeMS: j.ProcessingTimeMS,
	}
	if j.StartedAt != nil {
		resp.StartedAt = j.StartedAt.Format(time.RFC3339)
	}
	if j.FinishedAt != nil {
		resp.FinishedAt = j.FinishedAt.Format(time.RFC3339)
	}

	return resp
}

// AnalyzeResponse represents the outcome of an analyze request: a finished
// report, or the queued job standing in for one.
type AnalyzeResponse struct {
	Status string `json:"status"`
	Cached bool   `json:"cached"`

	Stats  *StatsResponse  `json:"stats,omitempty"`
	Videos []VideoResponse `json:"videos,omitempty"`
	Job    *JobResponse    `json:"job,omitempty"`
}

// FromAnalyzeResult converts service.AnalyzeResult to AnalyzeResponse.
func FromAnalyzeResult(result *service.AnalyzeResult) AnalyzeResponse {
	resp := AnalyzeResponse{
		Status: result.Status,
		Cached: result.Cached,
	}

	if result.Report != nil {
		if result.Report.Stats != nil {
			stats := FromStats(result.Report.Stats)
			resp.Stats = &stats
		}
		resp.Videos = make([]VideoResponse, len(result.Report.Videos))
		for i := range result.Report.Videos {
			resp.Videos[i] = FromEnrichedVideo(&result.Report.Videos[i])
		}
	}

	if result.Job != nil {
		job := FromJob(result.Job)
		resp.Job = &job
	}

	return resp
}

// PlaylistStatsResponse is the GET stats payload: aggregates plus the
// per-video rows when requested.
type PlaylistStatsResponse struct {
	Stats  StatsResponse   `json:"stats"`
	Videos []VideoResponse `json:"videos,omitempty"`
}

// FromStatsAndVideos builds a PlaylistStatsResponse.
func FromStatsAndVideos(stats *domain.PlaylistStats, videos []domain.EnrichedVideo) PlaylistStatsResponse {
	resp := PlaylistStatsResponse{Stats: FromStats(stats)}
	if len(videos) > 0 {
		resp.Videos = make([]VideoResponse, len(videos))
		for i := range videos {
			resp.Videos[i] = FromEnrichedVideo(&videos[i])
		}
	}

	return resp
}

// PendingJobsResponse lists pending jobs.
type PendingJobsResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Count int           `json:"count"`
}

// FromJobs converts a domain.Job slice to PendingJobsResponse.
func FromJobs(jobs []domain.Job) PendingJobsResponse {
	resp := PendingJobsResponse{Jobs: make([]JobResponse, len(jobs))}
	for i := range jobs {
		resp.Jobs[i] = FromJob(&jobs[i])
	}
	resp.Count = len(resp.Jobs)

	return resp
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

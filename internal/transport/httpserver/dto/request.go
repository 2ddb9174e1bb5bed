// Package dto defines request and response shapes for the HTTP API.
package dto

// AnalyzeRequest is the body for POST /api/v1/playlists/analyze.
type AnalyzeRequest struct {
	URL string `json:"url" validate:"required,playlist"`
}

// StatsRequest holds query parameters for GET /api/v1/playlists/stats.
type StatsRequest struct {
	URL     string `query:"url" json:"url" validate:"required,playlist"`
	Include string `query:"include" json:"include" validate:"omitempty,oneof=videos"`
}

// IncludeVideos reports whether the per-video rows were requested.
func (r StatsRequest) IncludeVideos() bool {
	return r.Include == "videos"
}

// PendingJobsRequest holds query parameters for GET /api/v1/jobs/pending.
type PendingJobsRequest struct {
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=200"`
}

// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// VideoDefinition values exposed by the platform.
const (
	DefinitionHD = "hd"
	DefinitionSD = "sd"
)

// VideoDimension values exposed by the platform.
const (
	Dimension2D = "2d"
	Dimension3D = "3d"
)

// RawVideo is the variant-shaped record a backend produces for one playlist
// entry. Field names and value types depend on the backend; the normalizer
// owns the mapping into the canonical Video schema. A RawVideo is consumed
// exactly once and discarded.
type RawVideo struct {
	ID     string
	Fields map[string]any
}

// Video is the canonical, backend-independent record for one playlist entry.
// The column set and types are fixed: every downstream consumer (enricher,
// store, transport) is written against this type only and never branches on
// which backend produced it.
type Video struct {
	// Rank is the 1-based position within the playlist.
	Rank int `json:"rank"`
	ID   string `json:"id"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Uploader    string `json:"uploader"`
	Thumbnail   string `json:"thumbnail"`

	// Counters default to 0 when a backend does not expose them.
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"` // always 0, the platform no longer exposes dislikes
	Comments int64 `json:"comments"`

	DurationSec int64 `json:"duration_sec"`

	// PublishedAt is an ISO-8601 timestamp, empty when unknown.
	PublishedAt string   `json:"published_at,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	Definition   string `json:"definition,omitempty"` // "hd" or "sd"
	Dimension    string `json:"dimension,omitempty"`  // "2d" or "3d"

	Caption  bool `json:"caption"`
	Licensed bool `json:"licensed"`

	// Rating is reserved and typically unset.
	Rating *float64 `json:"rating,omitempty"`
}

// EnrichedVideo is a Video plus metrics derived purely from its canonical
// fields. Derived fields are never mutated independently; re-running the
// enricher on the same Video always yields the same EnrichedVideo.
type EnrichedVideo struct {
	Video

	EngagementRateRaw float64 `json:"engagement_rate_raw"`
	Controversy       float64 `json:"controversy"`

	// Display mirrors of the numeric fields. Formatting never feeds back
	// into the underlying numbers.
	ViewsFormatted          string `json:"views_formatted"`
	LikesFormatted          string `json:"likes_formatted"`
	CommentsFormatted       string `json:"comments_formatted"`
	DurationFormatted       string `json:"duration_formatted"`
	EngagementRateFormatted string `json:"engagement_rate_formatted"`
	ControversyFormatted    string `json:"controversy_formatted"`
}

// PlaylistInfo is the playlist-level metadata a backend reports alongside
// the per-video records.
type PlaylistInfo struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	ChannelName      string `json:"channel_name"`
	ChannelThumbnail string `json:"channel_thumbnail"`

	// DeclaredCount is the number of videos the platform claims the
	// playlist holds. It may exceed the number actually retrieved.
	DeclaredCount int `json:"declared_count"`
}

// FetchResult is the output of one backend invocation: playlist metadata plus
// the raw records retrieved, in playlist order. On a mid-playlist failure a
// backend returns the rows it did get together with an *UpstreamError, so the
// caller can label the fetch as partial.
type FetchResult struct {
	Playlist PlaylistInfo
	Videos   []RawVideo
}

// FetchOptions bound a backend invocation.
type FetchOptions struct {
	// MaxVideos caps the number of records retrieved. Zero means no cap.
	MaxVideos int
}

// PlaylistStats is the aggregate computed over all enriched rows of one
// playlist run. It is rebuilt from scratch on every run and upserted by
// PlaylistID, so a later run fully replaces an earlier one.
type PlaylistStats struct {
	PlaylistID       string `json:"playlist_id"`
	Title            string `json:"title"`
	ChannelName      string `json:"channel_name"`
	ChannelThumbnail string `json:"channel_thumbnail"`

	// VideoCount is the number of rows actually retrieved and aggregated.
	// DeclaredCount is what the platform reported; PartialFetch marks the
	// discrepancy so callers can tell a small playlist from a truncated one.
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

	// Video IDs ranked by engagement rate, best and worst first
	// respectively. At most RankedVideoCount entries each.
	TopVideoIDs    []string `json:"top_video_ids"`
	BottomVideoIDs []string `json:"bottom_video_ids"`

	ComputedAt time.Time `json:"computed_at"`
}

// Report bundles everything one pipeline run produces for a playlist.
type Report struct {
	Playlist PlaylistInfo    `json:"playlist"`
	Videos   []EnrichedVideo `json:"videos"`
	Stats    *PlaylistStats  `json:"stats"`
}

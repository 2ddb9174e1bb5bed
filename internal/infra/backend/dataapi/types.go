package dataapi

import (
	"viralvibes/internal/domain"
)

// playlistsResponse is the playlists.list endpoint payload.
type playlistsResponse struct {
	Items []playlistResource `json:"items"`
}

type playlistResource struct {
	ID             string                 `json:"id"`
	Snippet        playlistSnippet        `json:"snippet"`
	ContentDetails playlistContentDetails `json:"contentDetails"`
}

type playlistSnippet struct {
	Title        string     `json:"title"`
	ChannelTitle string     `json:"channelTitle"`
	Thumbnails   thumbnails `json:"thumbnails"`
}

type playlistContentDetails struct {
	ItemCount int `json:"itemCount"`
}

// playlistItemsResponse is the playlistItems.list endpoint payload.
type playlistItemsResponse struct {
	Items         []playlistItem `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
	PageInfo      pageInfo       `json:"pageInfo"`
}

type playlistItem struct {
	ContentDetails playlistItemDetails `json:"contentDetails"`
}

type playlistItemDetails struct {
	VideoID string `json:"videoId"`
}

type pageInfo struct {
	TotalResults int `json:"totalResults"`
}

// videosResponse is the videos.list endpoint payload.
type videosResponse struct {
	Items []videoResource `json:"items"`
}

type videoResource struct {
	ID             string              `json:"id"`
	Snippet        videoSnippet        `json:"snippet"`
	Statistics     videoStatistics     `json:"statistics"`
	ContentDetails videoContentDetails `json:"contentDetails"`
}

type videoSnippet struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ChannelTitle string     `json:"channelTitle"`
	PublishedAt  string     `json:"publishedAt"`
	Thumbnails   thumbnails `json:"thumbnails"`
	Tags         []string   `json:"tags"`
	CategoryID   string     `json:"categoryId"`
}

// videoStatistics carries counters as decimal strings; the normalizer owns
// the coercion. A disabled counter is simply absent.
type videoStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

type videoContentDetails struct {
	Duration        string `json:"duration"` // ISO-8601, e.g. "PT1H23M45S"
	Definition      string `json:"definition"`
	Dimension       string `json:"dimension"`
	Caption         string `json:"caption"` // string "true"/"false" on the wire
	LicensedContent bool   `json:"licensedContent"`
}

type thumbnails struct {
	High    thumbnail `json:"high"`
	Medium  thumbnail `json:"medium"`
	Default thumbnail `json:"default"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// bestURL prefers the largest thumbnail variant present.
func (t thumbnails) bestURL() string {
	switch {
	case t.High.URL != "":
		return t.High.URL
	case t.Medium.URL != "":
		return t.Medium.URL
	default:
		return t.Default.URL
	}
}

// toRaw converts a video resource into the variant record the normalizer
// consumes. Values are passed through in the API's own shapes.
func (v *videoResource) toRaw() domain.RawVideo {
	fields := map[string]any{
		"title":           v.Snippet.Title,
		"description":     v.Snippet.Description,
		"channelTitle":    v.Snippet.ChannelTitle,
		"thumbnail":       v.Snippet.Thumbnails.bestURL(),
		"publishedAt":     v.Snippet.PublishedAt,
		"categoryId":      v.Snippet.CategoryID,
		"duration":        v.ContentDetails.Duration,
		"definition":      v.ContentDetails.Definition,
		"dimension":       v.ContentDetails.Dimension,
		"caption":         v.ContentDetails.Caption,
		"licensedContent": v.ContentDetails.LicensedContent,
	}
	if len(v.Snippet.Tags) > 0 {
		fields["tags"] = v.Snippet.Tags
	}
	if v.Statistics.ViewCount != "" {
		fields["viewCount"] = v.Statistics.ViewCount
	}
	if v.Statistics.LikeCount != "" {
		fields["likeCount"] = v.Statistics.LikeCount
	}
	if v.Statistics.CommentCount != "" {
		fields["commentCount"] = v.Statistics.CommentCount
	}

	return domain.RawVideo{ID: v.ID, Fields: fields}
}

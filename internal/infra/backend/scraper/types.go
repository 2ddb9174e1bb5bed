package scraper

import (
	"viralvibes/internal/domain"
)

// playlistPage is one page of the extractor's flat playlist dump.
type playlistPage struct {
	Playlist playlistHeader `json:"playlist"`
	Entries  []entry        `json:"entries"`
	HasMore  bool           `json:"has_more"`
}

type playlistHeader struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Uploader   string `json:"uploader"`
	Thumbnail  string `json:"thumbnail"`
	EntryCount int    `json:"entry_count"`
}

// entry is one video record in the extractor's own shape: snake_case keys
// and numeric counters, unlike the official API's camelCase strings.
type entry struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Uploader      string   `json:"uploader"`
	Thumbnail     string   `json:"thumbnail"`
	ViewCount     *int64   `json:"view_count"`
	LikeCount     *int64   `json:"like_count"`
	CommentCount  *int64   `json:"comment_count"`
	Duration      *float64 `json:"duration"` // seconds
	UploadDate    string   `json:"upload_date"` // compact form, e.g. "20240102"
	Tags          []string `json:"tags"`
	Categories    []string `json:"categories"`
	AverageRating *float64 `json:"average_rating"`
}

// toRaw converts an extractor entry into the variant record the normalizer
// consumes, passing values through in the extractor's own shapes. Absent
// counters stay absent so the normalizer applies its defaults.
func (e *entry) toRaw() domain.RawVideo {
	fields := map[string]any{
		"title":       e.Title,
		"description": e.Description,
		"uploader":    e.Uploader,
		"thumbnail":   e.Thumbnail,
		"upload_date": e.UploadDate,
	}
	if e.ViewCount != nil {
		fields["view_count"] = *e.ViewCount
	}
	if e.LikeCount != nil {
		fields["like_count"] = *e.LikeCount
	}
	if e.CommentCount != nil {
		fields["comment_count"] = *e.CommentCount
	}
	if e.Duration != nil {
		fields["duration"] = *e.Duration
	}
	if len(e.Tags) > 0 {
		fields["tags"] = e.Tags
	}
	if len(e.Categories) > 0 {
		fields["category_name"] = e.Categories[0]
	}
	if e.AverageRating != nil {
		fields["average_rating"] = *e.AverageRating
	}

	return domain.RawVideo{ID: e.ID, Fields: fields}
}

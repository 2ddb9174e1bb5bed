package domain

import (
	"strconv"
	"strings"
	"time"
)

// Field name variants the two backends emit for the same canonical column.
// The official API uses camelCase with string-typed counters; the scraper
// emits snake_case with numeric counters.
var (
	titleKeys       = []string{"title", "videoTitle"}
	descriptionKeys = []string{"description"}
	uploaderKeys    = []string{"uploader", "channel", "channelTitle"}
	thumbnailKeys   = []string{"thumbnail", "thumbnails"}
	viewKeys        = []string{"viewCount", "view_count", "views"}
	likeKeys        = []string{"likeCount", "like_count", "likes"}
	commentKeys     = []string{"commentCount", "comment_count", "comments"}
	durationKeys    = []string{"duration", "duration_string", "durationSec"}
	publishedKeys   = []string{"publishedAt", "published_at", "upload_date"}
	tagKeys         = []string{"tags"}
	categoryIDKeys  = []string{"categoryId", "category_id"}
	categoryKeys    = []string{"categoryName", "category_name"}
	definitionKeys  = []string{"definition"}
	dimensionKeys   = []string{"dimension"}
	captionKeys     = []string{"caption"}
	licensedKeys    = []string{"licensedContent", "licensed"}
	ratingKeys      = []string{"rating", "average_rating"}
)

// categoryNames maps the platform's numeric category identifiers to their
// display names.
var categoryNames = map[string]string{
	"1":  "Film & Animation",
	"2":  "Autos & Vehicles",
	"10": "Music",
	"15": "Pets & Animals",
	"17": "Sports",
	"19": "Travel & Events",
	"20": "Gaming",
	"22": "People & Blogs",
	"23": "Comedy",
	"24": "Entertainment",
	"25": "News & Politics",
	"26": "Howto & Style",
	"27": "Education",
	"28": "Science & Technology",
	"29": "Nonprofits & Activism",
}

// Normalize maps backend-specific raw records into the canonical schema.
// It produces exactly one Video per RawVideo in input order; Rank is the
// 1-based input position. Coercion is lenient per field and strict per type:
// a value that cannot be coerced becomes the field's zero default, never a
// propagated error, so one malformed field on one video cannot abort the
// playlist.
func Normalize(raws []RawVideo) []Video {
	videos := make([]Video, len(raws))
	for i, raw := range raws {
		videos[i] = normalizeOne(raw, i+1)
	}
	return videos
}

func normalizeOne(raw RawVideo, rank int) Video {
	v := Video{
		Rank:        rank,
		ID:          raw.ID,
		Title:       firstString(raw.Fields, titleKeys),
		Description: firstString(raw.Fields, descriptionKeys),
		Uploader:    firstString(raw.Fields, uploaderKeys),
		Thumbnail:   firstString(raw.Fields, thumbnailKeys),
		Views:       firstCount(raw.Fields, viewKeys),
		Likes:       firstCount(raw.Fields, likeKeys),
		Comments:    firstCount(raw.Fields, commentKeys),
		DurationSec: firstDuration(raw.Fields, durationKeys),
		PublishedAt: firstTimestamp(raw.Fields, publishedKeys),
		Tags:        firstStringSlice(raw.Fields, tagKeys),
		CategoryID:  firstString(raw.Fields, categoryIDKeys),
		Caption:     firstBool(raw.Fields, captionKeys),
		Licensed:    firstBool(raw.Fields, licensedKeys),
	}

	// Dislikes are no longer exposed by the platform.
	v.Dislikes = 0

	if name := firstString(raw.Fields, categoryKeys); name != "" {
		v.CategoryName = name
	} else if name, ok := categoryNames[v.CategoryID]; ok {
		v.CategoryName = name
	}

	if d := strings.ToLower(firstString(raw.Fields, definitionKeys)); d == DefinitionHD || d == DefinitionSD {
		v.Definition = d
	}
	if d := strings.ToLower(firstString(raw.Fields, dimensionKeys)); d == Dimension2D || d == Dimension3D {
		v.Dimension = d
	}

	if r, ok := firstFloat(raw.Fields, ratingKeys); ok {
		v.Rating = &r
	}

	if v.Tags == nil {
		v.Tags = []string{}
	}

	return v
}

func firstValue(fields map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if val, ok := fields[k]; ok && val != nil {
			return val, true
		}
	}
	return nil, false
}

func firstString(fields map[string]any, keys []string) string {
	val, ok := firstValue(fields, keys)
	if !ok {
		return ""
	}
	switch s := val.(type) {
	case string:
		return strings.TrimSpace(s)
	case interface{ String() string }:
		return strings.TrimSpace(s.String())
	default:
		return ""
	}
}

func firstCount(fields map[string]any, keys []string) int64 {
	val, ok := firstValue(fields, keys)
	if !ok {
		return 0
	}
	return coerceCount(val)
}

func coerceCount(val any) int64 {
	switch n := val.(type) {
	case int:
		return clampNonNegative(int64(n))
	case int64:
		return clampNonNegative(n)
	case float64:
		return clampNonNegative(int64(n))
	case string:
		return ParseCount(n)
	default:
		return 0
	}
}

func clampNonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func firstDuration(fields map[string]any, keys []string) int64 {
	val, ok := firstValue(fields, keys)
	if !ok {
		return 0
	}
	switch d := val.(type) {
	case int:
		return clampNonNegative(int64(d))
	case int64:
		return clampNonNegative(d)
	case float64:
		return clampNonNegative(int64(d))
	case string:
		s := strings.TrimSpace(d)
		if strings.HasPrefix(s, "PT") {
			return ParseISODuration(s)
		}
		if strings.Contains(s, ":") {
			return parseClockDuration(s)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0
		}
		return clampNonNegative(n)
	default:
		return 0
	}
}

// parseClockDuration handles "MM:SS" and "HH:MM:SS" strings.
func parseClockDuration(s string) int64 {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// firstTimestamp normalizes the backends' date shapes into ISO-8601.
// RFC3339 values pass through, the scraper's compact "YYYYMMDD" form is
// expanded, anything else is treated as unknown.
func firstTimestamp(fields map[string]any, keys []string) string {
	val, ok := firstValue(fields, keys)
	if !ok {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	if t, err := time.Parse("20060102", s); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return ""
}

func firstStringSlice(fields map[string]any, keys []string) []string {
	val, ok := firstValue(fields, keys)
	if !ok {
		return nil
	}
	switch t := val.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		parts := strings.Split(t, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

func firstBool(fields map[string]any, keys []string) bool {
	val, ok := firstValue(fields, keys)
	if !ok {
		return false
	}
	switch b := val.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	default:
		return false
	}
}

func firstFloat(fields map[string]any, keys []string) (float64, bool) {
	val, ok := firstValue(fields, keys)
	if !ok {
		return 0, false
	}
	switch f := val.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

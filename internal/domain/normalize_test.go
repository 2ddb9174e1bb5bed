package domain

import (
	"fmt"
	"reflect"
	"testing"
)

func TestNormalize_CountAndRankOrder(t *testing.T) {
	for _, n := range []int{0, 1, 3, 50} {
		raws := make([]RawVideo, n)
		for i := range raws {
			raws[i] = RawVideo{ID: fmt.Sprintf("vid-%d", i), Fields: map[string]any{}}
		}

		videos := Normalize(raws)
		if len(videos) != n {
			t.Fatalf("Normalize(%d raws) produced %d videos", n, len(videos))
		}
		for i, v := range videos {
			if v.Rank != i+1 {
				t.Errorf("video %d: Rank = %d, want %d", i, v.Rank, i+1)
			}
			if v.ID != raws[i].ID {
				t.Errorf("video %d: order not preserved, got id %q", i, v.ID)
			}
		}
	}
}

func TestNormalize_APIShape(t *testing.T) {
	raws := []RawVideo{{
		ID: "abc123",
		Fields: map[string]any{
			"title":           "Launch Day",
			"description":     "all about the launch",
			"channelTitle":    "Rocket Lab",
			"thumbnail":       "https://img.example/abc123.jpg",
			"viewCount":       "1204500", // the API serves counters as strings
			"likeCount":       "80311",
			"commentCount":    "1200",
			"duration":        "PT1H2M3S",
			"publishedAt":     "2024-03-15T10:30:00Z",
			"tags":            []any{"space", "launch"},
			"categoryId":      "28",
			"definition":      "HD",
			"dimension":       "2d",
			"caption":         "true",
			"licensedContent": true,
		},
	}}

	v := Normalize(raws)[0]

	if v.Title != "Launch Day" || v.Uploader != "Rocket Lab" {
		t.Errorf("string fields not mapped: %+v", v)
	}
	if v.Views != 1204500 || v.Likes != 80311 || v.Comments != 1200 {
		t.Errorf("counters not coerced: views=%d likes=%d comments=%d", v.Views, v.Likes, v.Comments)
	}
	if v.DurationSec != 3723 {
		t.Errorf("DurationSec = %d, want 3723", v.DurationSec)
	}
	if v.PublishedAt != "2024-03-15T10:30:00Z" {
		t.Errorf("PublishedAt = %q", v.PublishedAt)
	}
	if !reflect.DeepEqual(v.Tags, []string{"space", "launch"}) {
		t.Errorf("Tags = %v", v.Tags)
	}
	if v.CategoryID != "28" || v.CategoryName != "Science & Technology" {
		t.Errorf("category = %q / %q", v.CategoryID, v.CategoryName)
	}
	if v.Definition != DefinitionHD || v.Dimension != Dimension2D {
		t.Errorf("definition/dimension = %q / %q", v.Definition, v.Dimension)
	}
	if !v.Caption || !v.Licensed {
		t.Errorf("caption=%v licensed=%v", v.Caption, v.Licensed)
	}
}

func TestNormalize_ScraperShape(t *testing.T) {
	raws := []RawVideo{{
		ID: "xyz789",
		Fields: map[string]any{
			"title":         "Deep Dive",
			"uploader":      "Rocket Lab",
			"view_count":    float64(512000), // JSON numbers decode to float64
			"like_count":    float64(9000),
			"comment_count": float64(450),
			"duration":      float64(754),
			"upload_date":   "20240102",
			"tags":          "space, analysis",
		},
	}}

	v := Normalize(raws)[0]

	if v.Views != 512000 || v.Likes != 9000 || v.Comments != 450 {
		t.Errorf("counters not coerced: %+v", v)
	}
	if v.DurationSec != 754 {
		t.Errorf("DurationSec = %d, want 754", v.DurationSec)
	}
	if v.PublishedAt != "2024-01-02T00:00:00Z" {
		t.Errorf("PublishedAt = %q", v.PublishedAt)
	}
	if !reflect.DeepEqual(v.Tags, []string{"space", "analysis"}) {
		t.Errorf("Tags = %v", v.Tags)
	}
}

// One malformed field defaults rather than aborting the playlist.
func TestNormalize_MalformedFieldsDefault(t *testing.T) {
	raws := []RawVideo{
		{ID: "bad", Fields: map[string]any{
			"viewCount":   "not-a-number",
			"likeCount":   -5,
			"duration":    "PTbogus",
			"publishedAt": "yesterday",
			"tags":        42,
			"definition":  "4k",
			"caption":     "maybe",
		}},
		{ID: "good", Fields: map[string]any{"viewCount": "10"}},
	}

	videos := Normalize(raws)
	if len(videos) != 2 {
		t.Fatalf("got %d videos, want 2", len(videos))
	}

	bad := videos[0]
	if bad.Views != 0 || bad.Likes != 0 || bad.DurationSec != 0 {
		t.Errorf("malformed numerics did not default: %+v", bad)
	}
	if bad.PublishedAt != "" || bad.Definition != "" || bad.Caption {
		t.Errorf("malformed strings did not default: %+v", bad)
	}
	if bad.Tags == nil || len(bad.Tags) != 0 {
		t.Errorf("Tags must be empty, never nil: %v", bad.Tags)
	}
	if videos[1].Views != 10 {
		t.Errorf("valid sibling row affected: %+v", videos[1])
	}
}

func TestNormalize_DislikesAlwaysZero(t *testing.T) {
	raws := []RawVideo{{ID: "v", Fields: map[string]any{"dislike_count": 99}}}
	if got := Normalize(raws)[0].Dislikes; got != 0 {
		t.Errorf("Dislikes = %d, want 0", got)
	}
}

func TestNormalize_FormattedCountStrings(t *testing.T) {
	raws := []RawVideo{{ID: "v", Fields: map[string]any{"view_count": "1.2M", "like_count": "3.4K"}}}
	v := Normalize(raws)[0]
	if v.Views != 1200000 || v.Likes != 3400 {
		t.Errorf("formatted counts not parsed: views=%d likes=%d", v.Views, v.Likes)
	}
}

func TestNormalize_RatingOptional(t *testing.T) {
	withRating := Normalize([]RawVideo{{ID: "a", Fields: map[string]any{"average_rating": 4.7}}})[0]
	if withRating.Rating == nil || *withRating.Rating != 4.7 {
		t.Errorf("Rating = %v, want 4.7", withRating.Rating)
	}

	without := Normalize([]RawVideo{{ID: "b", Fields: map[string]any{}}})[0]
	if without.Rating != nil {
		t.Errorf("Rating should be absent, got %v", *without.Rating)
	}
}

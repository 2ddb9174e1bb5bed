package domain

import (
	"math"
	"reflect"
	"testing"
	"time"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

func TestEngagementRate_ZeroViews(t *testing.T) {
	tests := []struct {
		name  string
		video Video
	}{
		{"all zero", Video{}},
		{"zero views with likes", Video{Likes: 100, Comments: 5}},
		{"negative views", Video{Views: -1, Likes: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate := EngagementRate(tt.video)
			if rate != 0 {
				t.Errorf("EngagementRate() = %v, want 0", rate)
			}
			if math.IsNaN(rate) || math.IsInf(rate, 0) {
				t.Errorf("EngagementRate() not finite: %v", rate)
			}
		})
	}
}

func TestEngagementRate_Formula(t *testing.T) {
	v := Video{Views: 1000, Likes: 80, Comments: 20}
	if rate := EngagementRate(v); !almostEqual(rate, 0.1) {
		t.Errorf("EngagementRate() = %v, want 0.1", rate)
	}
}

func TestControversyScore_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		video    Video
		expected float64
	}{
		{"both zero", Video{}, 0},
		{"comments only", Video{Comments: 50}, 1},
		{"likes only", Video{Likes: 50}, 0},
		{"even split", Video{Likes: 25, Comments: 25}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ControversyScore(tt.video)
			if !almostEqual(score, tt.expected) {
				t.Errorf("ControversyScore() = %v, want %v", score, tt.expected)
			}
			if score < 0 || score > 1 || math.IsNaN(score) {
				t.Errorf("ControversyScore() out of [0,1]: %v", score)
			}
		})
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	videos := []Video{
		{Rank: 1, ID: "a", Views: 1000, Likes: 50, Comments: 10},
		{Rank: 2, ID: "b", Views: 500, Likes: 5, Comments: 20},
	}
	playlist := PlaylistInfo{ID: "PL1", Title: "Test", DeclaredCount: 2}
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	rows1, stats1 := Enrich(videos, playlist, at)
	rows2, stats2 := Enrich(videos, playlist, at)

	if !reflect.DeepEqual(rows1, rows2) {
		t.Error("enriched rows differ between identical runs")
	}
	if !reflect.DeepEqual(stats1, stats2) {
		t.Error("stats differ between identical runs")
	}
}

// Formatting mirrors never feed back into the numeric fields.
func TestEnrich_FormattingIsLossless(t *testing.T) {
	videos := []Video{{Rank: 1, ID: "a", Views: 1234567, Likes: 8900, Comments: 120, DurationSec: 3723}}
	rows, _ := Enrich(videos, PlaylistInfo{ID: "PL1", DeclaredCount: 1}, time.Now().UTC())

	row := rows[0]
	if row.Views != 1234567 || row.Likes != 8900 {
		t.Errorf("numeric fields mutated by formatting: %+v", row)
	}
	if row.ViewsFormatted != "1.2M" {
		t.Errorf("ViewsFormatted = %q", row.ViewsFormatted)
	}
	if row.LikesFormatted != "8.9K" {
		t.Errorf("LikesFormatted = %q", row.LikesFormatted)
	}
	if row.DurationFormatted != "01:02:03" {
		t.Errorf("DurationFormatted = %q", row.DurationFormatted)
	}
}

func TestEnrich_TieBreakByRank(t *testing.T) {
	// Three videos with the same engagement rate, one below.
	videos := []Video{
		{Rank: 1, ID: "first", Views: 100, Likes: 10},
		{Rank: 2, ID: "second", Views: 200, Likes: 20},
		{Rank: 3, ID: "third", Views: 300, Likes: 30},
		{Rank: 4, ID: "cold", Views: 1000, Likes: 1},
	}
	_, stats := Enrich(videos, PlaylistInfo{ID: "PL1", DeclaredCount: 4}, time.Now().UTC())

	if !reflect.DeepEqual(stats.TopVideoIDs, []string{"first", "second", "third"}) {
		t.Errorf("TopVideoIDs = %v, want tie broken by ascending rank", stats.TopVideoIDs)
	}
	if stats.BottomVideoIDs[0] != "cold" {
		t.Errorf("BottomVideoIDs = %v, want cold first", stats.BottomVideoIDs)
	}
}

// Scenario: three raw videos with known counters flow through normalize and
// enrich; the last video has the best engagement.
func TestEnrich_EndToEndEngagementOrdering(t *testing.T) {
	raws := []RawVideo{
		{ID: "v1", Fields: map[string]any{"viewCount": "0", "likeCount": "0", "commentCount": "0"}},
		{ID: "v2", Fields: map[string]any{"viewCount": "100", "likeCount": "10", "commentCount": "0"}},
		{ID: "v3", Fields: map[string]any{"viewCount": "50", "likeCount": "5", "commentCount": "5"}},
	}

	videos := Normalize(raws)
	rows, stats := Enrich(videos, PlaylistInfo{ID: "PL1", DeclaredCount: 3}, time.Now().UTC())

	wantRates := []float64{0, 0.1, 0.2}
	for i, row := range rows {
		if row.Rank != i+1 {
			t.Errorf("row %d: Rank = %d", i, row.Rank)
		}
		if !almostEqual(row.EngagementRateRaw, wantRates[i]) {
			t.Errorf("row %d: EngagementRateRaw = %v, want %v", i, row.EngagementRateRaw, wantRates[i])
		}
	}
	if stats.TopVideoIDs[0] != "v3" {
		t.Errorf("top video = %q, want v3", stats.TopVideoIDs[0])
	}
}

// Scenario: the platform declared 10 videos but only 7 were retrieved.
func TestEnrich_PartialFetchRecorded(t *testing.T) {
	videos := make([]Video, 7)
	for i := range videos {
		videos[i] = Video{Rank: i + 1, ID: string(rune('a' + i)), Views: 100}
	}

	_, stats := Enrich(videos, PlaylistInfo{ID: "PL1", DeclaredCount: 10}, time.Now().UTC())

	if stats.VideoCount != 7 {
		t.Errorf("VideoCount = %d, want 7", stats.VideoCount)
	}
	if stats.DeclaredCount != 10 {
		t.Errorf("DeclaredCount = %d, want 10", stats.DeclaredCount)
	}
	if !stats.PartialFetch {
		t.Error("PartialFetch = false, want true")
	}
}

func TestEnrich_CompletePlaylistNotPartial(t *testing.T) {
	videos := []Video{{Rank: 1, ID: "a"}}
	_, stats := Enrich(videos, PlaylistInfo{ID: "PL1", DeclaredCount: 1}, time.Now().UTC())
	if stats.PartialFetch {
		t.Error("PartialFetch = true for fully retrieved playlist")
	}
}

func TestEnrich_Aggregates(t *testing.T) {
	videos := []Video{
		{Rank: 1, ID: "a", Views: 100, Likes: 10, Comments: 2},
		{Rank: 2, ID: "b", Views: 300, Likes: 30, Comments: 4},
	}
	_, stats := Enrich(videos, PlaylistInfo{ID: "PL1", DeclaredCount: 2}, time.Now().UTC())

	if stats.TotalViews != 400 || stats.TotalLikes != 40 || stats.TotalComments != 6 {
		t.Errorf("totals wrong: %+v", stats)
	}
	if !almostEqual(stats.AvgViews, 200) || !almostEqual(stats.AvgLikes, 20) || !almostEqual(stats.AvgComments, 3) {
		t.Errorf("averages wrong: %+v", stats)
	}
	// (10+2)/100 = 0.12 and (30+4)/300 ≈ 0.11333; mean ≈ 0.116667
	if !almostEqual(stats.AvgEngagement, (0.12+34.0/300.0)/2) {
		t.Errorf("AvgEngagement = %v", stats.AvgEngagement)
	}
}

func TestEnrich_EmptyInput(t *testing.T) {
	rows, stats := Enrich(nil, PlaylistInfo{ID: "PL1"}, time.Now().UTC())
	if len(rows) != 0 {
		t.Errorf("got %d rows for empty input", len(rows))
	}
	if stats.VideoCount != 0 || stats.AvgEngagement != 0 {
		t.Errorf("stats not zeroed: %+v", stats)
	}
	if math.IsNaN(stats.AvgViews) {
		t.Error("AvgViews is NaN for empty input")
	}
}

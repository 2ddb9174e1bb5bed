package domain

import (
	"sort"
	"time"
)

// RankedVideoCount is how many top and bottom performers a PlaylistStats
// records.
const RankedVideoCount = 3

// EngagementRate computes the per-video engagement ratio:
//
//	(Likes + Comments) / Views
//
// Zero views yields 0. The result is always finite, never NaN.
func EngagementRate(v Video) float64 {
	if v.Views <= 0 {
		return 0
	}
	return float64(v.Likes+v.Comments) / float64(v.Views)
}

// ControversyScore measures how comment-heavy a video's engagement is:
//
//	Comments / (Likes + Comments)
//
// The score is bounded to [0, 1] and defined as 0 when both inputs are 0.
// It grows monotonically with comment share: a video argued about in the
// comments scores high, a video merely liked scores low.
func ControversyScore(v Video) float64 {
	total := v.Likes + v.Comments
	if total <= 0 {
		return 0
	}
	return float64(v.Comments) / float64(total)
}

// Enrich appends derived metrics to each canonical row and computes the
// playlist-level aggregate. It is a pure function of its inputs: the same
// rows, playlist metadata and timestamp always produce identical output.
//
// Aggregates cover the rows actually retrieved. When the platform declared
// more videos than were fetched, PartialFetch is set so callers can tell a
// short playlist from a truncated fetch.
func Enrich(videos []Video, playlist PlaylistInfo, computedAt time.Time) ([]EnrichedVideo, *PlaylistStats) {
	enriched := make([]EnrichedVideo, len(videos))

	stats := &PlaylistStats{
		PlaylistID:       playlist.ID,
		Title:            playlist.Title,
		ChannelName:      playlist.ChannelName,
		ChannelThumbnail: playlist.ChannelThumbnail,
		VideoCount:       len(videos),
		DeclaredCount:    playlist.DeclaredCount,
		PartialFetch:     playlist.DeclaredCount > len(videos),
		ComputedAt:       computedAt,
	}

	var engagementSum float64
	for i, v := range videos {
		rate := EngagementRate(v)
		controversy := ControversyScore(v)

		enriched[i] = EnrichedVideo{
			Video:                   v,
			EngagementRateRaw:       rate,
			Controversy:             controversy,
			ViewsFormatted:          FormatCount(v.Views),
			LikesFormatted:          FormatCount(v.Likes),
			CommentsFormatted:       FormatCount(v.Comments),
			DurationFormatted:       FormatDuration(v.DurationSec),
			EngagementRateFormatted: FormatPercent(rate),
			ControversyFormatted:    FormatPercent(controversy),
		}

		stats.TotalViews += v.Views
		stats.TotalLikes += v.Likes
		stats.TotalComments += v.Comments
		engagementSum += rate
	}

	if n := float64(len(videos)); n > 0 {
		stats.AvgViews = float64(stats.TotalViews) / n
		stats.AvgLikes = float64(stats.TotalLikes) / n
		stats.AvgComments = float64(stats.TotalComments) / n
		stats.AvgEngagement = engagementSum / n
	}

	stats.TopVideoIDs = rankByEngagement(enriched, true)
	stats.BottomVideoIDs = rankByEngagement(enriched, false)

	return enriched, stats
}

// rankByEngagement returns up to RankedVideoCount video IDs ordered by
// engagement rate, descending for top performers and ascending for bottom
// ones. Equal rates break ties by ascending Rank so the selection is
// deterministic.
func rankByEngagement(videos []EnrichedVideo, top bool) []string {
	ranked := make([]EnrichedVideo, len(videos))
	copy(ranked, videos)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EngagementRateRaw != ranked[j].EngagementRateRaw {
			if top {
				return ranked[i].EngagementRateRaw > ranked[j].EngagementRateRaw
			}
			return ranked[i].EngagementRateRaw < ranked[j].EngagementRateRaw
		}
		return ranked[i].Rank < ranked[j].Rank
	})

	n := RankedVideoCount
	if n > len(ranked) {
		n = len(ranked)
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = ranked[i].ID
	}
	return ids
}

package scraper

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"viralvibes/internal/domain"
	"viralvibes/internal/infra/backend"
)

const (
	testBaseURL    = "https://extractor.example.com"
	testPlaylistID = "PLtest123"
	testPageURL    = testBaseURL + "/api/playlists/" + testPlaylistID
)

func newTestClient(t *testing.T, cookieData string) *Client {
	t.Helper()

	cfg := backend.ClientConfig{
		BaseURL: testBaseURL,
		Timeout: 5 * time.Second,
		Retry: backend.RetryConfig{
			MaxAttempts: 2,
			WaitTime:    10 * time.Millisecond,
			MaxWaitTime: 50 * time.Millisecond,
		},
		CB: backend.CBConfig{
			MaxRequests:  5,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}
	client, err := New(cfg, cookieData, zap.NewNop())
	require.NoError(t, err)

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.client.GetClient())

	return client
}

func int64p(v int64) *int64 { return &v }

func float64p(v float64) *float64 { return &v }

func mockPage(videoIDs []string, entryCount int, hasMore bool) playlistPage {
	page := playlistPage{
		Playlist: playlistHeader{
			ID:         testPlaylistID,
			Title:      "Festival Hits",
			Uploader:   "Test Channel",
			Thumbnail:  "https://img.example.com/ch.jpg",
			EntryCount: entryCount,
		},
		HasMore: hasMore,
	}
	for _, id := range videoIDs {
		page.Entries = append(page.Entries, entry{
			ID:           id,
			Title:        "Video " + id,
			Uploader:     "Test Channel",
			ViewCount:    int64p(10000),
			LikeCount:    int64p(500),
			CommentCount: int64p(42),
			Duration:     float64p(330),
			UploadDate:   "20240115",
			Categories:   []string{"Music"},
		})
	}

	return page
}

func pageQuery(offset string) map[string]string {
	return map[string]string{"flat": "0", "offset": offset, "limit": "100"}
}

// TestScraper_Fetch_Success tests a single-page fetch.
func TestScraper_Fetch_Success(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t, "")
	httpmock.RegisterResponder("GET", testPageURL,
		httpmock.NewJsonResponderOrPanic(200, mockPage([]string{"vid-1", "vid-2"}, 2, false)))

	result, err := client.Fetch(context.Background(), testPlaylistID, domain.FetchOptions{})

	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, testPlaylistID, result.Playlist.ID)
	assert.Equal(t, "Festival Hits", result.Playlist.Title)
	assert.Equal(t, "Test Channel", result.Playlist.ChannelName)
	assert.Equal(t, 2, result.Playlist.DeclaredCount)

	require.Len(t, result.Videos, 2)
	assert.Equal(t, "vid-1", result.Videos[0].ID)
	assert.Equal(t, int64(10000), result.Videos[0].Fields["view_count"])
	assert.Equal(t, "20240115", result.Videos[0].Fields["upload_date"])
	assert.Equal(t, "Music", result.Videos[0].Fields["category_name"])
}

// TestScraper_Fetch_Pagination tests that pages are walked until has_more is
// false, advancing the offset by the page size.
func TestScraper_Fetch_Pagination(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t, "")
	httpmock.RegisterResponderWithQuery("GET", testPageURL, pageQuery("0"),
		httpmock.NewJsonResponderOrPanic(200, mockPage([]string{"vid-1"}, 2, true)))
	httpmock.RegisterResponderWithQuery("GET", testPageURL, pageQuery("100"),
		httpmock.NewJsonResponderOrPanic(200, mockPage([]string{"vid-2"}, 2, false)))

	result, err := client.Fetch(context.Background(), testPlaylistID, domain.FetchOptions{})

	require.NoError(t, err)
	require.Len(t, result.Videos, 2)
	assert.Equal(t, "vid-1", result.Videos[0].ID)
	assert.Equal(t, "vid-2", result.Videos[1].ID)
}

// TestScraper_Fetch_MaxVideos tests that the video cap stops the page walk.
func TestScraper_Fetch_MaxVideos(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t, "")
	httpmock.RegisterResponder("GET", testPageURL,
		httpmock.NewJsonResponderOrPanic(200, mockPage([]string{"vid-1", "vid-2", "vid-3"}, 10, true)))

	result, err := client.Fetch(context.Background(), testPlaylistID, domain.FetchOptions{MaxVideos: 2})

	require.NoError(t, err)
	assert.Len(t, result.Videos, 2)
}

// TestScraper_Fetch_NotFound tests that 404 maps to NotFoundError.
func TestScraper_Fetch_NotFound(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t, "")
	httpmock.RegisterResponder("GET", testPageURL,
		httpmock.NewStringResponder(404, "not found"))

	result, err := client.Fetch(context.Background(), testPlaylistID, domain.FetchOptions{})

	require.Error(t, err)
	assert.Nil(t, result)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, testPlaylistID, nf.PlaylistID)
}

// TestScraper_Fetch_BotChallenge tests that a 403 bot challenge maps to
// RateLimitedError so callers treat it as transient.
func TestScraper_Fetch_BotChallenge(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t, "")
	httpmock.RegisterResponder("GET", testPageURL,
		httpmock.NewStringResponder(403, "bot check"))

	result, err := client.Fetch(context.Background(), testPlaylistID, domain.FetchOptions{})

	require.Error(t, err)
	assert.Nil(t, result)

	var rl *domain.RateLimitedError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, BackendName, rl.Backend)
	assert.True(t, domain.Retryable(err))
}

// TestScraper_Fetch_PartialMidWalk tests that a failure after the first page
// returns the rows gathered so far, flagged with UpstreamError.
func TestScraper_Fetch_PartialMidWalk(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t, "")
	httpmock.RegisterResponderWithQuery("GET", testPageURL, pageQuery("0"),
		httpmock.NewJsonResponderOrPanic(200, mockPage([]string{"vid-1"}, 2, true)))
	httpmock.RegisterResponderWithQuery("GET", testPageURL, pageQuery("100"),
		httpmock.NewStringResponder(500, "Internal Server Error"))

	result, err := client.Fetch(context.Background(), testPlaylistID, domain.FetchOptions{})

	require.Error(t, err)
	require.NotNil(t, result)

	var ue *domain.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 1, ue.Retrieved)
	assert.Len(t, result.Videos, 1)
	assert.Equal(t, 2, result.Playlist.DeclaredCount)
}

// TestScraper_CookieJar tests that cookie material is written to a private
// location, attached to the client, and removed on Close.
func TestScraper_CookieJar(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	cookieData := "# Netscape HTTP Cookie File\n" +
		".example.com\tTRUE\t/\tTRUE\t1999999999\tSESSION\tabc123\n" +
		"malformed line without tabs\n" +
		".example.com\tTRUE\t/\tFALSE\t1999999999\tPREFS\thl=en\n"

	client := newTestClient(t, cookieData)

	require.NotNil(t, client.jar)
	assert.Len(t, client.jar.cookies, 2)
	assert.Equal(t, "SESSION", client.jar.cookies[0].Name)
	assert.Equal(t, "abc123", client.jar.cookies[0].Value)
	assert.True(t, client.jar.cookies[0].Secure)

	path := filepath.Join(client.jar.dir, "cookies.txt")
	_, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

// TestScraper_NoCookies tests that an empty cookie string yields no jar and
// a nil-safe Close.
func TestScraper_NoCookies(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	client := newTestClient(t, "   \n")

	assert.Nil(t, client.jar)
	assert.NoError(t, client.Close())
	assert.Equal(t, "scraper", client.Name())
}

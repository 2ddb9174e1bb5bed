// Package dataapi implements the metadata backend over the platform's
// official Data API. It is fast and reliable but metered: quota exhaustion
// surfaces as a RateLimitedError so callers can fall back to the scraper.
package dataapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"viralvibes/internal/domain"
	"viralvibes/internal/infra/backend"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "dataapi"

// maxIDsPerRequest is the platform's cap on batched video lookups.
const maxIDsPerRequest = 50

// API paths.
const (
	playlistsPath     = "/youtube/v3/playlists"
	playlistItemsPath = "/youtube/v3/playlistItems"
	videosPath        = "/youtube/v3/videos"
)

// Client implements domain.Backend against the official Data API.
type Client struct {
	key     string
	client  *resty.Client
	cb      *gobreaker.CircuitBreaker[*resty.Response]
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a Data API backend client. The key is the metered API
// credential and is sent as a query parameter on every request.
func New(cfg backend.ClientConfig, key string, logger *zap.Logger) *Client {
	return &Client{
		key:     key,
		client:  backend.NewRestyClient(cfg),
		cb:      backend.NewCircuitBreaker[*resty.Response](BackendName, cfg.CB),
		limiter: backend.NewLimiter(cfg.Throttle),
		logger:  logger,
	}
}

// Name returns the backend identifier.
func (c *Client) Name() string {
	return BackendName
}

// Fetch retrieves playlist metadata and per-video records. Video IDs are
// collected page by page, then statistics are resolved in batches of 50.
// A failure partway through returns the rows retrieved so far together with
// an *UpstreamError so the caller can label the fetch as partial.
func (c *Client) Fetch(ctx context.Context, playlistID string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	info, err := c.fetchPlaylistInfo(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	ids, pageErr := c.fetchVideoIDs(ctx, playlistID, opts.MaxVideos)
	if pageErr != nil && len(ids) == 0 {
		return nil, pageErr
	}

	raws, statsErr := c.fetchVideoRecords(ctx, ids)

	result := &domain.FetchResult{Playlist: *info, Videos: raws}

	if pageErr != nil || statsErr != nil {
		cause := pageErr
		if cause == nil {
			cause = statsErr
		}
		c.logger.Warn("dataapi partial fetch",
			zap.String("playlist_id", playlistID),
			zap.Int("retrieved", len(raws)),
			zap.Int("declared", info.DeclaredCount),
			zap.Error(cause),
		)

		return result, &domain.UpstreamError{Backend: BackendName, Retrieved: len(raws), Err: cause}
	}

	c.logger.Info("dataapi fetch completed",
		zap.String("playlist_id", playlistID),
		zap.Int("count", len(raws)),
	)

	return result, nil
}

// HealthCheck verifies the API is reachable with the configured key.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"part": "id", "id": "health", "key": c.key}).
		Get(playlistsPath)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return c.classify(resp)
	}

	return nil
}

// Close is a no-op; the API backend holds no credential material on disk.
func (c *Client) Close() error {
	return nil
}

func (c *Client) fetchPlaylistInfo(ctx context.Context, playlistID string) (*domain.PlaylistInfo, error) {
	var result playlistsResponse
	if err := c.get(ctx, playlistsPath, map[string]string{
		"part": "snippet,contentDetails",
		"id":   playlistID,
	}, &result); err != nil {
		return nil, err
	}

	// The API answers 200 with an empty item list for unknown playlists.
	if len(result.Items) == 0 {
		return nil, &domain.NotFoundError{PlaylistID: playlistID}
	}

	item := result.Items[0]

	return &domain.PlaylistInfo{
		ID:               playlistID,
		Title:            item.Snippet.Title,
		ChannelName:      item.Snippet.ChannelTitle,
		ChannelThumbnail: item.Snippet.Thumbnails.bestURL(),
		DeclaredCount:    item.ContentDetails.ItemCount,
	}, nil
}

// fetchVideoIDs walks the playlistItems pages in order. On a page failure the
// IDs gathered so far are returned alongside the error.
func (c *Client) fetchVideoIDs(ctx context.Context, playlistID string, maxVideos int) ([]string, error) {
	var (
		ids       []string
		pageToken string
	)

	for {
		var page playlistItemsResponse
		params := map[string]string{
			"part":       "contentDetails",
			"playlistId": playlistID,
			"maxResults": "50",
		}
		if pageToken != "" {
			params["pageToken"] = pageToken
		}

		if err := c.get(ctx, playlistItemsPath, params, &page); err != nil {
			return ids, err
		}

		for _, item := range page.Items {
			ids = append(ids, item.ContentDetails.VideoID)
			if maxVideos > 0 && len(ids) >= maxVideos {
				return ids, nil
			}
		}

		if page.NextPageToken == "" {
			return ids, nil
		}
		pageToken = page.NextPageToken
	}
}

// fetchVideoRecords resolves statistics for the given IDs in request batches,
// preserving playlist order in the output.
func (c *Client) fetchVideoRecords(ctx context.Context, ids []string) ([]domain.RawVideo, error) {
	raws := make([]domain.RawVideo, 0, len(ids))

	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		var result videosResponse
		if err := c.get(ctx, videosPath, map[string]string{
			"part": "snippet,statistics,contentDetails",
			"id":   strings.Join(batch, ","),
		}, &result); err != nil {
			return raws, err
		}

		// The API may reorder or drop IDs; re-align to playlist order.
		byID := make(map[string]*videoResource, len(result.Items))
		for i := range result.Items {
			byID[result.Items[i].ID] = &result.Items[i]
		}
		for _, id := range batch {
			if res, ok := byID[id]; ok {
				raws = append(raws, res.toRaw())
			}
		}
	}

	return raws, nil
}

// get performs one rate-limited, circuit-broken API request and decodes the
// JSON payload into out.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.UpstreamError{Backend: BackendName, Err: err}
	}

	_, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetQueryParam("key", c.key).
			SetResult(out).
			Get(path)
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, c.classify(r)
		}

		return r, nil
	})
	if err != nil {
		c.logger.Warn("dataapi request failed",
			zap.String("path", path),
			zap.String("state", c.cb.State().String()),
			zap.Error(err),
		)

		var nf *domain.NotFoundError
		if domain.Retryable(err) || errors.As(err, &nf) {
			return err
		}

		return &domain.UpstreamError{Backend: BackendName, Err: err}
	}

	return nil
}

// classify maps API error statuses onto the domain taxonomy. The platform
// signals quota exhaustion with 403 and throttling with 429.
func (c *Client) classify(r *resty.Response) error {
	switch r.StatusCode() {
	case 403, 429:
		return &domain.RateLimitedError{Backend: BackendName}
	case 404:
		return &domain.NotFoundError{}
	default:
		return &domain.UpstreamError{
			Backend: BackendName,
			Err:     fmt.Errorf("unexpected status %d", r.StatusCode()),
		}
	}
}

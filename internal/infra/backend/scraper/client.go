// Package scraper implements the metadata backend over an unofficial
// extraction service. It needs no API quota but is slower, paged, and prone
// to bot checks, so fetches are rate limited and may carry cookie material.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"viralvibes/internal/domain"
	"viralvibes/internal/infra/backend"
)

// BackendName identifies this backend in configuration and logs.
const BackendName = "scraper"

// pageSize is how many entries one extractor page carries.
const pageSize = 100

// Client implements domain.Backend against the extraction service.
type Client struct {
	client  *resty.Client
	cb      *gobreaker.CircuitBreaker[*resty.Response]
	limiter *rate.Limiter
	jar     *cookieJar
	logger  *zap.Logger
}

// New creates a scraper backend client. cookieData is optional Netscape
// cookie text sourced from secret configuration; when present it is written
// to a scoped temp location and attached to every request.
func New(cfg backend.ClientConfig, cookieData string, logger *zap.Logger) (*Client, error) {
	jar, err := writeCookieJar(cookieData)
	if err != nil {
		return nil, err
	}

	client := backend.NewRestyClient(cfg)
	if jar != nil {
		client.SetCookies(jar.cookies)
		logger.Info("scraper cookie jar loaded", zap.Int("cookies", len(jar.cookies)))
	}

	return &Client{
		client:  client,
		cb:      backend.NewCircuitBreaker[*resty.Response](BackendName, cfg.CB),
		limiter: backend.NewLimiter(cfg.Throttle),
		jar:     jar,
		logger:  logger,
	}, nil
}

// Name returns the backend identifier.
func (c *Client) Name() string {
	return BackendName
}

// Fetch walks the extractor's playlist pages in order, rate limited between
// pages. A failure partway through returns the rows retrieved so far
// together with an *UpstreamError so the caller can label the fetch as
// partial.
func (c *Client) Fetch(ctx context.Context, playlistID string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	var (
		info   *domain.PlaylistInfo
		raws   []domain.RawVideo
		offset int
	)

	for {
		page, err := c.fetchPage(ctx, playlistID, offset)
		if err != nil {
			if info == nil {
				return nil, err
			}

			c.logger.Warn("scraper partial fetch",
				zap.String("playlist_id", playlistID),
				zap.Int("retrieved", len(raws)),
				zap.Int("declared", info.DeclaredCount),
				zap.Error(err),
			)

			return &domain.FetchResult{Playlist: *info, Videos: raws},
				&domain.UpstreamError{Backend: BackendName, Retrieved: len(raws), Err: err}
		}

		if info == nil {
			info = &domain.PlaylistInfo{
				ID:               playlistID,
				Title:            page.Playlist.Title,
				ChannelName:      page.Playlist.Uploader,
				ChannelThumbnail: page.Playlist.Thumbnail,
				DeclaredCount:    page.Playlist.EntryCount,
			}
		}

		for i := range page.Entries {
			raws = append(raws, page.Entries[i].toRaw())
			if opts.MaxVideos > 0 && len(raws) >= opts.MaxVideos {
				return &domain.FetchResult{Playlist: *info, Videos: raws}, nil
			}
		}

		if !page.HasMore {
			break
		}
		offset += pageSize
	}

	c.logger.Info("scraper fetch completed",
		zap.String("playlist_id", playlistID),
		zap.Int("count", len(raws)),
	)

	return &domain.FetchResult{Playlist: *info, Videos: raws}, nil
}

// HealthCheck verifies the extraction service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

// Close removes the on-disk cookie material.
func (c *Client) Close() error {
	return c.jar.remove()
}

func (c *Client) fetchPage(ctx context.Context, playlistID string, offset int) (*playlistPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.UpstreamError{Backend: BackendName, Err: err}
	}

	var page playlistPage
	_, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			SetPathParam("id", playlistID).
			SetQueryParams(map[string]string{
				"flat":   "0",
				"offset": strconv.Itoa(offset),
				"limit":  strconv.Itoa(pageSize),
			}).
			SetResult(&page).
			Get("/api/playlists/{id}")
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, c.classify(r, playlistID)
		}

		return r, nil
	})
	if err != nil {
		c.logger.Warn("scraper page failed",
			zap.String("playlist_id", playlistID),
			zap.Int("offset", offset),
			zap.String("state", c.cb.State().String()),
			zap.Error(err),
		)

		var nf *domain.NotFoundError
		if domain.Retryable(err) || errors.As(err, &nf) {
			return nil, err
		}

		return nil, &domain.UpstreamError{Backend: BackendName, Err: err}
	}

	return &page, nil
}

// classify maps extractor error statuses onto the domain taxonomy. A 403 is
// the extractor reporting a bot challenge; like 429 it is transient, so both
// surface as rate limiting.
func (c *Client) classify(r *resty.Response, playlistID string) error {
	switch r.StatusCode() {
	case 404, 410:
		return &domain.NotFoundError{PlaylistID: playlistID}
	case 403, 429:
		return &domain.RateLimitedError{Backend: BackendName}
	default:
		return &domain.UpstreamError{
			Backend: BackendName,
			Err:     fmt.Errorf("unexpected status %d", r.StatusCode()),
		}
	}
}

package registry

import (
	"fmt"

	"viralvibes/internal/config"
	"viralvibes/internal/domain"
	"viralvibes/internal/infra/backend"
	"viralvibes/internal/infra/backend/dataapi"
	"viralvibes/internal/infra/backend/scraper"

	"go.uber.org/zap"
)

// NewBackends creates the primary metadata backend and, when fallback is
// enabled, the secondary one. The primary is selected by name from
// configuration; whichever backend is not primary becomes the fallback.
//
// Returns (primary, fallback, error). Fallback is nil when disabled.
func NewBackends(cfg config.BackendConfig, logger *zap.Logger) (domain.Backend, domain.Backend, error) {
	build := func(name string) (domain.Backend, error) {
		switch name {
		case dataapi.BackendName:
			return dataapi.New(apiClientConfig(cfg.API), cfg.API.Key, logger), nil
		case scraper.BackendName:
			return scraper.New(scraperClientConfig(cfg.Scraper), cfg.Scraper.Cookies, logger)
		default:
			return nil, fmt.Errorf("unknown backend %q", name)
		}
	}

	primary, err := build(cfg.Primary)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.EnableFallback {
		return primary, nil, nil
	}

	fallbackName := scraper.BackendName
	if cfg.Primary == scraper.BackendName {
		fallbackName = dataapi.BackendName
	}

	fallback, err := build(fallbackName)
	if err != nil {
		primary.Close()

		return nil, nil, err
	}

	return primary, fallback, nil
}

func apiClientConfig(cfg config.APIBackendConfig) backend.ClientConfig {
	return backend.ClientConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Retry: backend.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			WaitTime:    cfg.Retry.WaitTime,
			MaxWaitTime: cfg.Retry.MaxWaitTime,
		},
		CB: backend.CBConfig{
			MaxRequests:  cfg.CB.MaxRequests,
			Interval:     cfg.CB.Interval,
			Timeout:      cfg.CB.Timeout,
			FailureRatio: cfg.CB.FailureRatio,
		},
		Throttle: backend.ThrottleConfig{
			RequestsPerSec: cfg.Throttle.RequestsPerSec,
			Burst:          cfg.Throttle.Burst,
		},
	}
}

func scraperClientConfig(cfg config.ScraperBackendConfig) backend.ClientConfig {
	return backend.ClientConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Retry: backend.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			WaitTime:    cfg.Retry.WaitTime,
			MaxWaitTime: cfg.Retry.MaxWaitTime,
		},
		CB: backend.CBConfig{
			MaxRequests:  cfg.CB.MaxRequests,
			Interval:     cfg.CB.Interval,
			Timeout:      cfg.CB.Timeout,
			FailureRatio: cfg.CB.FailureRatio,
		},
		Throttle: backend.ThrottleConfig{
			RequestsPerSec: cfg.Throttle.RequestsPerSec,
			Burst:          cfg.Throttle.Burst,
		},
	}
}

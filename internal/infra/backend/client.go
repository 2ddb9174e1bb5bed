// Package backend provides HTTP client utilities shared by the metadata backends.
package backend

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ClientConfig holds configuration for a backend client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig

	// Throttle bounds the request rate against the upstream source.
	// A zero RequestsPerSec disables client-side throttling.
	Throttle ThrottleConfig
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// ThrottleConfig holds client-side rate limiting configuration.
type ThrottleConfig struct {
	RequestsPerSec float64
	Burst          int
}

// NewRestyClient creates a Resty HTTP client with retry configuration.
// Only network errors and 5xx responses are retried here; quota and
// not-found responses are classified by the backend itself.
func NewRestyClient(cfg ClientConfig) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}

			return r.StatusCode() >= 500
		})

	return client
}

// NewCircuitBreaker creates a circuit breaker for a backend.
func NewCircuitBreaker[T any](name string, cfg CBConfig) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.FailureRatio
		},
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}

// NewLimiter creates the client-side rate limiter for paged playlist walks.
// Returns a limiter that never blocks when throttling is disabled.
func NewLimiter(cfg ThrottleConfig) *rate.Limiter {
	if cfg.RequestsPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst)
}

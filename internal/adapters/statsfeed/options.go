package statsfeed

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/vibe/pkg/logger"
)

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the HTTP client. Its Timeout is left alone.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRateLimit caps requests per second. Non-positive disables throttling.
func WithRateLimit(rps float64) HTTPOption {
	return func(s *HTTPSource) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) HTTPOption {
	return func(s *HTTPSource) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithSeasonType selects "Regular Season", "Playoffs" and the like.
func WithSeasonType(t string) HTTPOption {
	return func(s *HTTPSource) {
		if t != "" {
			s.seasonType = t
		}
	}
}

// WithHTTPLogger sets the logger for request failures.
func WithHTTPLogger(l logger.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.log = l
		}
	}
}

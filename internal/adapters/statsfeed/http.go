package statsfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/pkg/logger"
	"github.com/okian/vibe/pkg/metrics"
)

const (
	defaultFeedTimeout = 20 * time.Second
	defaultSeasonType  = "Regular Season"
	defaultMaxRetries  = 2
	maxErrorBodyLength = 256
)

// The provider starts refusing clients that exceed roughly one request
// every 0.6s.
const defaultFeedRPS = 1 / 0.6

var errTransient = errors.New("transient upstream failure")

// HTTPSource fetches league player totals from the provider over HTTP.
type HTTPSource struct {
	baseURL    *url.URL
	client     *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	seasonType string
	maxRetries int
	log        logger.Logger
}

// NewHTTPSource builds a source for the endpoint at rawURL.
func NewHTTPSource(rawURL string, opts ...HTTPOption) (*HTTPSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse feed url: unsupported scheme %q", u.Scheme)
	}
	s := &HTTPSource{
		baseURL:    u,
		client:     &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(defaultFeedRPS), 1),
		timeout:    defaultFeedTimeout,
		seasonType: defaultSeasonType,
		maxRetries: defaultMaxRetries,
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name implements Source.
func (s *HTTPSource) Name() string { return "http" }

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, season string) ([]model.PlayerSeasonTotals, error) {
	if !ValidSeason(season) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}

	start := time.Now()
	raw, err := s.get(ctx, s.requestURL(season))
	if err != nil {
		metrics.RecordFeedRequest(s.Name(), "error", time.Since(start))
		return nil, err
	}
	out, err := DecodeBytes(raw)
	if err != nil {
		metrics.RecordFeedRequest(s.Name(), "decode_error", time.Since(start))
		return nil, fmt.Errorf("season %s: %w", season, err)
	}
	metrics.RecordFeedRequest(s.Name(), "ok", time.Since(start))
	return out, nil
}

func (s *HTTPSource) requestURL(season string) string {
	u := *s.baseURL
	q := u.Query()
	q.Set("Season", season)
	q.Set("SeasonType", s.seasonType)
	q.Set("PerMode", "Totals")
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *HTTPSource) get(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		raw, err := s.once(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !errors.Is(err, errTransient) || attempt == s.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	s.log.Warn(ctx, "feed request failed", logger.String("url", fullURL), logger.Error(lastErr))
	return nil, lastErr
}

func (s *HTTPSource) once(ctx context.Context, fullURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", errTransient, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("%w: status=%d body=%s", ErrUpstream, resp.StatusCode, abbreviate(raw))
		if retryable(resp.StatusCode) {
			return nil, fmt.Errorf("%w: %w", errTransient, err)
		}
		return nil, err
	}
	return raw, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviate(raw []byte) string {
	if len(raw) > maxErrorBodyLength {
		return string(raw[:maxErrorBodyLength]) + "..."
	}
	return string(raw)
}

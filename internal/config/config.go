// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers a file and env on top.
// - Validation failures wrap ErrInvalidConfig, loader failures ErrLoadConfig.
package config

import (
	"fmt"
	"net/url"
	"runtime"
	"time"

	"github.com/okian/vibe/internal/domain/vibe"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scoring job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxSeasons bounds how many season boards are kept; 0 keeps all.
	MaxSeasons int `koanf:"max_seasons"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DefaultSeason answers board queries that name no season.
	DefaultSeason string `koanf:"default_season"`

	// MinCohortSize is the smallest reference group that yields a spread.
	MinCohortSize int `koanf:"min_cohort_size"`

	// ReferenceMinMinutes limits the cohort reference frame to players
	// with at least this many minutes; 0 uses everyone.
	ReferenceMinMinutes float64 `koanf:"reference_min_minutes"`

	// FeedURL selects the HTTP stats feed; FeedDir the file feed.
	FeedURL       string  `koanf:"feed_url"`
	FeedDir       string  `koanf:"feed_dir"`
	FeedRPS       float64 `koanf:"feed_rps"`
	FeedTimeoutMS int     `koanf:"feed_timeout_ms"`

	// PreloadSeasons are fetched and scored at startup.
	PreloadSeasons []string `koanf:"preload_seasons"`
}

// New creates a Config populated with defaults.
func New() *Config {
	l := vibe.DefaultLeague()
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           64,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          4096,
		MaxSeasons:          0,
		MaxLeaderboardLimit: 100,
		MinCohortSize:       l.MinCohortSize,
		ReferenceMinMinutes: l.ReferenceMinMinutes,
		FeedRPS:             1 / 0.6,
		FeedTimeoutMS:       20_000,
	}
}

// League returns the scoring constants with the configured reference frame.
func (c *Config) League() vibe.League {
	return vibe.DefaultLeague().
		WithMinCohortSize(c.MinCohortSize).
		WithReferenceMinMinutes(c.ReferenceMinMinutes)
}

// FeedTimeout returns FeedTimeoutMS as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize < 1:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.MaxSeasons < 0:
		return fmt.Errorf("%w: max_seasons must not be negative, got %d", ErrInvalidConfig, c.MaxSeasons)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive, got %d", ErrInvalidConfig, c.MaxLeaderboardLimit)
	case c.MinCohortSize < 2:
		return fmt.Errorf("%w: min_cohort_size must be at least 2, got %d", ErrInvalidConfig, c.MinCohortSize)
	case c.ReferenceMinMinutes < 0:
		return fmt.Errorf("%w: reference_min_minutes must not be negative", ErrInvalidConfig)
	case c.FeedTimeoutMS < 1:
		return fmt.Errorf("%w: feed_timeout_ms must be positive, got %d", ErrInvalidConfig, c.FeedTimeoutMS)
	}
	if c.FeedURL != "" {
		u, err := url.Parse(c.FeedURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: feed_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.FeedURL)
		}
	}
	return nil
}

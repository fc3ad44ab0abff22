package service

import (
	"github.com/okian/vibe/internal/adapters/statsfeed"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets how many roster jobs may wait.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submissions are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobHistory sets how many finished jobs stay queryable.
func WithJobHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.jobHistory = n
		}
	}
}

// WithMaxSeasons bounds the number of published boards kept in memory.
func WithMaxSeasons(n int) Option {
	return func(s *Service) {
		s.maxSeasons = n
	}
}

// WithLeague replaces the default league constants.
func WithLeague(l vibe.League) Option {
	return func(s *Service) {
		s.league = l
	}
}

// WithSource sets the stats feed used by Refresh and preloading.
func WithSource(src statsfeed.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithDefaultSeason sets the season used when a read does not name one.
func WithDefaultSeason(season string) Option {
	return func(s *Service) {
		s.defaultSeason = season
	}
}

// WithPreloadSeasons lists seasons fetched and scored during Start.
func WithPreloadSeasons(seasons ...string) Option {
	return func(s *Service) {
		s.preload = append([]string(nil), seasons...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

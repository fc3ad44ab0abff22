package repository

import "time"

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithMaxSeasons bounds how many season boards are kept. When exceeded the
// board published longest ago is dropped. n <= 0 keeps every season.
func WithMaxSeasons(n int) Option {
	return func(s *TreapStore) {
		s.maxSeasons = n
	}
}

// WithClock overrides the publish timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *TreapStore) {
		if now != nil {
			s.now = now
		}
	}
}

package statsfeed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/pkg/metrics"
)

// seasonPattern admits provider season names such as "2023-24".
var seasonPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z_-]{0,31}$`)

// Source fetches the complete roster of one season.
type Source interface {
	Fetch(ctx context.Context, season string) ([]model.PlayerSeasonTotals, error)
	Name() string
}

// ValidSeason reports whether season is usable as a source key.
func ValidSeason(season string) bool {
	return seasonPattern.MatchString(season)
}

// FileSource reads <dir>/<season>.json payloads saved from the provider.
type FileSource struct {
	dir string
}

// NewFileSource returns a source over dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context, season string) ([]model.PlayerSeasonTotals, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	if !ValidSeason(season) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}

	start := time.Now()
	out, err := DecodeFile(filepath.Join(s.dir, season+".json"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		metrics.RecordFeedRequest(s.Name(), "not_found", time.Since(start))
		return nil, fmt.Errorf("%w: %s", ErrUnknownSeason, season)
	case err != nil:
		metrics.RecordFeedRequest(s.Name(), "error", time.Since(start))
		return nil, err
	}
	metrics.RecordFeedRequest(s.Name(), "ok", time.Since(start))
	return out, nil
}

// Seasons lists the seasons present in the directory.
func (s *FileSource) Seasons() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		season := e.Name()[:len(e.Name())-len(".json")]
		if ValidSeason(season) {
			out = append(out, season)
		}
	}
	return out, nil
}

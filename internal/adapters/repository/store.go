// Package repository holds the published per-season leaderboards.
package repository

import (
	"context"

	"github.com/okian/vibe/internal/domain/types"
	"github.com/okian/vibe/internal/domain/vibe"
)

// Store provides read/write access to the published season boards.
// A board is always replaced as a whole: a season is never partially updated.
type Store interface {
	// Publish builds the board of run.Season and swaps it in atomically.
	// A run submitted before the current board's returns ErrStaleRun.
	Publish(ctx context.Context, run *vibe.Run) error

	// Rank returns a scored player's entry. Unknown players return
	// ErrNotFound; players kept as unscored return ErrUnscored.
	Rank(ctx context.Context, season, playerID string) (types.Entry, error)

	// TopN returns the top-n scored players ordered by Final desc, ties by
	// player id. An empty pos means every position.
	TopN(ctx context.Context, season string, n int, pos vibe.Position) ([]types.Entry, error)

	// Player returns the full breakdown of one player, scored or not.
	Player(ctx context.Context, season, playerID string) (vibe.PlayerResult, error)

	// Run returns the published run of a season.
	Run(ctx context.Context, season string) (*vibe.Run, error)

	// Seasons lists published seasons ordered by name.
	Seasons(ctx context.Context) []types.SeasonSummary

	// Count returns the number of scored players of a season.
	Count(ctx context.Context, season string) int
}

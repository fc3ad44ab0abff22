package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/okian/vibe/internal/domain/types"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: Final DESC, then player id ASC (deterministic). "less" means
// ranks earlier, so an in-order traversal yields the board best to worst.

// scoreScale controls fixed-point scaling from float64. VIBE scores sit in
// the low hundreds, so nine decimals stay far from int64 overflow.
const scoreScale = 1_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case math.IsInf(x, 1):
		return scoreFP(math.MaxInt64)
	case math.IsInf(x, -1):
		return scoreFP(math.MinInt64)
	}
	scaled := x * scoreScale
	if scaled >= float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled <= float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// idPriority hashes the id so the heap order is independent of insertion
// order and of the score distribution.
func idPriority(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, id string, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: idPriority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// countBefore returns how many nodes rank strictly ahead of (score, id).
func countBefore(n *node, score scoreFP, id string) int {
	count := 0
	for n != nil {
		if less(n.score, n.id, score, id) {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order, skipping players
// that keep returns false for.
func collectTopN(n *node, limit int, keep func(id string) bool, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, keep, out)
	if len(*out) < limit && keep(n.id) {
		*out = append(*out, n.id)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, keep, out)
	}
}

// board is one immutable, published season.
type board struct {
	run       *vibe.Run
	root      *node
	entries   map[string]types.Entry
	published time.Time
}

func buildBoard(run *vibe.Run, at time.Time) *board {
	b := &board{
		run:       run,
		entries:   make(map[string]types.Entry, run.Scored),
		published: at,
	}
	ranked := run.Ranked()
	for _, r := range ranked {
		b.root = insert(b.root, r.PlayerID, toFixedPoint(r.Final))
	}

	rows := make([]rankedRow, len(ranked))
	for i, r := range ranked {
		rows[i] = rankedRow{
			key: toFixedPoint(r.Final),
			entry: types.Entry{
				PlayerID:   r.PlayerID,
				PlayerName: r.PlayerName,
				Team:       r.Team,
				Position:   string(r.Position),
				Score:      r.Final,
				Tier:       string(r.Tier),
			},
		}
	}
	// Re-sort on the fixed-point key so ranks agree with the treap order.
	sort.Slice(rows, func(i, j int) bool {
		return less(rows[i].key, rows[i].entry.PlayerID, rows[j].key, rows[j].entry.PlayerID)
	})
	assignRanksWithTies(rows)
	for _, row := range rows {
		b.entries[row.entry.PlayerID] = row.entry
	}
	return b
}

type rankedRow struct {
	key   scoreFP
	entry types.Entry
}

// assignRanksWithTies assigns dense ranks: equal scores share a rank and
// the next distinct score takes the next consecutive rank.
func assignRanksWithTies(rows []rankedRow) {
	rank := 0
	for i := range rows {
		if i == 0 || rows[i].key != rows[i-1].key {
			rank++
		}
		rows[i].entry.Rank = rank
	}
}

func (b *board) summary() types.SeasonSummary {
	return types.SeasonSummary{
		Season:      b.run.Season,
		Players:     len(b.run.Results),
		Scored:      b.run.Scored,
		Unscored:    b.run.Unscored,
		Rejected:    len(b.run.Rejected),
		Diagnostics: len(b.run.Diagnostics),
		PublishedAt: b.published,
	}
}

// TreapStore keeps one treap-indexed board per season. Readers take the
// board pointer under a read lock and then work on immutable data.
type TreapStore struct {
	mu         sync.RWMutex
	boards     map[string]*board
	maxSeasons int
	now        func() time.Time
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		boards: make(map[string]*board),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish implements Store.Publish. The board is built outside the lock and
// swapped in with a single map write. A run whose roster was submitted
// before the current board's is dropped, so a slow older job never
// overwrites a newer season snapshot.
func (s *TreapStore) Publish(ctx context.Context, run *vibe.Run) error {
	if run == nil {
		return ErrNilRun
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	start := time.Now()
	b := buildBoard(run, s.now())

	s.mu.Lock()
	if cur, ok := s.boards[run.Season]; ok && cur.run.Submitted.After(run.Submitted) {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "stale_run")
		return fmt.Errorf("%w: %s", ErrStaleRun, run.Season)
	}
	s.boards[run.Season] = b
	s.evictLocked(run.Season)
	seasons := len(s.boards)
	s.mu.Unlock()

	metrics.RecordBoardPublish(time.Since(start))
	metrics.UpdateSeasonsTracked(seasons)
	metrics.UpdatePlayersRanked(run.Season, run.Scored)
	return nil
}

// evictLocked drops the oldest boards beyond maxSeasons, never keep.
// Caller holds s.mu.
func (s *TreapStore) evictLocked(keep string) {
	if s.maxSeasons <= 0 {
		return
	}
	for len(s.boards) > s.maxSeasons {
		var oldest string
		var at time.Time
		found := false
		for season, b := range s.boards {
			if season == keep {
				continue
			}
			if !found || b.published.Before(at) || (b.published.Equal(at) && season < oldest) {
				oldest, at, found = season, b.published, true
			}
		}
		if !found {
			return
		}
		delete(s.boards, oldest)
	}
}

func (s *TreapStore) board(season string) (*board, error) {
	s.mu.RLock()
	b, ok := s.boards[season]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "season_not_found")
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, season)
	}
	return b, nil
}

// Rank implements Store.Rank.
func (s *TreapStore) Rank(_ context.Context, season, playerID string) (types.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordBoardQuery("rank", time.Since(start)) }()

	b, err := s.board(season)
	if err != nil {
		return types.Entry{}, err
	}
	if e, ok := b.entries[playerID]; ok {
		return e, nil
	}
	if _, ok := b.run.Results[playerID]; ok {
		return types.Entry{}, ErrUnscored
	}
	metrics.RecordErrorByComponent("repository", "not_found")
	return types.Entry{}, ErrNotFound
}

// Position returns the 0-based position of a scored player on the board,
// counting every player ranked strictly ahead.
func (s *TreapStore) Position(_ context.Context, season, playerID string) (int, error) {
	b, err := s.board(season)
	if err != nil {
		return 0, err
	}
	e, ok := b.entries[playerID]
	if !ok {
		return 0, ErrNotFound
	}
	return countBefore(b.root, toFixedPoint(e.Score), playerID), nil
}

// TopN implements Store.TopN.
func (s *TreapStore) TopN(_ context.Context, season string, n int, pos vibe.Position) ([]types.Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordBoardQuery("top", time.Since(start)) }()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	b, err := s.board(season)
	if err != nil {
		return nil, err
	}

	keep := func(string) bool { return true }
	if pos != "" {
		keep = func(id string) bool { return b.entries[id].Position == string(pos) }
	}
	ids := make([]string, 0, min(n, len(b.entries)))
	collectTopN(b.root, n, keep, &ids)

	out := make([]types.Entry, len(ids))
	for i, id := range ids {
		out[i] = b.entries[id]
	}
	return out, nil
}

// Player implements Store.Player.
func (s *TreapStore) Player(_ context.Context, season, playerID string) (vibe.PlayerResult, error) {
	start := time.Now()
	defer func() { metrics.RecordBoardQuery("player", time.Since(start)) }()

	b, err := s.board(season)
	if err != nil {
		return vibe.PlayerResult{}, err
	}
	r, ok := b.run.Results[playerID]
	if !ok {
		return vibe.PlayerResult{}, ErrNotFound
	}
	return r, nil
}

// Run implements Store.Run.
func (s *TreapStore) Run(_ context.Context, season string) (*vibe.Run, error) {
	b, err := s.board(season)
	if err != nil {
		return nil, err
	}
	return b.run, nil
}

// Seasons implements Store.Seasons.
func (s *TreapStore) Seasons(_ context.Context) []types.SeasonSummary {
	s.mu.RLock()
	out := make([]types.SeasonSummary, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, b.summary())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out
}

// Count implements Store.Count.
func (s *TreapStore) Count(_ context.Context, season string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.boards[season]; ok {
		return len(b.entries)
	}
	return 0
}

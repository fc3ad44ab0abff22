// Package statsfeed reads season player totals from the stats provider.
//
// The provider answers with tabular result sets:
//
//	{"resultSets":[{"name":"LeagueDashPlayerStats","headers":[...],"rowSet":[[...],...]}]}
//
// Columns are matched by header name, so extra or reordered columns are
// harmless. A plain JSON array of records in the same column names is also
// accepted, which is what the API takes for roster submissions.
package statsfeed

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/okian/vibe/internal/domain/model"
)

const (
	// PlayerStatsSet is the result set name the provider uses for totals.
	PlayerStatsSet = "LeagueDashPlayerStats"

	maxPayloadBytes = 32 << 20
)

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type envelope struct {
	ResultSets []resultSet `json:"resultSets"`
	// Some provider endpoints return a single object instead of a list.
	ResultSet *resultSet `json:"resultSet"`
}

type column func(t *model.PlayerSeasonTotals) *float64

var numericColumns = map[string]column{
	"GP":         func(t *model.PlayerSeasonTotals) *float64 { return &t.GP },
	"MIN":        func(t *model.PlayerSeasonTotals) *float64 { return &t.MIN },
	"PTS":        func(t *model.PlayerSeasonTotals) *float64 { return &t.PTS },
	"FGA":        func(t *model.PlayerSeasonTotals) *float64 { return &t.FGA },
	"FGM":        func(t *model.PlayerSeasonTotals) *float64 { return &t.FGM },
	"FG3A":       func(t *model.PlayerSeasonTotals) *float64 { return &t.FG3A },
	"FG3M":       func(t *model.PlayerSeasonTotals) *float64 { return &t.FG3M },
	"FTA":        func(t *model.PlayerSeasonTotals) *float64 { return &t.FTA },
	"FTM":        func(t *model.PlayerSeasonTotals) *float64 { return &t.FTM },
	"OREB":       func(t *model.PlayerSeasonTotals) *float64 { return &t.ORB },
	"DREB":       func(t *model.PlayerSeasonTotals) *float64 { return &t.DRB },
	"AST":        func(t *model.PlayerSeasonTotals) *float64 { return &t.AST },
	"TOV":        func(t *model.PlayerSeasonTotals) *float64 { return &t.TOV },
	"STL":        func(t *model.PlayerSeasonTotals) *float64 { return &t.STL },
	"BLK":        func(t *model.PlayerSeasonTotals) *float64 { return &t.BLK },
	"PF":         func(t *model.PlayerSeasonTotals) *float64 { return &t.PF },
	"PLUS_MINUS": func(t *model.PlayerSeasonTotals) *float64 { return &t.PlusMinus },
}

// Decode reads one season of player totals from r.
func Decode(r io.Reader) ([]model.PlayerSeasonTotals, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeFile decodes the payload stored at path.
func DecodeFile(path string) ([]model.PlayerSeasonTotals, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	out, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// DecodeBytes decodes a payload already in memory.
func DecodeBytes(raw []byte) ([]model.PlayerSeasonTotals, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrNoResultSet
	}
	if trimmed[0] == '[' {
		var records []model.PlayerSeasonTotals
		if err := sonic.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return records, nil
	}

	var env envelope
	if err := sonic.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode result sets: %w", err)
	}
	set, ok := pickSet(env)
	if !ok {
		return nil, ErrNoResultSet
	}
	return set.totals()
}

func pickSet(env envelope) (resultSet, bool) {
	sets := env.ResultSets
	if env.ResultSet != nil {
		sets = append(sets, *env.ResultSet)
	}
	for _, s := range sets {
		if s.Name == PlayerStatsSet {
			return s, true
		}
	}
	if len(sets) == 0 {
		return resultSet{}, false
	}
	return sets[0], true
}

func (s resultSet) totals() ([]model.PlayerSeasonTotals, error) {
	index := make(map[string]int, len(s.Headers))
	for i, h := range s.Headers {
		index[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	idCol, ok := index["PLAYER_ID"]
	if !ok {
		return nil, fmt.Errorf("%w: PLAYER_ID", ErrMissingColumn)
	}

	out := make([]model.PlayerSeasonTotals, 0, len(s.RowSet))
	for r, row := range s.RowSet {
		var t model.PlayerSeasonTotals
		t.PlayerID = model.PlayerID(cellString(cell(row, idCol)))
		if i, ok := index["PLAYER_NAME"]; ok {
			t.PlayerName = cellString(cell(row, i))
		}
		if i, ok := index["TEAM_ABBREVIATION"]; ok {
			t.Team = cellString(cell(row, i))
		}
		for name, field := range numericColumns {
			i, ok := index[name]
			if !ok {
				continue
			}
			v, err := cellFloat(cell(row, i))
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", r, name, err)
			}
			*field(&t) = v
		}
		out = append(out, t)
	}
	return out, nil
}

func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// cellFloat reads a numeric cell. Null cells are zero.
func cellFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case bool:
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidValue, x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, x)
	}
}

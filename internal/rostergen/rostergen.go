// Package rostergen builds deterministic synthetic season rosters for
// demos, load tests and fixtures. The same (n, seed) always yields the
// same roster, player ids included.
package rostergen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/vibe/internal/domain/model"
)

// Namespace seeds the SHA-1 player ids.
var Namespace = uuid.MustParse("6f1c2f8e-4a7b-5d3e-9c10-2b8f7a5e3d41")

var teams = [...]string{
	"ATL", "BOS", "BKN", "CHA", "CHI", "CLE", "DAL", "DEN", "DET", "GSW",
	"HOU", "IND", "LAC", "LAL", "MEM", "MIA", "MIL", "MIN", "NOP", "NYK",
	"OKC", "ORL", "PHI", "PHX", "POR", "SAC", "SAS", "TOR", "UTA", "WAS",
}

// per-36 production of an archetype before jitter.
type archetype struct {
	pts, fga, fg3a, fta, orb, drb, ast, tov, stl, blk, pf float64
	fgPct, fg3Pct, ftPct                                  float64
}

var archetypes = [...]archetype{
	// guard
	{pts: 19, fga: 16, fg3a: 7, fta: 4, orb: 0.7, drb: 3.3, ast: 6.5, tov: 2.8, stl: 1.3, blk: 0.3, pf: 2.4, fgPct: .45, fg3Pct: .36, ftPct: .83},
	// wing
	{pts: 17, fga: 14, fg3a: 5.5, fta: 3.5, orb: 1.2, drb: 4.6, ast: 2.8, tov: 1.8, stl: 1.1, blk: 0.6, pf: 2.8, fgPct: .46, fg3Pct: .36, ftPct: .78},
	// big
	{pts: 16, fga: 11.5, fg3a: 1.5, fta: 4.5, orb: 3.4, drb: 7.8, ast: 2.4, tov: 2.0, stl: 0.8, blk: 1.7, pf: 3.4, fgPct: .56, fg3Pct: .32, ftPct: .70},
}

// Option configures Generate.
type Option func(*generator)

type generator struct {
	namespace uuid.UUID
	dnpShare  float64
}

// WithNamespace changes the id namespace, so two generators with the same
// seed can produce disjoint rosters.
func WithNamespace(ns uuid.UUID) Option {
	return func(g *generator) { g.namespace = ns }
}

// WithDNPShare makes roughly share of the roster register no minutes.
func WithDNPShare(share float64) Option {
	return func(g *generator) {
		if share >= 0 && share <= 1 {
			g.dnpShare = share
		}
	}
}

// Generate returns n synthetic season totals.
func Generate(n int, seed int64, opts ...Option) []model.PlayerSeasonTotals {
	g := generator{namespace: Namespace}
	for _, opt := range opts {
		opt(&g)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data
	out := make([]model.PlayerSeasonTotals, 0, n)
	for i := 0; i < n; i++ {
		id := uuid.NewSHA1(g.namespace, []byte(fmt.Sprintf("%d/%d", seed, i)))
		p := model.PlayerSeasonTotals{
			PlayerID:   model.PlayerID(id.String()),
			PlayerName: fmt.Sprintf("Player %03d", i+1),
			Team:       teams[rng.Intn(len(teams))],
		}
		if g.dnpShare > 0 && rng.Float64() < g.dnpShare {
			p.GP = float64(rng.Intn(3))
			out = append(out, p)
			continue
		}
		fill(&p, archetypes[i%len(archetypes)], rng)
		out = append(out, p)
	}
	return out
}

func fill(p *model.PlayerSeasonTotals, a archetype, rng *rand.Rand) {
	gp := 20 + rng.Intn(63)
	mpg := 10 + rng.Float64()*26
	p.GP = float64(gp)
	p.MIN = math.Round(float64(gp)*mpg*10) / 10

	// A single quality factor lifts every box score line together, the
	// rest is independent noise.
	quality := 0.7 + rng.Float64()*0.6
	scale := p.MIN / 36
	line := func(per36 float64) float64 {
		return math.Round(per36 * scale * quality * (0.85 + rng.Float64()*0.3))
	}

	p.FGA = math.Max(1, line(a.fga))
	p.FG3A = math.Min(p.FGA, line(a.fg3a))
	p.FTA = line(a.fta)
	p.FGM = math.Round(p.FGA * a.fgPct * (0.9 + rng.Float64()*0.2))
	p.FG3M = math.Min(p.FGM, math.Round(p.FG3A*a.fg3Pct*(0.85+rng.Float64()*0.3)))
	p.FTM = math.Min(p.FTA, math.Round(p.FTA*a.ftPct*(0.9+rng.Float64()*0.2)))
	p.PTS = 2*(p.FGM-p.FG3M) + 3*p.FG3M + p.FTM

	p.ORB = line(a.orb)
	p.DRB = line(a.drb)
	p.AST = line(a.ast)
	p.TOV = line(a.tov)
	p.STL = line(a.stl)
	p.BLK = line(a.blk)
	p.PF = math.Round(a.pf * scale * (0.85 + rng.Float64()*0.3))
	p.PlusMinus = math.Round((quality - 1) * scale * 12 * (0.5 + rng.Float64()))
}

package vibe

import (
	"math"
	"sort"
)

// Moments is the z-score reference frame of one metric over one cohort.
type Moments struct {
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	N          int     `json:"n"`
	Degenerate bool    `json:"degenerate"`
}

// Z returns (x-mean)/std, or 0 when the cohort carries no spread.
func (m Moments) Z(x float64) float64 {
	if m.Degenerate || m.Std == 0 {
		return 0
	}
	return (x - m.Mean) / m.Std
}

// computeMoments uses the population formula. Values that are all identical
// are detected exactly so float noise can never produce a tiny non-zero std.
func computeMoments(values []float64, minN int) Moments {
	n := len(values)
	if n == 0 {
		return Moments{Degenerate: true}
	}
	identical := true
	for _, v := range values[1:] {
		if v != values[0] {
			identical = false
			break
		}
	}
	if identical {
		return Moments{Mean: values[0], N: n, Degenerate: true}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(n))
	return Moments{
		Mean:       mean,
		Std:        std,
		N:          n,
		Degenerate: n < minN || std == 0 || math.IsNaN(std) || math.IsInf(std, 0),
	}
}

// Sample is one scorable player as seen by the cohort statistics.
type Sample struct {
	PlayerID string
	Position Position
	Profile  RateProfile
	Minutes  float64
}

// CohortStats holds every reference frame of one run. League-scoped metrics
// live in League, position-scoped metrics in ByPosition.
type CohortStats struct {
	League     map[Metric]Moments              `json:"league"`
	ByPosition map[Position]map[Metric]Moments `json:"by_position"`
}

// For returns the frame a player at pos is compared against for m.
func (c CohortStats) For(m Metric, pos Position) Moments {
	scope, ok := ScopeOf(m)
	if !ok {
		return Moments{Degenerate: true}
	}
	if scope == ScopePosition {
		mm, ok := c.ByPosition[pos][m]
		if !ok {
			return Moments{Degenerate: true}
		}
		return mm
	}
	mm, ok := c.League[m]
	if !ok {
		return Moments{Degenerate: true}
	}
	return mm
}

// DiagnosticKind classifies a non-fatal observation about a run.
type DiagnosticKind string

const (
	DiagDegenerateCohort  DiagnosticKind = "degenerate_cohort"
	DiagDegenerateLeague  DiagnosticKind = "degenerate_league"
	DiagReferenceFallback DiagnosticKind = "reference_fallback"
)

// Diagnostic records a degeneracy resolved by policy rather than surfaced
// as an error.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Metric Metric         `json:"metric,omitempty"`
	Scope  string         `json:"scope,omitempty"`
	N      int            `json:"n"`
}

// sortSamples returns a copy ordered by player id so that every sum over
// the cohort is accumulated in the same order regardless of input order.
func sortSamples(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	copy(out, samples)
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// ComputeCohorts builds the reference frames for one run.
func ComputeCohorts(samples []Sample, l League) (CohortStats, []Diagnostic) {
	sorted := sortSamples(samples)
	var diags []Diagnostic

	ref := sorted
	if l.ReferenceMinMinutes > 0 {
		ref = ref[:0:0]
		for _, s := range sorted {
			if s.Minutes >= l.ReferenceMinMinutes {
				ref = append(ref, s)
			}
		}
		if len(ref) == 0 && len(sorted) > 0 {
			ref = sorted
			diags = append(diags, Diagnostic{Kind: DiagReferenceFallback, N: len(sorted)})
		}
	}

	stats := CohortStats{
		League:     make(map[Metric]Moments),
		ByPosition: make(map[Position]map[Metric]Moments, len(Positions)),
	}
	for _, p := range Positions {
		stats.ByPosition[p] = make(map[Metric]Moments)
	}

	collect := func(m Metric, keep func(Sample) bool) []float64 {
		vals := make([]float64, 0, len(ref))
		for _, s := range ref {
			if !keep(s) {
				continue
			}
			if v, ok := s.Profile.Value(m); ok {
				vals = append(vals, v)
			}
		}
		return vals
	}

	for _, row := range scopes {
		switch row.Scope {
		case ScopeLeague:
			mm := computeMoments(collect(row.Metric, func(Sample) bool { return true }), l.MinCohortSize)
			stats.League[row.Metric] = mm
			if mm.Degenerate && mm.N > 0 {
				diags = append(diags, Diagnostic{Kind: DiagDegenerateCohort, Metric: row.Metric, Scope: string(ScopeLeague), N: mm.N})
			}
		case ScopePosition:
			for _, p := range Positions {
				pos := p
				mm := computeMoments(collect(row.Metric, func(s Sample) bool { return s.Position == pos }), l.MinCohortSize)
				stats.ByPosition[pos][row.Metric] = mm
				if mm.Degenerate && mm.N > 0 {
					diags = append(diags, Diagnostic{Kind: DiagDegenerateCohort, Metric: row.Metric, Scope: string(pos), N: mm.N})
				}
			}
		}
	}
	return stats, diags
}

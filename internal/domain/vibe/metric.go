package vibe

// Metric names one z-scored input of the composite.
type Metric string

const (
	MetricTS     Metric = "ts"
	MetricPTS100 Metric = "pts100"
	MetricAST100 Metric = "ast100"
	MetricORB100 Metric = "orb100"
	MetricDRB100 Metric = "drb100"
	MetricTOV100 Metric = "tov100"
	MetricSTL100 Metric = "stl100"
	MetricBLK100 Metric = "blk100"
	MetricPF100  Metric = "pf100"
	MetricPM100  Metric = "pm100"
)

// Scope is the reference frame a metric is normalised against.
type Scope string

const (
	// ScopeLeague compares every scorable player against each other.
	ScopeLeague Scope = "league"
	// ScopePosition compares players only within their own position cohort.
	ScopePosition Scope = "position"
)

// MetricScope is one row of the normalisation strategy table.
type MetricScope struct {
	Metric Metric `json:"metric"`
	Scope  Scope  `json:"scope"`
}

// Offence and impact are league-wide; defence is position-normalised so that
// bigs do not dominate through rebounds and blocks.
var scopes = [...]MetricScope{
	{MetricTS, ScopeLeague},
	{MetricPTS100, ScopeLeague},
	{MetricAST100, ScopeLeague},
	{MetricORB100, ScopeLeague},
	{MetricTOV100, ScopeLeague},
	{MetricSTL100, ScopePosition},
	{MetricBLK100, ScopePosition},
	{MetricDRB100, ScopePosition},
	{MetricPF100, ScopePosition},
	{MetricPM100, ScopeLeague},
}

// Scopes returns the strategy table in a fixed order.
func Scopes() []MetricScope {
	out := make([]MetricScope, len(scopes))
	copy(out, scopes[:])
	return out
}

// ScopeOf reports the scope of m. Unknown metrics report false.
func ScopeOf(m Metric) (Scope, bool) {
	for _, s := range scopes {
		if s.Metric == m {
			return s.Scope, true
		}
	}
	return "", false
}

// Metrics lists every z-scored metric in strategy table order.
func Metrics() []Metric {
	out := make([]Metric, len(scopes))
	for i, s := range scopes {
		out[i] = s.Metric
	}
	return out
}

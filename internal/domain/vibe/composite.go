package vibe

// Components is the weighted breakdown of one player's raw score.
type Components struct {
	Z      map[Metric]float64 `json:"z"`
	OVIBE  float64            `json:"ovibe"`
	DVIBE  float64            `json:"dvibe"`
	Skill  float64            `json:"skill"`
	Impact float64            `json:"impact"`
	Raw    float64            `json:"raw"`
}

// Compose z-scores the profile against its cohorts and blends the result
// with the league weights.
func Compose(p RateProfile, pos Position, c CohortStats, l League) Components {
	z := make(map[Metric]float64, len(scopes))
	for _, row := range scopes {
		v, ok := p.Value(row.Metric)
		if !ok {
			z[row.Metric] = 0
			continue
		}
		z[row.Metric] = c.For(row.Metric, pos).Z(v)
	}

	o, d := l.Offense, l.Defense
	comp := Components{Z: z}
	comp.OVIBE = o.TS*z[MetricTS] +
		o.PTS*z[MetricPTS100] +
		o.AST*z[MetricAST100] +
		o.ORB*z[MetricORB100] +
		o.TOV*z[MetricTOV100]
	comp.DVIBE = d.STL*z[MetricSTL100] +
		d.BLK*z[MetricBLK100] +
		d.DRB*z[MetricDRB100] +
		d.PF*z[MetricPF100]
	comp.Skill = l.SkillOffense*comp.OVIBE + l.SkillDefense*comp.DVIBE
	comp.Impact = z[MetricPM100]
	comp.Raw = l.SkillWeight*comp.Skill + l.ImpactWeight*comp.Impact
	return comp
}

package vibe

// ScaleInput is one scorable player's raw score and minutes.
type ScaleInput struct {
	Raw     float64
	Minutes float64
}

// Scaled is the shrunk and rescaled score of one player.
type Scaled struct {
	ShrinkFactor float64 `json:"shrink_factor"`
	Shrunk       float64 `json:"shrunk"`
	Final        float64 `json:"final"`
}

// ShrinkFactor pulls low-minute samples toward zero: MIN/(MIN+k).
func ShrinkFactor(minutes float64, l League) float64 {
	if minutes <= 0 {
		return 0
	}
	return minutes / (minutes + l.ShrinkMinutes)
}

// Scale shrinks every raw score and rescales onto the VIBE scale. Inputs
// must be in a stable order for the league moments to be reproducible.
// A degenerate league puts every player at exactly Base.
func Scale(inputs []ScaleInput, l League) ([]Scaled, Moments) {
	out := make([]Scaled, len(inputs))
	shrunk := make([]float64, len(inputs))
	for i, in := range inputs {
		f := ShrinkFactor(in.Minutes, l)
		out[i].ShrinkFactor = f
		out[i].Shrunk = in.Raw * f
		shrunk[i] = out[i].Shrunk
	}

	league := computeMoments(shrunk, 2)
	for i := range out {
		if league.Degenerate {
			out[i].Final = l.Base
			continue
		}
		out[i].Final = l.Base + l.Scale*(out[i].Shrunk-league.Mean)/league.Std
	}
	return out, league
}

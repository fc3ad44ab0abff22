package vibe

// Tier is the display band of a final score.
type Tier string

const (
	TierMVP           Tier = "mvp"
	TierAllNBA        Tier = "all_nba"
	TierStrongStarter Tier = "strong_starter"
	TierAverage       Tier = "average"
	TierBelowAverage  Tier = "below_average"
	TierUnscored      Tier = "unscored"
)

// TierFor bands a final score.
func TierFor(final float64) Tier {
	switch {
	case final >= 140:
		return TierMVP
	case final >= 125:
		return TierAllNBA
	case final >= 115:
		return TierStrongStarter
	case final >= 90:
		return TierAverage
	default:
		return TierBelowAverage
	}
}

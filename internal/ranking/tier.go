package ranking

import "github.com/boshu2/manifest/internal/types"

// Tier buckets a Survivor's overall Score into a presentation-facing
// quality band, so the CLI can flag low-confidence Survivors for closer
// human review instead of presenting every passing candidate identically.
type Tier string

const (
	TierGold    Tier = "gold"
	TierSilver  Tier = "silver"
	TierBronze  Tier = "bronze"
	TierDiscard Tier = "discard"
)

// tierThreshold pairs a Tier with the minimum Score.Overall that qualifies
// for it and whether it should carry a "review recommended" flag.
type tierThreshold struct {
	tier       Tier
	minScore   float64
	reviewFlag bool
}

// tierThresholds is checked gold-first; the fallback is TierDiscard.
var tierThresholds = []tierThreshold{
	{tier: TierGold, minScore: 0.85, reviewFlag: false},
	{tier: TierSilver, minScore: 0.70, reviewFlag: false},
	{tier: TierBronze, minScore: 0.50, reviewFlag: true},
}

// ClassifyTier buckets an overall Score into a Tier and reports whether that
// tier recommends a closer human look before accepting.
func ClassifyTier(overall float64) (tier Tier, reviewRecommended bool) {
	for _, th := range tierThresholds {
		if overall >= th.minScore {
			return th.tier, th.reviewFlag
		}
	}
	return TierDiscard, false
}

// SurvivorTier is a convenience wrapper over ClassifyTier for a Survivor's
// own Score.Overall.
func SurvivorTier(s *types.Survivor) (tier Tier, reviewRecommended bool) {
	return ClassifyTier(s.Score.Overall)
}

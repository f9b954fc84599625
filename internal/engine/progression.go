package engine

import (
	"math"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

// RankRequirementMultiplier is the legacy equipment discount on rank
// thresholds.
func RankRequirementMultiplier(legacy map[economy.LegacyKind]int64) float64 {
	return math.Max(economy.MinReductionMultiplier,
		math.Pow(economy.RankRequirementFactor, float64(legacy[economy.LegacyEquipment])))
}

// RankThreshold is the lifetime currency needed to hold tier i.
func RankThreshold(i int, legacy map[economy.LegacyKind]int64) numeric.Decimal {
	tier := economy.RankAt(i)
	return floorSettled(tier.Threshold.Mul(numeric.FromFloat(RankRequirementMultiplier(legacy))))
}

// advanceRank moves s up at most one tier. Callers run it after every
// currency change, so larger jumps happen tier by tier.
func advanceRank(s *PlayerState) bool {
	i := s.RankIndex()
	if i >= economy.TerminalRankIndex() {
		return false
	}
	if s.LifetimeCurrency.Lt(RankThreshold(i+1, s.LegacyUpgrades)) {
		return false
	}
	s.Rank = economy.RankAt(i + 1).ID
	return true
}

// RankProgress is the percentage of the way to the next tier, 100 at the top.
func RankProgress(s *PlayerState) float64 {
	i := s.RankIndex()
	if i >= economy.TerminalRankIndex() {
		return 100
	}
	next := RankThreshold(i+1, s.LegacyUpgrades)
	if next.IsZero() {
		return 100
	}
	return math.Min(100, s.LifetimeCurrency.Div(next).Float64()*100)
}

// PrestigeGain is the legacy currency a prestige at this lifetime total pays.
func PrestigeGain(lifetime numeric.Decimal) numeric.Decimal {
	return lifetime.Div(economy.PrestigeDivisor).Sqrt().Floor()
}

// CanPrestige reports whether s is at the top tier with a non-zero gain.
func CanPrestige(s *PlayerState) bool {
	return s.RankIndex() == economy.TerminalRankIndex() &&
		!PrestigeGain(s.LifetimeCurrency).IsZero()
}

// applyPrestige trades the current run for legacy currency. Legacy fields,
// play time and achievements carry over; everything else starts again.
func applyPrestige(s *PlayerState) numeric.Decimal {
	gain := PrestigeGain(s.LifetimeCurrency)
	s.LegacyCurrency = s.LegacyCurrency.Add(gain)
	s.PrestigeCount = s.PrestigeCount.Add(numeric.One)

	s.Currency = numeric.Zero
	s.LifetimeCurrency = numeric.Zero
	s.ClickValue = numeric.Zero
	s.PassiveIncome = numeric.Zero
	s.Rank = economy.RankBeatCop
	for kind := range s.Upgrades {
		s.Upgrades[kind] = 0
	}
	return gain
}

package engine

import (
	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

// LegacyIncomeMultiplier is the efficiency bonus applied to click and
// passive income.
func LegacyIncomeMultiplier(legacy map[economy.LegacyKind]int64) float64 {
	return 1 + economy.EfficiencyPerLevel*float64(legacy[economy.LegacyEfficiency])
}

// AutomationMultiplier scales passive income by automation level.
func AutomationMultiplier(level int64) float64 {
	if level <= 0 {
		return 1
	}
	return 1 + economy.AutomationPerLevel*float64(level)
}

// categorySum adds level · effect over every upgrade in category.
func categorySum(upgrades map[economy.UpgradeKind]int64, category economy.UpgradeCategory) numeric.Decimal {
	sum := numeric.Zero
	for _, def := range economy.Upgrades() {
		if def.Category != category {
			continue
		}
		sum = sum.Add(numeric.FromInt(upgrades[def.Kind]).Mul(numeric.FromFloat(def.PerUnitEffect)))
	}
	return sum
}

// ClickValue is the Respect earned per click.
func ClickValue(upgrades map[economy.UpgradeKind]int64, rankIndex int, legacy map[economy.LegacyKind]int64) numeric.Decimal {
	base := numeric.One.Add(categorySum(upgrades, economy.CategoryClick))
	return floorSettled(base.
		Mul(numeric.FromFloat(economy.RankMultiplier(rankIndex))).
		Mul(numeric.FromFloat(LegacyIncomeMultiplier(legacy))))
}

// PassiveIncome is the Respect earned per second.
func PassiveIncome(upgrades map[economy.UpgradeKind]int64, rankIndex int, legacy map[economy.LegacyKind]int64) numeric.Decimal {
	base := categorySum(upgrades, economy.CategoryPassive)
	return floorSettled(base.
		Mul(numeric.FromFloat(AutomationMultiplier(upgrades[economy.UpgradeAutomation]))).
		Mul(numeric.FromFloat(economy.RankMultiplier(rankIndex))).
		Mul(numeric.FromFloat(LegacyIncomeMultiplier(legacy))))
}

// Recompute overwrites the derived fields of s from its raw levels. It runs
// after every mutation and on load; cached values are never trusted.
func Recompute(s *PlayerState) {
	rank := s.RankIndex()
	s.ClickValue = ClickValue(s.Upgrades, rank, s.LegacyUpgrades)
	s.PassiveIncome = PassiveIncome(s.Upgrades, rank, s.LegacyUpgrades)
}

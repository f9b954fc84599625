package engine

import (
	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

func criterionMet(s *PlayerState, c economy.Criterion) bool {
	switch c.Kind {
	case economy.CriterionLifetime:
		return s.LifetimeCurrency.Gte(c.Threshold)
	case economy.CriterionRank:
		want := economy.RankIndex(c.Rank)
		return want >= 0 && s.RankIndex() >= want
	case economy.CriterionUpgradeCount:
		return numeric.FromInt(s.Upgrades[c.Upgrade]).Gte(c.Threshold)
	case economy.CriterionClickValue:
		return s.ClickValue.Gte(c.Threshold)
	case economy.CriterionPassiveIncome:
		return s.PassiveIncome.Gte(c.Threshold)
	case economy.CriterionPrestigeCount:
		return s.PrestigeCount.Gte(c.Threshold)
	case economy.CriterionPlayTime:
		return numeric.FromInt(s.PlayTimeSeconds).Gte(c.Threshold)
	}
	return false
}

// evaluateAchievements unlocks every achievement whose criterion now holds
// and returns the newly unlocked ids in table order.
func evaluateAchievements(s *PlayerState) []economy.AchievementID {
	var unlocked []economy.AchievementID
	for _, def := range economy.Achievements() {
		p := s.Achievements[def.ID]
		if p.Unlocked || !criterionMet(s, def.Criterion) {
			continue
		}
		p.Unlocked = true
		s.Achievements[def.ID] = p
		unlocked = append(unlocked, def.ID)
	}
	return unlocked
}

// claimAchievement pays the reward for an unlocked, unclaimed achievement.
func claimAchievement(s *PlayerState, id economy.AchievementID) (economy.Reward, bool) {
	def, ok := economy.AchievementByID(id)
	if !ok {
		return economy.Reward{}, false
	}
	p := s.Achievements[id]
	if !p.Unlocked || p.Claimed {
		return economy.Reward{}, false
	}
	p.Claimed = true
	s.Achievements[id] = p

	switch def.Reward.Kind {
	case economy.RewardCurrency:
		s.Currency = s.Currency.Add(def.Reward.Amount)
		s.LifetimeCurrency = s.LifetimeCurrency.Add(def.Reward.Amount)
	case economy.RewardLegacy:
		s.LegacyCurrency = s.LegacyCurrency.Add(def.Reward.Amount)
	}
	return def.Reward, true
}

// Package engine derives click power, passive income, costs, rank and
// achievement state from a PlayerState, and serialises every mutation
// through Game.
package engine

import (
	"maps"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

// AchievementProgress is one-way: Unlocked never reverts, Claimed never
// reverts, and Claimed implies Unlocked.
type AchievementProgress struct {
	Unlocked bool `json:"unlocked"`
	Claimed  bool `json:"claimed"`
}

// PlayerState is the single aggregate the game mutates. ClickValue and
// PassiveIncome are derived and are overwritten by Recompute.
type PlayerState struct {
	Currency         numeric.Decimal `json:"currency"`
	LifetimeCurrency numeric.Decimal `json:"lifetime_currency"`
	ClickValue       numeric.Decimal `json:"click_value"`
	PassiveIncome    numeric.Decimal `json:"passive_income"`
	Rank             economy.RankID  `json:"rank"`

	// Survive prestige.
	LegacyCurrency  numeric.Decimal `json:"legacy_currency"`
	PrestigeCount   numeric.Decimal `json:"prestige_count"`
	PlayTimeSeconds int64           `json:"play_time_seconds"`

	Upgrades       map[economy.UpgradeKind]int64                 `json:"upgrades"`
	LegacyUpgrades map[economy.LegacyKind]int64                  `json:"legacy_upgrades"`
	Achievements   map[economy.AchievementID]AchievementProgress `json:"achievements"`
}

// NewPlayerState returns a first-run state with derived fields computed.
func NewPlayerState() PlayerState {
	s := PlayerState{Rank: economy.RankBeatCop}
	s.Repair()
	Recompute(&s)
	return s
}

// RankIndex is the position of the current rank on the ladder.
func (s *PlayerState) RankIndex() int {
	if i := economy.RankIndex(s.Rank); i >= 0 {
		return i
	}
	return 0
}

// Clone returns a deep copy.
func (s PlayerState) Clone() PlayerState {
	s.Upgrades = maps.Clone(s.Upgrades)
	s.LegacyUpgrades = maps.Clone(s.LegacyUpgrades)
	s.Achievements = maps.Clone(s.Achievements)
	return s
}

// Repair fills every table key, drops keys the tables don't know, clamps
// negative levels and replaces an unknown rank with the first tier. Derived
// fields are left for Recompute.
func (s *PlayerState) Repair() {
	upgrades := make(map[economy.UpgradeKind]int64, len(economy.Upgrades()))
	for _, def := range economy.Upgrades() {
		upgrades[def.Kind] = max(s.Upgrades[def.Kind], 0)
	}
	s.Upgrades = upgrades

	legacy := make(map[economy.LegacyKind]int64, len(economy.LegacyUpgrades()))
	for _, def := range economy.LegacyUpgrades() {
		legacy[def.Kind] = max(s.LegacyUpgrades[def.Kind], 0)
	}
	s.LegacyUpgrades = legacy

	achievements := make(map[economy.AchievementID]AchievementProgress, len(economy.Achievements()))
	for _, def := range economy.Achievements() {
		p := s.Achievements[def.ID]
		if p.Claimed {
			p.Unlocked = true
		}
		achievements[def.ID] = p
	}
	s.Achievements = achievements

	if economy.RankIndex(s.Rank) < 0 {
		s.Rank = economy.RankBeatCop
	}
	if s.PlayTimeSeconds < 0 {
		s.PlayTimeSeconds = 0
	}
	if s.LifetimeCurrency.Lt(s.Currency) {
		s.LifetimeCurrency = s.Currency
	}
}

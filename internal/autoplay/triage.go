package autoplay

import (
	"math"
	"sort"

	"github.com/talgya/copclicker/internal/economy"
)

// Game phases reported by Triage.
const (
	PhaseEarly    = "EARLY"    // no passive income yet
	PhaseGrowing  = "GROWING"  // below the top rank
	PhaseCapped   = "CAPPED"   // top rank, prestige not worth it yet
	PhasePrestige = "PRESTIGE" // prestige available
)

// UpgradeScore rates one upgrade by log10 of income gained per Respect
// spent on its next level. Higher is better.
type UpgradeScore struct {
	Kind       string
	Score      float64
	Affordable bool
}

// Assessment holds derived signals computed from a GameSnapshot.
// Runs before Decide; deterministic and free.
type Assessment struct {
	Phase       string
	IncomeRate  float64 // estimated Respect per second, clicks included
	ClickShare  float64 // fraction of IncomeRate coming from clicks
	Scores      []UpgradeScore
	Unclaimed   []string
	LegacyReady []string // affordable legacy upgrades, cheapest first
}

// Triage computes an Assessment. clickRate is how many clicks per second
// the player is assumed to land.
func Triage(snap *GameSnapshot, clickRate float64) *Assessment {
	a := &Assessment{}

	click := snap.Status.ClickValue.Value.Float64() * clickRate
	passive := snap.Status.PassiveIncome.Value.Float64()
	a.IncomeRate = click + passive
	if a.IncomeRate > 0 {
		a.ClickShare = click / a.IncomeRate
	}

	switch {
	case snap.Status.CanPrestige:
		a.Phase = PhasePrestige
	case snap.Status.Rank.Index >= economy.TerminalRankIndex():
		a.Phase = PhaseCapped
	case passive == 0:
		a.Phase = PhaseEarly
	default:
		a.Phase = PhaseGrowing
	}

	var automation int64
	for _, u := range snap.Upgrades.Upgrades {
		if u.Category == economy.CategoryAutomation.String() {
			automation = u.Level
		}
	}

	for _, u := range snap.Upgrades.Upgrades {
		quote, ok := u.Quotes[economy.Quantity1.String()]
		if !ok || quote.Cost.IsZero() {
			continue
		}
		gain := marginalIncome(u, clickRate, passive, automation)
		if gain <= 0 {
			continue
		}
		a.Scores = append(a.Scores, UpgradeScore{
			Kind:       u.Kind,
			Score:      math.Log10(gain) - quote.Cost.Log10(),
			Affordable: quote.Affordable,
		})
	}
	sort.SliceStable(a.Scores, func(i, j int) bool { return a.Scores[i].Score > a.Scores[j].Score })

	for _, ach := range snap.Achievements {
		if ach.Unlocked && !ach.Claimed {
			a.Unclaimed = append(a.Unclaimed, ach.ID)
		}
	}

	ready := make([]LegacyInfo, 0, len(snap.Legacy.Upgrades))
	for _, l := range snap.Legacy.Upgrades {
		if l.Affordable {
			ready = append(ready, l)
		}
	}
	sort.SliceStable(ready, func(i, j int) bool { return ready[i].Cost.Value.Lt(ready[j].Cost.Value) })
	for _, l := range ready {
		a.LegacyReady = append(a.LegacyReady, l.Kind)
	}

	return a
}

// marginalIncome estimates the Respect per second one more level of u adds,
// ignoring the rank and legacy multipliers that scale every option alike.
func marginalIncome(u UpgradeInfo, clickRate, passive float64, automation int64) float64 {
	switch u.Category {
	case economy.CategoryClick.String():
		return u.PerUnitEffect * clickRate
	case economy.CategoryPassive.String():
		return u.PerUnitEffect * (1 + economy.AutomationPerLevel*float64(automation))
	case economy.CategoryAutomation.String():
		// passive already includes the current automation multiplier
		return passive * economy.AutomationPerLevel / (1 + economy.AutomationPerLevel*float64(automation))
	}
	return 0
}

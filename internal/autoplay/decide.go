package autoplay

import (
	"fmt"
	"strings"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

// Action kinds understood by the Actor.
const (
	ActionClaim    = "claim"
	ActionPrestige = "prestige"
	ActionLegacy   = "legacy"
	ActionBuy      = "buy"
)

const maxActionsPerCycle = 10

// Action is one API call the auto-player wants to make.
type Action struct {
	Kind     string `json:"kind"`
	Target   string `json:"target,omitempty"`   // upgrade kind, legacy kind or achievement id
	Quantity string `json:"quantity,omitempty"` // purchase selector, buys only
}

func (a Action) String() string {
	switch {
	case a.Quantity != "":
		return fmt.Sprintf("%s %s ×%s", a.Kind, a.Target, a.Quantity)
	case a.Target != "":
		return a.Kind + " " + a.Target
	}
	return a.Kind
}

// Policy tunes Decide.
type Policy struct {
	MinPrestigeGain int64
	ClickRate       float64 // assumed clicks per second
}

// Decision is the ordered list of moves for one cycle.
type Decision struct {
	Actions   []Action `json:"actions"`
	Rationale string   `json:"rationale"`
}

// Decide picks this cycle's moves: claim every unlocked achievement, then
// prestige when the gain clears the policy floor, otherwise spend legacy
// currency and buy the best-scoring affordable upgrade.
func Decide(snap *GameSnapshot, a *Assessment, p Policy) *Decision {
	d := &Decision{}
	var why []string

	for _, id := range a.Unclaimed {
		d.Actions = append(d.Actions, Action{Kind: ActionClaim, Target: id})
	}
	if len(a.Unclaimed) > 0 {
		why = append(why, fmt.Sprintf("%d achievements waiting", len(a.Unclaimed)))
	}

	if a.Phase == PhasePrestige && snap.Status.PrestigeGain.Value.Gte(numeric.FromInt(p.MinPrestigeGain)) {
		d.Actions = append(d.Actions, Action{Kind: ActionPrestige})
		why = append(why, "prestige pays "+snap.Status.PrestigeGain.Formatted)
		// Everything bought now would be wiped by the reset.
		d.Rationale = strings.Join(why, "; ")
		enforceGuardrails(d)
		return d
	}

	for _, kind := range a.LegacyReady {
		d.Actions = append(d.Actions, Action{Kind: ActionLegacy, Target: kind})
	}
	if len(a.LegacyReady) > 0 {
		why = append(why, "legacy upgrades affordable")
	}

	// Buy the best affordable option, but only when nothing unaffordable
	// scores better: saving up for it beats spending on a worse one.
	if len(a.Scores) > 0 {
		best := a.Scores[0]
		if best.Affordable {
			d.Actions = append(d.Actions, Action{Kind: ActionBuy, Target: best.Kind, Quantity: economy.Quantity1.String()})
			why = append(why, fmt.Sprintf("%s is the best value", best.Kind))
		} else {
			why = append(why, "saving for "+best.Kind)
		}
	}

	if len(why) == 0 {
		why = append(why, "nothing to do but click")
	}
	d.Rationale = strings.Join(why, "; ")
	enforceGuardrails(d)
	return d
}

// enforceGuardrails bounds a decision to actions the API accepts.
func enforceGuardrails(d *Decision) {
	kept := d.Actions[:0]
	for _, act := range d.Actions {
		switch act.Kind {
		case ActionBuy:
			if _, ok := economy.ParseUpgradeKind(act.Target); !ok {
				continue
			}
			if _, err := economy.ParseQuantity(act.Quantity); err != nil {
				act.Quantity = economy.Quantity1.String()
			}
		case ActionLegacy:
			if _, ok := economy.ParseLegacyKind(act.Target); !ok {
				continue
			}
		case ActionClaim:
			if _, ok := economy.AchievementByID(economy.AchievementID(act.Target)); !ok {
				continue
			}
		case ActionPrestige:
		default:
			continue
		}
		kept = append(kept, act)
	}
	if len(kept) > maxActionsPerCycle {
		kept = kept[:maxActionsPerCycle]
	}
	d.Actions = kept
}

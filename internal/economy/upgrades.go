// Package economy holds the static tables of the game: upgrade curves, the
// rank ladder, legacy upgrades and achievements. Nothing here mutates.
package economy

import (
	"fmt"
	"strings"

	"github.com/talgya/copclicker/internal/numeric"
)

// UpgradeKind identifies a purchasable Respect Point upgrade.
type UpgradeKind string

const (
	UpgradeEquipment     UpgradeKind = "equipment"
	UpgradeTraining      UpgradeKind = "training"
	UpgradePartner       UpgradeKind = "partner"
	UpgradePatrol        UpgradeKind = "patrol"
	UpgradeInvestigation UpgradeKind = "investigation"
	UpgradePrecinct      UpgradeKind = "precinct"
	UpgradeAutomation    UpgradeKind = "automation"
)

// UpgradeCategory decides which production formula an upgrade feeds.
type UpgradeCategory uint8

const (
	CategoryClick      UpgradeCategory = iota // adds to click value
	CategoryPassive                           // adds RP per second
	CategoryAutomation                        // multiplies passive income
)

var categoryNames = [...]string{"click", "passive", "automation"}

func (c UpgradeCategory) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", c)
}

// UpgradeDefinition is one row of the upgrade table.
type UpgradeDefinition struct {
	Kind          UpgradeKind     `json:"kind"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      UpgradeCategory `json:"-"`
	BaseCost      numeric.Decimal `json:"base_cost"`
	CostScaling   float64         `json:"cost_scaling"`
	PerUnitEffect float64         `json:"per_unit_effect"`
}

// AutomationPerLevel is the passive multiplier each automation level adds.
const AutomationPerLevel = 0.5

// upgradeTable is in display order.
var upgradeTable = []UpgradeDefinition{
	{
		Kind: UpgradeEquipment, Name: "Better Equipment",
		Description: "+1 Respect per click",
		Category:    CategoryClick, BaseCost: numeric.FromInt(10), CostScaling: 1.4, PerUnitEffect: 1,
	},
	{
		Kind: UpgradeTraining, Name: "Advanced Training",
		Description: "+2 Respect per click",
		Category:    CategoryClick, BaseCost: numeric.FromInt(25), CostScaling: 1.6, PerUnitEffect: 2,
	},
	{
		Kind: UpgradePartner, Name: "Partner",
		Description: "+1 Respect per second",
		Category:    CategoryPassive, BaseCost: numeric.FromInt(15), CostScaling: 1.3, PerUnitEffect: 1,
	},
	{
		Kind: UpgradePatrol, Name: "Patrol Unit",
		Description: "+3 Respect per second",
		Category:    CategoryPassive, BaseCost: numeric.FromInt(50), CostScaling: 1.5, PerUnitEffect: 3,
	},
	{
		Kind: UpgradeInvestigation, Name: "Investigation Team",
		Description: "+12 Respect per second",
		Category:    CategoryPassive, BaseCost: numeric.FromInt(200), CostScaling: 1.7, PerUnitEffect: 12,
	},
	{
		Kind: UpgradePrecinct, Name: "Precinct",
		Description: "+50 Respect per second",
		Category:    CategoryPassive, BaseCost: numeric.FromInt(1000), CostScaling: 2.0, PerUnitEffect: 50,
	},
	{
		Kind: UpgradeAutomation, Name: "Automation",
		Description: "+50% passive income",
		Category:    CategoryAutomation, BaseCost: numeric.FromInt(5000), CostScaling: 2.5, PerUnitEffect: AutomationPerLevel,
	},
}

var upgradeIndex = func() map[UpgradeKind]int {
	idx := make(map[UpgradeKind]int, len(upgradeTable))
	for i, def := range upgradeTable {
		idx[def.Kind] = i
	}
	return idx
}()

// Upgrades returns the upgrade table in display order. Callers must not
// modify the returned slice.
func Upgrades() []UpgradeDefinition {
	return upgradeTable
}

// Upgrade looks up the definition for kind.
func Upgrade(kind UpgradeKind) (UpgradeDefinition, bool) {
	i, ok := upgradeIndex[kind]
	if !ok {
		return UpgradeDefinition{}, false
	}
	return upgradeTable[i], true
}

// ParseUpgradeKind accepts a kind name in any case.
func ParseUpgradeKind(s string) (UpgradeKind, bool) {
	kind := UpgradeKind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := upgradeIndex[kind]
	return kind, ok
}

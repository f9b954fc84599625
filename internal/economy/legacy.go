package economy

import (
	"strings"

	"github.com/talgya/copclicker/internal/numeric"
)

// LegacyKind identifies a permanent upgrade bought with legacy currency.
type LegacyKind string

const (
	LegacyEfficiency  LegacyKind = "efficiency"
	LegacyEquipment   LegacyKind = "equipment"
	LegacyConnections LegacyKind = "connections"
)

// LegacyDefinition is one row of the legacy upgrade table. Costs are in
// legacy currency.
type LegacyDefinition struct {
	Kind        LegacyKind      `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BaseCost    numeric.Decimal `json:"base_cost"`
	CostScaling float64         `json:"cost_scaling"`
}

// Legacy effect constants.
const (
	EfficiencyPerLevel     = 0.1  // income multiplier per efficiency level
	RankRequirementFactor  = 0.9  // threshold multiplier per legacy equipment level
	CostReductionFactor    = 0.95 // upgrade cost multiplier per connections level
	MinReductionMultiplier = 0.1  // neither reduction goes below this
)

// PrestigeDivisor scales lifetime currency into legacy currency.
var PrestigeDivisor = numeric.FromInt(50000)

var legacyTable = []LegacyDefinition{
	{
		Kind: LegacyEfficiency, Name: "Department Efficiency",
		Description: "+10% click and passive income per level",
		BaseCost:    numeric.FromInt(1), CostScaling: 2.0,
	},
	{
		Kind: LegacyEquipment, Name: "Legacy Equipment",
		Description: "Rank requirements 10% lower per level",
		BaseCost:    numeric.FromInt(2), CostScaling: 2.5,
	},
	{
		Kind: LegacyConnections, Name: "Political Connections",
		Description: "Upgrade costs 5% lower per level",
		BaseCost:    numeric.FromInt(3), CostScaling: 3.0,
	},
}

// LegacyUpgrades returns the legacy table in display order.
func LegacyUpgrades() []LegacyDefinition {
	return legacyTable
}

// Legacy looks up the definition for kind.
func Legacy(kind LegacyKind) (LegacyDefinition, bool) {
	for _, def := range legacyTable {
		if def.Kind == kind {
			return def, true
		}
	}
	return LegacyDefinition{}, false
}

// ParseLegacyKind accepts a kind name in any case.
func ParseLegacyKind(s string) (LegacyKind, bool) {
	kind := LegacyKind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := Legacy(kind)
	return kind, ok
}

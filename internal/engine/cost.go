package engine

import (
	"math"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

// MaxBulkQuantity caps what a single max purchase can resolve to.
const MaxBulkQuantity int64 = 1_000_000_000_000_000

// floorSettled floors d, but snaps up to the next integer when d sits within
// a few ulps of it. The closed-form series lands a hair below exact
// integers often enough to matter.
func floorSettled(d numeric.Decimal) numeric.Decimal {
	v := d.Float64()
	if math.IsInf(v, 1) {
		return d
	}
	f := math.Floor(v)
	if f == v {
		return d
	}
	if next := f + 1; next-v <= snapTolerance(v) {
		return numeric.FromFloat(next)
	}
	return numeric.FromFloat(f)
}

// snapTolerance is eight ulps of v, or 1e-9 for small v. Once that reaches
// half a unit there is no snapping.
func snapTolerance(v float64) float64 {
	ulp := math.Nextafter(v, math.Inf(1)) - v
	tol := max(8*ulp, 1e-9)
	if tol >= 0.5 {
		return 0
	}
	return tol
}

// RawUnitCost is base · scaling^level with no reduction and no flooring.
func RawUnitCost(def economy.UpgradeDefinition, level int64) numeric.Decimal {
	return def.BaseCost.Mul(numeric.FromFloat(def.CostScaling).Pow(float64(level)))
}

// RawBulkCost is the geometric series of q consecutive unit costs starting
// at level, with no reduction and no flooring.
func RawBulkCost(def economy.UpgradeDefinition, level, q int64) numeric.Decimal {
	if q <= 0 {
		return numeric.Zero
	}
	s := def.CostScaling
	if s == 1 {
		return def.BaseCost.Mul(numeric.FromInt(q))
	}

	first := RawUnitCost(def, level)
	growth := numeric.FromFloat(s).Pow(float64(q))
	if s > 1 {
		return first.Mul(growth.Sub(numeric.One)).Div(numeric.FromFloat(s - 1))
	}
	return first.Mul(numeric.One.Sub(growth)).Div(numeric.FromFloat(1 - s))
}

// UnitCost is the price of the next level after cost reduction.
func UnitCost(def economy.UpgradeDefinition, level int64, reduction float64) numeric.Decimal {
	return floorSettled(RawUnitCost(def, level).Mul(numeric.FromFloat(reduction)))
}

// BulkCost is the price of q levels bought at once after cost reduction.
func BulkCost(def economy.UpgradeDefinition, level, q int64, reduction float64) numeric.Decimal {
	switch {
	case q <= 0:
		return numeric.Zero
	case q == 1:
		return UnitCost(def, level, reduction)
	}
	return floorSettled(RawBulkCost(def, level, q).Mul(numeric.FromFloat(reduction)))
}

// MaxAffordable returns the largest q with BulkCost(q) <= funds, capped at
// MaxBulkQuantity.
func MaxAffordable(def economy.UpgradeDefinition, level int64, funds numeric.Decimal, reduction float64) int64 {
	affordable := func(q int64) bool {
		return BulkCost(def, level, q, reduction).Lte(funds)
	}
	if !affordable(1) {
		return 0
	}

	// Bracket: cost(lo) fits, cost(hi) does not.
	lo, hi := int64(1), int64(10)
	for affordable(hi) {
		if hi >= MaxBulkQuantity {
			return MaxBulkQuantity
		}
		lo = hi
		hi = min(hi*10, MaxBulkQuantity)
	}

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if affordable(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// CostReduction is the multiplier connections levels apply to upgrade costs.
func CostReduction(legacy map[economy.LegacyKind]int64) float64 {
	return math.Max(economy.MinReductionMultiplier,
		math.Pow(economy.CostReductionFactor, float64(legacy[economy.LegacyConnections])))
}

// LegacyCost is the legacy-currency price of the next level of def.
func LegacyCost(def economy.LegacyDefinition, level int64) numeric.Decimal {
	return floorSettled(def.BaseCost.Mul(numeric.FromFloat(def.CostScaling).Pow(float64(level))))
}

// resolveQuantity turns a selector into a concrete count for the given
// funds. Max resolves to 0 when nothing is affordable.
func resolveQuantity(def economy.UpgradeDefinition, level int64, q economy.Quantity, funds numeric.Decimal, reduction float64) int64 {
	if q.IsMax() {
		return MaxAffordable(def, level, funds, reduction)
	}
	return int64(q)
}

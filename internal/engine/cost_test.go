package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

func mustUpgrade(t *testing.T, kind economy.UpgradeKind) economy.UpgradeDefinition {
	t.Helper()
	def, ok := economy.Upgrade(kind)
	require.True(t, ok)
	return def
}

func TestBulkCostMatchesUnitSum(t *testing.T) {
	defs := append([]economy.UpgradeDefinition{}, economy.Upgrades()...)
	defs = append(defs,
		economy.UpgradeDefinition{Kind: "flat", BaseCost: numeric.FromInt(7), CostScaling: 1},
		economy.UpgradeDefinition{Kind: "shrinking", BaseCost: numeric.FromInt(8), CostScaling: 0.5},
	)

	for _, def := range defs {
		for _, level := range []int64{0, 1, 5, 20} {
			for _, q := range []int64{1, 2, 10, 50} {
				t.Run(fmt.Sprintf("%s/L%d/q%d", def.Kind, level, q), func(t *testing.T) {
					sum := numeric.Zero
					for i := int64(0); i < q; i++ {
						sum = sum.Add(RawUnitCost(def, level+i))
					}
					bulk := RawBulkCost(def, level, q)
					assert.InEpsilon(t, sum.Float64(), bulk.Float64(), 1e-9)
				})
			}
		}
	}
}

func TestLinearScalingDoesNotDivideByZero(t *testing.T) {
	def := economy.UpgradeDefinition{Kind: "flat", BaseCost: numeric.FromInt(7), CostScaling: 1}
	assert.True(t, RawBulkCost(def, 5, 4).Eq(numeric.FromInt(28)))
	assert.True(t, BulkCost(def, 5, 4, 1).Eq(numeric.FromInt(28)))
	assert.Equal(t, int64(3), MaxAffordable(def, 0, numeric.FromInt(27), 1))
}

func TestUnitCost(t *testing.T) {
	equipment := mustUpgrade(t, economy.UpgradeEquipment)
	precinct := mustUpgrade(t, economy.UpgradePrecinct)

	tests := []struct {
		name      string
		def       economy.UpgradeDefinition
		level     int64
		reduction float64
		want      int64
	}{
		{"equipment first level", equipment, 0, 1, 10},
		{"equipment second level", equipment, 1, 1, 14},
		{"equipment floors", equipment, 2, 1, 19},
		{"precinct doubles", precinct, 3, 1, 8000},
		{"halved by reduction", precinct, 0, 0.5, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitCost(tt.def, tt.level, tt.reduction)
			assert.True(t, got.Eq(numeric.FromInt(tt.want)), "got %s", got)
		})
	}
}

func TestBulkCost(t *testing.T) {
	equipment := mustUpgrade(t, economy.UpgradeEquipment)

	assert.True(t, BulkCost(equipment, 0, 0, 1).IsZero())
	assert.True(t, BulkCost(equipment, 0, 1, 1).Eq(numeric.FromInt(10)))
	assert.True(t, BulkCost(equipment, 0, 2, 1).Eq(numeric.FromInt(24)), "snaps float error up")
	assert.True(t, BulkCost(equipment, 0, 10, 1).Eq(numeric.FromInt(698)))

	// a huge bulk order stays finite
	huge := BulkCost(equipment, 0, MaxBulkQuantity, 1)
	assert.True(t, huge.Gt(numeric.MustParse("1e1000")))
}

func TestMaxAffordable(t *testing.T) {
	equipment := mustUpgrade(t, economy.UpgradeEquipment)

	assert.Equal(t, int64(0), MaxAffordable(equipment, 0, numeric.FromInt(9), 1))
	assert.Equal(t, int64(1), MaxAffordable(equipment, 0, numeric.FromInt(10), 1))
	assert.Equal(t, int64(1), MaxAffordable(equipment, 0, numeric.FromInt(23), 1))
	assert.Equal(t, int64(2), MaxAffordable(equipment, 0, numeric.FromInt(24), 1))
}

func TestMaxAffordableBrackets(t *testing.T) {
	funds := []numeric.Decimal{
		numeric.FromInt(15),
		numeric.FromInt(1234),
		numeric.FromInt(987654321),
		numeric.FromFloat(3.3e18),
		numeric.MustParse("1e400"),
	}
	for _, def := range economy.Upgrades() {
		for _, level := range []int64{0, 7, 40} {
			for _, m := range funds {
				for _, reduction := range []float64{1, 0.5} {
					t.Run(fmt.Sprintf("%s/L%d/%s/r%.1f", def.Kind, level, m, reduction), func(t *testing.T) {
						q := MaxAffordable(def, level, m, reduction)
						if q > 0 {
							assert.True(t, BulkCost(def, level, q, reduction).Lte(m))
						}
						assert.True(t, BulkCost(def, level, q+1, reduction).Gt(m))
					})
				}
			}
		}
	}
}

func TestMaxAffordableCapped(t *testing.T) {
	def := economy.UpgradeDefinition{Kind: "flat", BaseCost: numeric.One, CostScaling: 1}
	assert.Equal(t, MaxBulkQuantity, MaxAffordable(def, 0, numeric.MustParse("1e300"), 1))
}

func TestCostReduction(t *testing.T) {
	assert.Equal(t, 1.0, CostReduction(nil))
	assert.InDelta(t, 0.95, CostReduction(map[economy.LegacyKind]int64{economy.LegacyConnections: 1}), 1e-12)
	assert.Equal(t, 0.1, CostReduction(map[economy.LegacyKind]int64{economy.LegacyConnections: 100}))
}

func TestLegacyCost(t *testing.T) {
	def, ok := economy.Legacy(economy.LegacyEquipment)
	require.True(t, ok)
	assert.True(t, LegacyCost(def, 0).Eq(numeric.FromInt(2)))
	assert.True(t, LegacyCost(def, 1).Eq(numeric.FromInt(5)))
	assert.True(t, LegacyCost(def, 2).Eq(numeric.FromInt(12)))
}

func TestFloorSettled(t *testing.T) {
	assert.True(t, floorSettled(numeric.FromFloat(23.999999999999993)).Eq(numeric.FromInt(24)))
	assert.True(t, floorSettled(numeric.FromFloat(19.6)).Eq(numeric.FromInt(19)))
	assert.True(t, floorSettled(numeric.FromFloat(5)).Eq(numeric.FromInt(5)))
	assert.True(t, floorSettled(numeric.MustParse("4e500")).Eq(numeric.MustParse("4e500")))

	// Large values keep their floor; only float noise snaps up.
	assert.True(t, floorSettled(numeric.FromFloat(1e13+0.5)).Eq(numeric.FromInt(10_000_000_000_000)))
	assert.True(t, floorSettled(numeric.FromFloat(1250000000001.25)).Eq(numeric.FromInt(1_250_000_000_001)))
}

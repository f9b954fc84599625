package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

func TestPrestigeGain(t *testing.T) {
	tests := []struct {
		lifetime numeric.Decimal
		want     int64
	}{
		{numeric.FromInt(200000), 2},
		{numeric.FromInt(49999), 0},
		{numeric.FromInt(50000), 1},
		{numeric.FromInt(150000), 1},
		{numeric.FromInt(5000000), 10},
	}
	for _, tt := range tests {
		t.Run(tt.lifetime.String(), func(t *testing.T) {
			assert.True(t, PrestigeGain(tt.lifetime).Eq(numeric.FromInt(tt.want)))
		})
	}

	assert.InDelta(t, 298.0, PrestigeGain(numeric.MustParse("5e600")).Log10(), 1e-9)
}

func TestRankThreshold(t *testing.T) {
	assert.True(t, RankThreshold(0, nil).IsZero())
	assert.True(t, RankThreshold(1, nil).Eq(numeric.FromInt(100)))
	assert.True(t, RankThreshold(1, legacyLevels{economy.LegacyEquipment: 1}).Eq(numeric.FromInt(90)))
	assert.True(t, RankThreshold(1, legacyLevels{economy.LegacyEquipment: 50}).Eq(numeric.FromInt(10)), "reduction floors at 10%")
	assert.True(t, RankThreshold(5, nil).Eq(numeric.FromInt(50000)))
}

func TestAdvanceRankOneTierPerCall(t *testing.T) {
	s := NewPlayerState()
	s.LifetimeCurrency = numeric.FromInt(60000)

	want := []economy.RankID{
		economy.RankDetective, economy.RankSergeant, economy.RankLieutenant,
		economy.RankCaptain, economy.RankChief,
	}
	for _, id := range want {
		require.True(t, advanceRank(&s))
		assert.Equal(t, id, s.Rank)
	}
	assert.False(t, advanceRank(&s), "chief is terminal")
	assert.Equal(t, economy.RankChief, s.Rank)
}

func TestAdvanceRankNeedsThreshold(t *testing.T) {
	s := NewPlayerState()
	s.LifetimeCurrency = numeric.FromInt(99)
	assert.False(t, advanceRank(&s))

	s.LegacyUpgrades[economy.LegacyEquipment] = 1
	s.LifetimeCurrency = numeric.FromInt(90)
	assert.True(t, advanceRank(&s))
	assert.Equal(t, economy.RankDetective, s.Rank)
}

func TestRankProgress(t *testing.T) {
	s := NewPlayerState()
	s.LifetimeCurrency = numeric.FromInt(50)
	assert.InDelta(t, 50.0, RankProgress(&s), 1e-9)

	s.LifetimeCurrency = numeric.FromInt(5000)
	assert.Equal(t, 100.0, RankProgress(&s), "capped")

	s.Rank = economy.RankChief
	s.LifetimeCurrency = numeric.Zero
	assert.Equal(t, 100.0, RankProgress(&s))
}

func TestCanPrestige(t *testing.T) {
	s := NewPlayerState()
	s.Rank = economy.RankCaptain
	s.LifetimeCurrency = numeric.FromInt(1000000)
	assert.False(t, CanPrestige(&s), "not at the top rank")

	s.Rank = economy.RankChief
	assert.True(t, CanPrestige(&s))

	s.LifetimeCurrency = numeric.FromInt(45000)
	assert.False(t, CanPrestige(&s), "zero gain")
}

func TestApplyPrestige(t *testing.T) {
	s := NewPlayerState()
	s.Rank = economy.RankChief
	s.Currency = numeric.FromInt(1234)
	s.LifetimeCurrency = numeric.FromInt(200000)
	s.LegacyCurrency = numeric.FromInt(3)
	s.PlayTimeSeconds = 77
	s.Upgrades[economy.UpgradeEquipment] = 5
	s.Upgrades[economy.UpgradePrecinct] = 2
	s.LegacyUpgrades[economy.LegacyEfficiency] = 1
	s.Achievements[economy.AchievementFirstCollar] = AchievementProgress{Unlocked: true, Claimed: true}
	Recompute(&s)

	gain := applyPrestige(&s)
	assert.True(t, gain.Eq(numeric.FromInt(2)))
	assert.True(t, s.LegacyCurrency.Eq(numeric.FromInt(5)))
	assert.True(t, s.PrestigeCount.Eq(numeric.One))
	assert.True(t, s.Currency.IsZero())
	assert.True(t, s.LifetimeCurrency.IsZero())
	assert.Equal(t, economy.RankBeatCop, s.Rank)
	for kind, level := range s.Upgrades {
		assert.Zero(t, level, kind)
	}

	assert.Equal(t, int64(1), s.LegacyUpgrades[economy.LegacyEfficiency])
	assert.Equal(t, int64(77), s.PlayTimeSeconds)
	assert.True(t, s.Achievements[economy.AchievementFirstCollar].Claimed)
}

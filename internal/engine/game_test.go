package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

type memStore struct {
	mu     sync.Mutex
	saved  []PlayerState
	events []Event
	err    error
}

func (m *memStore) SaveGame(_ context.Context, s PlayerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, s)
	return nil
}

func (m *memStore) SaveEvents(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func gameWith(t *testing.T, mutate func(*PlayerState)) *Game {
	t.Helper()
	s := NewPlayerState()
	mutate(&s)
	g := NewGame(nil)
	g.Restore(s)
	return g
}

func TestBuyFirstEquipment(t *testing.T) {
	g := NewGame(nil)

	res := g.PurchaseUpgrade(economy.UpgradeEquipment, economy.Quantity1)
	assert.False(t, res.OK, "no funds")
	assert.True(t, g.Snapshot().Currency.IsZero())

	g = gameWith(t, func(s *PlayerState) { s.Currency = numeric.FromInt(10) })
	res = g.PurchaseUpgrade(economy.UpgradeEquipment, economy.Quantity1)
	require.True(t, res.OK)
	assert.Equal(t, int64(1), res.Purchased)
	assert.True(t, res.Cost.Eq(numeric.FromInt(10)))

	snap := g.Snapshot()
	assert.True(t, snap.Currency.IsZero())
	assert.Equal(t, int64(1), snap.Upgrades[economy.UpgradeEquipment])
	assert.True(t, g.CurrentClickValue().Eq(numeric.FromInt(2)))
}

func TestPurchaseNoOps(t *testing.T) {
	g := NewGame(nil)

	assert.False(t, g.PurchaseUpgrade(economy.UpgradeEquipment, economy.QuantityMax).OK, "max resolves to zero")
	assert.False(t, g.PurchaseUpgrade("donut", economy.Quantity1).OK)
	assert.False(t, g.CanAfford(economy.UpgradeEquipment, economy.QuantityMax))

	quote, ok := g.CostFor(economy.UpgradeEquipment, economy.QuantityMax)
	require.True(t, ok)
	assert.Equal(t, int64(1), quote.Quantity)
	assert.True(t, quote.Cost.Eq(numeric.FromInt(10)))
	assert.False(t, quote.Affordable)

	_, ok = g.CostFor("donut", economy.Quantity1)
	assert.False(t, ok)
}

func TestPurchaseMax(t *testing.T) {
	g := gameWith(t, func(s *PlayerState) { s.Currency = numeric.FromInt(30) })

	quote, _ := g.CostFor(economy.UpgradeEquipment, economy.QuantityMax)
	assert.Equal(t, int64(2), quote.Quantity)
	assert.True(t, g.CanAfford(economy.UpgradeEquipment, economy.QuantityMax))

	res := g.PurchaseUpgrade(economy.UpgradeEquipment, economy.QuantityMax)
	require.True(t, res.OK)
	assert.Equal(t, int64(2), res.Purchased)
	assert.True(t, g.Snapshot().Currency.Eq(numeric.FromInt(6)))
}

func TestClicksDriveRankAndAchievements(t *testing.T) {
	g := NewGame(nil)
	_, events := g.Subscribe()

	for i := 0; i < 100; i++ {
		assert.True(t, g.RegisterClick().Eq(numeric.One))
	}

	snap := g.Snapshot()
	assert.True(t, snap.LifetimeCurrency.Eq(numeric.FromInt(100)))
	assert.Equal(t, economy.RankDetective, snap.Rank)
	assert.True(t, snap.Achievements[economy.AchievementFirstCollar].Unlocked)

	unclaimed := g.UnclaimedAchievements()
	ids := make([]economy.AchievementID, 0, len(unclaimed))
	for _, def := range unclaimed {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, economy.AchievementFirstCollar)

	var categories []string
	for len(events) > 0 {
		categories = append(categories, (<-events).Category)
	}
	assert.Contains(t, categories, EventRankUp)
	assert.Contains(t, categories, EventAchievementUnlocked)

	require.True(t, g.ClaimAchievement(economy.AchievementFirstCollar))
	assert.False(t, g.ClaimAchievement(economy.AchievementFirstCollar))
	assert.True(t, g.Snapshot().Currency.Eq(numeric.FromInt(150)))
}

func TestPassiveAccrual(t *testing.T) {
	g := gameWith(t, func(s *PlayerState) {
		s.Upgrades[economy.UpgradePartner] = 2
		s.Upgrades[economy.UpgradeAutomation] = 2
	})
	assert.True(t, g.CurrentPassiveIncome().Eq(numeric.FromInt(4)))

	earned := g.AccruePassive()
	assert.True(t, earned.Eq(numeric.FromInt(4)))
	assert.True(t, g.Snapshot().LifetimeCurrency.Eq(numeric.FromInt(4)))

	assert.True(t, NewGame(nil).AccruePassive().IsZero())
}

func TestRestoreHealsSnapshot(t *testing.T) {
	stale := PlayerState{
		Currency:   numeric.FromInt(5),
		ClickValue: numeric.FromInt(1000),
		Rank:       "janitor",
		Upgrades:   map[economy.UpgradeKind]int64{economy.UpgradeEquipment: 2, "laser": 9},
	}
	g := NewGame(nil)
	g.Restore(stale)

	snap := g.Snapshot()
	assert.True(t, snap.ClickValue.Eq(numeric.FromInt(3)))
	assert.Equal(t, economy.RankBeatCop, snap.Rank)
	assert.NotContains(t, snap.Upgrades, economy.UpgradeKind("laser"))
	assert.Len(t, snap.Upgrades, len(economy.Upgrades()))
	assert.Len(t, snap.LegacyUpgrades, len(economy.LegacyUpgrades()))
	assert.Len(t, snap.Achievements, len(economy.Achievements()))
}

func TestPerformPrestige(t *testing.T) {
	g := gameWith(t, func(s *PlayerState) {
		s.Rank = economy.RankLieutenant
		s.LifetimeCurrency = numeric.FromInt(200000)
	})
	require.Equal(t, economy.RankCaptain, g.Snapshot().Rank, "one tier per pipeline run")
	_, ok := g.PerformPrestige()
	assert.False(t, ok)

	g.AddPlayTime(1) // any mutation runs the pipeline again
	require.Equal(t, economy.RankChief, g.Snapshot().Rank)
	assert.True(t, g.CanPrestige())
	assert.True(t, g.PrestigeGain().Eq(numeric.FromInt(2)))

	gain, ok := g.PerformPrestige()
	require.True(t, ok)
	assert.True(t, gain.Eq(numeric.FromInt(2)))

	snap := g.Snapshot()
	assert.Equal(t, economy.RankBeatCop, snap.Rank)
	assert.True(t, snap.LegacyCurrency.Eq(numeric.FromInt(2)))
	assert.True(t, snap.ClickValue.Eq(numeric.One))
	assert.True(t, snap.Achievements[economy.AchievementFreshStart].Unlocked)
	assert.True(t, snap.Achievements[economy.AchievementTopCop].Unlocked, "unlocks survive prestige")

	_, ok = g.PerformPrestige()
	assert.False(t, ok)
}

func TestRankNeverDropsOutsidePrestige(t *testing.T) {
	g := gameWith(t, func(s *PlayerState) {
		s.Rank = economy.RankLieutenant
		s.Currency = numeric.FromInt(100000)
	})
	start := economy.RankIndex(g.Snapshot().Rank)
	prev := start

	for i := 0; i < 20; i++ {
		g.PurchaseUpgrade(economy.UpgradePartner, economy.Quantity10)
		g.RegisterClick()
		g.AccruePassive()
		cur := economy.RankIndex(g.Snapshot().Rank)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestPurchaseLegacyUpgrade(t *testing.T) {
	g := gameWith(t, func(s *PlayerState) { s.LegacyCurrency = numeric.FromInt(3) })

	cost, ok := g.LegacyCostFor(economy.LegacyEfficiency)
	require.True(t, ok)
	assert.True(t, cost.Eq(numeric.One))

	assert.True(t, g.PurchaseLegacyUpgrade(economy.LegacyEfficiency))
	assert.True(t, g.PurchaseLegacyUpgrade(economy.LegacyEfficiency))
	assert.False(t, g.PurchaseLegacyUpgrade(economy.LegacyEfficiency), "level 2 costs 4")
	assert.False(t, g.PurchaseLegacyUpgrade("bribery"))

	snap := g.Snapshot()
	assert.Equal(t, int64(2), snap.LegacyUpgrades[economy.LegacyEfficiency])
	assert.True(t, snap.LegacyCurrency.IsZero())
}

func TestConnectionsLowerCosts(t *testing.T) {
	g := gameWith(t, func(s *PlayerState) {
		s.LegacyUpgrades[economy.LegacyConnections] = 14 // 0.95^14 ≈ 0.488
	})
	quote, _ := g.CostFor(economy.UpgradePrecinct, economy.Quantity1)
	assert.True(t, quote.Cost.Eq(numeric.FromInt(487)), "got %s", quote.Cost)
}

func TestResetAll(t *testing.T) {
	g := gameWith(t, func(s *PlayerState) {
		s.LegacyCurrency = numeric.FromInt(9)
		s.PlayTimeSeconds = 500
		s.Upgrades[economy.UpgradeEquipment] = 4
	})
	g.ResetAll()

	snap := g.Snapshot()
	assert.True(t, snap.LegacyCurrency.IsZero())
	assert.Zero(t, snap.PlayTimeSeconds)
	assert.Zero(t, snap.Upgrades[economy.UpgradeEquipment])
	assert.True(t, snap.ClickValue.Eq(numeric.One))
}

func TestRequestSave(t *testing.T) {
	store := &memStore{}
	g := NewGame(store)
	g.ResetAll()

	require.NoError(t, g.RequestSave(context.Background()))
	require.Len(t, store.saved, 1)
	assert.Len(t, store.events, 1)
	assert.Empty(t, g.DrainEvents())

	store.err = errors.New("disk full")
	g.ResetAll()
	err := g.RequestSave(context.Background())
	require.Error(t, err)
	assert.Len(t, g.DrainEvents(), 1, "events requeued after a failed save")

	assert.NoError(t, NewGame(nil).RequestSave(context.Background()))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	g := NewGame(nil)
	snap := g.Snapshot()
	snap.Upgrades[economy.UpgradeEquipment] = 99
	assert.Zero(t, g.Snapshot().Upgrades[economy.UpgradeEquipment])
}

func TestConcurrentClicks(t *testing.T) {
	g := NewGame(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				g.RegisterClick()
			}
		}()
	}
	wg.Wait()

	// every click below Captain is worth exactly one
	assert.True(t, g.Snapshot().LifetimeCurrency.Eq(numeric.FromInt(1600)))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	g := NewGame(nil)
	id, ch := g.Subscribe()
	g.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
	g.Unsubscribe(id) // second call is harmless
}

func TestRecentEventsBounded(t *testing.T) {
	g := NewGame(nil)
	g.mu.Lock()
	for i := 0; i < maxRecentEvents+20; i++ {
		g.emit(EventPurchase, "equipment", "Bought Equipment")
	}
	g.mu.Unlock()
	recent := g.RecentEvents(0)
	assert.Len(t, recent, maxRecentEvents)
	assert.Equal(t, uint64(maxRecentEvents+20), recent[len(recent)-1].Seq)
	assert.Len(t, g.RecentEvents(5), 5)
}

func TestResetDropsUnsavedEvents(t *testing.T) {
	store := &memStore{}
	g := NewGame(store)
	g.Restore(func() PlayerState {
		s := NewPlayerState()
		s.Currency = numeric.FromInt(10)
		return s
	}())
	require.True(t, g.PurchaseUpgrade(economy.UpgradeEquipment, economy.Quantity1).OK)

	g.ResetAll()
	require.NoError(t, g.RequestSave(context.Background()))

	require.Len(t, store.events, 1)
	assert.Equal(t, EventReset, store.events[0].Category)
	recent := g.RecentEvents(0)
	require.Len(t, recent, 1)
	assert.Equal(t, EventReset, recent[0].Category)
}

func TestSubscribeWithHistory(t *testing.T) {
	g := NewGame(nil)
	g.mu.Lock()
	for i := 0; i < 5; i++ {
		g.emit(EventPurchase, "equipment", "Bought Equipment")
	}
	g.mu.Unlock()

	id, ch, history := g.SubscribeWithHistory(3)
	defer g.Unsubscribe(id)
	require.Len(t, history, 3)
	assert.Equal(t, uint64(5), history[2].Seq)
	assert.Empty(t, ch, "history is not repeated on the live channel")

	g.ResetAll()
	e := <-ch
	assert.Equal(t, uint64(6), e.Seq)
	assert.Equal(t, EventReset, e.Category)
}

// orderedStore records the lifetime total of each snapshot it receives.
type orderedStore struct {
	mu        sync.Mutex
	lifetimes []numeric.Decimal
}

func (o *orderedStore) SaveGame(_ context.Context, s PlayerState) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lifetimes = append(o.lifetimes, s.LifetimeCurrency)
	return nil
}

func (o *orderedStore) SaveEvents(context.Context, []Event) error { return nil }

func TestConcurrentSavesCommitInOrder(t *testing.T) {
	store := &orderedStore{}
	g := NewGame(store)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.RegisterClick()
				assert.NoError(t, g.RequestSave(context.Background()))
			}
		}()
	}
	wg.Wait()

	require.Len(t, store.lifetimes, 400)
	for i := 1; i < len(store.lifetimes); i++ {
		assert.True(t, store.lifetimes[i].Gte(store.lifetimes[i-1]), "save %d went backwards", i)
	}
	assert.True(t, store.lifetimes[len(store.lifetimes)-1].Eq(g.Snapshot().LifetimeCurrency))
}

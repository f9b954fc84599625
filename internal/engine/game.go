package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/metrics"
	"github.com/talgya/copclicker/internal/numeric"
)

// Store persists snapshots handed over by RequestSave.
type Store interface {
	SaveGame(ctx context.Context, s PlayerState) error
	SaveEvents(ctx context.Context, events []Event) error
}

// Game owns the player state. Every command holds mu for its whole run,
// including the post-mutation pipeline, so no caller sees a half-updated
// state.
type Game struct {
	mu     sync.Mutex
	state  PlayerState
	events eventLog
	store  Store
	now    func() time.Time

	// saveMu orders saves: snapshots reach the store in the order taken.
	saveMu sync.Mutex
}

// NewGame starts from a fresh state. store may be nil, in which case
// RequestSave is a no-op.
func NewGame(store Store) *Game {
	return &Game{
		state: NewPlayerState(),
		store: store,
		now:   time.Now,
	}
}

// PurchaseResult reports what a purchase command did. OK is false for
// every no-op.
type PurchaseResult struct {
	OK        bool            `json:"ok"`
	Purchased int64           `json:"purchased"`
	Cost      numeric.Decimal `json:"cost"`
}

// Quote is the price of a selector at the current level and funds.
type Quote struct {
	Quantity   int64           `json:"quantity"`
	Cost       numeric.Decimal `json:"cost"`
	Affordable bool            `json:"affordable"`
}

func (g *Game) emit(category, subject, description string) {
	g.events.append(Event{
		At:          g.now(),
		Category:    category,
		Subject:     subject,
		Description: description,
	})
}

// afterMutation re-derives everything that depends on raw state. Caller
// holds mu.
func (g *Game) afterMutation() {
	Recompute(&g.state)
	if advanceRank(&g.state) {
		Recompute(&g.state)
		tier := economy.RankAt(g.state.RankIndex())
		g.emit(EventRankUp, string(tier.ID), fmt.Sprintf("Promoted to %s", tier.Name))
		metrics.RankUps.Inc()
		slog.Info("rank up", "rank", tier.ID, "lifetime", numeric.Format(g.state.LifetimeCurrency))
	}
	for _, id := range evaluateAchievements(&g.state) {
		def, _ := economy.AchievementByID(id)
		g.emit(EventAchievementUnlocked, string(id), fmt.Sprintf("Achievement unlocked: %s", def.Name))
		metrics.AchievementsUnlocked.Inc()
	}
}

// earn credits amount to both currency totals.
func (g *Game) earn(amount numeric.Decimal) {
	g.state.Currency = g.state.Currency.Add(amount)
	g.state.LifetimeCurrency = g.state.LifetimeCurrency.Add(amount)
}

// RegisterClick credits one click and returns the amount earned.
func (g *Game) RegisterClick() numeric.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()

	earned := g.state.ClickValue
	g.earn(earned)
	g.afterMutation()
	metrics.Clicks.Inc()
	return earned
}

// AccruePassive credits one second of passive income.
func (g *Game) AccruePassive() numeric.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()

	earned := g.state.PassiveIncome
	if earned.IsZero() {
		return earned
	}
	g.earn(earned)
	g.afterMutation()
	return earned
}

// AddPlayTime advances the play clock.
func (g *Game) AddPlayTime(seconds int64) {
	if seconds <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.PlayTimeSeconds += seconds
	g.afterMutation()
}

// PurchaseUpgrade buys q levels of kind. Unknown kinds, a max selector with
// nothing affordable, and insufficient funds are all no-ops.
func (g *Game) PurchaseUpgrade(kind economy.UpgradeKind, q economy.Quantity) PurchaseResult {
	def, ok := economy.Upgrade(kind)
	if !ok {
		return PurchaseResult{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	level := g.state.Upgrades[kind]
	reduction := CostReduction(g.state.LegacyUpgrades)
	n := resolveQuantity(def, level, q, g.state.Currency, reduction)
	if n <= 0 {
		return PurchaseResult{}
	}
	cost := BulkCost(def, level, n, reduction)
	if cost.Gt(g.state.Currency) {
		return PurchaseResult{}
	}

	g.state.Currency = g.state.Currency.Sub(cost)
	g.state.Upgrades[kind] = level + n
	g.emit(EventPurchase, string(kind), fmt.Sprintf("Bought %s × %s for %s", def.Name, numeric.FormatInt(n), numeric.Format(cost)))
	g.afterMutation()
	metrics.UpgradesPurchased.WithLabelValues(string(kind)).Add(float64(n))

	return PurchaseResult{OK: true, Purchased: n, Cost: cost}
}

// PurchaseLegacyUpgrade buys one level of a permanent upgrade with legacy
// currency.
func (g *Game) PurchaseLegacyUpgrade(kind economy.LegacyKind) bool {
	def, ok := economy.Legacy(kind)
	if !ok {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	level := g.state.LegacyUpgrades[kind]
	cost := LegacyCost(def, level)
	if cost.Gt(g.state.LegacyCurrency) {
		return false
	}

	g.state.LegacyCurrency = g.state.LegacyCurrency.Sub(cost)
	g.state.LegacyUpgrades[kind] = level + 1
	g.emit(EventLegacyPurchase, string(kind), fmt.Sprintf("%s raised to level %d", def.Name, level+1))
	g.afterMutation()
	metrics.LegacyPurchased.WithLabelValues(string(kind)).Inc()
	return true
}

// ClaimAchievement pays out an unlocked achievement once.
func (g *Game) ClaimAchievement(id economy.AchievementID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	reward, ok := claimAchievement(&g.state, id)
	if !ok {
		return false
	}
	def, _ := economy.AchievementByID(id)
	g.emit(EventAchievementClaimed, string(id),
		fmt.Sprintf("Claimed %s: +%s %s", def.Name, numeric.Format(reward.Amount), reward.Kind))
	g.afterMutation()
	metrics.AchievementsClaimed.Inc()
	return true
}

// PerformPrestige resets the run for legacy currency. It is a no-op below
// the top rank or when the gain would be zero.
func (g *Game) PerformPrestige() (numeric.Decimal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !CanPrestige(&g.state) {
		return numeric.Zero, false
	}
	gain := applyPrestige(&g.state)
	g.emit(EventPrestige, "", fmt.Sprintf("Prestiged for %s legacy", numeric.Format(gain)))
	g.afterMutation()
	metrics.Prestiges.Inc()
	slog.Info("prestige", "gain", gain.String(), "count", g.state.PrestigeCount.String())
	return gain, true
}

// ResetAll wipes every field, legacy progress included.
func (g *Game) ResetAll() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = NewPlayerState()
	// Pre-reset events never reach the wiped event table.
	g.events.pending = nil
	g.events.recent = nil
	g.emit(EventReset, "", "All progress reset")
	slog.Warn("game reset")
}

// Restore replaces the state with a loaded one. Missing keys are filled
// and derived fields recomputed rather than trusted.
func (g *Game) Restore(s PlayerState) {
	s = s.Clone()
	s.Repair()

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = s
	g.afterMutation()
}

// RequestSave hands a snapshot and the unsaved events to the store. The
// copy is taken under the state lock and the write happens outside it.
// Concurrent saves commit in the order their copies were taken.
func (g *Game) RequestSave(ctx context.Context) error {
	if g.store == nil {
		return nil
	}

	g.saveMu.Lock()
	defer g.saveMu.Unlock()

	g.mu.Lock()
	snap := g.state.Clone()
	events := g.events.pending
	g.events.pending = nil
	g.mu.Unlock()

	if err := g.store.SaveGame(ctx, snap); err != nil {
		g.requeue(events)
		metrics.Saves.WithLabelValues("error").Inc()
		return fmt.Errorf("save game: %w", err)
	}
	if len(events) > 0 {
		if err := g.store.SaveEvents(ctx, events); err != nil {
			g.requeue(events)
			metrics.Saves.WithLabelValues("error").Inc()
			return fmt.Errorf("save events: %w", err)
		}
	}
	metrics.Saves.WithLabelValues("ok").Inc()
	return nil
}

func (g *Game) requeue(events []Event) {
	if len(events) == 0 {
		return
	}
	g.mu.Lock()
	g.events.pending = append(events, g.events.pending...)
	g.mu.Unlock()
}

// CurrentClickValue is the amount the next click earns.
func (g *Game) CurrentClickValue() numeric.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.ClickValue
}

// CurrentPassiveIncome is the amount earned per second.
func (g *Game) CurrentPassiveIncome() numeric.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.PassiveIncome
}

// CostFor prices a selector. A max selector with nothing affordable quotes
// a single level so the player can see what they are saving for.
func (g *Game) CostFor(kind economy.UpgradeKind, q economy.Quantity) (Quote, bool) {
	def, ok := economy.Upgrade(kind)
	if !ok {
		return Quote{}, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	level := g.state.Upgrades[kind]
	reduction := CostReduction(g.state.LegacyUpgrades)
	n := resolveQuantity(def, level, q, g.state.Currency, reduction)
	if n <= 0 {
		n = 1
	}
	cost := BulkCost(def, level, n, reduction)
	return Quote{Quantity: n, Cost: cost, Affordable: cost.Lte(g.state.Currency)}, true
}

// CanAfford reports whether PurchaseUpgrade with the same arguments would
// succeed.
func (g *Game) CanAfford(kind economy.UpgradeKind, q economy.Quantity) bool {
	quote, ok := g.CostFor(kind, q)
	return ok && quote.Affordable
}

// LegacyCostFor prices the next level of a legacy upgrade.
func (g *Game) LegacyCostFor(kind economy.LegacyKind) (numeric.Decimal, bool) {
	def, ok := economy.Legacy(kind)
	if !ok {
		return numeric.Zero, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return LegacyCost(def, g.state.LegacyUpgrades[kind]), true
}

// RankProgress is the percentage toward the next rank.
func (g *Game) RankProgress() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return RankProgress(&g.state)
}

// NextRankThreshold returns the adjusted threshold of the next tier, or
// false at the top.
func (g *Game) NextRankThreshold() (numeric.Decimal, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.state.RankIndex()
	if i >= economy.TerminalRankIndex() {
		return numeric.Zero, false
	}
	return RankThreshold(i+1, g.state.LegacyUpgrades), true
}

// UnclaimedAchievements lists unlocked achievements still waiting for a
// claim, in table order.
func (g *Game) UnclaimedAchievements() []economy.AchievementDefinition {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []economy.AchievementDefinition
	for _, def := range economy.Achievements() {
		if p := g.state.Achievements[def.ID]; p.Unlocked && !p.Claimed {
			out = append(out, def)
		}
	}
	return out
}

// PrestigeGain is what PerformPrestige would pay right now.
func (g *Game) PrestigeGain() numeric.Decimal {
	g.mu.Lock()
	defer g.mu.Unlock()
	return PrestigeGain(g.state.LifetimeCurrency)
}

// CanPrestige reports whether PerformPrestige would succeed.
func (g *Game) CanPrestige() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return CanPrestige(&g.state)
}

// Snapshot returns a deep copy of the current state.
func (g *Game) Snapshot() PlayerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Clone()
}

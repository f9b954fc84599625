package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/engine"
	"github.com/talgya/copclicker/internal/numeric"
)

// SchemaVersion is the snapshot layout written by this build.
const SchemaVersion = 2

// ErrUnsupportedVersion is returned for snapshots from a newer build.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Snapshot is the persisted form of a PlayerState. Every number is decimal
// text so magnitudes beyond float64 survive the trip.
type Snapshot struct {
	Version          int                                   `json:"version"`
	SavedAt          time.Time                             `json:"saved_at"`
	Currency         numeric.Decimal                       `json:"currency"`
	LifetimeCurrency numeric.Decimal                       `json:"lifetime_currency"`
	ClickValue       numeric.Decimal                       `json:"click_value"`
	PassiveIncome    numeric.Decimal                       `json:"passive_income"`
	Rank             string                                `json:"rank"`
	LegacyCurrency   numeric.Decimal                       `json:"legacy_currency"`
	PrestigeCount    numeric.Decimal                       `json:"prestige_count"`
	PlayTimeSeconds  int64                                 `json:"play_time_seconds"`
	Upgrades         map[string]numeric.Decimal            `json:"upgrades"`
	LegacyUpgrades   map[string]numeric.Decimal            `json:"legacy_upgrades"`
	Achievements     map[string]engine.AchievementProgress `json:"achievements"`
}

// snapshotV1 is the save written by the original browser build.
type snapshotV1 struct {
	RespectPoints numeric.Decimal            `json:"respectPoints"`
	ClickValue    numeric.Decimal            `json:"clickValue"`
	PassiveIncome numeric.Decimal            `json:"passiveIncome"`
	Rank          string                     `json:"rank"`
	Upgrades      map[string]numeric.Decimal `json:"upgrades"`
}

// FromState captures s.
func FromState(s engine.PlayerState, at time.Time) Snapshot {
	snap := Snapshot{
		Version:          SchemaVersion,
		SavedAt:          at,
		Currency:         s.Currency,
		LifetimeCurrency: s.LifetimeCurrency,
		ClickValue:       s.ClickValue,
		PassiveIncome:    s.PassiveIncome,
		Rank:             string(s.Rank),
		LegacyCurrency:   s.LegacyCurrency,
		PrestigeCount:    s.PrestigeCount,
		PlayTimeSeconds:  s.PlayTimeSeconds,
		Upgrades:         make(map[string]numeric.Decimal, len(s.Upgrades)),
		LegacyUpgrades:   make(map[string]numeric.Decimal, len(s.LegacyUpgrades)),
		Achievements:     make(map[string]engine.AchievementProgress, len(s.Achievements)),
	}
	for k, v := range s.Upgrades {
		snap.Upgrades[string(k)] = numeric.FromInt(v)
	}
	for k, v := range s.LegacyUpgrades {
		snap.LegacyUpgrades[string(k)] = numeric.FromInt(v)
	}
	for k, v := range s.Achievements {
		snap.Achievements[string(k)] = v
	}
	return snap
}

// ToState rebuilds a PlayerState. Missing keys default to zero, unknown keys
// are dropped and the stored derived fields are recomputed, not trusted.
func (snap Snapshot) ToState() engine.PlayerState {
	s := engine.PlayerState{
		Currency:         snap.Currency,
		LifetimeCurrency: snap.LifetimeCurrency,
		Rank:             economy.RankID(snap.Rank),
		LegacyCurrency:   snap.LegacyCurrency,
		PrestigeCount:    snap.PrestigeCount.Floor(),
		PlayTimeSeconds:  snap.PlayTimeSeconds,
		Upgrades:         make(map[economy.UpgradeKind]int64, len(snap.Upgrades)),
		LegacyUpgrades:   make(map[economy.LegacyKind]int64, len(snap.LegacyUpgrades)),
		Achievements:     make(map[economy.AchievementID]engine.AchievementProgress, len(snap.Achievements)),
	}
	for k, v := range snap.Upgrades {
		s.Upgrades[economy.UpgradeKind(k)] = v.Int64()
	}
	for k, v := range snap.LegacyUpgrades {
		s.LegacyUpgrades[economy.LegacyKind(k)] = v.Int64()
	}
	for k, v := range snap.Achievements {
		s.Achievements[economy.AchievementID(k)] = v
	}
	s.Repair()
	engine.Recompute(&s)
	return s
}

// DecodeSnapshot reads any snapshot version this build understands and
// returns it in the current layout.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var probe struct {
		Version       int             `json:"version"`
		RespectPoints json.RawMessage `json:"respectPoints"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	switch {
	case probe.Version > SchemaVersion:
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, probe.Version)
	case probe.Version == 1 || (probe.Version == 0 && probe.RespectPoints != nil):
		var old snapshotV1
		if err := json.Unmarshal(data, &old); err != nil {
			return Snapshot{}, fmt.Errorf("decode v1 snapshot: %w", err)
		}
		return migrateV1(old), nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.Version = SchemaVersion
	return snap, nil
}

// migrateV1 upgrades a browser save. That build kept no lifetime total, so
// the best lower bound is the larger of the balance and the rank reached.
func migrateV1(old snapshotV1) Snapshot {
	rank := economy.RankAt(0)
	if r, ok := economy.RankByName(old.Rank); ok {
		rank = r
	}

	upgrades := make(map[string]numeric.Decimal, len(old.Upgrades))
	for k, v := range old.Upgrades {
		upgrades[k] = v.Floor()
	}

	return Snapshot{
		Version:          SchemaVersion,
		Currency:         old.RespectPoints.Floor(),
		LifetimeCurrency: old.RespectPoints.Floor().Max(rank.Threshold),
		ClickValue:       old.ClickValue,
		PassiveIncome:    old.PassiveIncome,
		Rank:             string(rank.ID),
		Upgrades:         upgrades,
	}
}

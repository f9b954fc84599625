// Package autoplay implements an idle auto-player.
// It observes the game via the API, decides on the next moves with a
// greedy rule set, and acts through the gameplay endpoints.
package autoplay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/copclicker/internal/numeric"
)

// GameSnapshot holds all data collected during an observation cycle.
type GameSnapshot struct {
	Status       Status            `json:"status"`
	Upgrades     UpgradeList       `json:"upgrades"`
	Legacy       LegacyList        `json:"legacy"`
	Achievements []AchievementInfo `json:"achievements"`
}

// Amount mirrors the API's value + formatted pair.
type Amount struct {
	Value     numeric.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
}

// Status mirrors GET /api/v1/status.
type Status struct {
	Currency         Amount `json:"currency"`
	LifetimeCurrency Amount `json:"lifetime_currency"`
	ClickValue       Amount `json:"click_value"`
	PassiveIncome    Amount `json:"passive_income"`
	Rank             struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Index    int     `json:"index"`
		Progress float64 `json:"progress"`
	} `json:"rank"`
	LegacyCurrency  Amount `json:"legacy_currency"`
	PrestigeCount   Amount `json:"prestige_count"`
	PrestigeGain    Amount `json:"prestige_gain"`
	CanPrestige     bool   `json:"can_prestige"`
	PlayTimeSeconds int64  `json:"play_time_seconds"`
	Unclaimed       int    `json:"unclaimed_achievements"`
}

// Quote is the price of one purchase selector.
type Quote struct {
	Quantity   int64           `json:"quantity"`
	Cost       numeric.Decimal `json:"cost"`
	Affordable bool            `json:"affordable"`
}

// UpgradeInfo mirrors items from GET /api/v1/upgrades.
type UpgradeInfo struct {
	Kind          string           `json:"kind"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	PerUnitEffect float64          `json:"per_unit_effect"`
	Level         int64            `json:"level"`
	Quotes        map[string]Quote `json:"quotes"`
}

// UpgradeList mirrors GET /api/v1/upgrades.
type UpgradeList struct {
	Currency Amount        `json:"currency"`
	Upgrades []UpgradeInfo `json:"upgrades"`
}

// LegacyInfo mirrors items from GET /api/v1/legacy.
type LegacyInfo struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Level      int64  `json:"level"`
	Cost       Amount `json:"cost"`
	Affordable bool   `json:"affordable"`
}

// LegacyList mirrors GET /api/v1/legacy.
type LegacyList struct {
	LegacyCurrency Amount       `json:"legacy_currency"`
	Upgrades       []LegacyInfo `json:"upgrades"`
}

// AchievementInfo mirrors items from GET /api/v1/achievements.
type AchievementInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Unlocked bool   `json:"unlocked"`
	Claimed  bool   `json:"claimed"`
}

// Observer fetches game state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches all four endpoints and returns a GameSnapshot.
func (o *Observer) Observe(ctx context.Context) (*GameSnapshot, error) {
	snap := &GameSnapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/upgrades", &snap.Upgrades); err != nil {
		return nil, fmt.Errorf("fetch upgrades: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/legacy", &snap.Legacy); err != nil {
		return nil, fmt.Errorf("fetch legacy: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/achievements", &snap.Achievements); err != nil {
		return nil, fmt.Errorf("fetch achievements: %w", err)
	}

	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

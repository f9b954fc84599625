package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/engine"
	"github.com/talgya/copclicker/internal/logger"
	"github.com/talgya/copclicker/internal/numeric"
	"github.com/talgya/copclicker/internal/persistence"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 100
)

// amount is a Decimal with its display form alongside.
type amount struct {
	Value     numeric.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
}

func newAmount(d numeric.Decimal) amount {
	return amount{Value: d, Formatted: numeric.Format(d)}
}

type rankInfo struct {
	ID            economy.RankID `json:"id"`
	Name          string         `json:"name"`
	Index         int            `json:"index"`
	Progress      float64        `json:"progress"`
	NextThreshold *amount        `json:"next_threshold,omitempty"` // Omitted at the top rank.
}

type statusResponse struct {
	Currency         amount   `json:"currency"`
	LifetimeCurrency amount   `json:"lifetime_currency"`
	ClickValue       amount   `json:"click_value"`
	PassiveIncome    amount   `json:"passive_income"`
	Rank             rankInfo `json:"rank"`
	LegacyCurrency   amount   `json:"legacy_currency"`
	PrestigeCount    amount   `json:"prestige_count"`
	PrestigeGain     amount   `json:"prestige_gain"`
	CanPrestige      bool     `json:"can_prestige"`
	PlayTimeSeconds  int64    `json:"play_time_seconds"`
	Unclaimed        int      `json:"unclaimed_achievements"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleStatus reports everything from one snapshot so the numbers agree.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Game.Snapshot()
	idx := st.RankIndex()
	tier := economy.RankAt(idx)

	rank := rankInfo{
		ID:       tier.ID,
		Name:     tier.Name,
		Index:    idx,
		Progress: engine.RankProgress(&st),
	}
	if idx < economy.TerminalRankIndex() {
		next := newAmount(engine.RankThreshold(idx+1, st.LegacyUpgrades))
		rank.NextThreshold = &next
	}

	unclaimed := 0
	for _, p := range st.Achievements {
		if p.Unlocked && !p.Claimed {
			unclaimed++
		}
	}

	writeJSON(w, statusResponse{
		Currency:         newAmount(st.Currency),
		LifetimeCurrency: newAmount(st.LifetimeCurrency),
		ClickValue:       newAmount(st.ClickValue),
		PassiveIncome:    newAmount(st.PassiveIncome),
		Rank:             rank,
		LegacyCurrency:   newAmount(st.LegacyCurrency),
		PrestigeCount:    newAmount(st.PrestigeCount),
		PrestigeGain:     newAmount(engine.PrestigeGain(st.LifetimeCurrency)),
		CanPrestige:      engine.CanPrestige(&st),
		PlayTimeSeconds:  st.PlayTimeSeconds,
		Unclaimed:        unclaimed,
	})
}

type upgradeEntry struct {
	Kind          economy.UpgradeKind     `json:"kind"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Category      string                  `json:"category"`
	PerUnitEffect float64                 `json:"per_unit_effect"`
	Level         int64                   `json:"level"`
	Quotes        map[string]engine.Quote `json:"quotes"` // Keyed by selector: 1, 10, 100, 1000, max.
}

func (s *Server) handleUpgrades(w http.ResponseWriter, r *http.Request) {
	st := s.Game.Snapshot()

	defs := economy.Upgrades()
	out := make([]upgradeEntry, 0, len(defs))
	for _, def := range defs {
		entry := upgradeEntry{
			Kind:          def.Kind,
			Name:          def.Name,
			Description:   def.Description,
			Category:      def.Category.String(),
			PerUnitEffect: def.PerUnitEffect,
			Level:         st.Upgrades[def.Kind],
			Quotes:        make(map[string]engine.Quote, len(economy.Quantities)),
		}
		for _, q := range economy.Quantities {
			if quote, ok := s.Game.CostFor(def.Kind, q); ok {
				entry.Quotes[q.String()] = quote
			}
		}
		out = append(out, entry)
	}

	writeJSON(w, map[string]any{
		"currency": newAmount(st.Currency),
		"upgrades": out,
	})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	earned := s.Game.RegisterClick()
	writeJSON(w, map[string]any{
		"ok":       true,
		"earned":   newAmount(earned),
		"currency": newAmount(s.Game.Snapshot().Currency),
	})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	kind, ok := economy.ParseUpgradeKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, engine.ErrUnknownUpgrade.Error())
		return
	}

	var req purchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	q, err := economy.ParseQuantity(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, engine.ErrInvalidQuantity.Error())
		return
	}

	res := s.Game.PurchaseUpgrade(kind, q)
	if res.OK {
		logger.FromContext(r.Context()).Debug("upgrade purchased",
			"kind", kind, "count", res.Purchased, "cost", numeric.Format(res.Cost))
	}
	writeJSON(w, map[string]any{
		"ok":        res.OK,
		"purchased": res.Purchased,
		"cost":      newAmount(res.Cost),
		"level":     s.Game.Snapshot().Upgrades[kind],
	})
}

type legacyEntry struct {
	Kind        economy.LegacyKind `json:"kind"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Level       int64              `json:"level"`
	Cost        amount             `json:"cost"`
	Affordable  bool               `json:"affordable"`
}

func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	st := s.Game.Snapshot()

	defs := economy.LegacyUpgrades()
	out := make([]legacyEntry, 0, len(defs))
	for _, def := range defs {
		level := st.LegacyUpgrades[def.Kind]
		cost := engine.LegacyCost(def, level)
		out = append(out, legacyEntry{
			Kind:        def.Kind,
			Name:        def.Name,
			Description: def.Description,
			Level:       level,
			Cost:        newAmount(cost),
			Affordable:  cost.Lte(st.LegacyCurrency),
		})
	}

	writeJSON(w, map[string]any{
		"legacy_currency": newAmount(st.LegacyCurrency),
		"upgrades":        out,
	})
}

func (s *Server) handleLegacyPurchase(w http.ResponseWriter, r *http.Request) {
	kind, ok := economy.ParseLegacyKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, engine.ErrUnknownLegacy.Error())
		return
	}

	bought := s.Game.PurchaseLegacyUpgrade(kind)
	st := s.Game.Snapshot()
	writeJSON(w, map[string]any{
		"ok":              bought,
		"level":           st.LegacyUpgrades[kind],
		"legacy_currency": newAmount(st.LegacyCurrency),
	})
}

type achievementEntry struct {
	economy.AchievementDefinition
	Unlocked bool `json:"unlocked"`
	Claimed  bool `json:"claimed"`
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	st := s.Game.Snapshot()

	defs := economy.Achievements()
	out := make([]achievementEntry, 0, len(defs))
	for _, def := range defs {
		p := st.Achievements[def.ID]
		out = append(out, achievementEntry{AchievementDefinition: def, Unlocked: p.Unlocked, Claimed: p.Claimed})
	}
	writeJSON(w, out)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	id := economy.AchievementID(chi.URLParam(r, "id"))
	if _, ok := economy.AchievementByID(id); !ok {
		writeError(w, http.StatusNotFound, engine.ErrUnknownAchievement.Error())
		return
	}
	writeJSON(w, map[string]bool{"ok": s.Game.ClaimAchievement(id)})
}

func (s *Server) handlePrestige(w http.ResponseWriter, r *http.Request) {
	gain, ok := s.Game.PerformPrestige()
	if ok {
		logger.FromContext(r.Context()).Info("prestige via API", "gain", gain.String())
	}
	writeJSON(w, map[string]any{
		"ok":   ok,
		"gain": newAmount(gain),
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.Game.RequestSave(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("manual save failed", "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	text, err := persistence.Export(s.Game.Snapshot())
	if err != nil {
		logger.FromContext(r.Context()).Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, map[string]string{"save": text})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st, err := persistence.Import(req.Save)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, persistence.ErrBadExport) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	s.Game.Restore(st)
	logger.FromContext(r.Context()).Warn("save imported", "rank", st.Rank, "lifetime", numeric.Format(st.LifetimeCurrency))
	writeJSON(w, map[string]bool{"ok": true})
}

// handleReset wipes the game and, when a store is attached, its save.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Game.ResetAll()
	if s.DB != nil {
		if err := s.DB.DeleteSave(r.Context()); err != nil {
			logger.FromContext(r.Context()).Error("delete save failed", "error", err)
			writeError(w, http.StatusInternalServerError, "reset applied but stored save could not be deleted")
			return
		}
	}
	writeJSON(w, map[string]bool{"ok": true})
}

// eventLimit reads ?limit=, clamped to [1, maxEventLimit].
func eventLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return defaultEventLimit
	}
	return min(n, maxEventLimit)
}

// handleEvents returns the in-memory event ring, oldest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.RecentEvents(eventLimit(r)))
}

// handleEventHistory returns saved events, newest first.
func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, "no event store configured")
		return
	}
	events, err := s.DB.RecentEvents(r.Context(), eventLimit(r))
	if err != nil {
		logger.FromContext(r.Context()).Error("event history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read events")
		return
	}
	if events == nil {
		events = []engine.Event{}
	}
	writeJSON(w, events)
}

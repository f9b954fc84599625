package autoplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Player runs observe → decide → act cycles.
type Player struct {
	Observer       *Observer
	Actor          *Actor
	Memory         *CycleMemory
	Policy         Policy
	ClicksPerCycle int
}

// NewPlayer wires an Observer and Actor against baseURL.
func NewPlayer(baseURL string, policy Policy, clicksPerCycle int, memory *CycleMemory) *Player {
	if memory == nil {
		memory = &CycleMemory{}
	}
	return &Player{
		Observer:       NewObserver(baseURL),
		Actor:          NewActor(baseURL),
		Memory:         memory,
		Policy:         policy,
		ClicksPerCycle: clicksPerCycle,
	}
}

// RunCycle executes one cycle and records it. A failed action is logged
// and skipped; rate limiting ends the cycle early without an error.
func (p *Player) RunCycle(ctx context.Context) (*CycleRecord, error) {
	rec := CycleRecord{At: time.Now().UTC()}

	clicks, err := p.Actor.Click(ctx, p.ClicksPerCycle)
	rec.Clicks = clicks
	if err != nil && !errors.Is(err, ErrRateLimited) {
		return nil, fmt.Errorf("click: %w", err)
	}

	// Observe.
	snap, err := p.Observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	// Decide.
	assessment := Triage(snap, p.Policy.ClickRate)
	decision := Decide(snap, assessment, p.Policy)
	rec.Phase = assessment.Phase
	rec.Rationale = decision.Rationale
	slog.Debug("autoplay decision", "phase", assessment.Phase, "actions", len(decision.Actions), "rationale", decision.Rationale)

	// Act.
	for _, act := range decision.Actions {
		rec.Actions = append(rec.Actions, act.String())
		result, err := p.Actor.Act(ctx, act)
		if errors.Is(err, ErrRateLimited) {
			slog.Info("rate limited, ending cycle early")
			break
		}
		if err != nil {
			slog.Error("action failed", "action", act.String(), "error", err)
			continue
		}
		if result.OK {
			rec.Succeeded++
		}
	}

	// Final reading for the record.
	var status Status
	if err := p.Observer.fetchJSON(ctx, "/api/v1/status", &status); err == nil {
		rec.Currency = status.Currency.Formatted
		rec.Rank = status.Rank.Name
	} else {
		rec.Currency = snap.Status.Currency.Formatted
		rec.Rank = snap.Status.Rank.Name
	}

	p.Memory.Record(rec)
	p.Memory.Save()
	return &rec, nil
}

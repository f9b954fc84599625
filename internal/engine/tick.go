package engine

import (
	"context"
	"log/slog"
	"time"
)

// Default tick schedule, in base ticks of one second.
const (
	DefaultAccrueEvery   = 1
	DefaultAutosaveEvery = 30
)

// Engine drives the game timers. The callbacks carry no payload beyond the
// tick counter.
type Engine struct {
	Tick          uint64        // Current tick counter (monotonic)
	Interval      time.Duration // Base tick interval (default 1 second)
	AccrueEvery   uint64
	AutosaveEvery uint64

	OnAccrue   func(tick uint64) // Every AccrueEvery ticks
	OnPlayTime func(tick uint64) // Every tick
	OnAutosave func(tick uint64) // Every AutosaveEvery ticks
}

// NewEngine creates an engine with the default schedule.
func NewEngine() *Engine {
	return &Engine{
		Interval:      time.Second,
		AccrueEvery:   DefaultAccrueEvery,
		AutosaveEvery: DefaultAutosaveEvery,
	}
}

// Wire points the passive, play-time and autosave timers at g. Autosave
// failures are logged and swallowed; the in-memory state stays
// authoritative.
func (e *Engine) Wire(g *Game) {
	e.OnAccrue = func(uint64) { g.AccruePassive() }
	e.OnPlayTime = func(uint64) { g.AddPlayTime(int64(e.Interval / time.Second)) }
	e.OnAutosave = func(tick uint64) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := g.RequestSave(ctx); err != nil {
			slog.Error("autosave failed", "tick", tick, "error", err)
		}
	}
}

// Run steps the engine every Interval until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("tick engine started", "tick", e.Tick, "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick engine stopped", "tick", e.Tick)
			return
		case <-ticker.C:
			e.Step()
		}
	}
}

// Step advances the engine by one tick.
func (e *Engine) Step() {
	e.Tick++

	if e.OnPlayTime != nil {
		e.OnPlayTime(e.Tick)
	}

	if e.AccrueEvery > 0 && e.Tick%e.AccrueEvery == 0 && e.OnAccrue != nil {
		e.OnAccrue(e.Tick)
	}

	if e.AutosaveEvery > 0 && e.Tick%e.AutosaveEvery == 0 && e.OnAutosave != nil {
		e.OnAutosave(e.Tick)
	}
}

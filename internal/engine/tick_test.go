package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/copclicker/internal/economy"
	"github.com/talgya/copclicker/internal/numeric"
)

func TestStepSchedule(t *testing.T) {
	e := NewEngine()
	var accrued, played, saved int
	e.OnAccrue = func(uint64) { accrued++ }
	e.OnPlayTime = func(uint64) { played++ }
	e.OnAutosave = func(uint64) { saved++ }

	for i := 0; i < 61; i++ {
		e.Step()
	}
	assert.Equal(t, uint64(61), e.Tick)
	assert.Equal(t, 61, accrued)
	assert.Equal(t, 61, played)
	assert.Equal(t, 2, saved)
}

func TestStepWithoutCallbacks(t *testing.T) {
	e := &Engine{}
	assert.NotPanics(t, e.Step)
}

func TestWireDrivesGame(t *testing.T) {
	store := &memStore{}
	g := NewGame(store)
	g.Restore(func() PlayerState {
		s := NewPlayerState()
		s.Upgrades[economy.UpgradePatrol] = 1
		return s
	}())

	e := NewEngine()
	e.AutosaveEvery = 5
	e.Wire(g)
	for i := 0; i < 10; i++ {
		e.Step()
	}

	snap := g.Snapshot()
	assert.Equal(t, int64(10), snap.PlayTimeSeconds)
	assert.True(t, snap.LifetimeCurrency.Eq(numeric.FromInt(30)))
	assert.Len(t, store.saved, 2)
}

func TestAutosaveFailureIsSwallowed(t *testing.T) {
	g := NewGame(&memStore{err: errors.New("read-only filesystem")})
	e := NewEngine()
	e.AutosaveEvery = 1
	e.Wire(g)
	assert.NotPanics(t, e.Step)
	assert.Equal(t, int64(1), g.Snapshot().PlayTimeSeconds)
}

func TestRunStopsOnCancel(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	ticks := make(chan uint64, 1)
	e.OnPlayTime = func(tick uint64) {
		select {
		case ticks <- tick:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("engine never ticked")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "Run did not return after cancel")
	}
}

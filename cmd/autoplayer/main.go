// Command autoplayer plays Cop Clicker unattended through the HTTP API.
// Each cycle it clicks, observes the game, decides on purchases, claims
// and prestiges, and acts.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/copclicker/internal/autoplay"
	"github.com/talgya/copclicker/internal/config"
	"github.com/talgya/copclicker/internal/logger"
)

const memoryFile = "autoplay_memory.json"

func main() {
	cfg := config.LoadAutoplay()
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	slog.Info("Cop Clicker autoplayer starting",
		"api_url", cfg.APIURL,
		"interval", cfg.Interval,
		"min_prestige_gain", cfg.MinPrestigeGain,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy := autoplay.Policy{
		MinPrestigeGain: cfg.MinPrestigeGain,
		ClickRate:       float64(cfg.ClicksPerCycle) / cfg.Interval.Seconds(),
	}
	memory := autoplay.LoadMemory(memoryFile)
	player := autoplay.NewPlayer(cfg.APIURL, policy, cfg.ClicksPerCycle, memory)
	slog.Info("previous run", "summary", memory.Summary())

	// Wait for the game server before the first cycle.
	slog.Info("waiting for game API...")
	if !waitForAPI(ctx, cfg.APIURL) {
		os.Exit(1)
	}

	// Run first cycle immediately.
	cycles := 0
	runCycle(ctx, player, &cycles)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCycle(ctx, player, &cycles)
		case <-ctx.Done():
			slog.Info("shutting down", "summary", memory.Summary())
			fmt.Printf("Autoplayer stopped after %s cycles.\n", humanize.Comma(int64(cycles)))
			return
		}
	}
}

// runCycle executes one observe → decide → act cycle.
func runCycle(ctx context.Context, player *autoplay.Player, cycles *int) {
	rec, err := player.RunCycle(ctx)
	if err != nil {
		slog.Error("autoplay cycle failed", "error", err)
		return
	}
	*cycles++

	slog.Info("autoplay cycle complete",
		"cycle", humanize.Ordinal(*cycles),
		"phase", rec.Phase,
		"clicks", rec.Clicks,
		"actions", len(rec.Actions),
		"succeeded", rec.Succeeded,
		"rank", rec.Rank,
		"currency", rec.Currency,
	)
	if *cycles%10 == 0 {
		slog.Info("autoplay summary", "summary", player.Memory.Summary())
	}
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Gives up after 5 minutes or when ctx ends.
func waitForAPI(ctx context.Context, apiURL string) bool {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/healthz", nil)
		if err != nil {
			slog.Error("bad API URL", "error", err)
			return false
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("game API is ready")
				return true
			}
		}
		if time.Now().After(deadline) {
			slog.Error("game API did not become ready within 5 minutes")
			return false
		}
		slog.Info("game API not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

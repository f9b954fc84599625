// Command copclicker runs the Cop Clicker game server: the economy engine,
// its timers, SQLite persistence and the HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/copclicker/internal/api"
	"github.com/talgya/copclicker/internal/config"
	"github.com/talgya/copclicker/internal/engine"
	"github.com/talgya/copclicker/internal/logger"
	"github.com/talgya/copclicker/internal/numeric"
	"github.com/talgya/copclicker/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat))

	slog.Info("Cop Clicker starting")

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Load or Start Fresh ──────────────────────────────────────────
	game := engine.NewGame(db)

	state, ok, err := db.LoadGame(ctx)
	switch {
	case err != nil:
		// Keep the unreadable save on disk; the next autosave overwrites it.
		slog.Error("failed to load save, starting fresh", "error", err)
	case ok:
		game.Restore(state)
		st := game.Snapshot()
		saves, _ := db.GetMeta(ctx, persistence.MetaSaveCount)
		slog.Info("save restored",
			"rank", st.Rank,
			"currency", numeric.Format(st.Currency),
			"lifetime", numeric.Format(st.LifetimeCurrency),
			"play_time", (time.Duration(st.PlayTimeSeconds) * time.Second).String(),
			"saves", saves,
		)
	default:
		slog.Info("no save found, starting a new career")
	}

	// ── Timers ───────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.AutosaveEvery = uint64(cfg.AutosaveTicks)
	eng.Wire(game)

	// ── HTTP API ─────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("COPCLICKER_ADMIN_KEY not set, reset and import are disabled")
	}
	apiServer := &api.Server{
		Game:      game,
		DB:        db,
		Port:      cfg.Port,
		AdminKey:  cfg.AdminKey,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}
	httpServer := apiServer.Start()

	fmt.Printf("\nOn duty. API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Ctrl+C to stop")

	eng.Run(ctx)

	api.Shutdown(httpServer)
	apiServer.Close()

	// Final save on shutdown.
	slog.Info("final save...")
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := game.RequestSave(saveCtx); err != nil {
		slog.Error("final save failed", "error", err)
	}

	st := game.Snapshot()
	fmt.Printf("Shift over after %s ticks. %s Respect banked.\n",
		humanize.Comma(int64(eng.Tick)), numeric.Format(st.Currency))
}

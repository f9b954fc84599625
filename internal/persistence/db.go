// Package persistence provides SQLite-based game state storage.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/copclicker/internal/engine"
	"github.com/talgya/copclicker/internal/numeric"
)

// Meta keys.
const (
	MetaSaveID        = "save_id"
	MetaSchemaVersion = "schema_version"
	MetaSaveCount     = "save_count"
	MetaLastSave      = "last_save"
)

// DB wraps a SQLite connection for game state persistence.
type DB struct {
	conn *sqlx.DB
	now  func() time.Time
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; SQLite serialises anyway.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS player (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL,
		currency TEXT NOT NULL,
		lifetime_currency TEXT NOT NULL,
		click_value TEXT NOT NULL,
		passive_income TEXT NOT NULL,
		rank_id TEXT NOT NULL,
		legacy_currency TEXT NOT NULL,
		prestige_count TEXT NOT NULL,
		play_time_seconds INTEGER NOT NULL,
		upgrades_json TEXT NOT NULL,
		legacy_json TEXT NOT NULL,
		achievements_json TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq INTEGER NOT NULL,
		at INTEGER NOT NULL,
		category TEXT NOT NULL,
		subject TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// playerRow mirrors the player table.
type playerRow struct {
	Version          int             `db:"version"`
	Currency         numeric.Decimal `db:"currency"`
	LifetimeCurrency numeric.Decimal `db:"lifetime_currency"`
	ClickValue       numeric.Decimal `db:"click_value"`
	PassiveIncome    numeric.Decimal `db:"passive_income"`
	Rank             string          `db:"rank_id"`
	LegacyCurrency   numeric.Decimal `db:"legacy_currency"`
	PrestigeCount    numeric.Decimal `db:"prestige_count"`
	PlayTimeSeconds  int64           `db:"play_time_seconds"`
	UpgradesJSON     string          `db:"upgrades_json"`
	LegacyJSON       string          `db:"legacy_json"`
	AchievementsJSON string          `db:"achievements_json"`
	SavedAt          int64           `db:"saved_at"`
}

// SaveGame writes the single player row (full replace) and bumps the save
// metadata in the same transaction.
func (db *DB) SaveGame(ctx context.Context, s engine.PlayerState) error {
	now := db.now()
	snap := FromState(s, now)

	upgradesJSON, err := json.Marshal(snap.Upgrades)
	if err != nil {
		return fmt.Errorf("marshal upgrades: %w", err)
	}
	legacyJSON, err := json.Marshal(snap.LegacyUpgrades)
	if err != nil {
		return fmt.Errorf("marshal legacy upgrades: %w", err)
	}
	achievementsJSON, err := json.Marshal(snap.Achievements)
	if err != nil {
		return fmt.Errorf("marshal achievements: %w", err)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO player
		(id, version, currency, lifetime_currency, click_value, passive_income, rank_id,
		 legacy_currency, prestige_count, play_time_seconds,
		 upgrades_json, legacy_json, achievements_json, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Version, snap.Currency, snap.LifetimeCurrency, snap.ClickValue, snap.PassiveIncome, snap.Rank,
		snap.LegacyCurrency, snap.PrestigeCount, snap.PlayTimeSeconds,
		string(upgradesJSON), string(legacyJSON), string(achievementsJSON), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("write player: %w", err)
	}

	// First save of a slot gets a stable id for exports and logs.
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO meta (key, value) VALUES (?, ?)",
		MetaSaveID, uuid.NewString(),
	); err != nil {
		return fmt.Errorf("write save id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, '1')
		 ON CONFLICT(key) DO UPDATE SET value = CAST(value AS INTEGER) + 1`,
		MetaSaveCount,
	); err != nil {
		return fmt.Errorf("bump save count: %w", err)
	}
	for key, value := range map[string]string{
		MetaSchemaVersion: strconv.Itoa(SchemaVersion),
		MetaLastSave:      now.UTC().Format(time.RFC3339),
	} {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value,
		); err != nil {
			return fmt.Errorf("write meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("game saved", "lifetime", numeric.Format(s.LifetimeCurrency), "rank", s.Rank)
	return nil
}

// LoadGame reads the saved player. ok is false when nothing was saved yet.
func (db *DB) LoadGame(ctx context.Context) (s engine.PlayerState, ok bool, err error) {
	var row playerRow
	err = db.conn.GetContext(ctx, &row, `SELECT
		version, currency, lifetime_currency, click_value, passive_income, rank_id,
		legacy_currency, prestige_count, play_time_seconds,
		upgrades_json, legacy_json, achievements_json, saved_at
		FROM player WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.PlayerState{}, false, nil
	}
	if err != nil {
		return engine.PlayerState{}, false, fmt.Errorf("read player: %w", err)
	}

	snap := Snapshot{
		Version:          row.Version,
		SavedAt:          time.Unix(0, row.SavedAt),
		Currency:         row.Currency,
		LifetimeCurrency: row.LifetimeCurrency,
		ClickValue:       row.ClickValue,
		PassiveIncome:    row.PassiveIncome,
		Rank:             row.Rank,
		LegacyCurrency:   row.LegacyCurrency,
		PrestigeCount:    row.PrestigeCount,
		PlayTimeSeconds:  row.PlayTimeSeconds,
	}
	// A damaged map column degrades to defaults rather than failing the load.
	if err := json.Unmarshal([]byte(row.UpgradesJSON), &snap.Upgrades); err != nil {
		slog.Warn("discarding unreadable upgrades", "error", err)
	}
	if err := json.Unmarshal([]byte(row.LegacyJSON), &snap.LegacyUpgrades); err != nil {
		slog.Warn("discarding unreadable legacy upgrades", "error", err)
	}
	if err := json.Unmarshal([]byte(row.AchievementsJSON), &snap.Achievements); err != nil {
		slog.Warn("discarding unreadable achievements", "error", err)
	}

	return snap.ToState(), true, nil
}

// HasSave reports whether a player row exists.
func (db *DB) HasSave(ctx context.Context) (bool, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM player")
	return n > 0, err
}

// DeleteSave removes the player, its event log and its metadata.
func (db *DB) DeleteSave(ctx context.Context) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"player", "events", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(ctx context.Context, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO events (seq, at, category, subject, description) VALUES (?, ?, ?, ?, ?)",
			e.Seq, e.At.UnixNano(), e.Category, e.Subject, e.Description,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type eventRow struct {
	Seq         uint64 `db:"seq"`
	At          int64  `db:"at"`
	Category    string `db:"category"`
	Subject     string `db:"subject"`
	Description string `db:"description"`
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(ctx context.Context, limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT seq, at, category, subject, description FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}

	events := make([]engine.Event, len(rows))
	for i, r := range rows {
		events[i] = engine.Event{
			Seq:         r.Seq,
			At:          time.Unix(0, r.At),
			Category:    r.Category,
			Subject:     r.Subject,
			Description: r.Description,
		}
	}
	return events, nil
}

// SaveMeta stores a key-value pair in metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}

// Package persistence provides SQLite-based match storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/vgerber/settler-island-server/internal/engine"
	"github.com/vgerber/settler-island-server/internal/game"
)

// ErrNotFound is returned when a match or meta key does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for match persistence.
type DB struct {
	conn *sqlx.DB
}

var _ engine.Store = (*DB)(nil)

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
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
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		players INTEGER NOT NULL,
		state TEXT NOT NULL,
		snapshot_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		player INTEGER NOT NULL,
		action TEXT NOT NULL,
		category TEXT NOT NULL,
		code TEXT NOT NULL,
		state TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_events_match_seq ON events(match_id, seq);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// MatchRow is a stored match without its decoded snapshot.
type MatchRow struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	Players   int    `db:"players"`
	State     string `db:"state"`
	UpdatedAt string `db:"updated_at"`
}

// SaveMatch writes the latest record of a match (insert or replace).
func (db *DB) SaveMatch(rec engine.Record) error {
	snapshot, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot of %s: %w", rec.ID, err)
	}
	_, err = db.conn.Exec(`INSERT INTO matches (id, seed, players, state, snapshot_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			snapshot_json = excluded.snapshot_json,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Seed, rec.Players, string(rec.State), string(snapshot),
		rec.Updated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save match %s: %w", rec.ID, err)
	}
	return nil
}

// LoadSnapshot returns the last saved snapshot of a match.
func (db *DB) LoadSnapshot(matchID string) (game.Snapshot, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT snapshot_json FROM matches WHERE id = ?", matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Snapshot{}, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("load match %s: %w", matchID, err)
	}

	var snap game.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot of %s: %w", matchID, err)
	}
	return snap, nil
}

// Matches lists stored matches, most recently updated first.
func (db *DB) Matches(limit int) ([]MatchRow, error) {
	var rows []MatchRow
	err := db.conn.Select(&rows,
		"SELECT id, seed, players, state, updated_at FROM matches ORDER BY updated_at DESC LIMIT ?",
		limit,
	)
	return rows, err
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(matchID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events
		(match_id, seq, player, action, category, code, state, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.Exec(matchID, e.Seq, e.Player, e.Action, e.Category, string(e.Code), e.State, e.Description)
		if err != nil {
			return fmt.Errorf("insert event %d of %s: %w", e.Seq, matchID, err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent events of a match, oldest first.
func (db *DB) RecentEvents(matchID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		`SELECT seq, player, action, category, code, state, description FROM (
			SELECT * FROM events WHERE match_id = ? ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`,
		matchID, limit,
	)
	return events, err
}

// CountEvents returns the number of stored events per category of a match.
func (db *DB) CountEvents(matchID string) (map[string]int, error) {
	var rows []struct {
		Category string `db:"category"`
		N        int    `db:"n"`
	}
	err := db.conn.Select(&rows,
		"SELECT category, COUNT(*) AS n FROM events WHERE match_id = ? GROUP BY category",
		matchID,
	)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.N
	}
	return counts, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, ErrNotFound)
	}
	return value, err
}

// SaveResult records the outcome of an autoplayed match in the metadata.
func (db *DB) SaveResult(matchID string, res engine.Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := db.SaveMeta("result:"+matchID, string(raw)); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	if err := db.SaveMeta("last_match", matchID); err != nil {
		return fmt.Errorf("save last match: %w", err)
	}
	slog.Info("match result saved", "match", matchID, "outcome", res.Outcome, "actions", res.Actions)
	return nil
}

package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// the commit log tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// One connection serialises writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			topic TEXT NOT NULL,
			seq INTEGER NOT NULL,
			key TEXT NOT NULL,
			dedup_id TEXT,
			value BLOB,
			published_at TEXT NOT NULL,
			PRIMARY KEY (topic, seq)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_dedup ON messages(topic, dedup_id) WHERE dedup_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_messages_key ON messages(topic, key)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			topic TEXT NOT NULL,
			name TEXT NOT NULL,
			acked_seq INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (topic, name)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}

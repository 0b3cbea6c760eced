package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and
// re-run on every open; ALTER TABLE additions tolerate the duplicate
// column error that re-running produces.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		ref         TEXT NOT NULL UNIQUE,
		user_id     TEXT NOT NULL,
		intent      TEXT NOT NULL
		            CHECK(intent IN ('food','drink','symptom','reflux','bm','mood','checkin')),
		text        TEXT NOT NULL,
		notes       TEXT NOT NULL DEFAULT '',
		confidence  REAL NOT NULL,
		decision    TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_entries_user_occurred
		ON entries(user_id, occurred_at)`,

	`CREATE INDEX IF NOT EXISTS idx_entries_intent
		ON entries(intent)`,

	`CREATE TABLE IF NOT EXISTS user_lexicon (
		user_id   TEXT NOT NULL,
		phrase    TEXT NOT NULL,
		intent    TEXT NOT NULL,
		item      TEXT NOT NULL DEFAULT '',
		hits      INTEGER NOT NULL DEFAULT 1,
		last_seen TEXT NOT NULL,
		PRIMARY KEY (user_id, phrase)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_user_lexicon_user
		ON user_lexicon(user_id)`,
}

// Package records persists lifecycle records in SQLite.
package records

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Init opens the record database and ensures the schema exists. The
// partial unique indexes are what make duplicate-active checks atomic:
// two concurrent absence requests for the same subject cannot both insert.
func Init(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to record database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS records (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        subject_id TEXT NOT NULL,
        subject_label TEXT NOT NULL,
        kind TEXT NOT NULL,
        role_id TEXT NOT NULL DEFAULT '',
        reason TEXT NOT NULL DEFAULT '',
        issuer_id TEXT NOT NULL,
        guild_id TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        expires_at DATETIME,
        panel_channel_id TEXT NOT NULL DEFAULT '',
        panel_message_id TEXT NOT NULL DEFAULT '',
        audit_channel_id TEXT NOT NULL DEFAULT '',
        audit_message_id TEXT NOT NULL DEFAULT ''
    );
    CREATE UNIQUE INDEX IF NOT EXISTS idx_records_single_absence
        ON records(subject_id) WHERE kind = 'absence';
    CREATE UNIQUE INDEX IF NOT EXISTS idx_records_single_blacklist
        ON records(subject_id) WHERE kind = 'blacklist';
    CREATE INDEX IF NOT EXISTS idx_records_expires_at
        ON records(expires_at) WHERE expires_at IS NOT NULL;`

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create records schema: %w", err)
	}
	return db, nil
}
